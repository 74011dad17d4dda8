package session

import "sync"

// slot holds at most one open draft of type T.
type slot[T any] struct {
	mu    sync.Mutex
	draft *T
}

func (s *slot[T]) open(d T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = &d
	return d
}

func (s *slot[T]) get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		var zero T
		return zero, false
	}
	return *s.draft, true
}

// edit applies fn to the open draft. It reports false when none is open.
func (s *slot[T]) edit(fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return false
	}
	fn(s.draft)
	return true
}

func (s *slot[T]) close() {
	s.mu.Lock()
	s.draft = nil
	s.mu.Unlock()
}
