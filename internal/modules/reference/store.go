package reference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrReset is returned to callers of a load that Reset discarded.
var ErrReset = errors.New("reference data was reset during load")

// Store holds the session's author, work and publisher lists. They are
// loaded once after login and from then on only changed by local merges.
type Store struct {
	repo   Repository
	logger *slog.Logger
	group  singleflight.Group

	mu         sync.RWMutex
	gen        uint64
	loaded     bool
	authors    []AuthorSummary
	works      []WorkShort
	publishers []Publisher
}

func NewStore(repo Repository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{repo: repo, logger: logger}
}

// LoadAll fetches the three lists concurrently unless they are already
// loaded. Concurrent callers share one load. When any list fails the
// errors are joined and the store stays unloaded so the next call retries.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.RLock()
	loaded, gen := s.loaded, s.gen
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	_, err, _ := s.group.Do(fmt.Sprintf("all@%d", gen), func() (interface{}, error) {
		if s.Loaded() {
			return nil, nil
		}
		var (
			authors    []AuthorSummary
			works      []WorkShort
			publishers []Publisher
			errs       [3]error
		)
		var g errgroup.Group
		g.Go(func() error {
			authors, errs[0] = s.repo.ListAuthors(ctx)
			if errs[0] != nil {
				errs[0] = fmt.Errorf("load authors: %w", errs[0])
			}
			return nil
		})
		g.Go(func() error {
			works, errs[1] = s.repo.ListWorks(ctx)
			if errs[1] != nil {
				errs[1] = fmt.Errorf("load works: %w", errs[1])
			}
			return nil
		})
		g.Go(func() error {
			publishers, errs[2] = s.repo.ListPublishers(ctx)
			if errs[2] != nil {
				errs[2] = fmt.Errorf("load publishers: %w", errs[2])
			}
			return nil
		})
		g.Wait()
		if err := errors.Join(errs[:]...); err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return nil, ErrReset
		}
		s.authors = orEmpty(authors)
		s.works = orEmpty(works)
		s.publishers = orEmpty(publishers)
		s.loaded = true
		s.logger.Info("reference data loaded",
			"authors", len(authors),
			"works", len(works),
			"publishers", len(publishers),
		)
		return nil, nil
	})
	if err != nil {
		s.logger.Warn("reference load failed", "error", err)
	}
	return err
}

// Loaded reports whether LoadAll has completed successfully.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Reset forgets every list; the next LoadAll fetches again. A load still
// in flight is discarded and its callers get ErrReset.
func (s *Store) Reset() {
	s.mu.Lock()
	s.gen++
	s.loaded = false
	s.authors, s.works, s.publishers = nil, nil, nil
	s.mu.Unlock()
}

func (s *Store) Authors() []AuthorSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AuthorSummary{}, s.authors...)
}

func (s *Store) Works() []WorkShort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]WorkShort{}, s.works...)
}

func (s *Store) Publishers() []Publisher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Publisher{}, s.publishers...)
}

// Author returns the cached summary with id.
func (s *Store) Author(id string) (AuthorSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.authors {
		if a.ID == id {
			return a, true
		}
	}
	return AuthorSummary{}, false
}

// Publisher returns the cached publisher with id.
func (s *Store) Publisher(id string) (Publisher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.publishers {
		if p.ID == id {
			return p, true
		}
	}
	return Publisher{}, false
}

// AuthorsByIDs resolves ids against the cached authors, keeping the order
// of ids and skipping unknown ones.
func (s *Store) AuthorsByIDs(ids []string) []AuthorSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuthorSummary, 0, len(ids))
	for _, id := range ids {
		for _, a := range s.authors {
			if a.ID == id {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// WorksByIDs resolves ids against the cached works in the order of ids.
func (s *Store) WorksByIDs(ids []string) []WorkShort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WorkShort, 0, len(ids))
	for _, id := range ids {
		for _, w := range s.works {
			if w.ID == id {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

func (s *Store) PrependAuthor(a AuthorSummary) {
	s.mu.Lock()
	s.authors = append([]AuthorSummary{a}, s.authors...)
	s.mu.Unlock()
}

func (s *Store) PrependWork(w WorkShort) {
	s.mu.Lock()
	s.works = append([]WorkShort{w}, s.works...)
	s.mu.Unlock()
}

func (s *Store) PrependPublisher(p Publisher) {
	s.mu.Lock()
	s.publishers = append([]Publisher{p}, s.publishers...)
	s.mu.Unlock()
}

// ReplaceAuthor swaps the cached summary with the same id in place.
func (s *Store) ReplaceAuthor(a AuthorSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.authors {
		if s.authors[i].ID == a.ID {
			s.authors[i] = a
			return
		}
	}
}

func (s *Store) ReplaceWork(w WorkShort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.works {
		if s.works[i].ID == w.ID {
			s.works[i] = w
			return
		}
	}
}

func (s *Store) ReplacePublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.publishers {
		if s.publishers[i].ID == p.ID {
			s.publishers[i] = p
			return
		}
	}
}

func (s *Store) RemoveWork(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.works = removeBy(s.works, func(w WorkShort) bool { return w.ID == id })
}

func (s *Store) RemovePublisher(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers = removeBy(s.publishers, func(p Publisher) bool { return p.ID == id })
}

func removeBy[T any](list []T, match func(T) bool) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out
}

func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
