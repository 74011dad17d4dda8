package location

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

const loadErrorMessage = "could not load locations"

// Tree is the session cache of the location hierarchy. Top-level lists are
// kept per type and children per parent id; both are filled lazily and only
// replaced by an explicit reset reload. Expanded and loading sets are view
// state for the expandable tree.
//
// Every fetch records the generation it was issued under and only writes
// back while that generation is current. Reset starts a new generation, and
// a reset reload of one parent starts a new generation for that parent.
type Tree struct {
	repo   Repository
	logger *slog.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	gen      uint64
	byType   map[Type][]*Location
	children map[string][]*Location
	childGen map[string]uint64
	expanded map[string]bool
	loading  map[string]bool
	errMsg   string
}

// NewTree creates an empty Tree.
func NewTree(repo Repository, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tree{repo: repo, logger: logger}
	t.Reset()
	return t
}

// Reset drops every cached list and all view state. Fetches still in
// flight no longer write to the cache.
func (t *Tree) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.byType = make(map[Type][]*Location)
	t.children = make(map[string][]*Location)
	t.childGen = make(map[string]uint64)
	t.expanded = make(map[string]bool)
	t.loading = make(map[string]bool)
	t.errMsg = ""
}

// EnsureTopLevel returns every location of type typ, fetching once per
// session. Concurrent callers during the first fetch share one request.
func (t *Tree) EnsureTopLevel(ctx context.Context, typ Type) ([]*Location, error) {
	t.mu.RLock()
	cached, ok := t.byType[typ]
	gen := t.gen
	t.mu.RUnlock()
	if ok {
		return clone(cached), nil
	}

	key := fmt.Sprintf("type:%s@%d", typ, gen)
	v, err, _ := t.group.Do(key, func() (interface{}, error) {
		t.mu.RLock()
		cached, ok := t.byType[typ]
		t.mu.RUnlock()
		if ok {
			return cached, nil
		}
		list, err := t.repo.ListByType(ctx, typ)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		if t.gen == gen {
			t.byType[typ] = list
		}
		t.mu.Unlock()
		return list, nil
	})
	if err != nil {
		t.fail(gen, err, "type", typ)
		return nil, fmt.Errorf("load %s locations: %w", typ, err)
	}
	t.clearError(gen)
	return clone(v.([]*Location)), nil
}

// LoadChildren returns the direct children of parentID. The cache entry is
// used unless reset is set or it is missing, in which case the list is
// fetched and overwrites the entry. A reset load supersedes any earlier
// load of the same parent still in flight.
func (t *Tree) LoadChildren(ctx context.Context, parentID string, childType Type, reset bool) ([]*Location, error) {
	if parentID == "" {
		return nil, nil
	}
	t.mu.Lock()
	if reset {
		t.childGen[parentID]++
	} else if cached, ok := t.children[parentID]; ok {
		t.mu.Unlock()
		return clone(cached), nil
	}
	gen, parentGen := t.gen, t.childGen[parentID]
	t.mu.Unlock()

	key := fmt.Sprintf("children:%s@%d.%d", parentID, gen, parentGen)
	v, err, _ := t.group.Do(key, func() (interface{}, error) {
		list, err := t.repo.ListChildren(ctx, parentID, childType)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		if t.gen == gen && t.childGen[parentID] == parentGen {
			t.children[parentID] = list
		}
		t.mu.Unlock()
		return list, nil
	})
	if err != nil {
		t.fail(gen, err, "parent", parentID)
		return nil, fmt.Errorf("load children of %s: %w", parentID, err)
	}
	t.clearError(gen)
	return clone(v.([]*Location)), nil
}

// ToggleExpand flips node's expansion. The first expansion of a node whose
// type has children loads them, flagging the node as loading meanwhile.
func (t *Tree) ToggleExpand(ctx context.Context, node *Location) error {
	t.mu.Lock()
	if t.expanded[node.ID] {
		delete(t.expanded, node.ID)
		t.mu.Unlock()
		return nil
	}
	t.expanded[node.ID] = true
	childType, hasChildren := node.Type.Child()
	_, cached := t.children[node.ID]
	if !hasChildren || cached {
		t.mu.Unlock()
		return nil
	}
	t.loading[node.ID] = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.loading, node.ID)
		t.mu.Unlock()
	}()
	_, err := t.LoadChildren(ctx, node.ID, childType, false)
	return err
}

// Created merges a freshly created location into the cache without a
// re-fetch: it is prepended to its type's list and to its parent's children.
// Lists that were never loaded are left to the next fetch.
func (t *Tree) Created(loc *Location) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if list, ok := t.byType[loc.Type]; ok {
		t.byType[loc.Type] = prepend(list, loc)
	}
	if kids, ok := t.children[loc.ParentID]; ok && loc.ParentID != "" {
		t.children[loc.ParentID] = prepend(kids, loc)
	}
}

// TopLevel returns the cached list for typ without fetching.
func (t *Tree) TopLevel(typ Type) []*Location {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return clone(t.byType[typ])
}

// Children returns the cached children of parentID without fetching.
func (t *Tree) Children(parentID string) []*Location {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return clone(t.children[parentID])
}

// HasChildren reports whether the children of parentID are cached.
func (t *Tree) HasChildren(parentID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.children[parentID]
	return ok
}

// Find looks id up in every cached list.
func (t *Tree) Find(id string) (*Location, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, list := range t.byType {
		for _, loc := range list {
			if loc.ID == id {
				return loc, true
			}
		}
	}
	for _, list := range t.children {
		for _, loc := range list {
			if loc.ID == id {
				return loc, true
			}
		}
	}
	return nil, false
}

func (t *Tree) IsExpanded(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.expanded[id]
}

func (t *Tree) IsLoading(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading[id]
}

// Err is the banner text of the last failed load, empty after a success.
func (t *Tree) Err() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.errMsg
}

func (t *Tree) fail(gen uint64, err error, key string, value interface{}) {
	t.logger.Warn("location load failed", key, value, "error", err)
	t.mu.Lock()
	if t.gen == gen {
		t.errMsg = loadErrorMessage
	}
	t.mu.Unlock()
}

func (t *Tree) clearError(gen uint64) {
	t.mu.Lock()
	if t.gen == gen {
		t.errMsg = ""
	}
	t.mu.Unlock()
}

func prepend(list []*Location, loc *Location) []*Location {
	out := make([]*Location, 0, len(list)+1)
	out = append(out, loc)
	return append(out, list...)
}

func clone(list []*Location) []*Location {
	if list == nil {
		return nil
	}
	out := make([]*Location, len(list))
	copy(out, list)
	return out
}
