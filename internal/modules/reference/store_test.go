package reference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

// memRepo is an in-memory Repository.
type memRepo struct {
	mu         sync.Mutex
	authors    []*Author
	works      []*WorkDetailed
	publishers []*Publisher
	listCalls  atomic.Int32
	failLists  error
	updates    []string
	seq        int
}

func (r *memRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *memRepo) ListAuthors(ctx context.Context) ([]AuthorSummary, error) {
	r.listCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLists != nil {
		return nil, r.failLists
	}
	var out []AuthorSummary
	for _, a := range r.authors {
		out = append(out, a.AuthorSummary)
	}
	return out, nil
}

func (r *memRepo) ListWorks(ctx context.Context) ([]WorkShort, error) {
	r.listCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []WorkShort
	for _, w := range r.works {
		out = append(out, w.Short())
	}
	return out, nil
}

func (r *memRepo) ListPublishers(ctx context.Context) ([]Publisher, error) {
	r.listCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Publisher
	for _, p := range r.publishers {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memRepo) GetAuthor(ctx context.Context, id string) (*Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.authors {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memRepo) CreateAuthor(ctx context.Context, req AuthorRequest) (*Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := &Author{AuthorSummary: AuthorSummary{ID: r.nextID("author"), LastName: req.LastName, FirstName: deref(req.FirstName), PhotoURL: deref(req.PhotoURL)}}
	r.authors = append(r.authors, a)
	return a, nil
}

func (r *memRepo) UpdateAuthor(ctx context.Context, id string, req AuthorRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, "author:"+id)
	return nil
}

func (r *memRepo) GetWork(ctx context.Context, id string) (*WorkDetailed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.works {
		if w.ID == id {
			copied := *w
			return &copied, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memRepo) CreateWork(ctx context.Context, req CreateWorkRequest) (*WorkDetailed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := &WorkDetailed{ID: r.nextID("work"), Title: req.Work.Title, Year: req.Work.Year}
	r.works = append(r.works, w)
	return w, nil
}

func (r *memRepo) UpdateWork(ctx context.Context, id string, req UpdateWorkRequest) error {
	return nil
}

func (r *memRepo) DeleteWork(ctx context.Context, id string) error { return nil }

func (r *memRepo) GetPublisher(ctx context.Context, id string) (*Publisher, error) {
	return nil, errors.New("not found")
}

func (r *memRepo) CreatePublisher(ctx context.Context, req PublisherRequest) (*Publisher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &Publisher{ID: r.nextID("publisher"), Name: req.Name}
	r.publishers = append(r.publishers, p)
	return p, nil
}

func (r *memRepo) UpdatePublisher(ctx context.Context, id string, req PublisherRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, "publisher:"+id)
	return nil
}

func (r *memRepo) DeletePublisher(ctx context.Context, id string) error { return nil }

func seeded() *memRepo {
	tolstoy := AuthorSummary{ID: "a1", LastName: "Tolstoy", FirstName: "Leo"}
	return &memRepo{
		authors:    []*Author{{AuthorSummary: tolstoy}},
		works:      []*WorkDetailed{{ID: "w1", Title: "War and Peace", Authors: []AuthorSummary{tolstoy}}},
		publishers: []*Publisher{{ID: "p1", Name: "Penguin"}},
	}
}

func TestLoadAllSharesOneLoad(t *testing.T) {
	repo := seeded()
	store := NewStore(repo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.LoadAll(context.Background()); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
	}
	wg.Wait()
	store.LoadAll(context.Background())

	if n := repo.listCalls.Load(); n != 3 {
		t.Fatalf("list calls = %d, want 3", n)
	}
	if !store.Loaded() || len(store.Authors()) != 1 || len(store.Works()) != 1 || len(store.Publishers()) != 1 {
		t.Fatal("store not populated")
	}
}

func TestLoadAllFailureRetries(t *testing.T) {
	repo := seeded()
	repo.failLists = errors.New("down")
	store := NewStore(repo, nil)

	if err := store.LoadAll(context.Background()); err == nil {
		t.Fatal("want error")
	}
	if store.Loaded() || len(store.Works()) != 0 {
		t.Fatal("partial load kept")
	}

	repo.failLists = nil
	if err := store.LoadAll(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !store.Loaded() {
		t.Fatal("not loaded after retry")
	}
}

func TestStoreResetForgets(t *testing.T) {
	repo := seeded()
	store := NewStore(repo, nil)
	store.LoadAll(context.Background())
	store.Reset()
	if store.Loaded() || len(store.Authors()) != 0 {
		t.Fatal("reset kept data")
	}
	store.LoadAll(context.Background())
	if n := repo.listCalls.Load(); n != 6 {
		t.Fatalf("list calls = %d, want 6", n)
	}
}

func TestStoreMerges(t *testing.T) {
	store := NewStore(seeded(), nil)
	store.LoadAll(context.Background())

	store.PrependPublisher(Publisher{ID: "p2", Name: "Vintage"})
	store.ReplacePublisher(Publisher{ID: "p1", Name: "Penguin Books"})
	pubs := store.Publishers()
	if pubs[0].ID != "p2" || pubs[1].Name != "Penguin Books" {
		t.Fatalf("publishers = %+v", pubs)
	}
	store.RemovePublisher("p2")
	if _, ok := store.Publisher("p2"); ok {
		t.Fatal("removed publisher still cached")
	}

	got := store.WorksByIDs([]string{"missing", "w1"})
	if len(got) != 1 || got[0].ID != "w1" {
		t.Fatalf("works = %+v", got)
	}
}

// slowAuthors holds the author list until gate is closed.
type slowAuthors struct {
	*memRepo
	started chan struct{}
	gate    chan struct{}
}

func (r *slowAuthors) ListAuthors(ctx context.Context) ([]AuthorSummary, error) {
	list, err := r.memRepo.ListAuthors(ctx)
	r.started <- struct{}{}
	<-r.gate
	return list, err
}

func TestStoreResetDiscardsInFlightLoad(t *testing.T) {
	repo := &slowAuthors{memRepo: seeded(), started: make(chan struct{}, 2), gate: make(chan struct{})}
	store := NewStore(repo, nil)

	done := make(chan error, 1)
	go func() { done <- store.LoadAll(context.Background()) }()
	<-repo.started

	store.Reset()
	close(repo.gate)
	if err := <-done; !errors.Is(err, ErrReset) {
		t.Fatalf("want ErrReset, got %v", err)
	}
	if store.Loaded() || len(store.Authors()) != 0 || len(store.Works()) != 0 {
		t.Fatal("discarded load populated the store")
	}

	if err := store.LoadAll(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !store.Loaded() || len(store.Authors()) != 1 {
		t.Fatal("store not populated after reload")
	}
}
