package reference

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/modules/asset"
)

type stubUploader struct {
	url string
	err error
}

func (u stubUploader) Upload(ctx context.Context, entity asset.Entity, id string, file apiclient.File) (string, error) {
	return u.url, u.err
}

func newService(t *testing.T, repo *memRepo, up asset.Uploader) (Service, *Store) {
	t.Helper()
	store := NewStore(repo, nil)
	if err := store.LoadAll(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewService(repo, store, asset.NewSubmitter(up, nil)), store
}

func photo() *apiclient.File {
	return &apiclient.File{Name: "p.jpg", Body: strings.NewReader("jpeg")}
}

func TestSaveAuthorImageFailureKeepsEntity(t *testing.T) {
	repo := seeded()
	svc, store := newService(t, repo, stubUploader{err: errors.New("storage down")})

	out, err := svc.SaveAuthor(context.Background(), AuthorDraft{LastName: "Chekhov", Photo: photo()})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if out.Asset.State != asset.Failed {
		t.Fatalf("state = %s", out.Asset.State)
	}
	var w *asset.Warning
	if !errors.As(out.Warning(), &w) || w.ID != out.Entity.ID {
		t.Fatalf("warning = %v", out.Warning())
	}
	if a, ok := store.Author(out.Entity.ID); !ok || a.PhotoURL != "" {
		t.Fatalf("author not merged: %+v ok=%v", a, ok)
	}
	if store.Authors()[0].ID != out.Entity.ID {
		t.Fatal("new author not prepended")
	}
}

func TestSaveAuthorImageAttached(t *testing.T) {
	repo := seeded()
	svc, store := newService(t, repo, stubUploader{url: "https://img/a.jpg"})

	out, err := svc.SaveAuthor(context.Background(), AuthorDraft{LastName: "Chekhov", Photo: photo()})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if out.Asset.State != asset.Attached || out.Warning() != nil {
		t.Fatalf("asset = %+v", out.Asset)
	}
	if !strings.HasPrefix(out.Entity.PhotoURL, "https://img/a.jpg?v=") {
		t.Fatalf("photo = %q", out.Entity.PhotoURL)
	}
	if a, _ := store.Author(out.Entity.ID); a.PhotoURL != out.Entity.PhotoURL {
		t.Fatalf("store photo = %q", a.PhotoURL)
	}
	if len(repo.updates) != 1 || repo.updates[0] != "author:"+out.Entity.ID {
		t.Fatalf("updates = %v", repo.updates)
	}
}

func TestSaveAuthorRejectedLocally(t *testing.T) {
	repo := seeded()
	svc, _ := newService(t, repo, stubUploader{})
	if _, err := svc.SaveAuthor(context.Background(), AuthorDraft{FirstName: "Anton"}); fieldOf(err) != "last_name" {
		t.Fatalf("want last_name error, got %v", err)
	}
	if len(repo.authors) != 1 {
		t.Fatal("invalid draft reached the backend")
	}
}

func TestSaveWorkMergesAuthors(t *testing.T) {
	repo := seeded()
	svc, store := newService(t, repo, stubUploader{})

	w, err := svc.SaveWork(context.Background(), WorkDraft{Title: "Resurrection", Year: "1899", AuthorIDs: []string{"a1"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(w.Authors) != 1 || w.Authors[0].ID != "a1" {
		t.Fatalf("authors = %+v", w.Authors)
	}
	first := store.Works()[0]
	if first.ID != w.ID || first.Year == nil || *first.Year != 1899 {
		t.Fatalf("cached = %+v", first)
	}
}

func TestDeletePublisherRemovesFromStore(t *testing.T) {
	repo := seeded()
	svc, store := newService(t, repo, stubUploader{})
	if err := svc.DeletePublisher(context.Background(), "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.Publishers()) != 0 {
		t.Fatal("publisher still cached")
	}
}
