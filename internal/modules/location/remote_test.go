package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

func TestListChildrenNotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations/child/b1/room" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no rooms"}`))
	}))
	defer srv.Close()

	repo := NewRemoteRepository(apiclient.New(srv.URL, time.Second, nil, nil))
	list, err := repo.ListChildren(context.Background(), "b1", Room)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("want empty list, got %#v", list)
	}
}

func TestListChildrenOtherErrorsSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	repo := NewRemoteRepository(apiclient.New(srv.URL, time.Second, nil, nil))
	if _, err := repo.ListChildren(context.Background(), "b1", Room); !apiclient.IsStatus(err, http.StatusInternalServerError) {
		t.Fatalf("want 500, got %v", err)
	}
}
