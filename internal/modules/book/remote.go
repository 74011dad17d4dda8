package book

import (
	"context"
	"net/url"
	"strconv"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

type remoteRepo struct{ client *apiclient.Client }

// NewRemoteRepository returns a Repository backed by the catalog API.
func NewRemoteRepository(client *apiclient.Client) Repository { return &remoteRepo{client: client} }

func (r *remoteRepo) List(ctx context.Context, scope Scope, query string, limit, offset int) (Page[Book], error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var page Page[Book]
	if err := r.client.Get(ctx, apiclient.Path("books", string(scope)), q, &page); err != nil {
		return Page[Book]{}, err
	}
	return page, nil
}

func (r *remoteRepo) Create(ctx context.Context, req CreateRequest) (*Book, error) {
	b := &Book{}
	if err := r.client.Post(ctx, "/admin/books", req, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *remoteRepo) Update(ctx context.Context, id string, req UpdateRequest) error {
	return r.client.Put(ctx, apiclient.Path("admin", "books", id), req, nil)
}
