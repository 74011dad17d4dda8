package reference

import (
	"context"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

type remoteRepo struct{ client *apiclient.Client }

// NewRemoteRepository returns a Repository backed by the catalog API.
func NewRemoteRepository(client *apiclient.Client) Repository { return &remoteRepo{client: client} }

func (r *remoteRepo) ListAuthors(ctx context.Context) ([]AuthorSummary, error) {
	var out []AuthorSummary
	if err := r.client.Get(ctx, "/reference/authors", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []AuthorSummary{}
	}
	return out, nil
}

func (r *remoteRepo) ListWorks(ctx context.Context) ([]WorkShort, error) {
	var out []WorkShort
	if err := r.client.Get(ctx, "/reference/works", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []WorkShort{}
	}
	return out, nil
}

func (r *remoteRepo) ListPublishers(ctx context.Context) ([]Publisher, error) {
	var out []Publisher
	if err := r.client.Get(ctx, "/reference/publishers", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Publisher{}
	}
	return out, nil
}

func (r *remoteRepo) GetAuthor(ctx context.Context, id string) (*Author, error) {
	a := &Author{}
	if err := r.client.Get(ctx, apiclient.Path("authors", id), nil, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *remoteRepo) CreateAuthor(ctx context.Context, req AuthorRequest) (*Author, error) {
	a := &Author{}
	if err := r.client.Post(ctx, "/admin/authors", req, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *remoteRepo) UpdateAuthor(ctx context.Context, id string, req AuthorRequest) error {
	return r.client.Put(ctx, apiclient.Path("admin", "authors", id), req, nil)
}

func (r *remoteRepo) GetWork(ctx context.Context, id string) (*WorkDetailed, error) {
	w := &WorkDetailed{}
	if err := r.client.Get(ctx, apiclient.Path("works", id), nil, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *remoteRepo) CreateWork(ctx context.Context, req CreateWorkRequest) (*WorkDetailed, error) {
	w := &WorkDetailed{}
	if err := r.client.Post(ctx, "/admin/works", req, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *remoteRepo) UpdateWork(ctx context.Context, id string, req UpdateWorkRequest) error {
	return r.client.Put(ctx, apiclient.Path("admin", "works", id), req, nil)
}

func (r *remoteRepo) DeleteWork(ctx context.Context, id string) error {
	return r.client.Delete(ctx, apiclient.Path("admin", "works", id))
}

func (r *remoteRepo) GetPublisher(ctx context.Context, id string) (*Publisher, error) {
	p := &Publisher{}
	if err := r.client.Get(ctx, apiclient.Path("publishers", id), nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *remoteRepo) CreatePublisher(ctx context.Context, req PublisherRequest) (*Publisher, error) {
	p := &Publisher{}
	if err := r.client.Post(ctx, "/admin/publishers", req, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *remoteRepo) UpdatePublisher(ctx context.Context, id string, req PublisherRequest) error {
	return r.client.Put(ctx, apiclient.Path("admin", "publishers", id), req, nil)
}

func (r *remoteRepo) DeletePublisher(ctx context.Context, id string) error {
	return r.client.Delete(ctx, apiclient.Path("admin", "publishers", id))
}
