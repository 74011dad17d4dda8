package location

import (
	"context"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

type remoteRepo struct{ client *apiclient.Client }

// NewRemoteRepository returns a Repository backed by the catalog API.
func NewRemoteRepository(client *apiclient.Client) Repository { return &remoteRepo{client: client} }

func (r *remoteRepo) ListByType(ctx context.Context, t Type) ([]*Location, error) {
	var out []*Location
	if err := r.client.Get(ctx, apiclient.Path("locations", "type", string(t)), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Location{}
	}
	return out, nil
}

func (r *remoteRepo) ListChildren(ctx context.Context, parentID string, childType Type) ([]*Location, error) {
	var out []*Location
	err := r.client.Get(ctx, apiclient.Path("locations", "child", parentID, string(childType)), nil, &out)
	if apiclient.IsNotFound(err) {
		return []*Location{}, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Location{}
	}
	return out, nil
}

func (r *remoteRepo) Create(ctx context.Context, req CreateRequest) (*Location, error) {
	loc := &Location{}
	if err := r.client.Post(ctx, "/admin/locations", req, loc); err != nil {
		return nil, err
	}
	return loc, nil
}
