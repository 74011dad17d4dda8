package user

import (
	"context"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

type remoteRepository struct {
	client *apiclient.Client
}

// NewRemoteRepository creates a user repository backed by the catalog API.
func NewRemoteRepository(client *apiclient.Client) Repository {
	return &remoteRepository{client: client}
}

func (r *remoteRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	u := &User{}
	if err := r.client.Get(ctx, apiclient.Path("admin", "users", id), nil, u); err != nil {
		return nil, err
	}
	if u.Roles == nil {
		u.Roles = []Role{}
	}
	return u, nil
}

func (r *remoteRepository) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	u := &User{}
	if err := r.client.Post(ctx, "/admin/users", req, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *remoteRepository) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) error {
	return r.client.Put(ctx, apiclient.Path("admin", "users", id), req, nil)
}

func (r *remoteRepository) ListRoles(ctx context.Context) ([]RoleWithPermissions, error) {
	var roles []RoleWithPermissions
	if err := r.client.Get(ctx, "/admin/roles", nil, &roles); err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []RoleWithPermissions{}
	}
	return roles, nil
}

func (r *remoteRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	if err := r.client.Get(ctx, "/admin/permissions", nil, &perms); err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []Permission{}
	}
	return perms, nil
}

func (r *remoteRepository) CreateRole(ctx context.Context, req CreateRoleRequest) error {
	return r.client.Post(ctx, "/admin/roles", req, nil)
}
