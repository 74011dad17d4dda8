package user

import "context"

// Service defines the interface for user-related business logic.
type Service interface {
	// Current resolves the signed-in user. Accounts that may not read their
	// own record get a minimal non-admin profile instead of an error.
	Current(ctx context.Context, id, login string) (*User, error)
	SaveProfile(ctx context.Context, u *User, d ProfileDraft) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Roles(ctx context.Context) ([]RoleWithPermissions, error)
	Permissions(ctx context.Context) ([]Permission, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) error
}
