package user

import "context"

// Repository defines backend access for users and roles.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) error
	ListRoles(ctx context.Context) ([]RoleWithPermissions, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) error
}

type CreateUserRequest struct {
	Login      string  `json:"login"`
	FirstName  string  `json:"first_name"`
	LastName   *string `json:"last_name,omitempty"`
	MiddleName *string `json:"middle_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Password   string  `json:"password"`
	Roles      []Role  `json:"roles"`
}

// UpdateUserRequest is the payload of PUT /admin/users/{id}. Password is
// omitted unless it is being changed.
type UpdateUserRequest struct {
	Login      string  `json:"login"`
	FirstName  string  `json:"first_name"`
	LastName   *string `json:"last_name,omitempty"`
	MiddleName *string `json:"middle_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	IsActive   bool    `json:"is_active"`
	Password   *string `json:"password,omitempty"`
}

type CreateRoleRequest struct {
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	PermissionCodes []string `json:"permission_codes"`
}
