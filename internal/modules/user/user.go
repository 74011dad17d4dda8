package user

// User represents a catalog account as the backend returns it.
type User struct {
	ID         string `json:"id"`
	Login      string `json:"login"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	Email      string `json:"email,omitempty"`
	IsActive   bool   `json:"is_active"`
	Roles      []Role `json:"roles"`
}

// AdminRole is the role code that unlocks the privileged views.
const AdminRole = "admin"

// IsAdmin reports whether u holds the admin role.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Code == AdminRole {
			return true
		}
	}
	return false
}

type Role struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Permission struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// RoleWithPermissions is a role as listed for administrators.
type RoleWithPermissions struct {
	ID          int          `json:"id"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}
