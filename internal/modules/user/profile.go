package user

import (
	"strings"

	"github.com/georgemunganga/librarian/internal/validation"
)

// ProfileDraft is the editable copy of the signed-in user.
type ProfileDraft struct {
	Login      string `json:"login"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
	Email      string `json:"email"`
	Password   string `json:"password,omitempty"`
	IsActive   bool   `json:"is_active"`
}

// EditProfile opens a draft from u with an empty password.
func EditProfile(u *User) ProfileDraft {
	return ProfileDraft{
		Login:      u.Login,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		MiddleName: u.MiddleName,
		Email:      u.Email,
		IsActive:   u.IsActive,
	}
}

func (d ProfileDraft) Validate() error {
	return validation.Required("login", d.Login)
}

// Request builds the update payload. A blank password leaves it unchanged.
func (d ProfileDraft) Request() UpdateUserRequest {
	req := UpdateUserRequest{
		Login:      strings.TrimSpace(d.Login),
		FirstName:  strings.TrimSpace(d.FirstName),
		LastName:   validation.OptionalString(d.LastName),
		MiddleName: validation.OptionalString(d.MiddleName),
		Email:      validation.OptionalString(d.Email),
		IsActive:   d.IsActive,
	}
	if strings.TrimSpace(d.Password) != "" {
		password := d.Password
		req.Password = &password
	}
	return req
}
