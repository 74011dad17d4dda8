package auth

import "context"

// Service defines the interface for authentication against the catalog backend.
type Service interface {
	// Login exchanges credentials for an access token and stores it.
	Login(ctx context.Context, login, password string) (string, error)
	// Logout forgets the stored token.
	Logout() error
	// Token returns the stored token, or "".
	Token() string
}
