package session

import "errors"

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrNotPrivileged    = errors.New("administrator role required")
	ErrNoDraft          = errors.New("no draft is open")
)
