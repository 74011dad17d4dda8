// Package session owns every per-login cache and wires the modules around
// one backend client.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/modules/asset"
	"github.com/georgemunganga/librarian/internal/modules/auth"
	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
	"github.com/georgemunganga/librarian/internal/modules/printqueue"
	"github.com/georgemunganga/librarian/internal/modules/reference"
	"github.com/georgemunganga/librarian/internal/modules/user"
)

// Options tunes the book listing.
type Options struct {
	PageSize int
	MaxPages int
}

// Session is one signed-in user's view of the catalog. Logout drops every
// cache it owns.
type Session struct {
	logger *slog.Logger
	tokens auth.TokenStore

	Client     *apiclient.Client
	Auth       auth.Service
	Users      user.Service
	Tree       *location.Tree
	Selector   *location.Selector
	Locations  location.Service
	References *reference.Store
	Reference  reference.Service
	Books      book.Service
	Search     *book.Controller
	Print      *printqueue.Queue
	Workspace  *Workspace

	mu   sync.RWMutex
	user *user.User
}

// New wires a Session. client must read its bearer token from tokens.
func New(client *apiclient.Client, tokens auth.TokenStore, opts Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{logger: logger, tokens: tokens, Client: client}

	submitter := asset.NewSubmitter(asset.NewRemoteUploader(client), logger)

	s.Auth = auth.NewService(client, tokens)
	s.Users = user.NewService(user.NewRemoteRepository(client), logger)

	locRepo := location.NewRemoteRepository(client)
	s.Tree = location.NewTree(locRepo, logger)
	s.Selector = location.NewSelector(s.Tree)
	s.Locations = location.NewService(locRepo, s.Tree)

	s.References = reference.NewStore(reference.NewRemoteRepository(client), logger)
	s.Reference = reference.NewService(reference.NewRemoteRepository(client), s.References, submitter)

	s.Books = book.NewService(book.NewRemoteRepository(client), s.References, submitter, opts.PageSize, opts.MaxPages)
	s.Search = book.NewController(s.Books, s.IsPrivileged, logger)
	s.Print = printqueue.New(printqueue.NewRemotePrinter(client), logger)

	s.Workspace = newWorkspace(s)
	return s
}

// Login signs in and starts the session.
func (s *Session) Login(ctx context.Context, login, password string) (*user.User, error) {
	if _, err := s.Auth.Login(ctx, login, password); err != nil {
		return nil, err
	}
	s.logger.Info("signed in", "login", login)
	return s.start(ctx, login)
}

// Start resumes a session from a stored token. A token that cannot be
// decoded is discarded.
func (s *Session) Start(ctx context.Context) (*user.User, error) {
	return s.start(ctx, "")
}

func (s *Session) start(ctx context.Context, login string) (*user.User, error) {
	token := s.tokens.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	id, err := auth.Subject(token)
	if err != nil {
		s.logger.Warn("discarding stored token", "error", err)
		_ = s.tokens.Clear()
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	u, err := s.Users.Current(ctx, id, login)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	if err := s.References.LoadAll(ctx); err != nil {
		return u, fmt.Errorf("load reference data: %w", err)
	}
	return u, nil
}

// Logout forgets the token and resets every cache, the print queue and
// all open drafts.
func (s *Session) Logout() error {
	err := s.Auth.Logout()
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.Tree.Reset()
	s.Selector.Clear()
	s.References.Reset()
	s.Search.Reset()
	s.Print.Clear()
	s.Workspace.Reset()
	s.logger.Info("signed out")
	return err
}

// User returns the signed-in user, or nil.
func (s *Session) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsPrivileged reports whether the signed-in user is an administrator.
func (s *Session) IsPrivileged() bool {
	return s.User().IsAdmin()
}

// SaveProfile updates the signed-in user's own record.
func (s *Session) SaveProfile(ctx context.Context, d user.ProfileDraft) (*user.User, error) {
	current := s.User()
	if current == nil {
		return nil, ErrNotAuthenticated
	}
	updated, err := s.Users.SaveProfile(ctx, current, d)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = updated
	s.mu.Unlock()
	return updated, nil
}
