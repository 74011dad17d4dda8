package user

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/validation"
)

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, logger: logger}
}

func (s *service) Current(ctx context.Context, id, login string) (*User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if apiclient.IsStatus(err, http.StatusForbidden) || apiclient.IsNotFound(err) {
		s.logger.Info("profile not readable, using minimal user", "id", id, "error", err)
		if login == "" {
			login = "user"
		}
		return &User{ID: id, Login: login, IsActive: true, Roles: []Role{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return u, nil
}

func (s *service) SaveProfile(ctx context.Context, u *User, d ProfileDraft) (*User, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	req := d.Request()
	if err := s.repo.UpdateUser(ctx, u.ID, req); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	updated := *u
	updated.Login = req.Login
	updated.FirstName = req.FirstName
	updated.LastName = strings.TrimSpace(d.LastName)
	updated.MiddleName = strings.TrimSpace(d.MiddleName)
	updated.Email = strings.TrimSpace(d.Email)
	updated.IsActive = req.IsActive
	return &updated, nil
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := validation.Required("login", req.Login); err != nil {
		return nil, err
	}
	if err := validation.Required("first_name", req.FirstName); err != nil {
		return nil, err
	}
	if err := validation.Required("password", req.Password); err != nil {
		return nil, err
	}
	if req.Roles == nil {
		req.Roles = []Role{}
	}
	return s.repo.CreateUser(ctx, req)
}

func (s *service) Roles(ctx context.Context) ([]RoleWithPermissions, error) {
	return s.repo.ListRoles(ctx)
}

func (s *service) Permissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *service) CreateRole(ctx context.Context, req CreateRoleRequest) error {
	if err := validation.Required("code", req.Code); err != nil {
		return err
	}
	if err := validation.Required("name", req.Name); err != nil {
		return err
	}
	if req.PermissionCodes == nil {
		req.PermissionCodes = []string{}
	}
	return s.repo.CreateRole(ctx, req)
}
