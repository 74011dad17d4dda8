package user

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/validation"
)

type fakeRepo struct {
	user    *User
	getErr  error
	updated *UpdateUserRequest
	roles   []CreateRoleRequest
	created []CreateUserRequest
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id string) (*User, error) {
	return f.user, f.getErr
}

func (f *fakeRepo) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	f.created = append(f.created, req)
	return &User{ID: "new", Login: req.Login, Roles: req.Roles}, nil
}

func (f *fakeRepo) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) error {
	f.updated = &req
	return nil
}

func (f *fakeRepo) ListRoles(ctx context.Context) ([]RoleWithPermissions, error) {
	return []RoleWithPermissions{}, nil
}

func (f *fakeRepo) ListPermissions(ctx context.Context) ([]Permission, error) {
	return []Permission{}, nil
}

func (f *fakeRepo) CreateRole(ctx context.Context, req CreateRoleRequest) error {
	f.roles = append(f.roles, req)
	return nil
}

func TestIsAdmin(t *testing.T) {
	var nobody *User
	if nobody.IsAdmin() {
		t.Fatal("nil user is admin")
	}
	u := &User{Roles: []Role{{Code: "reader"}}}
	if u.IsAdmin() {
		t.Fatal("reader is admin")
	}
	u.Roles = append(u.Roles, Role{Code: AdminRole})
	if !u.IsAdmin() {
		t.Fatal("admin role not recognised")
	}
}

func TestCurrentFallsBackOnForbiddenOrMissing(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound} {
		repo := &fakeRepo{getErr: &apiclient.Error{Status: status, Message: "no"}}
		u, err := NewService(repo, nil).Current(context.Background(), "7", "")
		if err != nil {
			t.Fatalf("status %d: %v", status, err)
		}
		if u.ID != "7" || u.Login != "user" || u.IsAdmin() || u.Roles == nil {
			t.Fatalf("status %d: user = %+v", status, u)
		}
	}
}

func TestCurrentPropagatesOtherFailures(t *testing.T) {
	repo := &fakeRepo{getErr: &apiclient.Error{Status: http.StatusInternalServerError, Message: "boom"}}
	if _, err := NewService(repo, nil).Current(context.Background(), "7", "me"); !apiclient.IsStatus(err, http.StatusInternalServerError) {
		t.Fatalf("want 500, got %v", err)
	}
}

func TestProfileRequestOmitsBlankPassword(t *testing.T) {
	d := EditProfile(&User{Login: "reader", FirstName: "Ann", Email: "a@x.test", IsActive: true})
	req := d.Request()
	if req.Password != nil || req.LastName != nil || *req.Email != "a@x.test" {
		t.Fatalf("request = %+v", req)
	}

	d.Password = "   "
	if d.Request().Password != nil {
		t.Fatal("whitespace password sent")
	}
	d.Password = "n3w"
	if p := d.Request().Password; p == nil || *p != "n3w" {
		t.Fatalf("password = %v", p)
	}
}

func TestSaveProfile(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)
	u := &User{ID: "2", Login: "reader", Roles: []Role{{Code: "reader"}}}

	d := EditProfile(u)
	d.Login = " "
	if _, err := svc.SaveProfile(context.Background(), u, d); !validation.IsFieldError(err) {
		t.Fatalf("want field error, got %v", err)
	}
	if repo.updated != nil {
		t.Fatal("invalid draft reached the backend")
	}

	d.Login = " reader2 "
	d.LastName = " Smith "
	got, err := svc.SaveProfile(context.Background(), u, d)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if got.Login != "reader2" || got.LastName != "Smith" || len(got.Roles) != 1 {
		t.Fatalf("updated = %+v", got)
	}
	if u.Login != "reader" {
		t.Fatal("original user mutated")
	}
}

func TestCreateUserAndRoleValidation(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{Login: "x", FirstName: "X"})
	var fe *validation.FieldError
	if !errors.As(err, &fe) || fe.Field != "password" {
		t.Fatalf("want password field error, got %v", err)
	}
	u, err := svc.CreateUser(ctx, CreateUserRequest{Login: "x", FirstName: "X", Password: "pw"})
	if err != nil || u.Roles == nil {
		t.Fatalf("create: %+v, %v", u, err)
	}

	if err := svc.CreateRole(ctx, CreateRoleRequest{Code: "cat"}); !validation.IsFieldError(err) {
		t.Fatalf("want field error, got %v", err)
	}
	if err := svc.CreateRole(ctx, CreateRoleRequest{Code: "cat", Name: "Cataloguer"}); err != nil {
		t.Fatalf("create role: %v", err)
	}
	if len(repo.roles) != 1 || repo.roles[0].PermissionCodes == nil {
		t.Fatalf("roles = %+v", repo.roles)
	}
}
