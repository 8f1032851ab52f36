package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pos-inventory/internal/model"
	"pos-inventory/pkg/apperror"
	"pos-inventory/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{users: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) copyOf(u *model.User) *model.User {
	c := *u
	return &c
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return f.copyOf(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return f.copyOf(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindAll(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = uuid.New()
	f.users[user.ID] = f.copyOf(user)
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := f.copyOf(user)
	if updated.Role == nil {
		updated.Role = existing.Role
	}
	f.users[user.ID] = updated
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].Password = hashed
	return nil
}

func (f *fakeUsers) UpdateTokenVersion(_ context.Context, id uuid.UUID, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].TokenVersion = version
	return nil
}

func (f *fakeUsers) UpdateLastSeen(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastSeenAt = &at
	return nil
}

type fakeRoles map[string]*model.Role

func (r fakeRoles) FindAll(context.Context) ([]model.Role, error) {
	var out []model.Role
	for _, role := range r {
		out = append(out, *role)
	}
	return out, nil
}

func (r fakeRoles) FindByCode(_ context.Context, code string) (*model.Role, error) {
	if role, ok := r[code]; ok {
		return role, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeRoles) SeedDefaults(context.Context) error { return nil }

func testRoles() fakeRoles {
	return fakeRoles{
		model.RoleAdmin:   {ID: 1, Code: model.RoleAdmin, Privileges: []model.Privilege{{Code: "user:create"}}},
		model.RoleCashier: {ID: 2, Code: model.RoleCashier, Privileges: []model.Privilege{{Code: "sale:create"}}},
	}
}

func newUser(t *testing.T, email, password string, role *model.Role) *model.User {
	t.Helper()
	u := &model.User{Email: email, FullName: "Test User", RoleID: &role.ID, Role: role, IsActive: true}
	u.ID = uuid.New()
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return u
}

func newAuth(users *fakeUsers, now time.Time) (*authService, *recordingNotifier) {
	n := &recordingNotifier{}
	svc := NewAuthService(users, jwt.NewManager("test-secret", time.Hour), 5*time.Minute, n).(*authService)
	svc.now = fixedClock(now)
	return svc, n
}

func TestLoginIssuesTokenForCurrentSession(t *testing.T) {
	roles := testRoles()
	user := newUser(t, "kasir@example.com", "rahasia", roles[model.RoleCashier])
	users := newFakeUsers(user)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newAuth(users, now)
	ctx := context.Background()

	first, err := svc.Login(ctx, "kasir@example.com", "rahasia")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	claims, err := svc.Authenticate(ctx, first.Token)
	if err != nil {
		t.Fatalf("expected token to authenticate, got %v", err)
	}
	if claims.RoleCode != model.RoleCashier || len(claims.Privileges) != 1 || claims.Privileges[0] != "sale:create" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	// a second login replaces the first session
	if _, err := svc.Login(ctx, "kasir@example.com", "rahasia"); err != nil {
		t.Fatalf("expected second login to succeed, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, first.Token); !errors.Is(err, ErrSessionReplaced) {
		t.Fatalf("expected ErrSessionReplaced, got %v", err)
	}
}

func TestLoginRejectsBadCredentialsAndInactiveUsers(t *testing.T) {
	roles := testRoles()
	active := newUser(t, "a@example.com", "rahasia", roles[model.RoleCashier])
	inactive := newUser(t, "b@example.com", "rahasia", roles[model.RoleCashier])
	inactive.IsActive = false
	svc, _ := newAuth(newFakeUsers(active, inactive), time.Now())
	ctx := context.Background()

	if _, err := svc.Login(ctx, "a@example.com", "salah"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "rahasia"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := svc.Login(ctx, "b@example.com", "rahasia"); !errors.Is(err, ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestValidateTokenEnforcesIdleTimeout(t *testing.T) {
	roles := testRoles()
	user := newUser(t, "kasir@example.com", "rahasia", roles[model.RoleCashier])
	users := newFakeUsers(user)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, notifier := newAuth(users, now)
	ctx := context.Background()

	login, err := svc.Login(ctx, "kasir@example.com", "rahasia")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.now = fixedClock(now.Add(4 * time.Minute))
	if _, err := svc.ValidateToken(ctx, login.Token); err != nil {
		t.Fatalf("expected session to be alive, got %v", err)
	}
	if err := svc.Heartbeat(ctx, user.ID); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected heartbeat to publish a status event")
	}

	svc.now = fixedClock(now.Add(8 * time.Minute))
	if _, err := svc.ValidateToken(ctx, login.Token); err != nil {
		t.Fatalf("expected heartbeat to extend the session, got %v", err)
	}

	svc.now = fixedClock(now.Add(20 * time.Minute))
	if _, err := svc.ValidateToken(ctx, login.Token); !errors.Is(err, ErrSessionTimeout) {
		t.Fatalf("expected ErrSessionTimeout, got %v", err)
	}
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	roles := testRoles()
	user := newUser(t, "kasir@example.com", "rahasia", roles[model.RoleCashier])
	svc, _ := newAuth(newFakeUsers(user), time.Now())
	ctx := context.Background()

	login, err := svc.Login(ctx, "kasir@example.com", "rahasia")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	err = svc.ResetPassword(ctx, ResetPasswordRequest{Email: "kasir@example.com", OldPassword: "salah", NewPassword: "baru123"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Email: "kasir@example.com", OldPassword: "rahasia", NewPassword: "baru123"}); err != nil {
		t.Fatalf("expected reset to succeed, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, login.Token); apperror.KindOf(err) != apperror.KindUnauthorized {
		t.Fatalf("expected old token to be rejected, got %v", err)
	}
	if _, err := svc.Login(ctx, "kasir@example.com", "baru123"); err != nil {
		t.Fatalf("expected login with new password, got %v", err)
	}
}

func TestUserManagementIsAdminOnly(t *testing.T) {
	roles := testRoles()
	svc := NewUserService(newFakeUsers(), roles)
	ctx := context.Background()
	req := CreateUserRequest{Email: "baru@example.com", Password: "rahasia", FullName: "Kasir Baru", Role: model.RoleCashier}

	if _, err := svc.CreateUser(ctx, cashier, req); apperror.KindOf(err) != apperror.KindForbidden {
		t.Fatalf("expected forbidden for cashier, got %v", err)
	}

	created, err := svc.CreateUser(ctx, admin, req)
	if err != nil {
		t.Fatalf("expected admin to create user, got %v", err)
	}
	if created.RoleCode != model.RoleCashier {
		t.Fatalf("expected CASHIER role, got %s", created.RoleCode)
	}

	if _, err := svc.CreateUser(ctx, admin, req); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	bad := req
	bad.Email = "other@example.com"
	bad.Role = "OWNER"
	if _, err := svc.CreateUser(ctx, admin, bad); apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}

	if err := svc.DeleteUser(ctx, admin, admin.UserID); apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected admins not to delete themselves, got %v", err)
	}
	if err := svc.DeleteUser(ctx, admin, created.ID); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
}
