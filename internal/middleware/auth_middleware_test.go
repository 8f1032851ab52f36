package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"pos-inventory/pkg/apperror"
	"pos-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type stubAuth struct {
	claims *jwt.Claims
	err    error
}

func (s stubAuth) Authenticate(context.Context, string) (*jwt.Claims, error) {
	return s.claims, s.err
}

func newApp(auth Authenticator, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{RequireAuth(auth)}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_role").(string))
	})
	app.Get("/", handlers...)
	return app
}

func get(t *testing.T, app *fiber.App, header string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp.StatusCode
}

func cashierClaims() *jwt.Claims {
	return &jwt.Claims{
		UserID:     uuid.New(),
		Name:       "Sari",
		RoleCode:   "CASHIER",
		Privileges: []string{"sale:create", "product:view"},
	}
}

func TestRequireAuthRejectsMissingAndMalformedHeader(t *testing.T) {
	app := newApp(stubAuth{claims: cashierClaims()})

	if status := get(t, app, ""); status != 401 {
		t.Fatalf("expected 401 without header, got %d", status)
	}
	if status := get(t, app, "Token abc"); status != 401 {
		t.Fatalf("expected 401 for non-bearer header, got %d", status)
	}
}

func TestRequireAuthUsesErrorKind(t *testing.T) {
	app := newApp(stubAuth{err: apperror.Unauthorized("session expired")})
	if status := get(t, app, "Bearer abc"); status != 401 {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestRequireAuthPassesClaimsDownstream(t *testing.T) {
	app := newApp(stubAuth{claims: cashierClaims()})
	if status := get(t, app, "Bearer abc"); status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
}

func TestPrivilegeAndRoleGuards(t *testing.T) {
	auth := stubAuth{claims: cashierClaims()}

	cases := []struct {
		name  string
		guard fiber.Handler
		want  int
	}{
		{"held privilege", RequirePrivilege("sale:create"), 200},
		{"missing privilege", RequirePrivilege("stock:adjust"), 403},
		{"any privilege", RequireAnyPrivilege("report:view", "product:view"), 200},
		{"none of privileges", RequireAnyPrivilege("report:view", "user:create"), 403},
		{"held role", RequireRole("ADMIN", "CASHIER"), 200},
		{"missing role", RequireRole("ADMIN"), 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(auth, tc.guard)
			if status := get(t, app, "Bearer abc"); status != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, status)
			}
		})
	}
}
