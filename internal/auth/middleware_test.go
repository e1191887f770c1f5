package auth

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/observability"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

func newGuardedApp(t *testing.T, gate *Gate, metrics *observability.Metrics) *fiber.App {
	t.Helper()
	mw := NewAuthMiddleware(gate, "jwt", metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			if errors.Is(err, apperrors.ErrAccessDenied) {
				c.Set("X-Denied", "1")
			}
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/users", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(principal.Username)
	})
	app.Get("/root", mw.Handle, RequireRole("root"), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	f := newGateFixture(t, nil)
	app := newGuardedApp(t, f.gate, nil)
	token, _, err := f.tokens.Issue("alice", domain.DefaultRoles())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	resp, body := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body)

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, body = doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body)
}

func TestMiddlewareDeniesWithNotFoundShape(t *testing.T) {
	f := newGateFixture(t, nil)
	metrics := observability.NewMetrics()
	app := newGuardedApp(t, f.gate, metrics)

	absent := httptest.NewRequest(http.MethodGet, "/users", nil)

	badCookie := httptest.NewRequest(http.MethodGet, "/users", nil)
	badCookie.AddCookie(&http.Cookie{Name: "jwt", Value: "garbage"})

	badScheme := httptest.NewRequest(http.MethodGet, "/users", nil)
	badScheme.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	for _, req := range []*http.Request{absent, badCookie, badScheme} {
		resp, body := doRequest(t, app, req)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", body)
		assert.Equal(t, "1", resp.Header.Get("X-Denied"))
	}
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "user_service_access_denied_total 3")
}

func TestRequireRoleDeniesMissingRole(t *testing.T) {
	f := newGateFixture(t, nil)
	app := newGuardedApp(t, f.gate, nil)
	token, _, err := f.tokens.Issue("alice", domain.DefaultRoles())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/root", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	resp, _ := doRequest(t, app, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Denied"))
}
