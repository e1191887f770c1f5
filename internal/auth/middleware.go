package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/observability"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware guards routes with the session token carried in the session
// cookie or, failing that, an Authorization bearer header.
type AuthMiddleware struct {
	gate       *Gate
	cookieName string
	metrics    *observability.Metrics
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(gate *Gate, cookieName string, metrics *observability.Metrics) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "jwt"
	}
	return &AuthMiddleware{gate: gate, cookieName: cookieName, metrics: metrics}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, ok := m.gate.Principal(m.presentedToken(c))
	if !ok {
		m.metrics.RecordAccessDenied()
		return apperrors.NewAccessDenied()
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *AuthMiddleware) presentedToken(c *fiber.Ctx) string {
	if token := c.Cookies(m.cookieName); token != "" {
		return token
	}

	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
