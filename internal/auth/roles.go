package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// RequireRole ensures the authenticated principal holds role. It must run
// after AuthMiddleware.Handle.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.HasRole(role) {
			return apperrors.NewAccessDenied()
		}
		return c.Next()
	}
}
