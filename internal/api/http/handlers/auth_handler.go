package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/observability"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// CookieSettings controls the session cookie.
type CookieSettings struct {
	Name   string
	Secure bool
}

// AuthHandler exposes login and logout.
type AuthHandler struct {
	gate    *auth.Gate
	cookie  CookieSettings
	metrics *observability.Metrics
}

// NewAuthHandler constructs handler.
func NewAuthHandler(gate *auth.Gate, cookie CookieSettings, metrics *observability.Metrics) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "jwt"
	}
	return &AuthHandler{gate: gate, cookie: cookie, metrics: metrics}
}

// Login handles POST /api/v1/login. A failed login is still a 200 with
// status false; the body never says why.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result := h.gate.Login(c.UserContext(), req.Username, req.Password)
	h.metrics.RecordLogin(result.Authenticated)

	if result.Authenticated {
		c.Cookie(&fiber.Cookie{
			Name:     h.cookie.Name,
			Value:    result.Token,
			Path:     "/",
			Expires:  result.ExpiresAt,
			HTTPOnly: true,
			Secure:   h.cookie.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	return c.JSON(dto.LoginResponse{Status: result.Authenticated, Token: result.Token})
}

// Logout handles POST /api/v1/logout by expiring the session cookie. The
// token itself stays valid until it expires.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"status": true})
}
