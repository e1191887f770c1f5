package auth

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
)

// timingSalt stands in for a stored salt when the username is unknown so that
// both paths pay for a full derivation.
const timingSalt = "00000000000000000000000000000000"

// CredentialStore is the part of the user store the gate depends on.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// LoginResult is the outcome of a login attempt. Token is empty unless
// Authenticated is true.
type LoginResult struct {
	Authenticated bool
	Token         string
	ExpiresAt     time.Time
}

// Principal is the identity asserted by a verified session token.
type Principal struct {
	Username string
	Roles    []string
}

// HasRole reports whether the session grants role.
func (p *Principal) HasRole(role string) bool {
	return p != nil && slices.Contains(p.Roles, role)
}

// Gate turns login attempts and presented tokens into allow/deny decisions.
type Gate struct {
	store      CredentialStore
	hasher     *Hasher
	tokens     *TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewGate wires the gate. dispatcher may be nil.
func NewGate(store CredentialStore, hasher *Hasher, tokens *TokenManager, dispatcher events.Dispatcher, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{store: store, hasher: hasher, tokens: tokens, dispatcher: dispatcher, logger: logger}
}

// Login checks username and password and, on success, issues a session token
// carrying the admin role. Unknown users, wrong passwords and storage failures
// all produce the same failed result.
func (g *Gate) Login(ctx context.Context, username, password string) LoginResult {
	user, err := g.store.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			g.logger.Error("credential lookup failed", zap.Error(err))
		}
		g.hasher.Verify(password, domain.Credential{Salt: timingSalt})
		g.publish(ctx, events.EventLoginFailed, 0, username)
		return LoginResult{}
	}

	if !g.hasher.Verify(password, user.Credential) {
		g.publish(ctx, events.EventLoginFailed, user.ID, username)
		return LoginResult{}
	}

	token, expiresAt, err := g.tokens.Issue(user.Username, domain.DefaultRoles())
	if err != nil {
		g.logger.Error("issue session token", zap.Error(err))
		return LoginResult{}
	}

	g.publish(ctx, events.EventLoginSucceeded, user.ID, username)
	return LoginResult{Authenticated: true, Token: token, ExpiresAt: expiresAt}
}

// Authorize reports whether token is a valid, unexpired session token. An
// empty token is denied like any invalid one.
func (g *Gate) Authorize(token string) bool {
	_, ok := g.Principal(token)
	return ok
}

// Principal verifies token and returns the identity it asserts.
func (g *Gate) Principal(token string) (*Principal, bool) {
	if token == "" {
		return nil, false
	}
	claims, err := g.tokens.Parse(token)
	if err != nil {
		g.logger.Debug("session token rejected", zap.String("reason", err.Error()))
		return nil, false
	}
	return &Principal{Username: claims.User, Roles: claims.Roles}, true
}

func (g *Gate) publish(ctx context.Context, eventType events.EventType, userID int64, username string) {
	if g.dispatcher == nil {
		return
	}
	if err := g.dispatcher.Publish(ctx, events.Event{Type: eventType, UserID: userID, Username: username}); err != nil {
		g.logger.Warn("publish login event", zap.String("type", string(eventType)), zap.Error(err))
	}
}
