package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/user-service/internal/config"
)

// SessionTTL is the fixed lifetime of every issued session token.
const SessionTTL = 7 * 24 * time.Hour

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims describes the session token payload.
type Claims struct {
	User  string   `json:"user"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 session tokens.
type TokenManager struct {
	key []byte
	now func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(key []byte, opts ...TokenOption) (*TokenManager, error) {
	if len(key) < config.MinSigningKeySize {
		return nil, config.ErrShortSigningKey
	}
	tm := &TokenManager{key: append([]byte(nil), key...), now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// Issue signs a token for subject carrying roles. It returns the token and its expiry.
func (tm *TokenManager) Issue(subject string, roles []string) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(SessionTTL)
	claims := &Claims{
		User:  subject,
		Roles: append([]string{}, roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// Parse validates a token and returns its claims. The error is one of
// ErrTokenMalformed, ErrTokenSignature or ErrTokenExpired; it is meant for
// internal diagnostics only.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tm.now),
	)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return tm.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// Verify reports whether the token is authentic and unexpired.
func (tm *TokenManager) Verify(tokenStr string) bool {
	_, err := tm.Parse(tokenStr)
	return err == nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
