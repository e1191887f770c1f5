package domain

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Credential is the stored form of a password: an opaque hash plus the
// per-credential random salt it was derived with.
type Credential struct {
	Hash string
	Salt string
}

// String keeps credentials out of formatted output.
func (c Credential) String() string {
	return "Credential{redacted}"
}

// GoString keeps credentials out of %#v output.
func (c Credential) GoString() string {
	return c.String()
}

// User is the domain model for an account holder.
type User struct {
	ID         int64
	Username   string
	Credential Credential
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MarshalLogObject lets zap log a user without its credential.
func (u *User) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("id", u.ID)
	enc.AddString("username", u.Username)
	return nil
}

// PublicUser is the view of a user that may leave the service.
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public drops the credential.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}
