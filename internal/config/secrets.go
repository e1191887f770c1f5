package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// MinSigningKeySize is the shortest accepted token signing key, in bytes.
	MinSigningKeySize = 16
	// PepperSize is the exact pepper length, in bytes.
	PepperSize = 32
)

var (
	ErrMissingSigningKey = errors.New("signing key not provisioned")
	ErrShortSigningKey   = fmt.Errorf("signing key must be at least %d bytes", MinSigningKeySize)
	ErrMissingLocalSalt  = errors.New("LOCAL_SALT must be set")
	ErrMissingPepper     = errors.New("PASSWORD_PEPPER must be set")
	ErrInvalidPepper     = fmt.Errorf("PASSWORD_PEPPER must be %d hex-encoded bytes", PepperSize)
)

// Secrets are the process-wide credentials loaded once at startup and shared
// read-only afterwards.
type Secrets struct {
	SigningKey []byte
	LocalSalt  []byte
	Pepper     []byte
}

// LoadSecrets resolves every secret referenced by cfg. Any error means the
// process must not serve traffic.
func LoadSecrets(cfg AuthConfig) (Secrets, error) {
	if cfg.SigningKeyFile == "" {
		return Secrets{}, ErrMissingSigningKey
	}
	key, err := os.ReadFile(cfg.SigningKeyFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Secrets{}, fmt.Errorf("%w: %s", ErrMissingSigningKey, cfg.SigningKeyFile)
		}
		return Secrets{}, fmt.Errorf("read signing key: %w", err)
	}
	if len(key) < MinSigningKeySize {
		return Secrets{}, ErrShortSigningKey
	}

	localSalt, pepper, err := LoadPasswordSecrets(cfg)
	if err != nil {
		return Secrets{}, err
	}

	return Secrets{
		SigningKey: key,
		LocalSalt:  localSalt,
		Pepper:     pepper,
	}, nil
}

// LoadPasswordSecrets resolves only what password hashing needs, for tools
// that never sign tokens.
func LoadPasswordSecrets(cfg AuthConfig) (localSalt, pepper []byte, err error) {
	if cfg.LocalSalt == "" {
		return nil, nil, ErrMissingLocalSalt
	}

	pepperHex := strings.TrimSpace(cfg.PepperHex)
	if pepperHex == "" {
		return nil, nil, ErrMissingPepper
	}
	pepper, err = hex.DecodeString(pepperHex)
	if err != nil || len(pepper) != PepperSize {
		return nil, nil, ErrInvalidPepper
	}
	return []byte(cfg.LocalSalt), pepper, nil
}
