package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"

	"golang.org/x/crypto/argon2"

	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
)

const (
	// SaltLength is the number of alphanumeric characters in a per-credential salt.
	SaltLength = 32

	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	ErrMissingLocalSalt = errors.New("local salt not configured")
	ErrMissingPepper    = errors.New("pepper not configured")
)

// Argon2Params are the cost parameters shared by every derivation of a hasher.
// Changing them makes previously stored hashes unverifiable.
type Argon2Params struct {
	Passes    uint32
	Lanes     uint8
	MemoryKiB uint32
	KeyLength uint32
}

// MaxArgon2MemoryKiB caps the memory cost at 1 GiB per derivation.
const MaxArgon2MemoryKiB = 1 << 20

// DefaultArgon2Params mirrors the costs the service has always used.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{Passes: 3, Lanes: 1, MemoryKiB: 4096, KeyLength: 32}
}

// ParamsFromConfig reads the cost parameters from configuration. Values that
// are non-positive or do not fit the Argon2 parameter types are rejected so a
// bad setting stops the process at startup.
func ParamsFromConfig(cfg config.AuthConfig) (Argon2Params, error) {
	if cfg.Argon2Passes <= 0 || int64(cfg.Argon2Passes) > math.MaxUint32 {
		return Argon2Params{}, fmt.Errorf("AUTH_ARGON2_PASSES out of range: %d", cfg.Argon2Passes)
	}
	if cfg.Argon2Lanes <= 0 || cfg.Argon2Lanes > math.MaxUint8 {
		return Argon2Params{}, fmt.Errorf("AUTH_ARGON2_LANES out of range: %d", cfg.Argon2Lanes)
	}
	if cfg.Argon2MemoryKiB <= 0 || int64(cfg.Argon2MemoryKiB) > MaxArgon2MemoryKiB {
		return Argon2Params{}, fmt.Errorf("AUTH_ARGON2_MEMORY_KIB out of range: %d", cfg.Argon2MemoryKiB)
	}
	params := Argon2Params{
		Passes:    uint32(cfg.Argon2Passes),
		Lanes:     uint8(cfg.Argon2Lanes),
		MemoryKiB: uint32(cfg.Argon2MemoryKiB),
		KeyLength: DefaultArgon2Params().KeyLength,
	}
	if err := params.validate(); err != nil {
		return Argon2Params{}, err
	}
	return params, nil
}

func (p Argon2Params) validate() error {
	if p.Passes < 1 {
		return errors.New("argon2 passes must be >= 1")
	}
	if p.Lanes < 1 {
		return errors.New("argon2 lanes must be >= 1")
	}
	if p.MemoryKiB < 8*uint32(p.Lanes) {
		return errors.New("argon2 memory must be >= 8 KiB per lane")
	}
	if p.MemoryKiB > MaxArgon2MemoryKiB {
		return fmt.Errorf("argon2 memory must be <= %d KiB", MaxArgon2MemoryKiB)
	}
	if p.KeyLength < 16 {
		return errors.New("argon2 key length must be >= 16")
	}
	return nil
}

// Hasher derives and verifies password credentials. The hash is computed in
// two stages: the random salt is first hashed under the local salt, and the
// peppered password is then hashed under that intermediate value.
type Hasher struct {
	localSalt []byte
	pepper    []byte
	params    Argon2Params
	random    io.Reader
}

// NewHasher builds a hasher bound to the process secrets.
func NewHasher(localSalt, pepper []byte, params Argon2Params) (*Hasher, error) {
	if len(localSalt) == 0 {
		return nil, ErrMissingLocalSalt
	}
	if len(pepper) == 0 {
		return nil, ErrMissingPepper
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Hasher{
		localSalt: append([]byte(nil), localSalt...),
		pepper:    append([]byte(nil), pepper...),
		params:    params,
		random:    rand.Reader,
	}, nil
}

// Derive creates a fresh credential for plaintext. Empty passwords are
// accepted; password policy is the caller's concern.
func (h *Hasher) Derive(plaintext string) (domain.Credential, error) {
	salt, err := randomSalt(h.random)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("salt: %w", err)
	}
	return domain.Credential{Hash: h.derive(plaintext, salt), Salt: salt}, nil
}

// Verify reports whether plaintext matches the stored credential.
func (h *Hasher) Verify(plaintext string, stored domain.Credential) bool {
	if stored.Salt == "" {
		return false
	}
	computed := h.derive(plaintext, stored.Salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored.Hash)) == 1
}

func (h *Hasher) derive(plaintext, salt string) string {
	intermediate := argon2.IDKey([]byte(salt), h.localSalt, h.params.Passes, h.params.MemoryKiB, h.params.Lanes, h.params.KeyLength)

	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))
	peppered := mac.Sum(nil)

	key := argon2.IDKey(peppered, intermediate, h.params.Passes, h.params.MemoryKiB, h.params.Lanes, h.params.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Passes,
		h.params.Lanes,
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func randomSalt(r io.Reader) (string, error) {
	limit := big.NewInt(int64(len(saltAlphabet)))
	buf := make([]byte, SaltLength)
	for i := range buf {
		n, err := rand.Int(r, limit)
		if err != nil {
			return "", err
		}
		buf[i] = saltAlphabet[n.Int64()]
	}
	return string(buf), nil
}
