package security

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrPasswordMismatch is the expected outcome of verifying a wrong
// password. Any other verification error means the stored hash is
// malformed or unsupported.
var ErrPasswordMismatch = errors.New("security: password mismatch")

// Argon2Params are embedded in every hash the hasher produces, so stored
// hashes stay verifiable after the defaults change.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher hashes and verifies passwords with Argon2id. Hashing is
// CPU-bound and deliberately slow, so the hasher carries its own
// semaphore: at most maxConcurrent hash or verify operations run at once
// and the rest wait, keeping request-handling goroutines responsive.
type PasswordHasher struct {
	params Argon2Params
	sem    chan struct{}
}

func NewPasswordHasher(params Argon2Params, maxConcurrent int) *PasswordHasher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &PasswordHasher{params: params, sem: make(chan struct{}, maxConcurrent)}
}

func (h *PasswordHasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *PasswordHasher) release() { <-h.sem }

// Hash returns a PHC-formatted string:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<key>
func (h *PasswordHasher) Hash(ctx context.Context, password []byte) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", fmt.Errorf("security: hash: %w", err)
	}
	defer h.release()

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("security: generate salt: %w", err)
	}

	key := argon2.IDKey(password, salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify recomputes the candidate against the parameters embedded in the
// stored hash and compares in constant time. A wrong password yields
// ErrPasswordMismatch; a hash this hasher cannot parse yields a different
// error so callers can tell corruption from a bad login.
func (h *PasswordHasher) Verify(ctx context.Context, encoded string, candidate []byte) error {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return err
	}

	if err := h.acquire(ctx); err != nil {
		return fmt.Errorf("security: verify: %w", err)
	}
	defer h.release()

	candidateKey := argon2.IDKey(candidate, salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(key)))
	if subtle.ConstantTimeCompare(key, candidateKey) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("security: malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("security: parse hash version: %w", err)
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("security: unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return params, nil, nil, fmt.Errorf("security: parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("security: decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("security: decode key: %w", err)
	}
	return params, salt, key, nil
}
