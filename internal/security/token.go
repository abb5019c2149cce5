package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
)

const sessionTokenBytes = 32

// NewSessionToken returns an opaque random token with no embedded
// structure; it is only ever used as a lookup key.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("security: generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewActivationCode returns a uniformly random 6-digit code in
// [100000, 999999], the shape users receive by email.
func NewActivationCode() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("security: generate activation code: %w", err)
	}
	n := binary.BigEndian.Uint64(buf[:])%900000 + 100000
	return strconv.FormatUint(n, 10), nil
}

// HashActivationCode is the one-way function applied before an activation
// code is stored; only the hash ever reaches the key/value store.
func HashActivationCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
