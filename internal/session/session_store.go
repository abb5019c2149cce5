// Package session owns the two Redis keyspaces of the identity core: the
// opaque-token session mapping and the single-use activation codes. TTL
// enforcement is delegated to Redis itself, so an expired key and a key
// that never existed are indistinguishable on purpose.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Sirneij/cryptoflow/internal/security"
)

// ErrUnauthenticated covers a session token that is absent, expired or
// malformed. Store connectivity failures are wrapped separately: callers
// must not conflate "store unreachable" with "not logged in".
var ErrUnauthenticated = errors.New("session: unauthenticated")

const sessionKeyPrefix = "session:"

type Store struct {
	client redis.UniversalClient
}

func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func sessionKey(token string) string { return sessionKeyPrefix + token }

// Create generates an opaque token and maps it to the user for ttl. A
// user may hold any number of concurrent sessions.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, sessionKey(token), userID.String(), ttl).Err(); err != nil {
		return "", fmt.Errorf("session: store token: %w", err)
	}
	return token, nil
}

// Resolve maps a token back to its user id. Absence and expiry both fail
// with ErrUnauthenticated.
func (s *Store) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrUnauthenticated
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("session: resolve token: %w", err)
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("session: corrupt session value: %w", err)
	}
	return userID, nil
}

// Revoke deletes the token. Deleting an absent token is not an error.
func (s *Store) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("session: revoke token: %w", err)
	}
	return nil
}
