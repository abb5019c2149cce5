package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Sirneij/cryptoflow/internal/security"
)

// ErrCodeInvalidOrExpired covers every caller-visible activation failure:
// no pending code, an expired code and a wrong code all look the same.
var ErrCodeInvalidOrExpired = errors.New("session: activation code invalid or expired")

const activationKeyPrefix = "activation:"

// compareAndDeleteScript deletes the key only while it still holds the
// expected hash, so exactly one of any number of concurrent consumers
// wins.
var compareAndDeleteScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
  return 0
end
if stored ~= ARGV[1] then
  return -1
end
redis.call("DEL", KEYS[1])
return 1
`)

// ActivationStore keeps hashed one-time activation codes keyed by user
// id. It shares the Redis client with the session Store but uses its own
// key prefix.
type ActivationStore struct {
	client redis.UniversalClient
}

func NewActivationStore(client redis.UniversalClient) *ActivationStore {
	return &ActivationStore{client: client}
}

func activationKey(userID uuid.UUID) string { return activationKeyPrefix + userID.String() }

// Issue generates a 6-digit code, stores its hash for ttl and returns the
// plaintext for out-of-band delivery. Re-issuing overwrites any pending
// code for the user, implicitly invalidating it.
func (s *ActivationStore) Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	code, err := security.NewActivationCode()
	if err != nil {
		return "", err
	}
	hashed := security.HashActivationCode(code)
	if err := s.client.Set(ctx, activationKey(userID), hashed, ttl).Err(); err != nil {
		return "", fmt.Errorf("session: store activation code: %w", err)
	}
	return code, nil
}

// Consume checks the candidate against the stored hash and deletes the
// key on a match. The comparison is constant-time; the delete is an
// atomic compare-and-delete so the code is single-use even under
// concurrent submissions. On mismatch the stored hash is left intact.
func (s *ActivationStore) Consume(ctx context.Context, userID uuid.UUID, candidate string) error {
	stored, err := s.client.Get(ctx, activationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCodeInvalidOrExpired
	}
	if err != nil {
		return fmt.Errorf("session: load activation code: %w", err)
	}

	hashed := security.HashActivationCode(candidate)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashed)) != 1 {
		return ErrCodeInvalidOrExpired
	}

	res, err := compareAndDeleteScript.Run(ctx, s.client, []string{activationKey(userID)}, hashed).Int()
	if err != nil {
		return fmt.Errorf("session: consume activation code: %w", err)
	}
	if res != 1 {
		// Lost the race to a concurrent consumer or to expiry.
		return ErrCodeInvalidOrExpired
	}
	return nil
}
