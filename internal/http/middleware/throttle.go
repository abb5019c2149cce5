package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sirneij/cryptoflow/internal/http/response"
)

// throttleScript counts hits in a fixed window. The window starts with
// the first hit and expires on its own, so there is nothing to clean up.
var throttleScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// Throttle puts a per-client-IP ceiling on the credential endpoints so
// passwords and activation codes cannot be brute-forced at line rate.
type Throttle struct {
	client redis.UniversalClient
	limit  int64
	window time.Duration
	logger *slog.Logger
}

func NewThrottle(client redis.UniversalClient, limit int, window time.Duration, logger *slog.Logger) *Throttle {
	return &Throttle{client: client, limit: int64(limit), window: window, logger: logger}
}

// Limit wraps a handler with the throttle. Counters are scoped per
// endpoint so a burst of logins does not lock out registration. If the
// counter store is unreachable the request is allowed through: the
// endpoints behind the throttle need that same store to do anything, so
// refusing here would only mask the real failure.
func (t *Throttle) Limit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "throttle:" + scope + ":" + clientIP(r)
			res, err := throttleScript.Run(r.Context(), t.client, []string{key}, t.window.Milliseconds()).Int64Slice()
			if err != nil || len(res) != 2 {
				t.logger.WarnContext(r.Context(), "throttle counter unavailable", "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if res[0] > t.limit {
				retryAfter := time.Duration(res[1]) * time.Millisecond
				if retryAfter <= 0 {
					retryAfter = t.window
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())+1))
				response.Error(w, r, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
