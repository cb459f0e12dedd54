package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// recordFailure increments the counter and gives it a TTL in one atomic
// step. A counter found without a TTL gets one too, so a key can never
// outlive its window.
var recordFailure = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// LoginThrottle counts failed logins per email inside a fixed window.
// Key format: login_failures:<email>
type LoginThrottle struct {
	client      redis.Cmdable
	maxFailures int64
	window      time.Duration
}

// NewLoginThrottle blocks an email once maxFailures failures land within window.
func NewLoginThrottle(client redis.Cmdable, maxFailures int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, maxFailures: int64(maxFailures), window: window}
}

// Allow reports whether another login attempt may be made for email.
func (l *LoginThrottle) Allow(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n < l.maxFailures, nil
}

// Fail records a failed attempt. The window starts at the first failure.
func (l *LoginThrottle) Fail(ctx context.Context, email string) error {
	err := recordFailure.Run(ctx, l.client, []string{l.key(email)}, l.window.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset forgets the failures for email after a successful login.
func (l *LoginThrottle) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

func (l *LoginThrottle) key(email string) string {
	return "login_failures:" + email
}
