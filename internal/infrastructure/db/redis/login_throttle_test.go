package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newThrottle(t *testing.T, max int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginThrottle(client, max, window), srv
}

func TestLoginThrottle_BlocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	th, _ := newThrottle(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := th.Allow(ctx, "a@b.com")
		if err != nil || !ok {
			t.Fatalf("attempt %d: expected allowed, got ok=%v err=%v", i, ok, err)
		}
		if err := th.Fail(ctx, "a@b.com"); err != nil {
			t.Fatalf("Fail error: %v", err)
		}
	}

	ok, err := th.Allow(ctx, "a@b.com")
	if err != nil || ok {
		t.Fatalf("expected blocked, got ok=%v err=%v", ok, err)
	}

	ok, _ = th.Allow(ctx, "other@b.com")
	if !ok {
		t.Fatalf("expected other emails unaffected")
	}
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	ctx := context.Background()
	th, srv := newThrottle(t, 1, time.Minute)

	_ = th.Fail(ctx, "a@b.com")
	if ok, _ := th.Allow(ctx, "a@b.com"); ok {
		t.Fatalf("expected blocked inside window")
	}

	srv.FastForward(time.Minute + time.Second)
	if ok, _ := th.Allow(ctx, "a@b.com"); !ok {
		t.Fatalf("expected allowed after window")
	}
}

func TestLoginThrottle_Reset(t *testing.T) {
	ctx := context.Background()
	th, _ := newThrottle(t, 1, time.Minute)

	_ = th.Fail(ctx, "a@b.com")
	if err := th.Reset(ctx, "a@b.com"); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
	if ok, _ := th.Allow(ctx, "a@b.com"); !ok {
		t.Fatalf("expected allowed after reset")
	}
}

func TestLoginThrottle_BackendDown(t *testing.T) {
	th, srv := newThrottle(t, 1, time.Minute)
	srv.Close()

	if _, err := th.Allow(context.Background(), "a@b.com"); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}

// expireless fails every standalone EXPIRE, as a dropped connection would.
type expireless struct {
	redis.Cmdable
}

func (expireless) Expire(ctx context.Context, _ string, _ time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetErr(errors.New("connection reset"))
	return cmd
}

func TestLoginThrottle_FailSetsTTLAtomically(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	th := NewLoginThrottle(expireless{client}, 1, time.Minute)
	if err := th.Fail(ctx, "a@b.com"); err != nil {
		t.Fatalf("Fail error: %v", err)
	}
	if ttl := srv.TTL("login_failures:a@b.com"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected TTL within window, got %v", ttl)
	}

	srv.FastForward(365 * 24 * time.Hour)
	if ok, _ := th.Allow(ctx, "a@b.com"); !ok {
		t.Fatalf("expected allowed once the window has passed")
	}
}

func TestLoginThrottle_FailRepairsMissingTTL(t *testing.T) {
	ctx := context.Background()
	th, srv := newThrottle(t, 3, time.Minute)

	// A counter left behind without a TTL.
	if err := srv.Set("login_failures:a@b.com", "5"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := th.Allow(ctx, "a@b.com"); ok {
		t.Fatalf("expected blocked")
	}

	if err := th.Fail(ctx, "a@b.com"); err != nil {
		t.Fatalf("Fail error: %v", err)
	}
	if ttl := srv.TTL("login_failures:a@b.com"); ttl <= 0 {
		t.Fatalf("expected TTL to be restored, got %v", ttl)
	}

	srv.FastForward(time.Minute + time.Second)
	if ok, _ := th.Allow(ctx, "a@b.com"); !ok {
		t.Fatalf("expected allowed after window")
	}
}

func TestLoginThrottle_WindowStartsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	th, srv := newThrottle(t, 2, time.Minute)

	_ = th.Fail(ctx, "a@b.com")
	srv.FastForward(40 * time.Second)
	_ = th.Fail(ctx, "a@b.com")

	if ttl := srv.TTL("login_failures:a@b.com"); ttl > 20*time.Second {
		t.Fatalf("second failure must not extend the window, ttl=%v", ttl)
	}
}
