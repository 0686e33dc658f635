package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemory_RevokeUntilExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	if err := m.Revoke(ctx, "jti-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if ok, _ := m.IsRevoked(ctx, "jti-1"); !ok {
		t.Fatal("expected jti-1 revoked")
	}
	if ok, _ := m.IsRevoked(ctx, "jti-2"); ok {
		t.Fatal("jti-2 was never revoked")
	}

	now = now.Add(time.Hour)
	if ok, _ := m.IsRevoked(ctx, "jti-1"); ok {
		t.Error("entry should lapse with the token")
	}
}

func TestMemory_RevokeAlreadyExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Revoke(ctx, "old", time.Now().Add(-time.Minute))
	if len(m.entries) != 0 {
		t.Errorf("expired token stored: %v", m.entries)
	}
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedis(rdb), mr
}

func TestRedis_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	if err := r.Revoke(ctx, "jti-1", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	ok, err := r.IsRevoked(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("IsRevoked: %v %v", ok, err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "jti-1"); ttl <= 0 || ttl > 10*time.Minute {
		t.Errorf("unexpected ttl: %v", ttl)
	}

	mr.FastForward(11 * time.Minute)
	if ok, _ := r.IsRevoked(ctx, "jti-1"); ok {
		t.Error("entry should expire with the token")
	}
}

func TestRedis_Unavailable(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	mr.Close()

	if _, err := r.IsRevoked(ctx, "jti-1"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("IsRevoked: got %v, want ErrUnavailable", err)
	}
	if err := r.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Revoke: got %v, want ErrUnavailable", err)
	}
}
