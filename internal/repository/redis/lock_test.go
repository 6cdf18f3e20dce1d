package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLock(t *testing.T) (*LockRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewLockRepository(client), mr
}

func TestLockRepository_Contention(t *testing.T) {
	repo, mr := newTestLock(t)
	ctx := context.Background()

	ok, err := repo.Acquire(ctx, "reconcile", "sweep-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first Acquire() = %v, %v; want true", ok, err)
	}

	ok, err = repo.Acquire(ctx, "reconcile", "sweep-b", time.Minute)
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if ok {
		t.Fatal("second Acquire() = true while the lease is held")
	}

	if got, _ := mr.Get("lock:reconcile"); got != "sweep-a" {
		t.Fatalf("holder = %q, want sweep-a", got)
	}
	if ttl := mr.TTL("lock:reconcile"); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}
}

func TestLockRepository_ReleaseNeedsToken(t *testing.T) {
	repo, mr := newTestLock(t)
	ctx := context.Background()

	if ok, err := repo.Acquire(ctx, "reconcile", "sweep-a", time.Minute); err != nil || !ok {
		t.Fatalf("Acquire() = %v, %v; want true", ok, err)
	}

	if err := repo.Release(ctx, "reconcile", "sweep-b"); err != nil {
		t.Fatalf("Release() with foreign token error = %v", err)
	}
	if !mr.Exists("lock:reconcile") {
		t.Fatal("foreign token released the lease")
	}

	if err := repo.Release(ctx, "reconcile", "sweep-a"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if mr.Exists("lock:reconcile") {
		t.Fatal("lease still held after its owner released it")
	}

	if ok, err := repo.Acquire(ctx, "reconcile", "sweep-b", time.Minute); err != nil || !ok {
		t.Fatalf("Acquire() after release = %v, %v; want true", ok, err)
	}
}

func TestLockRepository_ExpiredHolderCannotRelease(t *testing.T) {
	repo, mr := newTestLock(t)
	ctx := context.Background()

	if ok, err := repo.Acquire(ctx, "reconcile", "sweep-a", time.Second); err != nil || !ok {
		t.Fatalf("Acquire() = %v, %v; want true", ok, err)
	}
	mr.FastForward(2 * time.Second)

	if ok, err := repo.Acquire(ctx, "reconcile", "sweep-b", time.Minute); err != nil || !ok {
		t.Fatalf("Acquire() after expiry = %v, %v; want true", ok, err)
	}

	if err := repo.Release(ctx, "reconcile", "sweep-a"); err != nil {
		t.Fatalf("stale Release() error = %v", err)
	}
	if got, _ := mr.Get("lock:reconcile"); got != "sweep-b" {
		t.Fatalf("holder = %q, want sweep-b", got)
	}
}
