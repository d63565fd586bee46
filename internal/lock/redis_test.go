package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis"
	goredis "github.com/redis/go-redis/v9"
)

// newRedisPair starts an in-process redis and returns two lockers on
// separate clients, standing in for two processes.
func newRedisPair(t *testing.T, cfg RedisConfig) (*miniredis.Miniredis, *Redis, *Redis) {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(m.Close)

	open := func() *Redis {
		r := NewRedisWithClient(goredis.NewClient(&goredis.Options{Addr: m.Addr()}), cfg)
		t.Cleanup(func() { r.Close() })
		return r
	}
	return m, open(), open()
}

func TestRedis_ExcludesOtherHolders(t *testing.T) {
	m, a, b := newRedisPair(t, RedisConfig{RetryEvery: 5 * time.Millisecond})
	ctx := context.Background()

	unlock, err := a.Lock(ctx, "user:1")
	if err != nil {
		t.Fatal(err)
	}
	if !m.Exists("studyhall:lock:user:1") {
		t.Fatal("lock key not set")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := b.Lock(waitCtx, "user:1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded while held", err)
	}

	// A different key is independent.
	unlockOther, err := b.Lock(ctx, "user:2")
	if err != nil {
		t.Fatal(err)
	}
	unlockOther()

	acquired := make(chan func(), 1)
	go func() {
		u, err := b.Lock(ctx, "user:1")
		if err != nil {
			t.Error(err)
			close(acquired)
			return
		}
		acquired <- u
	}()

	unlock()
	unlock() // idempotent

	select {
	case u := <-acquired:
		if u == nil {
			t.Fatal("second holder failed to acquire")
		}
		u()
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never acquired the released lock")
	}
	if m.Exists("studyhall:lock:user:1") {
		t.Error("lock key left behind after release")
	}
}

func TestRedis_ExpiredHolderDoesNotReleaseNewHolder(t *testing.T) {
	m, a, b := newRedisPair(t, RedisConfig{TTL: 10 * time.Second})
	ctx := context.Background()

	unlockA, err := a.Lock(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	m.FastForward(11 * time.Second)

	unlockB, err := b.Lock(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}

	unlockA()
	if !m.Exists("studyhall:lock:k") {
		t.Fatal("stale holder released the new holder's lock")
	}
	unlockB()
	if m.Exists("studyhall:lock:k") {
		t.Error("lock key left behind after release")
	}
}

func TestRedis_HeldLockIsExtended(t *testing.T) {
	m, a, _ := newRedisPair(t, RedisConfig{TTL: 300 * time.Millisecond, RefreshEvery: 20 * time.Millisecond})

	unlock, err := a.Lock(context.Background(), "k")
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	m.FastForward(250 * time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for m.TTL("studyhall:lock:k") <= 100*time.Millisecond {
		if time.Now().After(deadline) {
			t.Fatalf("ttl = %v, lock was not extended", m.TTL("studyhall:lock:k"))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRedis_ContextCancelledWhilePolling(t *testing.T) {
	_, a, b := newRedisPair(t, RedisConfig{RetryEvery: 5 * time.Millisecond})

	unlock, err := a.Lock(context.Background(), "k")
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := b.Lock(ctx, "k")
		errc <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Lock kept polling after cancel")
	}
}
