package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another holder is never released by us.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the key's TTL only while it still holds our token.
var extendScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisConfig configures the redis-backed locker.
type RedisConfig struct {
	Addr string
	// TTL bounds how long a crashed holder can block a key. A live holder
	// extends it every RefreshEvery, so the lock only lapses when the
	// holder cannot reach redis for a whole TTL. Work continuing past that
	// point is no longer exclusive.
	TTL time.Duration
	// RefreshEvery defaults to TTL/3.
	RefreshEvery time.Duration
	// RetryEvery is the polling interval while waiting for a held key.
	RetryEvery time.Duration
	Prefix     string
}

// Redis is a Locker shared by every process pointed at the same redis.
type Redis struct {
	rdb goredis.UniversalClient
	cfg RedisConfig
}

// NewRedis connects to redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisWithClient(rdb, cfg), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rdb goredis.UniversalClient, cfg RedisConfig) *Redis {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.RefreshEvery <= 0 || cfg.RefreshEvery >= cfg.TTL {
		cfg.RefreshEvery = cfg.TTL / 3
	}
	if cfg.RetryEvery <= 0 {
		cfg.RetryEvery = 25 * time.Millisecond
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "studyhall:lock:"
	}
	return &Redis{rdb: rdb, cfg: cfg}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.cfg.Prefix + key
	token := uuid.NewString()

	for {
		ok, err := r.rdb.SetNX(ctx, k, token, r.cfg.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.cfg.RetryEvery):
		}
	}

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go r.keepAlive(k, token, stop, stopped)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-stopped
			relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(relCtx, r.rdb, []string{k}, token).Err()
		})
	}, nil
}

// keepAlive extends the lock until stop is closed or the lock is found to
// belong to someone else.
func (r *Redis) keepAlive(k, token string, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	t := time.NewTicker(r.cfg.RefreshEvery)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.RefreshEvery)
		n, err := extendScript.Run(ctx, r.rdb, []string{k}, token, r.cfg.TTL.Milliseconds()).Int()
		cancel()
		if err == nil && n == 0 {
			return
		}
	}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
