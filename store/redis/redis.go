// Package redis implements store.Store on Redis so that the orbit pointer,
// operating counters and switch lock are shared by every process.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/orbital/store"
)

var ErrNilClient = errors.New("redis store: nil client")

// releaseScript deletes the lock key only if it still carries our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const defaultRetryEvery = 50 * time.Millisecond

type Store struct {
	rdb         goredis.UniversalClient
	closeClient bool
	newToken    func() string
	retryEvery  time.Duration
}

var _ store.Store = (*Store)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool          // set true only if this store exclusively owns the client
	RetryEvery  time.Duration // lock retry interval when TryAcquire waits; 0 => 50ms
	Token       func() string // lock owner token generator; nil => uuid
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	s := &Store{
		rdb:         cfg.Client,
		closeClient: cfg.CloseClient,
		newToken:    cfg.Token,
		retryEvery:  cfg.RetryEvery,
	}
	if s.newToken == nil {
		s.newToken = uuid.NewString
	}
	if s.retryEvery <= 0 {
		s.retryEvery = defaultRetryEvery
	}
	return s, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, expiry(ttl)).Err()
}

func (s *Store) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, value, expiry(ttl)).Result()
}

func (s *Store) Forget(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Store) Increment(ctx context.Context, key string, by int64) (int64, error) {
	return s.rdb.IncrBy(ctx, key, by).Result()
}

func (s *Store) Decrement(ctx context.Context, key string, by int64) (int64, error) {
	return s.rdb.DecrBy(ctx, key, by).Result()
}

func (s *Store) Lock(name string, lease time.Duration) store.Lock {
	return &lock{s: s, key: name, lease: expiry(lease), token: s.newToken()}
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// expiry maps non-positive TTLs to "no expiry".
func expiry(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return ttl
}

type lock struct {
	s     *Store
	key   string
	lease time.Duration
	token string
}

func (l *lock) TryAcquire(ctx context.Context, wait time.Duration) (bool, error) {
	ok, err := l.tryOnce(ctx)
	if err != nil || ok || wait <= 0 {
		return ok, err
	}

	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	tick := time.NewTicker(l.s.retryEvery)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return l.tryOnce(ctx)
		case <-tick.C:
			if ok, err := l.tryOnce(ctx); err != nil || ok {
				return ok, err
			}
		}
	}
}

func (l *lock) tryOnce(ctx context.Context) (bool, error) {
	return l.s.rdb.SetNX(ctx, l.key, l.token, l.lease).Result()
}

func (l *lock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.s.rdb, []string{l.key}, l.token).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrLockNotHeld
	}
	return nil
}
