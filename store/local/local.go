// Package local implements store.Store in-process on top of any provider.Provider.
//
// Counters and Add are read-modify-write under a single mutex, so they are atomic
// only within this process. Locks live in a lease table beside the provider and
// are likewise process-local. Use store/redis when several processes share a cache.
//
// Control keys (see store.IsControlKey) never reach the configured provider. They
// live in an exact in-memory table, so a provider that evicts or expires entries
// on its own (ristretto, bigcache) can only drop cached data, never the orbit
// pointer or an operating counter.
package local

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	pr "github.com/unkn0wn-root/orbital/provider"
	"github.com/unkn0wn-root/orbital/provider/memory"
	"github.com/unkn0wn-root/orbital/store"
)

const defaultRetryEvery = 10 * time.Millisecond

type lease struct {
	token   string
	expires time.Time
}

// Store is the in-process store.Store.
type Store struct {
	p   pr.Provider
	ctl *memory.Provider // control keys

	mu     sync.Mutex // serializes writes to p
	leases map[string]lease

	now        func() time.Time
	newToken   func() string
	retryEvery time.Duration
}

var _ store.Store = (*Store)(nil)

type Config struct {
	Provider   pr.Provider   // nil => provider/memory
	RetryEvery time.Duration // lock retry interval when TryAcquire waits; 0 => 10ms
}

func New(cfg Config) *Store {
	p := cfg.Provider
	if p == nil {
		p = memory.New()
	}
	re := cfg.RetryEvery
	if re <= 0 {
		re = defaultRetryEvery
	}
	return &Store{
		p:          p,
		ctl:        memory.New(),
		leases:     make(map[string]lease),
		now:        time.Now,
		newToken:   uuid.NewString,
		retryEvery: re,
	}
}

// backend picks where key lives.
func (s *Store) backend(key string) pr.Provider {
	if store.IsControlKey(key) {
		return s.ctl
	}
	return s.p
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.backend(key).Get(ctx, key)
}

func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(ctx, key, value, ttl)
}

func (s *Store) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.backend(key).Get(ctx, key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := s.set(ctx, key, value, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Forget(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend(key).Del(ctx, key)
}

func (s *Store) Increment(ctx context.Context, key string, by int64) (int64, error) {
	return s.apply(ctx, key, by)
}

func (s *Store) Decrement(ctx context.Context, key string, by int64) (int64, error) {
	return s.apply(ctx, key, -by)
}

// apply adds delta to the counter at key. The existing TTL, if any, is not preserved.
func (s *Store) apply(ctx context.Context, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	raw, ok, err := s.backend(key).Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if ok {
		if n, err = store.ParseCounter(raw); err != nil {
			return 0, err
		}
	}
	n += delta
	if err := s.set(ctx, key, store.FormatCounter(n), 0); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ok, err := s.backend(key).Set(ctx, key, value, int64(len(value)), ttl)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrRejected
	}
	return nil
}

func (s *Store) Lock(name string, leaseFor time.Duration) store.Lock {
	return &lock{s: s, name: name, lease: leaseFor, token: s.newToken()}
}

func (s *Store) Close(ctx context.Context) error {
	return s.p.Close(ctx)
}

type lock struct {
	s     *Store
	name  string
	lease time.Duration
	token string
}

func (l *lock) TryAcquire(ctx context.Context, wait time.Duration) (bool, error) {
	if l.tryOnce() {
		return true, nil
	}
	if wait <= 0 {
		return false, nil
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
			return l.tryOnce(), nil
		case <-tick.C:
			if l.tryOnce() {
				return true, nil
			}
		}
	}
}

func (l *lock) tryOnce() bool {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	now := l.s.now()
	if cur, ok := l.s.leases[l.name]; ok && now.Before(cur.expires) {
		return false
	}
	// lease <= 0 never expires on its own
	exp := now.Add(l.lease)
	if l.lease <= 0 {
		exp = time.Unix(1<<62, 0)
	}
	l.s.leases[l.name] = lease{token: l.token, expires: exp}
	return true
}

func (l *lock) Release(_ context.Context) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	cur, ok := l.s.leases[l.name]
	if !ok || cur.token != l.token {
		return store.ErrLockNotHeld
	}
	delete(l.s.leases, l.name)
	return nil
}
