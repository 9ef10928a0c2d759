package orbital

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/orbital/codec"
	"github.com/unkn0wn-root/orbital/provider/memory"
	"github.com/unkn0wn-root/orbital/store"
	"github.com/unkn0wn-root/orbital/store/local"
)

// recStore records every call ("op key") and can fail selected ones.
type recStore struct {
	store.Store

	mu         sync.Mutex
	calls      []string
	fail       map[string]error // "op key" -> err
	releaseErr error
	strictCtx  bool // fail calls made with a cancelled ctx
	closes     int
}

var _ store.Store = (*recStore)(nil)

func newRecStore() *recStore {
	return &recStore{
		Store: local.New(local.Config{Provider: memory.New(), RetryEvery: time.Millisecond}),
		fail:  make(map[string]error),
	}
}

func (s *recStore) failOn(op, key string, err error) {
	s.mu.Lock()
	s.fail[op+" "+key] = err
	s.mu.Unlock()
}

func (s *recStore) record(ctx context.Context, op, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op+" "+key)
	if s.strictCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	return s.fail[op+" "+key]
}

func (s *recStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *recStore) reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func (s *recStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.record(ctx, "get", key); err != nil {
		return nil, false, err
	}
	return s.Store.Get(ctx, key)
}

func (s *recStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.record(ctx, "put", key); err != nil {
		return err
	}
	return s.Store.Put(ctx, key, value, ttl)
}

func (s *recStore) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := s.record(ctx, "add", key); err != nil {
		return false, err
	}
	return s.Store.Add(ctx, key, value, ttl)
}

func (s *recStore) Forget(ctx context.Context, key string) error {
	if err := s.record(ctx, "forget", key); err != nil {
		return err
	}
	return s.Store.Forget(ctx, key)
}

func (s *recStore) Increment(ctx context.Context, key string, by int64) (int64, error) {
	if err := s.record(ctx, "incr", key); err != nil {
		return 0, err
	}
	return s.Store.Increment(ctx, key, by)
}

func (s *recStore) Decrement(ctx context.Context, key string, by int64) (int64, error) {
	if err := s.record(ctx, "decr", key); err != nil {
		return 0, err
	}
	return s.Store.Decrement(ctx, key, by)
}

func (s *recStore) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	return s.Store.Close(ctx)
}

func (s *recStore) closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (s *recStore) Lock(name string, lease time.Duration) store.Lock {
	return &recLock{Lock: s.Store.Lock(name, lease), s: s}
}

type recLock struct {
	store.Lock
	s *recStore
}

// Release always releases the real lock, then reports the injected error.
func (l *recLock) Release(ctx context.Context) error {
	if err := l.Lock.Release(ctx); err != nil {
		return err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.releaseErr
}

// recHooks counts hook events.
type recHooks struct {
	NopHooks

	mu           sync.Mutex
	contended    int
	timeouts     int
	skews        []int64
	completed    [][2]Orbit
	failedStages []string
	lockRelErrs  int
	trackRelErrs int
}

func (h *recHooks) SwitchContended() {
	h.mu.Lock()
	h.contended++
	h.mu.Unlock()
}

func (h *recHooks) DrainTimedOut(Orbit, int64, time.Duration) {
	h.mu.Lock()
	h.timeouts++
	h.mu.Unlock()
}

func (h *recHooks) CounterSkew(_ Orbit, v int64) {
	h.mu.Lock()
	h.skews = append(h.skews, v)
	h.mu.Unlock()
}

func (h *recHooks) SwitchCompleted(from, to Orbit, _ time.Duration) {
	h.mu.Lock()
	h.completed = append(h.completed, [2]Orbit{from, to})
	h.mu.Unlock()
}

func (h *recHooks) SwitchFailed(stage string, _ error) {
	h.mu.Lock()
	h.failedStages = append(h.failedStages, stage)
	h.mu.Unlock()
}

func (h *recHooks) LockReleaseError(error) {
	h.mu.Lock()
	h.lockRelErrs++
	h.mu.Unlock()
}

func (h *recHooks) TrackReleaseError(Orbit, error) {
	h.mu.Lock()
	h.trackRelErrs++
	h.mu.Unlock()
}

type fixture struct {
	st    *recStore
	hooks *recHooks
	coord *Coordinator
	cache *Cache[string]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newRecStore()
	hooks := &recHooks{}
	c, err := New(Options[string]{
		Config: Config{
			Store:        st,
			Hooks:        hooks,
			PollInterval: 5 * time.Millisecond,
		},
		Codec: codec.JSON[string]{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return &fixture{st: st, hooks: hooks, coord: c.Coordinator(), cache: c}
}

func mustOrbit(t *testing.T, c *Coordinator) Orbit {
	t.Helper()
	o, err := c.CurrentOrbit(context.Background())
	if err != nil {
		t.Fatalf("CurrentOrbit: %v", err)
	}
	return o
}

func mustInFlight(t *testing.T, c *Coordinator, o Orbit) int64 {
	t.Helper()
	n, err := c.InFlight(context.Background(), o)
	if err != nil {
		t.Fatalf("InFlight: %v", err)
	}
	return n
}

var errStoreDown = errors.New("store unavailable")
