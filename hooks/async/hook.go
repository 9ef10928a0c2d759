// Package asynchook runs orbital.Hooks on a small worker pool so slow hook
// implementations never delay a switch or a tracked scope.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SkewEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	coord, _ := orbital.NewCoordinator(orbital.Config{Store: st, Hooks: hooks})
//
// When the queue is full, events are dropped and counted (see Dropped).
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/orbital"
)

type Hooks struct {
	inner   orbital.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ orbital.Hooks = (*Hooks)(nil)

func New(inner orbital.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Hooks must not fire after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) SwitchContended()               { h.try(h.inner.SwitchContended) }
func (h *Hooks) LockReleaseError(err error)     { h.try(func() { h.inner.LockReleaseError(err) }) }
func (h *Hooks) SwitchFailed(s string, e error) { h.try(func() { h.inner.SwitchFailed(s, e) }) }
func (h *Hooks) CounterSkew(o orbital.Orbit, v int64) {
	h.try(func() { h.inner.CounterSkew(o, v) })
}
func (h *Hooks) TrackReleaseError(o orbital.Orbit, err error) {
	h.try(func() { h.inner.TrackReleaseError(o, err) })
}
func (h *Hooks) DrainTimedOut(o orbital.Orbit, n int64, waited time.Duration) {
	h.try(func() { h.inner.DrainTimedOut(o, n, waited) })
}
func (h *Hooks) SwitchCompleted(from, to orbital.Orbit, drained time.Duration) {
	h.try(func() { h.inner.SwitchCompleted(from, to, drained) })
}
