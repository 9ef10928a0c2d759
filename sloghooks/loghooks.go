package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/orbital"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	// Skew can fire on every scope exit while a counter is off, contention on every retry.
	SkewEvery       uint64
	ContentionEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	skewCtr       atomic.Uint64
	contentionCtr atomic.Uint64
}

var _ orbital.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SwitchContended() {
	if h.l == nil || !sample(h.opts.ContentionEvery, &h.contentionCtr) {
		return
	}
	h.l.Info("orbital.switch_contended")
}

func (h *Hooks) DrainTimedOut(o orbital.Orbit, inFlight int64, waited time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Warn("orbital.drain_timed_out",
		"orbit", o.String(),
		"in_flight", inFlight,
		"waited", waited)
}

func (h *Hooks) CounterSkew(o orbital.Orbit, value int64) {
	if h.l == nil || !sample(h.opts.SkewEvery, &h.skewCtr) {
		return
	}
	h.l.Warn("orbital.counter_skew",
		"orbit", o.String(),
		"value", value)
}

func (h *Hooks) SwitchCompleted(from, to orbital.Orbit, drained time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Info("orbital.switch_completed",
		"from", from.String(),
		"to", to.String(),
		"drained", drained)
}

func (h *Hooks) SwitchFailed(stage string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("orbital.switch_failed",
		"stage", stage,
		"err", err)
}

func (h *Hooks) LockReleaseError(err error) {
	if h.l == nil {
		return
	}
	h.l.Error("orbital.lock_release_error", "err", err)
}

func (h *Hooks) TrackReleaseError(o orbital.Orbit, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("orbital.track_release_error",
		"orbit", o.String(),
		"err", err)
}
