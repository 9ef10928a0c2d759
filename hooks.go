package orbital

import "time"

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; wrap slow ones in hooks/async.
type Hooks interface {
	// Another switch held the lock; this one gave up without changes.
	SwitchContended()

	// The drain bound elapsed with work still in flight on the retiring orbit.
	// The switch proceeds anyway.
	DrainTimedOut(o Orbit, inFlight int64, waited time.Duration)

	// An operating counter was observed below zero (mismatched enter/exit).
	CounterSkew(o Orbit, value int64)

	// The pointer moved from -> to after draining for drained.
	SwitchCompleted(from, to Orbit, drained time.Duration)

	// A switch that held the lock failed at stage; the pointer is unchanged.
	SwitchFailed(stage string, err error)

	// Releasing the switch lock failed. The lease will expire on its own.
	LockReleaseError(err error)

	// Decrementing an operating counter on scope exit failed; the counter is now over-counted.
	TrackReleaseError(o Orbit, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SwitchContended()                            {}
func (NopHooks) DrainTimedOut(Orbit, int64, time.Duration)   {}
func (NopHooks) CounterSkew(Orbit, int64)                    {}
func (NopHooks) SwitchCompleted(Orbit, Orbit, time.Duration) {}
func (NopHooks) SwitchFailed(string, error)                  {}
func (NopHooks) LockReleaseError(error)                      {}
func (NopHooks) TrackReleaseError(Orbit, error)              {}
