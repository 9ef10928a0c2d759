package orbital

import (
	"context"
	"time"

	"github.com/unkn0wn-root/orbital/store"
)

// Switch makes the inactive orbit live and returns it.
//
// Under the switch lock (lease 2*maxWait, never waited for) it polls the
// operating counter of the live orbit until it reaches zero or maxWait
// elapses, then flips the pointer. The drain is advisory: operations that
// start during the wait are not held back, and a timeout does not stop the
// flip. maxWait <= 0 uses Config.SwitchWait.
//
// A concurrent switch makes this one fail fast with ErrLockContention.
// Once started a switch runs to completion. Cancellation of ctx is ignored;
// maxWait is the only cutoff.
// The lock is released on every path after acquisition.
//
// Every failure is a *SwitchError naming the stage. It unwraps to the cause, so
// store errors reach the caller unmodified for errors.Is and errors.As.
func (c *Coordinator) Switch(ctx context.Context, maxWait time.Duration) (Orbit, error) {
	ctx = context.WithoutCancel(ctx)
	if maxWait <= 0 {
		maxWait = c.switchWait
	}

	lock := c.st.Lock(c.lockKey(), 2*maxWait)
	ok, err := lock.TryAcquire(ctx, 0)
	if err != nil {
		return 0, &SwitchError{Stage: StageAcquire, Err: err}
	}
	if !ok {
		c.log.Debug("switch skipped, lock held elsewhere", Fields{"lock": c.lockKey()})
		c.hooks.SwitchContended()
		return 0, &SwitchError{Stage: StageAcquire, Err: ErrLockContention}
	}
	defer c.release(ctx, lock)

	from, err := c.CurrentOrbit(ctx)
	if err != nil {
		return 0, c.failed(StageRead, 0, err)
	}
	c.log.Debug("switch started", Fields{"from": from, "maxWait": maxWait})

	drained, err := c.drain(ctx, from, maxWait)
	if err != nil {
		return 0, c.failed(StageDrain, from, err)
	}

	to := from.Other()
	if err := c.setOrbit(ctx, to); err != nil {
		return 0, c.failed(StageFlip, from, err)
	}
	c.log.Info("orbit switched", Fields{"from": from, "to": to, "drained": drained})
	c.hooks.SwitchCompleted(from, to, drained)
	return to, nil
}

// drain waits until nothing is in flight on o or maxWait has passed.
// Only store errors are returned; a timeout is not an error.
func (c *Coordinator) drain(ctx context.Context, o Orbit, maxWait time.Duration) (time.Duration, error) {
	start := time.Now()
	deadline := start.Add(maxWait)

	tick := time.NewTicker(c.poll)
	defer tick.Stop()
	for {
		n, err := c.InFlight(ctx, o)
		if err != nil {
			return time.Since(start), err
		}
		if n <= 0 {
			if n < 0 {
				c.log.Warn("operating counter below zero", Fields{"orbit": o, "value": n})
				c.hooks.CounterSkew(o, n)
			}
			return time.Since(start), nil
		}
		if !time.Now().Before(deadline) {
			waited := time.Since(start)
			c.log.Warn("drain timed out, switching with operations in flight",
				Fields{"orbit": o, "inFlight": n, "waited": waited})
			c.hooks.DrainTimedOut(o, n, waited)
			return waited, nil
		}

		<-tick.C
	}
}

func (c *Coordinator) release(ctx context.Context, l store.Lock) {
	if err := l.Release(ctx); err != nil {
		c.log.Error("switch lock release failed", Fields{"lock": c.lockKey(), "err": err})
		c.hooks.LockReleaseError(err)
	}
}

func (c *Coordinator) failed(stage string, from Orbit, err error) error {
	c.log.Error("switch failed", Fields{"stage": stage, "from": from, "err": err})
	c.hooks.SwitchFailed(stage, err)
	return &SwitchError{Stage: stage, From: from, Err: err}
}
