package orbital

import (
	"context"
	"errors"
)

// WithTracking runs body while the operating counter of o is raised by one, so
// a concurrent Switch away from o can see the work in flight. The counter is
// lowered again however body ends: normal return, error, panic or cancelled ctx.
//
// If the increment fails body is not run. If the decrement fails its error is
// joined with body's.
func (c *Coordinator) WithTracking(ctx context.Context, o Orbit, body func(context.Context) error) error {
	_, err := Track(ctx, c, o, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, body(ctx)
	})
	return err
}

// Track is WithTracking for bodies that produce a value.
func Track[T any](ctx context.Context, c *Coordinator, o Orbit, body func(context.Context) (T, error)) (v T, err error) {
	if !o.Valid() {
		return v, ErrInvalidOrbit
	}
	if _, err = c.st.Increment(ctx, c.counterKey(o), 1); err != nil {
		return v, err
	}
	defer func() {
		if exitErr := c.exit(ctx, o); exitErr != nil {
			err = errors.Join(err, exitErr)
		}
	}()
	return body(ctx)
}

func (c *Coordinator) exit(ctx context.Context, o Orbit) error {
	// detached: a cancelled caller must not leave the counter raised
	n, err := c.st.Decrement(context.WithoutCancel(ctx), c.counterKey(o), 1)
	if err != nil {
		c.log.Error("operating counter release failed", Fields{"orbit": o, "err": err})
		c.hooks.TrackReleaseError(o, err)
		return err
	}
	if n < 0 {
		c.log.Warn("operating counter below zero", Fields{"orbit": o, "value": n})
		c.hooks.CounterSkew(o, n)
	}
	return nil
}
