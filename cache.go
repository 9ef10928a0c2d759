package orbital

import (
	"context"
	"time"

	"github.com/unkn0wn-root/orbital/codec"
)

// Options configure a Cache. Config.Store and Codec are required.
type Options[V any] struct {
	Config

	Codec      codec.Codec[V]
	DefaultTTL time.Duration // Put/Add/Remember with ttl <= 0; 0 => no expiry
}

// Cache is a typed, orbit-aware cache. Its embedded View follows the live orbit.
type Cache[V any] struct {
	View[V]
}

// New builds a Coordinator from opts.Config and a Cache on top of it.
func New[V any](opts Options[V]) (*Cache[V], error) {
	coord, err := NewCoordinator(opts.Config)
	if err != nil {
		return nil, err
	}
	return NewCache(coord, opts.Codec, opts.DefaultTTL)
}

// NewCache attaches a typed Cache to an existing Coordinator. Several caches of
// different value types can share one coordinator and switch together.
func NewCache[V any](coord *Coordinator, cd codec.Codec[V], defaultTTL time.Duration) (*Cache[V], error) {
	if coord == nil {
		return nil, ErrCoordinatorRequired
	}
	if cd == nil {
		return nil, ErrCodecRequired
	}
	return &Cache[V]{View: View[V]{coord: coord, codec: cd, defaultTTL: defaultTTL}}, nil
}

func (c *Cache[V]) Coordinator() *Coordinator { return c.coord }

// Pin returns a View fixed to orbit o. Calls through it are not tracked.
func (c *Cache[V]) Pin(o Orbit) (*View[V], error) {
	if !o.Valid() {
		return nil, ErrInvalidOrbit
	}
	return c.pin(o), nil
}

func (c *Cache[V]) pin(o Orbit) *View[V] {
	v := c.View
	v.pinned = true
	v.orbit = o
	return &v
}

// Operate runs fn against the orbit that is live on entry, tracked so that a
// concurrent Switch waits (up to its bound) for fn to finish.
func (c *Cache[V]) Operate(ctx context.Context, fn func(context.Context, *View[V]) error) error {
	o, err := c.coord.CurrentOrbit(ctx)
	if err != nil {
		return err
	}
	return c.coord.WithTracking(ctx, o, func(ctx context.Context) error {
		return fn(ctx, c.pin(o))
	})
}

// Prepare runs fn against the inactive orbit, the one the next Switch makes
// live. This is where a rebuild writes. The scope is tracked on the live orbit,
// the one a Switch drains, so a Switch started while fn runs waits (up to its
// bound) for the rebuild to finish before exposing it.
func (c *Cache[V]) Prepare(ctx context.Context, fn func(context.Context, *View[V]) error) error {
	o, err := c.coord.CurrentOrbit(ctx)
	if err != nil {
		return err
	}
	next := c.pin(o.Other())
	return c.coord.WithTracking(ctx, o, func(ctx context.Context) error {
		return fn(ctx, next)
	})
}

// Switch is Coordinator.Switch.
func (c *Cache[V]) Switch(ctx context.Context, maxWait time.Duration) (Orbit, error) {
	return c.coord.Switch(ctx, maxWait)
}

// Close is Coordinator.Close. The store is shared by every Cache attached to
// the same Coordinator, so close it once, after all of them are done.
func (c *Cache[V]) Close(ctx context.Context) error {
	return c.coord.Close(ctx)
}
