package orbital

import (
	"context"
	"time"

	"github.com/unkn0wn-root/orbital/codec"
)

// View is the typed accessor surface over one orbit. The View embedded in a
// Cache follows the live orbit, re-reading the pointer on every call. Views
// handed out by Operate, Prepare and Pin stay on a fixed orbit.
//
// Each call resolves its orbit once, so compound operations (Pull, Remember)
// never straddle a switch.
type View[V any] struct {
	coord      *Coordinator
	codec      codec.Codec[V]
	defaultTTL time.Duration

	pinned bool
	orbit  Orbit
}

// Orbit reports the orbit the next call will use.
func (v *View[V]) Orbit(ctx context.Context) (Orbit, error) {
	if v.pinned {
		return v.orbit, nil
	}
	return v.coord.CurrentOrbit(ctx)
}

func (v *View[V]) storageKey(ctx context.Context, key string) (string, error) {
	o, err := v.Orbit(ctx)
	if err != nil {
		return "", err
	}
	return v.coord.DataKey(o, key), nil
}

func (v *View[V]) Has(ctx context.Context, key string) (bool, error) {
	k, err := v.storageKey(ctx, key)
	if err != nil {
		return false, err
	}
	_, ok, err := v.coord.st.Get(ctx, k)
	return ok, err
}

func (v *View[V]) Missing(ctx context.Context, key string) (bool, error) {
	ok, err := v.Has(ctx, key)
	return !ok, err
}

// Get returns the value for key. Entries that fail to decode are deleted and
// reported as a miss.
func (v *View[V]) Get(ctx context.Context, key string) (V, bool, error) {
	k, err := v.storageKey(ctx, key)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return v.get(ctx, k)
}

func (v *View[V]) get(ctx context.Context, k string) (V, bool, error) {
	var zero V
	raw, ok, err := v.coord.st.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	val, err := v.codec.Decode(raw)
	if err != nil {
		// self-heal; a failed delete still reads as a miss
		if fErr := v.coord.st.Forget(ctx, k); fErr != nil {
			v.coord.log.Warn("undecodable entry not dropped", Fields{"key": k, "err": err, "forgetErr": fErr})
			return zero, false, nil
		}
		v.coord.log.Debug("dropped undecodable entry", Fields{"key": k, "err": err})
		return zero, false, nil
	}
	return val, true, nil
}

// Pull returns the value for key and deletes it. Not atomic: a concurrent
// writer between the read and the delete loses its write.
func (v *View[V]) Pull(ctx context.Context, key string) (V, bool, error) {
	k, err := v.storageKey(ctx, key)
	if err != nil {
		var zero V
		return zero, false, err
	}
	val, ok, err := v.get(ctx, k)
	if err != nil || !ok {
		return val, ok, err
	}
	if err := v.coord.st.Forget(ctx, k); err != nil {
		return val, true, err
	}
	return val, true, nil
}

// Put stores value for ttl. ttl <= 0 uses the cache's DefaultTTL (itself 0 => no expiry).
func (v *View[V]) Put(ctx context.Context, key string, value V, ttl time.Duration) error {
	k, err := v.storageKey(ctx, key)
	if err != nil {
		return err
	}
	return v.put(ctx, k, value, v.ttl(ttl))
}

// Add stores value only if key is absent in the orbit and reports whether it did.
func (v *View[V]) Add(ctx context.Context, key string, value V, ttl time.Duration) (bool, error) {
	k, err := v.storageKey(ctx, key)
	if err != nil {
		return false, err
	}
	b, err := v.codec.Encode(value)
	if err != nil {
		return false, err
	}
	return v.coord.st.Add(ctx, k, b, v.ttl(ttl))
}

// Forever stores value with no expiry.
func (v *View[V]) Forever(ctx context.Context, key string, value V) error {
	k, err := v.storageKey(ctx, key)
	if err != nil {
		return err
	}
	return v.put(ctx, k, value, 0)
}

func (v *View[V]) Forget(ctx context.Context, key string) error {
	k, err := v.storageKey(ctx, key)
	if err != nil {
		return err
	}
	return v.coord.st.Forget(ctx, k)
}

// Increment adds by to the integer stored at key (absent => 0). The stored value
// must be a base-10 integer, e.g. written with codec.JSON[int64].
func (v *View[V]) Increment(ctx context.Context, key string, by int64) (int64, error) {
	k, err := v.storageKey(ctx, key)
	if err != nil {
		return 0, err
	}
	return v.coord.st.Increment(ctx, k, by)
}

func (v *View[V]) Decrement(ctx context.Context, key string, by int64) (int64, error) {
	k, err := v.storageKey(ctx, key)
	if err != nil {
		return 0, err
	}
	return v.coord.st.Decrement(ctx, k, by)
}

// Remember returns the cached value or computes, stores (for ttl) and returns it.
// A compute error is returned as is and nothing is stored.
func (v *View[V]) Remember(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	return v.remember(ctx, key, v.ttl(ttl), compute)
}

// RememberForever is Remember with no expiry.
func (v *View[V]) RememberForever(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, error) {
	return v.remember(ctx, key, 0, compute)
}

func (v *View[V]) remember(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	var zero V
	if compute == nil {
		return zero, ErrComputeRequired
	}
	k, err := v.storageKey(ctx, key)
	if err != nil {
		return zero, err
	}
	if val, ok, err := v.get(ctx, k); err != nil || ok {
		return val, err
	}
	val, err := compute(ctx)
	if err != nil {
		return zero, err
	}
	if err := v.put(ctx, k, val, ttl); err != nil {
		return zero, err
	}
	return val, nil
}

// Sear computes a fresh value and stores it forever, replacing whatever was there.
func (v *View[V]) Sear(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, error) {
	var zero V
	if compute == nil {
		return zero, ErrComputeRequired
	}
	k, err := v.storageKey(ctx, key)
	if err != nil {
		return zero, err
	}
	val, err := compute(ctx)
	if err != nil {
		return zero, err
	}
	if err := v.put(ctx, k, val, 0); err != nil {
		return zero, err
	}
	return val, nil
}

func (v *View[V]) put(ctx context.Context, k string, value V, ttl time.Duration) error {
	b, err := v.codec.Encode(value)
	if err != nil {
		return err
	}
	return v.coord.st.Put(ctx, k, b, ttl)
}

func (v *View[V]) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return v.defaultTTL
	}
	return ttl
}
