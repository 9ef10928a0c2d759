// Package orbital keeps two generations ("orbits") of a cache side by side so
// that one can be rebuilt while the other keeps serving, then swapped in
// without readers ever seeing a half-built or cleared cache.
//
// Components:
//   - store.Store: KV primitives with atomic counters and a lease lock
//     (store/local in-process, store/redis across processes).
//   - Coordinator: the orbit pointer, per-orbit operating counters and the
//     lock-guarded drain-and-flip Switch.
//   - Cache[V] / View[V]: typed accessors that namespace every key by orbit.
//   - Codec[V]: (de)serializes V <-> []byte.
//
// Keys (default prefix "orbital-cache"):
//
//	<prefix>:current-orbit          - live orbit, "0" or "1"
//	<prefix>:switching              - switch lock
//	<prefix>:<orbit>:operating      - in-flight tracked operations
//	<prefix>:<orbit>:data:<key>     - values
//
// Rebuild pattern:
//
//	err := cache.Prepare(ctx, func(ctx context.Context, next *orbital.View[User]) error {
//	    for _, u := range loadAll() {
//	        if err := next.Forever(ctx, u.ID, u); err != nil {
//	            return err
//	        }
//	    }
//	    return nil
//	})
//	if err == nil {
//	    _, err = cache.Switch(ctx, 0) // drain up to Config.SwitchWait, then flip
//	}
//
// The drain is best effort. New operations are never blocked from entering the
// retiring orbit, so under sustained load Switch waits out its bound and flips anyway.
package orbital
