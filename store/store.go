// Package store defines the key-value contract the orbit coordinator runs on.
//
// A Store holds raw bytes. Counters (Increment/Decrement) are stored as
// base-10 ASCII integers so that a plain Get returns something ParseCounter
// understands, regardless of the backend.
//
// Keys handed to a Store are already fully qualified (prefix, orbit and
// logical key). Implementations MUST NOT rewrite them.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrLockNotHeld is returned by Lock.Release when the caller does not own the lock
	// (never acquired, already released, or the lease expired and someone else took it).
	ErrLockNotHeld = errors.New("store: lock not held")

	// ErrRejected is returned when a backend refuses a write (admission/eviction pressure).
	ErrRejected = errors.New("store: write rejected")
)

// Store is the minimal KV surface required by orbital.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value. ttl <= 0 means no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Add stores value only if key is absent. Reports whether the write happened.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Forget removes key. Missing keys are not an error.
	Forget(ctx context.Context, key string) error

	// Increment/Decrement atomically apply delta and return the new value.
	// Absent keys start at 0.
	Increment(ctx context.Context, key string, by int64) (int64, error)
	Decrement(ctx context.Context, key string, by int64) (int64, error)

	// Lock returns a handle for an exclusive lock named name.
	// Nothing is acquired until TryAcquire succeeds.
	Lock(name string, lease time.Duration) Lock

	// Close releases resources.
	Close(ctx context.Context) error
}

// Lock is a cooperative, lease-bounded exclusive lock.
type Lock interface {
	// TryAcquire attempts to take the lock, retrying for up to wait.
	// wait <= 0 makes exactly one attempt.
	TryAcquire(ctx context.Context, wait time.Duration) (bool, error)

	// Release gives the lock up if this handle still owns it.
	Release(ctx context.Context) error
}

// Suffixes of the coordinator's control keys: the orbit pointer and the
// per-orbit operating counters.
const (
	PointerSuffix = ":current-orbit"
	CounterSuffix = ":operating"
)

// IsControlKey reports whether key holds coordinator state rather than cached
// data. Backends that may evict or expire entries on their own must keep these
// keys somewhere exact. A data key whose logical name ends in one of the
// suffixes also matches; it is then only kept more strictly than needed.
func IsControlKey(key string) bool {
	return strings.HasSuffix(key, PointerSuffix) || strings.HasSuffix(key, CounterSuffix)
}

// ParseCounter decodes a counter value as written by Increment/Decrement.
func ParseCounter(raw []byte) (int64, error) {
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("store: counter parse %q: %w", raw, err)
	}
	return n, nil
}

// FormatCounter is the inverse of ParseCounter.
func FormatCounter(n int64) []byte {
	return strconv.AppendInt(nil, n, 10)
}
