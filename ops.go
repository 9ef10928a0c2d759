package orbital

import (
	"context"
	"fmt"
	"time"
)

// Op names one operation of the forwarding allow-list. Prefer the typed View
// methods; Op and Do exist for callers that route operations by name.
type Op uint8

const (
	OpHas Op = iota + 1
	OpMissing
	OpGet
	OpPull
	OpPut
	OpAdd
	OpForever
	OpForget
	OpIncrement
	OpDecrement
	OpRemember
	OpRememberForever
	OpSear
)

var opNames = [...]string{
	OpHas:             "has",
	OpMissing:         "missing",
	OpGet:             "get",
	OpPull:            "pull",
	OpPut:             "put",
	OpAdd:             "add",
	OpForever:         "forever",
	OpForget:          "forget",
	OpIncrement:       "increment",
	OpDecrement:       "decrement",
	OpRemember:        "remember",
	OpRememberForever: "rememberForever",
	OpSear:            "sear",
}

func (o Op) Valid() bool { return o >= OpHas && o <= OpSear }

func (o Op) String() string {
	if !o.Valid() {
		return fmt.Sprintf("op(%d)", uint8(o))
	}
	return opNames[o]
}

// ParseOp maps an operation name to its Op. Names outside the allow-list fail
// with ErrUnsupportedOperation.
func ParseOp(name string) (Op, error) {
	for op := OpHas; op <= OpSear; op++ {
		if opNames[op] == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedOperation, name)
}

// Call carries the arguments of one Do. Fields an Op does not use are ignored.
type Call[V any] struct {
	Op      Op
	Key     string
	Value   V                                // Put, Add, Forever
	TTL     time.Duration                    // Put, Add, Remember
	By      int64                            // Increment, Decrement; 0 => 1
	Compute func(context.Context) (V, error) // Remember, RememberForever, Sear
}

// Result carries what one Do produced.
type Result[V any] struct {
	Value V     // Get, Pull, Remember, RememberForever, Sear
	OK    bool  // Has, Missing, Get/Pull hit, Add wrote
	N     int64 // Increment, Decrement
}

// Do dispatches call to the matching View method. An Op outside the
// allow-list fails with ErrUnsupportedOperation before the store is touched.
func (v *View[V]) Do(ctx context.Context, call Call[V]) (Result[V], error) {
	var (
		r   Result[V]
		err error
	)
	by := call.By
	if by == 0 {
		by = 1
	}

	switch call.Op {
	case OpHas:
		r.OK, err = v.Has(ctx, call.Key)
	case OpMissing:
		r.OK, err = v.Missing(ctx, call.Key)
	case OpGet:
		r.Value, r.OK, err = v.Get(ctx, call.Key)
	case OpPull:
		r.Value, r.OK, err = v.Pull(ctx, call.Key)
	case OpPut:
		err = v.Put(ctx, call.Key, call.Value, call.TTL)
	case OpAdd:
		r.OK, err = v.Add(ctx, call.Key, call.Value, call.TTL)
	case OpForever:
		err = v.Forever(ctx, call.Key, call.Value)
	case OpForget:
		err = v.Forget(ctx, call.Key)
	case OpIncrement:
		r.N, err = v.Increment(ctx, call.Key, by)
	case OpDecrement:
		r.N, err = v.Decrement(ctx, call.Key, by)
	case OpRemember:
		r.Value, err = v.Remember(ctx, call.Key, call.TTL, call.Compute)
	case OpRememberForever:
		r.Value, err = v.RememberForever(ctx, call.Key, call.Compute)
	case OpSear:
		r.Value, err = v.Sear(ctx, call.Key, call.Compute)
	default:
		return r, fmt.Errorf("%w: %s", ErrUnsupportedOperation, call.Op)
	}
	return r, err
}
