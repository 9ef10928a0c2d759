package orbital

import (
	"context"
	"errors"
	"testing"

	"github.com/unkn0wn-root/orbital/codec"
)

func TestParseOpAllowList(t *testing.T) {
	names := []string{
		"has", "missing", "get", "pull", "put", "add", "forever", "forget",
		"increment", "decrement", "remember", "rememberForever", "sear",
	}
	seen := map[Op]bool{}
	for _, name := range names {
		op, err := ParseOp(name)
		if err != nil {
			t.Fatalf("ParseOp(%q): %v", name, err)
		}
		if op.String() != name {
			t.Fatalf("round trip %q -> %s", name, op)
		}
		seen[op] = true
	}
	if len(seen) != len(names) {
		t.Fatalf("ops not distinct: %v", seen)
	}

	for _, bad := range []string{"frobnicate", "flush", "Get", "", "tags"} {
		if _, err := ParseOp(bad); !errors.Is(err, ErrUnsupportedOperation) {
			t.Fatalf("ParseOp(%q): expected ErrUnsupportedOperation, got %v", bad, err)
		}
	}
	if s := Op(99).String(); s != "op(99)" {
		t.Fatalf("unknown op string: %q", s)
	}
}

func TestDoRejectsUnknownOpWithoutStoreCalls(t *testing.T) {
	f := newFixture(t)
	mustOrbit(t, f.coord)
	f.st.reset()

	for _, op := range []Op{0, OpSear + 1, 200} {
		_, err := f.cache.Do(context.Background(), Call[string]{Op: op, Key: "x"})
		if !errors.Is(err, ErrUnsupportedOperation) {
			t.Fatalf("%s: expected ErrUnsupportedOperation, got %v", op, err)
		}
	}
	if calls := f.st.Calls(); len(calls) != 0 {
		t.Fatalf("store touched by rejected ops: %v", calls)
	}
}

func TestDoDispatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	computed := func(s string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) { return s, nil }
	}

	steps := []struct {
		call  Call[string]
		value string
		ok    bool
	}{
		{Call[string]{Op: OpMissing, Key: "a"}, "", true},
		{Call[string]{Op: OpPut, Key: "a", Value: "1"}, "", false},
		{Call[string]{Op: OpHas, Key: "a"}, "", true},
		{Call[string]{Op: OpGet, Key: "a"}, "1", true},
		{Call[string]{Op: OpAdd, Key: "a", Value: "2"}, "", false},
		{Call[string]{Op: OpAdd, Key: "b", Value: "2"}, "", true},
		{Call[string]{Op: OpRemember, Key: "b", Compute: computed("unused")}, "2", false},
		{Call[string]{Op: OpRememberForever, Key: "c", Compute: computed("3")}, "3", false},
		{Call[string]{Op: OpSear, Key: "c", Compute: computed("4")}, "4", false},
		{Call[string]{Op: OpForever, Key: "d", Value: "5"}, "", false},
		{Call[string]{Op: OpPull, Key: "d"}, "5", true},
		{Call[string]{Op: OpGet, Key: "d"}, "", false},
		{Call[string]{Op: OpForget, Key: "a"}, "", false},
		{Call[string]{Op: OpMissing, Key: "a"}, "", true},
	}
	for i, s := range steps {
		r, err := f.cache.Do(ctx, s.call)
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, s.call.Op, err)
		}
		if r.Value != s.value || r.OK != s.ok {
			t.Fatalf("step %d (%s): got value=%q ok=%v, want %q %v", i, s.call.Op, r.Value, r.OK, s.value, s.ok)
		}
	}
}

func TestDoCounters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	counts, err := NewCache[int64](f.coord, codec.JSON[int64]{}, 0)
	if err != nil {
		t.Fatal(err)
	}

	r, err := counts.Do(ctx, Call[int64]{Op: OpIncrement, Key: "hits"})
	if err != nil || r.N != 1 {
		t.Fatalf("increment by default step: %d %v", r.N, err)
	}
	r, err = counts.Do(ctx, Call[int64]{Op: OpIncrement, Key: "hits", By: 5})
	if err != nil || r.N != 6 {
		t.Fatalf("increment by 5: %d %v", r.N, err)
	}
	r, err = counts.Do(ctx, Call[int64]{Op: OpDecrement, Key: "hits", By: 2})
	if err != nil || r.N != 4 {
		t.Fatalf("decrement by 2: %d %v", r.N, err)
	}
	r, err = counts.Do(ctx, Call[int64]{Op: OpGet, Key: "hits"})
	if err != nil || !r.OK || r.Value != 4 {
		t.Fatalf("counter readable through codec: %+v %v", r, err)
	}
}

func TestDoComputeRequired(t *testing.T) {
	f := newFixture(t)
	for _, op := range []Op{OpRemember, OpRememberForever, OpSear} {
		if _, err := f.cache.Do(context.Background(), Call[string]{Op: op, Key: "x"}); !errors.Is(err, ErrComputeRequired) {
			t.Fatalf("%s without compute: %v", op, err)
		}
	}
}
