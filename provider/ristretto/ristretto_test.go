package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/unkn0wn-root/orbital/store/local"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("zero config accepted")
	}
}

func TestSetIsVisibleImmediately(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	ok, err := p.Set(ctx, "k", []byte("v"), 1, -time.Second)
	if err != nil || !ok {
		t.Fatalf("Set: %v %v", ok, err)
	}
	if v, hit, _ := p.Get(ctx, "k"); !hit || string(v) != "v" {
		t.Fatalf("Get right after Set: %q %v", v, hit)
	}
}

func TestBacksLocalCounters(t *testing.T) {
	ctx := context.Background()
	st := local.New(local.Config{Provider: newProvider(t)})

	for i := 0; i < 10; i++ {
		if _, err := st.Increment(ctx, "n", 1); err != nil {
			t.Fatal(err)
		}
	}
	n, err := st.Decrement(ctx, "n", 3)
	if err != nil || n != 7 {
		t.Fatalf("counter: %d %v", n, err)
	}
}
