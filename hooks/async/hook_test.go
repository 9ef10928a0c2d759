package asynchook

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/orbital"
)

type recorder struct {
	orbital.NopHooks

	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (r *recorder) add(ev string) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) SwitchContended()                                    { r.add("contended") }
func (r *recorder) SwitchCompleted(_, _ orbital.Orbit, _ time.Duration) { r.add("completed") }
func (r *recorder) SwitchFailed(stage string, _ error)                  { r.add("failed:" + stage) }
func (r *recorder) LockReleaseError(error)                              { r.add("lock") }
func (r *recorder) TrackReleaseError(orbital.Orbit, error)              { r.add("track") }

func TestCloseDeliversQueuedEvents(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 1, 16)

	h.SwitchContended()
	h.SwitchCompleted(orbital.Orbit0, orbital.Orbit1, time.Millisecond)
	h.SwitchFailed(orbital.StageFlip, errors.New("x"))
	h.LockReleaseError(errors.New("y"))
	h.TrackReleaseError(orbital.Orbit1, errors.New("z"))
	h.Close()
	h.Close() // idempotent

	got := rec.Events()
	want := []string{"contended", "completed", "failed:flip", "lock", "track"}
	if len(got) != len(want) {
		t.Fatalf("events: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events: got %v want %v", got, want)
		}
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped: %d", h.Dropped())
	}
}

func TestFullQueueDrops(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	h := New(rec, 1, 1)

	// the worker takes the first event and blocks on it; the second fills the queue
	h.SwitchContended()
	deadline := time.Now().Add(time.Second)
	for len(h.q) != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.SwitchContended()
	h.SwitchContended()
	h.SwitchContended()

	if d := h.Dropped(); d != 2 {
		t.Fatalf("dropped: got %d want 2", d)
	}
	close(rec.block)
	h.Close()
	if n := len(rec.Events()); n != 2 {
		t.Fatalf("delivered: %d", n)
	}
}
