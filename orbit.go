package orbital

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/unkn0wn-root/orbital/store"
)

// Orbit identifies one of the two cache generations.
type Orbit uint8

const (
	Orbit0 Orbit = 0
	Orbit1 Orbit = 1
)

// Other returns the orbit that is not o.
func (o Orbit) Other() Orbit { return 1 - o }

func (o Orbit) Valid() bool { return o == Orbit0 || o == Orbit1 }

func (o Orbit) String() string { return strconv.Itoa(int(o)) }

// Config wires a Coordinator. Only Store is required.
type Config struct {
	Store store.Store

	Prefix       string        // key prefix; "" => "orbital-cache"
	Logger       Logger        // nil => NopLogger
	Hooks        Hooks         // nil => NopHooks
	PollInterval time.Duration // drain poll interval; 0 => 100ms
	SwitchWait   time.Duration // default max drain wait for Switch; 0 => 10s
}

// Coordinator owns the orbit pointer, the operating counters and the switch protocol.
// All state lives in the store; a Coordinator holds no orbit state of its own and
// any number of them (in any number of processes) may share one store.
type Coordinator struct {
	st         store.Store
	prefix     string
	log        Logger
	hooks      Hooks
	poll       time.Duration
	switchWait time.Duration
}

func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Store == nil {
		return nil, ErrStoreRequired
	}
	return &Coordinator{
		st:         cfg.Store,
		prefix:     coalesce(cfg.Prefix, defaultPrefix),
		log:        coalesce[Logger](cfg.Logger, NopLogger{}),
		hooks:      coalesce[Hooks](cfg.Hooks, NopHooks{}),
		poll:       coalesce(cfg.PollInterval, defaultPollInterval),
		switchWait: coalesce(cfg.SwitchWait, defaultSwitchWait),
	}, nil
}

// Store returns the store the coordinator runs on.
func (c *Coordinator) Store() store.Store { return c.st }

// Close closes the store. Every Cache attached to c stops working with it.
func (c *Coordinator) Close(ctx context.Context) error { return c.st.Close(ctx) }

func (c *Coordinator) pointerKey() string { return c.prefix + store.PointerSuffix }
func (c *Coordinator) lockKey() string    { return c.prefix + ":switching" }

func (c *Coordinator) counterKey(o Orbit) string {
	return c.prefix + ":" + o.String() + store.CounterSuffix
}

// DataKey namespaces a logical key into orbit o.
// Keys for the same logical key in different orbits never collide.
func (c *Coordinator) DataKey(o Orbit, key string) string {
	return c.prefix + ":" + o.String() + ":data:" + key
}

// Key namespaces a logical key into the current orbit.
func (c *Coordinator) Key(ctx context.Context, key string) (string, error) {
	o, err := c.CurrentOrbit(ctx)
	if err != nil {
		return "", err
	}
	return c.DataKey(o, key), nil
}

// CurrentOrbit reads the live orbit from the store. On first use the pointer
// does not exist yet; it is created as orbit 0 (first writer wins) and the
// stored value is returned.
func (c *Coordinator) CurrentOrbit(ctx context.Context) (Orbit, error) {
	raw, ok, err := c.st.Get(ctx, c.pointerKey())
	if err != nil {
		return 0, err
	}
	if ok {
		return c.parseOrbit(raw)
	}

	added, err := c.st.Add(ctx, c.pointerKey(), []byte(Orbit0.String()), 0)
	if err != nil {
		return 0, err
	}
	if added {
		c.log.Debug("orbit pointer initialized", Fields{"orbit": Orbit0})
		return Orbit0, nil
	}
	// lost the race to another initializer (or a switch); use what it wrote
	raw, ok, err = c.st.Get(ctx, c.pointerKey())
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s vanished during initialization", ErrCorruptOrbit, c.pointerKey())
	}
	return c.parseOrbit(raw)
}

func (c *Coordinator) parseOrbit(raw []byte) (Orbit, error) {
	switch string(raw) {
	case "0":
		return Orbit0, nil
	case "1":
		return Orbit1, nil
	}
	return 0, fmt.Errorf("%w: %s=%q", ErrCorruptOrbit, c.pointerKey(), raw)
}

// setOrbit persists o as the live orbit. Only Switch calls it.
func (c *Coordinator) setOrbit(ctx context.Context, o Orbit) error {
	if !o.Valid() {
		return fmt.Errorf("%w: refusing to store %d", ErrCorruptOrbit, o)
	}
	return c.st.Put(ctx, c.pointerKey(), []byte(o.String()), 0)
}

// InFlight returns the operating counter for o; a missing counter reads as 0.
// The value can be negative after mismatched enter/exit pairs.
func (c *Coordinator) InFlight(ctx context.Context, o Orbit) (int64, error) {
	raw, ok, err := c.st.Get(ctx, c.counterKey(o))
	if err != nil || !ok {
		return 0, err
	}
	return store.ParseCounter(raw)
}
