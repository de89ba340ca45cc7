package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"multiroot/internal/registry"
	"multiroot/pkg/logging"

	"github.com/google/uuid"
)

// NoActiveConfiguration is shown in place of a name when no configuration
// exists.
const NoActiveConfiguration = "(no config)"

var (
	// ErrUnknownConfiguration is returned by SelectName for a name the
	// current registry does not contain.
	ErrUnknownConfiguration = errors.New("unknown configuration")

	// ErrNoConfigurations reports that there is nothing to select from.
	ErrNoConfigurations = errors.New("no configurations available")
)

// State is the lifecycle state of a Controller.
type State int

const (
	StateUninitialized State = iota
	StateReady
)

// String makes State satisfy the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Controller owns the registry and the globally active configuration index.
// Reads always see a complete snapshot. Mutations (Reload and the Select
// family) are serialized and their events are delivered, in order, before
// the next mutation starts.
type Controller struct {
	// opMu serializes mutations together with event delivery.
	opMu sync.Mutex

	mu          sync.RWMutex
	reg         *registry.Registry
	active      int
	state       State
	initialName string

	subMu sync.RWMutex
	subs  []subscription
}

type subscription struct {
	id string
	fn func(Event)
}

// New creates a Controller in the uninitialized state. initialName is the
// name restored on the first Reload, typically the persisted selection of a
// previous session.
func New(initialName string) *Controller {
	return &Controller{
		reg:         registry.Empty(),
		active:      registry.NoIndex,
		state:       StateUninitialized,
		initialName: initialName,
	}
}

// Subscribe registers fn for every controller event and returns a function
// that removes it. fn runs synchronously on the mutating goroutine; it may
// read from the controller but must not call Reload or a Select method.
func (c *Controller) Subscribe(fn func(Event)) func() {
	id := uuid.NewString()

	c.subMu.Lock()
	c.subs = append(c.subs, subscription{id: id, fn: fn})
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) publish(evt Event) {
	c.subMu.RLock()
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.subMu.RUnlock()

	for _, s := range subs {
		s.fn(evt)
	}
}

// Reload rebuilds the registry from doc. The name active before the rebuild
// (or the initial name on the first reload) is restored when it still
// exists. Subscribers are notified even when nothing changed.
func (c *Controller) Reload(doc *registry.Document) Snapshot {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.RLock()
	remembered := c.initialName
	initial := c.state == StateUninitialized
	if !initial {
		remembered, _ = c.reg.Name(c.active)
	}
	c.mu.RUnlock()

	reg := registry.Build(doc, remembered)
	active, _ := reg.Active()

	c.mu.Lock()
	c.reg = reg
	c.active = active
	c.state = StateReady
	snap := c.snapshotLocked()
	c.mu.Unlock()

	logging.Debug("Selection", "Reloaded %d configurations across %d folders, active %q", len(snap.Names), len(snap.Folders), snap.Name)

	c.publish(Event{Kind: EventReloaded, Initial: initial, Snapshot: snap})
	return snap
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Snapshot returns a consistent copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	name, ok := c.reg.Name(c.active)
	return Snapshot{
		Names:     c.reg.Names(),
		Folders:   c.reg.Folders(),
		Active:    c.active,
		Name:      name,
		HasActive: ok,
	}
}

// Registry returns the current registry. Registries are immutable, so the
// value stays consistent even if a reload replaces it afterwards.
func (c *Controller) Registry() *registry.Registry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg
}

// CanSupply reports whether folder participates in the registry. It does not
// say whether the active slot is populated.
func (c *Controller) CanSupply(folder string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg.HasFolder(folder)
}

// Resolve returns the configuration folder declares for the active name.
// It reports false when the folder is unknown or has no such configuration,
// meaning the caller should defer to another provider.
func (c *Controller) Resolve(folder string) (registry.NamedConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg.Lookup(folder, c.active)
}

// CurrentName returns the active configuration name.
func (c *Controller) CurrentName() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg.Name(c.active)
}

// StatusText returns the active name or NoActiveConfiguration.
func (c *Controller) StatusText() string {
	if name, ok := c.CurrentName(); ok {
		return name
	}
	return NoActiveConfiguration
}

// Names returns the configuration names in index order.
func (c *Controller) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg.Names()
}

// SelectIndex makes index i active. It returns false without notifying
// anyone when i is out of range for the current registry or already active.
func (c *Controller) SelectIndex(i int) bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if i < 0 || i >= c.reg.Len() {
		c.mu.Unlock()
		logging.Debug("Selection", "Ignoring stale selection index %d", i)
		return false
	}
	if i == c.active {
		c.mu.Unlock()
		return false
	}
	c.active = i
	snap := c.snapshotLocked()
	c.mu.Unlock()

	logging.Info("Selection", "Active configuration changed to %q", snap.Name)

	c.publish(Event{Kind: EventSelectionChanged, Snapshot: snap})
	return true
}

// SelectName makes the named configuration active.
func (c *Controller) SelectName(name string) (bool, error) {
	c.mu.RLock()
	i, ok := c.reg.IndexOf(name)
	c.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownConfiguration, name)
	}
	return c.SelectIndex(i), nil
}

// SelectByUserChoice offers the current names to picker and activates the
// chosen one. An empty registry, a cancelled or failed pick, or a cancelled
// ctx leave the state untouched. The pick is checked against whatever
// registry is current when the picker returns, so a choice made before an
// intervening reload is only applied if its index is still valid.
func (c *Controller) SelectByUserChoice(ctx context.Context, picker Picker) bool {
	names := c.Names()
	if len(names) == 0 {
		logging.Debug("Selection", "No configurations to choose from")
		return false
	}

	items := make([]Item, len(names))
	for i, n := range names {
		items[i] = Item{Label: n, Index: i}
	}

	choice, ok, err := picker.Pick(ctx, items)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			logging.Warn("Selection", "Configuration picker failed: %v", err)
		}
		return false
	}
	if !ok {
		return false
	}

	return c.SelectIndex(choice.Index)
}
