package selection

import "context"

// EventKind identifies what caused a controller event.
type EventKind int

const (
	// EventReloaded follows every Reload, whether or not anything changed.
	EventReloaded EventKind = iota
	// EventSelectionChanged follows a change of the active index.
	EventSelectionChanged
)

// String makes EventKind satisfy the fmt.Stringer interface.
func (k EventKind) String() string {
	switch k {
	case EventReloaded:
		return "reloaded"
	case EventSelectionChanged:
		return "selection-changed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after each mutation. Every event means
// both the per-file configurations and the browse configurations may have
// changed.
type Event struct {
	Kind EventKind
	// Initial is set on the event of the first Reload.
	Initial  bool
	Snapshot Snapshot
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Names     []string
	Folders   []string
	Active    int
	Name      string
	HasActive bool
}

// StatusText returns the active name or NoActiveConfiguration.
func (s Snapshot) StatusText() string {
	if s.HasActive {
		return s.Name
	}
	return NoActiveConfiguration
}

// Item is one entry offered to a Picker. Index refers to the name index at
// the time the picker was opened.
type Item struct {
	Label string
	Index int
}

// Picker asks the user to choose one item. It returns false when the user
// cancels.
type Picker interface {
	Pick(ctx context.Context, items []Item) (Item, bool, error)
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(ctx context.Context, items []Item) (Item, bool, error)

// Pick calls f.
func (f PickerFunc) Pick(ctx context.Context, items []Item) (Item, bool, error) {
	return f(ctx, items)
}
