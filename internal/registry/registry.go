package registry

// NoIndex is returned by Active when the registry holds no names.
const NoIndex = -1

// Registry is the immutable result of Build. Names are indexed densely in the
// order they are first seen; every folder gets a slot slice of the same
// length, holding its own configuration for each name it declares.
type Registry struct {
	names       []string
	index       map[string]int
	folders     map[string][]*NamedConfig
	folderOrder []string
	active      int
}

// Empty returns a registry with no folders and no names.
func Empty() *Registry {
	return Build(nil, "")
}

// Build indexes doc and resolves the initial active index. When remembered
// names a configuration that still exists it becomes active, otherwise index
// 0 is used. A nil or empty document produces an empty registry.
func Build(doc *Document, remembered string) *Registry {
	r := &Registry{
		index:   make(map[string]int),
		folders: make(map[string][]*NamedConfig),
		active:  NoIndex,
	}

	if doc.IsEmpty() {
		return r
	}

	// Names first, so every folder slice can be sized to the final count.
	for _, folder := range doc.Folders {
		for _, cfg := range folder.Configurations {
			if _, seen := r.index[cfg.Name]; !seen {
				r.index[cfg.Name] = len(r.names)
				r.names = append(r.names, cfg.Name)
			}
		}
	}

	for _, folder := range doc.Folders {
		slots := make([]*NamedConfig, len(r.names))
		for i := range folder.Configurations {
			cfg := folder.Configurations[i]
			slots[r.index[cfg.Name]] = &cfg
		}
		if _, dup := r.folders[folder.Name]; !dup {
			r.folderOrder = append(r.folderOrder, folder.Name)
		}
		// A repeated folder name replaces the earlier entry.
		r.folders[folder.Name] = slots
	}

	if len(r.names) > 0 {
		r.active = 0
		if remembered != "" {
			if i, ok := r.index[remembered]; ok {
				r.active = i
			}
		}
	}

	return r
}

// Len returns the number of distinct configuration names.
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns the configuration names in index order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Name returns the name stored at index i.
func (r *Registry) Name(i int) (string, bool) {
	if i < 0 || i >= len(r.names) {
		return "", false
	}
	return r.names[i], true
}

// IndexOf returns the index assigned to name.
func (r *Registry) IndexOf(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Active returns the index resolved at build time, or NoIndex with false
// when there are no names.
func (r *Registry) Active() (int, bool) {
	return r.active, r.active != NoIndex
}

// Folders returns the folder names in document order.
func (r *Registry) Folders() []string {
	out := make([]string, len(r.folderOrder))
	copy(out, r.folderOrder)
	return out
}

// HasFolder reports whether folder declared a configuration list, even an
// empty one.
func (r *Registry) HasFolder(folder string) bool {
	_, ok := r.folders[folder]
	return ok
}

// Slots returns a copy of the slot slice for folder. Empty slots are nil.
func (r *Registry) Slots(folder string) ([]*NamedConfig, bool) {
	slots, ok := r.folders[folder]
	if !ok {
		return nil, false
	}
	out := make([]*NamedConfig, len(slots))
	for i, cfg := range slots {
		if cfg != nil {
			c := *cfg
			out[i] = &c
		}
	}
	return out, true
}

// Lookup returns the configuration folder declares for index i. It reports
// false when the folder is unknown, the index is out of range, or the folder
// does not declare that name.
func (r *Registry) Lookup(folder string, i int) (NamedConfig, bool) {
	slots, ok := r.folders[folder]
	if !ok || i < 0 || i >= len(slots) || slots[i] == nil {
		return NamedConfig{}, false
	}
	return *slots[i], true
}
