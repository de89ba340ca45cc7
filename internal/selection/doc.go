// Package selection holds the globally active configuration and answers
// per-folder configuration lookups against it.
//
// A Controller owns the current registry and the active index. Reload
// rebuilds the registry from a document and restores the previously active
// name when it still exists; SelectIndex, SelectName and SelectByUserChoice
// move the active index. Every mutation is followed by an Event to all
// subscribers, which is how the status line, the persisted state and the
// host API learn about changes:
//
//	ctrl := selection.New(lastName)
//	ctrl.Subscribe(func(evt selection.Event) {
//	    fmt.Println(evt.Snapshot.StatusText())
//	})
//	ctrl.Reload(doc)
//
// Reload and SelectIndex fully replace state before any subscriber or
// reader observes it.
package selection
