// Package registry indexes named compiler configurations across workspace
// folders.
//
// A Document lists folders, each with its own named configurations. Build
// assigns every distinct configuration name a dense index in first-seen
// order, scanning folders top to bottom and configurations top to bottom.
// Each folder then gets a slot slice as long as the number of names, where
// slot i holds that folder's own configuration for name i, or nothing:
//
//	app: [debug, release]
//	lib: [   -   , release]
//
// Two folders that declare the same name share the index but keep their own
// values. A registry is never patched; every reload builds a new one.
package registry
