// Package history journals create, mount and unmount outcomes in SQLite.
//
// The journal is append-only and purely informational: the orchestrator
// never reads it back to make decisions. `sirikali history` lists recent
// events so a failed automount can be diagnosed after the fact.
package history
