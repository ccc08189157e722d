// Package task runs external backend commands off the caller's goroutine.
//
// A Runner starts a Request and hands back a Task that completes when the
// process exits or its timeout fires. Secrets travel on stdin and never in
// argv. When elevation is configured, requests that ask for it are wrapped
// with the helper (pkexec by default). Prefer this package over direct
// exec.Command usage so tests can swap the Executor.
package task
