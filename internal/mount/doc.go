// Package mount orchestrates creating, mounting and unmounting encrypted
// volumes.
//
// Every request runs on a bounded background pool and returns a Future that
// resolves to an engines.CmdStatus. Backend failures never surface as Go
// errors: they are classified by the backend descriptor into a status code the
// CLI translates for the user.
//
// Mount resolves the backend from the request itself: an "sshfs " prefix on
// the cipher folder, a config marker file inside the cipher folder, the suffix
// of an explicit config path, or a "[[[engine]]]path" hint. Unmount retries
// with a fixed one-second spacing and, for ecryptfs, tries to start the
// elevation service at most once per call when the helper reports that it
// could not set its group id.
package mount
