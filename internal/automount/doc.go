// Package automount mounts favorites flagged for automatic mounting.
//
// Mounter walks the favorites store and mounts every volume that is present,
// not yet mounted and can be opened without prompting. Watcher re-runs the
// Mounter when udev reports new or changed block devices, so volumes on
// removable drives mount as soon as the drive appears. Only one watcher runs
// per user; the lock lives in the configured lock directory.
package automount
