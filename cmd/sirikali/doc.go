// Package main hosts the sirikali CLI entrypoint and command graph.
//
// The Cobra-based command tree manages favorite volumes, creates, mounts and
// unmounts encrypted folders through the mount orchestrator, lists active
// mounts and backend availability, and runs the automount watcher. It
// centralizes configuration resolution, the one-time legacy favorites
// migration and logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Passwords are never accepted as flags. They come from a key file, the
// SIRIKALI_KEY environment variable or a single line on stdin.
package main
