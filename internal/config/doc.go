// Package config loads, normalizes, and validates sirikali configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SIRIKALI_USE_POLKIT. The Config type centralizes the global mount defaults
// (timeouts, retry counts, reuse-mount-point, hooks) that favorites defer to
// through their unset tri-state fields.
//
// Components never read the file themselves: the CLI loads it once and hands
// MountSettings to the orchestrator.
package config
