package mount

import (
	"sirikali/internal/config"
	"sirikali/internal/engines"
	"sirikali/internal/favorites"
)

// OptionsForEntry builds the per-attempt options for a favorite, resolving
// unset tri-states against the global defaults.
func OptionsForEntry(e favorites.Entry, key string, s config.MountSettings) engines.Options {
	return engines.Options{
		CipherFolder:       e.VolumePath,
		PlainFolder:        e.MountPointPath,
		Key:                key,
		KeyFile:            e.KeyFile,
		IdleTimeout:        e.IdleTimeOut,
		ConfigFilePath:     e.ConfigFilePath,
		MountOptions:       e.MountOptions,
		ReverseMode:        e.ReverseMode,
		ReadOnly:           e.ReadOnlyMode.Resolve(s.ReadOnlyDefault),
		PreMountCommand:    e.PreMountCommand,
		PostMountCommand:   e.PostMountCommand,
		PreUnmountCommand:  e.PreUnmountCommand,
		PostUnmountCommand: e.PostUnmountCommand,
	}
}

// UnmountRequestForEntry builds an unmount request for a favorite.
func UnmountRequestForEntry(e favorites.Entry) UnmountRequest {
	return UnmountRequest{
		CipherFolder:       e.VolumePath,
		MountPoint:         e.MountPointPath,
		PreUnmountCommand:  e.PreUnmountCommand,
		PostUnmountCommand: e.PostUnmountCommand,
	}
}
