package mount

import (
	"os"
	"runtime"

	"sirikali/internal/fileutil"
)

// Platform abstracts the host facts and folder operations the orchestrator
// needs.
type Platform interface {
	OS() string
	PathExists(path string) bool
	CreateFolder(path string) error
	RemoveFolder(path string) error
	// CanRemoveFolders is false where mount points are owned by the
	// filesystem driver and must not be deleted.
	CanRemoveFolders() bool
}

// HostPlatform is the Platform of the running process.
type HostPlatform struct{}

func (HostPlatform) OS() string { return runtime.GOOS }

func (HostPlatform) PathExists(path string) bool { return fileutil.PathExists(path) }

func (HostPlatform) CreateFolder(path string) error { return os.Mkdir(path, 0o700) }

func (HostPlatform) RemoveFolder(path string) error { return fileutil.RemoveEmptyDir(path) }

func (HostPlatform) CanRemoveFolders() bool { return runtime.GOOS != "windows" }
