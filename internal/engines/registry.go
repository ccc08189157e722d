package engines

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrUnknownEngine is returned when a lookup names no registered backend.
var ErrUnknownEngine = errors.New("unknown engine")

// Registry maps names, config markers and filesystem types to descriptors.
type Registry struct {
	engines    []*Descriptor
	searchPath []string
}

// NewRegistry returns a registry with every supported backend. Executables
// are looked up in searchPath before $PATH.
func NewRegistry(searchPath ...string) *Registry {
	return &Registry{
		// Marker scans walk engines in this order.
		engines: []*Descriptor{
			newEcryptfs(),
			newGocryptfs(),
			newCryfs(),
			newEncfs(),
			newSshfs(),
		},
		searchPath: append([]string(nil), searchPath...),
	}
}

// All returns the registered descriptors in registry order.
func (r *Registry) All() []*Descriptor {
	return append([]*Descriptor(nil), r.engines...)
}

// Names returns the canonical engine names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for _, d := range r.engines {
		names = append(names, d.Name)
	}
	return names
}

// ByName looks up a backend by name or alias, case-insensitively.
func (r *Registry) ByName(name string) (*Descriptor, error) {
	name = strings.TrimSpace(name)
	for _, d := range r.engines {
		if d.Matches(name) {
			return d, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// ForOptions resolves the backend named by opts.Type.
func (r *Registry) ForOptions(opts Options) (*Descriptor, error) {
	return r.ByName(opts.Type)
}

// ByConfigFileNames returns the first engine and marker for which match
// holds, or Unknown and "" when none does.
func (r *Registry) ByConfigFileNames(match func(marker string) bool) (*Descriptor, string) {
	for _, d := range r.engines {
		for _, marker := range d.ConfigFileNames {
			if match(marker) {
				return d, marker
			}
		}
	}
	return Unknown, ""
}

// ByFilesystemType maps a mount-table filesystem type to its backend.
func (r *Registry) ByFilesystemType(fstype string) (*Descriptor, bool) {
	fstype = strings.ToLower(strings.TrimSpace(fstype))
	for _, d := range r.engines {
		for _, t := range d.FilesystemTypes {
			if t == fstype {
				return d, true
			}
		}
	}
	return Unknown, false
}

// ExecutablePath resolves d's executable to an absolute path, or "" when no
// executable copy is found.
func (r *Registry) ExecutablePath(d *Descriptor) string {
	if !d.Known() {
		return ""
	}
	return r.LookPath(d.Executable)
}

// LookPath searches the configured directories and then $PATH for an
// executable file named name.
func (r *Registry) LookPath(name string) string {
	if name == "" {
		return ""
	}
	if strings.Contains(name, "/") {
		if isExecutable(name) {
			return name
		}
		return ""
	}
	dirs := append([]string(nil), r.searchPath...)
	dirs = append(dirs, filepath.SplitList(os.Getenv("PATH"))...)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate
		}
	}
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

// IsSetuidRoot reports whether path is owned by root with the setuid bit set.
func IsSetuidRoot(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	return st.Uid == 0 && st.Mode&unix.S_ISUID != 0
}
