// Package mountinfo reads the active mount table from /proc.
package mountinfo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"
)

// ErrNotMounted is returned when no mount exists at a path.
var ErrNotMounted = errors.New("not mounted")

// Mount is one active mount.
type Mount struct {
	Source     string
	MountPoint string
	FSType     string
	ReadOnly   bool
}

// readMounts is swapped in tests.
var readMounts = procfs.GetMounts

// List returns the mounts visible to this process.
func List() ([]Mount, error) {
	infos, err := readMounts()
	if err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	mounts := make([]Mount, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		_, ro := info.Options["ro"]
		mounts = append(mounts, Mount{
			Source:     unescape(info.Source),
			MountPoint: unescape(info.MountPoint),
			FSType:     info.FSType,
			ReadOnly:   ro,
		})
	}
	return mounts, nil
}

// Lookup returns the mount at mountPoint. When several mounts are stacked on
// the same path the topmost one wins.
func Lookup(mountPoint string) (Mount, bool, error) {
	mounts, err := List()
	if err != nil {
		return Mount{}, false, err
	}
	target := filepath.Clean(mountPoint)
	var found Mount
	ok := false
	for _, m := range mounts {
		if filepath.Clean(m.MountPoint) == target {
			found, ok = m, true
		}
	}
	return found, ok, nil
}

// FilesystemType returns the filesystem type mounted at mountPoint.
func FilesystemType(mountPoint string) (string, error) {
	m, ok, err := Lookup(mountPoint)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%s: %w", mountPoint, ErrNotMounted)
	}
	return m.FSType, nil
}

// IsMounted reports whether something is mounted at mountPoint. Errors
// reading the table count as not mounted.
func IsMounted(mountPoint string) bool {
	_, ok, err := Lookup(mountPoint)
	return err == nil && ok
}

// unescape decodes the octal escapes (\040 for space) the kernel uses in
// mount table fields.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
