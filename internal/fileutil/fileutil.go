// Package fileutil provides filesystem helpers for durable record writes and
// mount-folder housekeeping.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TempPrefix marks in-flight temporary files so directory scans can skip them.
const TempPrefix = ".sirikali-tmp-"

// WriteFileAtomic writes data to a temporary file, fsyncs, then renames to path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath, err := writeTemp(path, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("atomic write rename: %w", err)
	}
	return FsyncDir(filepath.Dir(path))
}

// WriteNewFileAtomic behaves like WriteFileAtomic but fails with
// fs.ErrExist when path is already present. The final link is atomic, so two
// concurrent writers cannot both succeed.
func WriteNewFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath, err := writeTemp(path, data, perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	if err := os.Link(tmpPath, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("atomic create %s: %w", filepath.Base(path), fs.ErrExist)
		}
		return fmt.Errorf("atomic create link: %w", err)
	}
	return FsyncDir(filepath.Dir(path))
}

func writeTemp(path string, data []byte, perm os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("atomic write create tmp: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("atomic write: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return "", fmt.Errorf("atomic write chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("atomic write fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("atomic write close: %w", err)
	}
	success = true
	return tmpPath, nil
}

// FsyncDir fsyncs a directory so a rename or link is durable.
func FsyncDir(dirPath string) error {
	d, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("fsync dir open: %w", err)
	}
	defer d.Close()
	return d.Sync()
}

// IsTemp reports whether name is an in-flight temporary file.
func IsTemp(name string) bool {
	return strings.HasPrefix(name, TempPrefix)
}

// PathExists reports whether path can be stat'ed.
func PathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// RemoveEmptyDir removes path only when it is an empty directory. Missing
// paths are not an error.
func RemoveEmptyDir(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("remove %s: not a directory", path)
	}
	return os.Remove(path)
}
