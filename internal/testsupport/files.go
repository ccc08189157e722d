package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with data, making parent directories as needed.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// NewVolume creates a cipher folder under the config base directory holding
// the given backend marker file, and returns the folder path.
func NewVolume(t testing.TB, baseDir, name, marker string) string {
	t.Helper()

	dir := filepath.Join(baseDir, "volumes", name)
	WriteFile(t, filepath.Join(dir, marker), []byte("{}"))
	return dir
}
