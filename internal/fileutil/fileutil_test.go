package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "record.json")

	if err := WriteFileAtomic(target, []byte("first"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(target, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode mismatch: got %o", info.Mode().Perm())
	}
	assertNoTempFiles(t, dir)
}

func TestWriteNewFileAtomicRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "record.json")

	if err := WriteNewFileAtomic(target, []byte("first"), 0o600); err != nil {
		t.Fatal(err)
	}
	err := WriteNewFileAtomic(target, []byte("second"), 0o600)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected fs.ErrExist, got %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Fatalf("existing record was modified: %q", got)
	}
	assertNoTempFiles(t, dir)
}

func TestRemoveEmptyDir(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	full := filepath.Join(dir, "full")
	if err := os.Mkdir(empty, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(full, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(full, "keep"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := RemoveEmptyDir(empty); err != nil {
		t.Fatalf("remove empty: %v", err)
	}
	if PathExists(empty) {
		t.Fatal("expected empty dir removed")
	}
	if err := RemoveEmptyDir(full); err == nil {
		t.Fatal("expected error removing non-empty dir")
	}
	if !PathExists(full) {
		t.Fatal("non-empty dir must survive")
	}
	if err := RemoveEmptyDir(filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if IsTemp(entry.Name()) {
			t.Fatalf("temporary file left behind: %s", entry.Name())
		}
	}
}
