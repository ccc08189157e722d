package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sirikali/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// BackendBinaries are the executables stubbed by WithStubbedBinaries when no
// names are given.
var BackendBinaries = []string{"gocryptfs", "cryfs", "encfs", "sshfs", "ecryptfs-simple", "fusermount"}

// NewConfig produces a config seeded with unique temp directories per test.
// Directories are created so commands can run against it directly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.FavoritesDir = filepath.Join(base, "favorites")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	cfgVal.Paths.LockDir = filepath.Join(base, "run")
	cfgVal.Paths.MountPrefix = filepath.Join(base, "mnt")
	cfgVal.Mount.MountTimeoutMs = 2000
	cfgVal.Mount.UnmountTimeoutMs = 2000

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithReuseMountPoint toggles mount point reuse on the test config.
func WithReuseMountPoint(reuse bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Mount.ReuseMountPoint = reuse
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// adds their directory to the executable search path. If names is empty,
// every backend is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = BackendBinaries
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.cfg.Mount.ExecutableSearchPath = append([]string{binDir}, b.cfg.Mount.ExecutableSearchPath...)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.FavoritesDir)
}
