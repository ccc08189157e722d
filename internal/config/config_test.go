package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"sirikali/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantFavorites := filepath.Join(tempHome, ".config", "sirikali", "favorites")
	if cfg.Paths.FavoritesDir != wantFavorites {
		t.Fatalf("unexpected favorites dir: got %q want %q", cfg.Paths.FavoritesDir, wantFavorites)
	}
	if cfg.Paths.MountPrefix != filepath.Join(tempHome, ".SiriKali") {
		t.Fatalf("unexpected mount prefix: %q", cfg.Paths.MountPrefix)
	}
	if cfg.Mount.UnmountAttempts != config.Default().Mount.UnmountAttempts {
		t.Fatalf("unexpected unmount attempts: %d", cfg.Mount.UnmountAttempts)
	}
	if cfg.Elevation.Enabled {
		t.Fatal("expected elevation disabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.FavoritesDir, cfg.Paths.LogDir, cfg.Paths.LockDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sirikali.toml")

	type payload struct {
		Mount struct {
			ReuseMountPoint bool `toml:"reuse_mount_point"`
			UnmountAttempts int  `toml:"unmount_attempts"`
		} `toml:"mount"`
		Elevation struct {
			Enabled bool `toml:"enabled"`
		} `toml:"elevation"`
	}
	custom := payload{}
	custom.Mount.ReuseMountPoint = true
	custom.Mount.UnmountAttempts = 3
	custom.Elevation.Enabled = true

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	settings := cfg.MountSettings()
	if !settings.ReuseMountPoint {
		t.Fatal("expected reuse mount point from file")
	}
	if settings.UnmountAttempts != 3 {
		t.Fatalf("expected 3 unmount attempts, got %d", settings.UnmountAttempts)
	}
	if !settings.UsePolkit {
		t.Fatal("expected polkit enabled from file")
	}
	if settings.MountTimeout != 20*time.Second {
		t.Fatalf("unexpected mount timeout: %v", settings.MountTimeout)
	}
	if settings.UnmountTimeout != 10*time.Second {
		t.Fatalf("unexpected unmount timeout: %v", settings.UnmountTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sirikali.toml")
	content := "[mount]\nunmount_attempts = -2\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "unmount_attempts") {
		t.Fatalf("expected unmount_attempts validation error, got %v", err)
	}

	content = "[logging]\nformat = \"xml\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format validation error, got %v", err)
	}
}

func TestPolkitEnvironmentOverride(t *testing.T) {
	t.Setenv("SIRIKALI_USE_POLKIT", "yes")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Elevation.Enabled {
		t.Fatal("expected SIRIKALI_USE_POLKIT to enable elevation")
	}
}

func TestDropLegacyFavorites(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sirikali.toml")
	content := strings.Join([]string{
		"[mount]",
		"reuse_mount_point = true",
		"",
		"[favorites]",
		`legacy_list = ["/vol\t/mnt\ttrue\tN/A\tN/A\tN/A"]`,
		"",
	}, "\n")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Favorites.LegacyList) != 1 {
		t.Fatalf("expected one legacy line, got %v", cfg.Favorites.LegacyList)
	}

	if err := config.DropLegacyFavorites(configPath); err != nil {
		t.Fatalf("DropLegacyFavorites: %v", err)
	}

	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load after drop returned error: %v", err)
	}
	if len(cfg.Favorites.LegacyList) != 0 {
		t.Fatalf("expected legacy list removed, got %v", cfg.Favorites.LegacyList)
	}
	if !cfg.Mount.ReuseMountPoint {
		t.Fatal("expected unrelated settings to survive the rewrite")
	}
}

func TestCreateSampleLoads(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(target); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}
