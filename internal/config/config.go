package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"sirikali/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	FavoritesDir string `toml:"favorites_dir"`
	LogDir       string `toml:"log_dir"`
	HistoryDB    string `toml:"history_db"`
	LockDir      string `toml:"lock_dir"`
	MountPrefix  string `toml:"mount_prefix"`
}

// Mount contains the global defaults consulted by the mount orchestrator.
type Mount struct {
	ReuseMountPoint      bool     `toml:"reuse_mount_point"`
	RunCommandOnMount    string   `toml:"run_command_on_mount"`
	PreUnmountCommand    string   `toml:"pre_unmount_command"`
	MountTimeoutMs       int      `toml:"mount_timeout_ms"`
	UnmountTimeoutMs     int      `toml:"unmount_timeout_ms"`
	SSHFSTimeoutMs       int      `toml:"sshfs_timeout_ms"`
	UnmountAttempts      int      `toml:"unmount_attempts"`
	ReadOnlyDefault      bool     `toml:"read_only_default"`
	AutoMountDefault     bool     `toml:"auto_mount_default"`
	ExecutableSearchPath []string `toml:"executable_search_path"`
	MaxConcurrentTasks   int      `toml:"max_concurrent_tasks"`
}

// Elevation configures the privilege-escalation helper used for ecryptfs.
type Elevation struct {
	Enabled         bool   `toml:"enabled"`
	Helper          string `toml:"helper"`
	EnableCommand   string `toml:"enable_command"`
	EnableTimeoutMs int    `toml:"enable_timeout_ms"`
}

// Automount controls the block-device watcher.
type Automount struct {
	Enabled        bool `toml:"enabled"`
	SettleDelayMs  int  `toml:"settle_delay_ms"`
	MountOnStartup bool `toml:"mount_on_startup"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Favorites holds favorite-related settings. LegacyList is the pre-1.4
// tab-separated bulk list; it is migrated into individual records and then
// removed from the file.
type Favorites struct {
	LegacyList []string `toml:"legacy_list"`
}

// Config encapsulates all configuration values for sirikali.
//
// Configuration sections by subsystem:
//   - Paths: favorites directory, logs, history database, locks
//   - Mount: orchestrator defaults (timeouts, retries, hooks, reuse)
//   - Elevation: polkit-style helper used by ecryptfs
//   - Automount: udev watcher for favorites flagged for automatic mounting
//   - Logging: log format and level
//   - Favorites: legacy bulk list awaiting migration
type Config struct {
	Paths     Paths     `toml:"paths"`
	Mount     Mount     `toml:"mount"`
	Elevation Elevation `toml:"elevation"`
	Automount Automount `toml:"automount"`
	Logging   Logging   `toml:"logging"`
	Favorites Favorites `toml:"favorites"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sirikali.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories. The mount prefix is
// created on a best-effort basis because it may live on removable storage.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.FavoritesDir, c.Paths.LogDir, c.Paths.LockDir, filepath.Dir(c.Paths.HistoryDB)} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.MountPrefix) != "" {
		_ = os.MkdirAll(c.Paths.MountPrefix, 0o700)
	}
	return nil
}

// MountSettings is the narrow view of the configuration the mount
// orchestrator depends on.
type MountSettings struct {
	ReuseMountPoint      bool
	UsePolkit            bool
	RunCommandOnMount    string
	PreUnmountCommand    string
	MountTimeout         time.Duration
	UnmountTimeout       time.Duration
	SSHFSTimeout         time.Duration
	UnmountAttempts      int
	ReadOnlyDefault      bool
	AutoMountDefault     bool
	ExecutableSearchPath []string
	MaxConcurrentTasks   int
}

// MountSettings projects the loaded configuration onto MountSettings.
func (c *Config) MountSettings() MountSettings {
	return MountSettings{
		ReuseMountPoint:      c.Mount.ReuseMountPoint,
		UsePolkit:            c.Elevation.Enabled,
		RunCommandOnMount:    strings.TrimSpace(c.Mount.RunCommandOnMount),
		PreUnmountCommand:    strings.TrimSpace(c.Mount.PreUnmountCommand),
		MountTimeout:         time.Duration(c.Mount.MountTimeoutMs) * time.Millisecond,
		UnmountTimeout:       time.Duration(c.Mount.UnmountTimeoutMs) * time.Millisecond,
		SSHFSTimeout:         time.Duration(c.Mount.SSHFSTimeoutMs) * time.Millisecond,
		UnmountAttempts:      c.Mount.UnmountAttempts,
		ReadOnlyDefault:      c.Mount.ReadOnlyDefault,
		AutoMountDefault:     c.Mount.AutoMountDefault,
		ExecutableSearchPath: append([]string(nil), c.Mount.ExecutableSearchPath...),
		MaxConcurrentTasks:   c.Mount.MaxConcurrentTasks,
	}
}

// MountPath returns the default mount point for a volume name under the
// configured prefix.
func (c *Config) MountPath(name string) string {
	return filepath.Join(c.Paths.MountPrefix, filepath.Base(strings.TrimRight(name, "/")))
}

// DropLegacyFavorites rewrites the configuration file at path without the
// legacy favorites list. Comments in the file are not preserved.
func DropLegacyFavorites(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	section, ok := doc["favorites"].(map[string]any)
	if !ok {
		return nil
	}
	if _, ok := section["legacy_list"]; !ok {
		return nil
	}
	delete(section, "legacy_list")
	if len(section) == 0 {
		delete(doc, "favorites")
	}
	out, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, out, 0o600); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
