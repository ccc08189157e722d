package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMount(); err != nil {
		return err
	}
	c.normalizeElevation()
	c.normalizeAutomount()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.FavoritesDir) == "" {
		c.Paths.FavoritesDir = defaultFavoritesDir
	}
	if c.Paths.FavoritesDir, err = expandPath(c.Paths.FavoritesDir); err != nil {
		return fmt.Errorf("paths.favorites_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockDir) == "" {
		c.Paths.LockDir = defaultLockDir
	}
	if c.Paths.LockDir, err = expandPath(c.Paths.LockDir); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.MountPrefix) == "" {
		c.Paths.MountPrefix = defaultMountPrefix
	}
	if c.Paths.MountPrefix, err = expandPath(c.Paths.MountPrefix); err != nil {
		return fmt.Errorf("paths.mount_prefix: %w", err)
	}
	return nil
}

func (c *Config) normalizeMount() error {
	c.Mount.RunCommandOnMount = strings.TrimSpace(c.Mount.RunCommandOnMount)
	c.Mount.PreUnmountCommand = strings.TrimSpace(c.Mount.PreUnmountCommand)
	if c.Mount.MountTimeoutMs == 0 {
		c.Mount.MountTimeoutMs = defaultMountTimeoutMs
	}
	if c.Mount.UnmountTimeoutMs == 0 {
		c.Mount.UnmountTimeoutMs = defaultUnmountTimeoutMs
	}
	if c.Mount.SSHFSTimeoutMs == 0 {
		c.Mount.SSHFSTimeoutMs = defaultSSHFSTimeoutMs
	}
	if c.Mount.UnmountAttempts == 0 {
		c.Mount.UnmountAttempts = defaultUnmountAttempts
	}
	if c.Mount.MaxConcurrentTasks == 0 {
		c.Mount.MaxConcurrentTasks = defaultMaxConcurrentTasks
	}

	search := make([]string, 0, len(c.Mount.ExecutableSearchPath))
	for _, dir := range c.Mount.ExecutableSearchPath {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(dir))
		if err != nil {
			return fmt.Errorf("mount.executable_search_path: %w", err)
		}
		search = append(search, expanded)
	}
	c.Mount.ExecutableSearchPath = search
	return nil
}

func (c *Config) normalizeElevation() {
	c.Elevation.Helper = strings.TrimSpace(c.Elevation.Helper)
	if c.Elevation.Helper == "" {
		c.Elevation.Helper = defaultElevationHelper
	}
	c.Elevation.EnableCommand = strings.TrimSpace(c.Elevation.EnableCommand)
	if c.Elevation.EnableTimeoutMs == 0 {
		c.Elevation.EnableTimeoutMs = defaultEnableTimeoutMs
	}
	if value, ok := os.LookupEnv("SIRIKALI_USE_POLKIT"); ok {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes":
			c.Elevation.Enabled = true
		case "0", "false", "no":
			c.Elevation.Enabled = false
		}
	}
}

func (c *Config) normalizeAutomount() {
	if c.Automount.SettleDelayMs == 0 {
		c.Automount.SettleDelayMs = defaultSettleDelayMs
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
