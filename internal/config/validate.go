package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMount(); err != nil {
		return err
	}
	if err := c.validateElevation(); err != nil {
		return err
	}
	if err := c.validateAutomount(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMount() error {
	if c.Mount.MountTimeoutMs < 0 {
		return errors.New("mount.mount_timeout_ms must be positive")
	}
	if c.Mount.UnmountTimeoutMs < 0 {
		return errors.New("mount.unmount_timeout_ms must be positive")
	}
	if c.Mount.SSHFSTimeoutMs < 0 {
		return errors.New("mount.sshfs_timeout_ms must be positive")
	}
	if c.Mount.UnmountAttempts < 1 || c.Mount.UnmountAttempts > 60 {
		return fmt.Errorf("mount.unmount_attempts must be between 1 and 60, got %d", c.Mount.UnmountAttempts)
	}
	if c.Mount.MaxConcurrentTasks < 1 {
		return errors.New("mount.max_concurrent_tasks must be at least 1")
	}
	return nil
}

func (c *Config) validateElevation() error {
	if c.Elevation.EnableTimeoutMs < 0 {
		return errors.New("elevation.enable_timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateAutomount() error {
	if c.Automount.SettleDelayMs < 0 {
		return errors.New("automount.settle_delay_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
