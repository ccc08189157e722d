package config

const (
	defaultConfigPath         = "~/.config/sirikali/config.toml"
	defaultFavoritesDir       = "~/.config/sirikali/favorites"
	defaultLogDir             = "~/.local/share/sirikali/logs"
	defaultHistoryDB          = "~/.local/share/sirikali/history.db"
	defaultLockDir            = "~/.local/share/sirikali/run"
	defaultMountPrefix        = "~/.SiriKali"
	defaultMountTimeoutMs     = 20000
	defaultUnmountTimeoutMs   = 10000
	defaultSSHFSTimeoutMs     = 20000
	defaultUnmountAttempts    = 5
	defaultMaxConcurrentTasks = 4
	defaultElevationHelper    = "pkexec"
	defaultEnableTimeoutMs    = 30000
	defaultSettleDelayMs      = 2000
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			FavoritesDir: defaultFavoritesDir,
			LogDir:       defaultLogDir,
			HistoryDB:    defaultHistoryDB,
			LockDir:      defaultLockDir,
			MountPrefix:  defaultMountPrefix,
		},
		Mount: Mount{
			MountTimeoutMs:     defaultMountTimeoutMs,
			UnmountTimeoutMs:   defaultUnmountTimeoutMs,
			SSHFSTimeoutMs:     defaultSSHFSTimeoutMs,
			UnmountAttempts:    defaultUnmountAttempts,
			MaxConcurrentTasks: defaultMaxConcurrentTasks,
		},
		Elevation: Elevation{
			Helper:          defaultElevationHelper,
			EnableTimeoutMs: defaultEnableTimeoutMs,
		},
		Automount: Automount{
			SettleDelayMs: defaultSettleDelayMs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
