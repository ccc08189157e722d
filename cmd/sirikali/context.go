package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"sirikali/internal/config"
	"sirikali/internal/engines"
	"sirikali/internal/favorites"
	"sirikali/internal/history"
	"sirikali/internal/i18n"
	"sirikali/internal/logging"
	"sirikali/internal/mount"
	"sirikali/internal/task"
)

const favoritesLockName = "favorites.lock"

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger

	historyStore *history.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
		c.migrateLegacyFavorites()
	})
	return c.config, c.configErr
}

// migrateLegacyFavorites moves the bulk favorites list into individual
// records once. The favorites lock keeps two concurrent invocations from
// migrating the same list.
func (c *commandContext) migrateLegacyFavorites() {
	if len(c.config.Favorites.LegacyList) == 0 {
		return
	}
	logger := c.loggerValue()

	lock := flock.New(filepath.Join(c.config.Paths.LockDir, favoritesLockName))
	if err := lock.Lock(); err != nil {
		logging.WarnWithContext(logger, "favorites lock failed", "favorites_lock_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "legacy favorites not migrated this run"),
		)
		return
	}
	defer lock.Unlock()

	store, err := c.favorites()
	if err != nil {
		return
	}
	migrated, err := store.MigrateLegacy(c.config.Favorites.LegacyList)
	if err != nil {
		logging.WarnWithContext(logger, "legacy favorites migration incomplete", "favorites_migration_failed",
			logging.Error(err),
			logging.Int("migrated", migrated),
			logging.String(logging.FieldErrorHint, "run `sirikali favorites migrate` after fixing the favorites directory"),
			logging.String(logging.FieldImpact, "legacy list kept in the configuration file"),
		)
		return
	}
	if c.configExists {
		if err := config.DropLegacyFavorites(c.configPath); err != nil {
			logging.WarnWithContext(logger, "legacy favorites not removed from config", "config_rewrite_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "migration will be retried and skip existing records"),
			)
		}
	}
	c.config.Favorites.LegacyList = nil
	logger.Info("legacy favorites migrated",
		logging.String(logging.FieldEventType, "favorites_migrated"),
		logging.Int("migrated", migrated),
	)
}

func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) favorites() (*favorites.Store, error) {
	return favorites.NewStore(c.config.Paths.FavoritesDir, c.loggerValue())
}

func (c *commandContext) registry() *engines.Registry {
	return engines.NewRegistry(c.config.Mount.ExecutableSearchPath...)
}

func (c *commandContext) runner() *task.Runner {
	e := c.config.Elevation
	return task.NewRunner(
		task.WithLogger(c.loggerValue()),
		task.WithElevator(&task.Elevator{
			Enabled:       e.Enabled,
			Helper:        e.Helper,
			EnableCommand: e.EnableCommand,
			EnableTimeout: msDuration(e.EnableTimeoutMs),
		}),
	)
}

// history opens the history database. A database that cannot be opened
// disables history for this run rather than failing the command.
func (c *commandContext) history() *history.Store {
	if c.historyStore != nil {
		return c.historyStore
	}
	store, err := history.Open(c.config.Paths.HistoryDB)
	if err != nil {
		logging.WarnWithContext(c.loggerValue(), "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.history_db"),
			logging.String(logging.FieldImpact, "operations are not journaled"),
		)
		return nil
	}
	c.historyStore = store
	return store
}

func (c *commandContext) orchestrator() *mount.Orchestrator {
	deps := mount.Deps{
		Registry: c.registry(),
		Runner:   c.runner(),
		Settings: c.config.MountSettings(),
		Logger:   c.loggerValue(),
	}
	if h := c.history(); h != nil {
		deps.History = h
	}
	return mount.New(deps)
}

func (c *commandContext) translator() *i18n.Translator {
	lang := os.Getenv("LC_MESSAGES")
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	lang, _, _ = strings.Cut(lang, ".")
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		tag = language.English
	}
	return i18n.NewTranslator(tag)
}

func (c *commandContext) close() {
	if c.historyStore != nil {
		_ = c.historyStore.Close()
		c.historyStore = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
