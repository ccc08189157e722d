package testsupport

import (
	"testing"

	"sirikali/internal/config"
	"sirikali/internal/favorites"
	"sirikali/internal/history"
	"sirikali/internal/logging"
)

// MustOpenHistory opens the history database for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustFavorites opens the favorites store rooted at the config's favorites
// directory.
func MustFavorites(t testing.TB, cfg *config.Config) *favorites.Store {
	t.Helper()

	store, err := favorites.NewStore(cfg.Paths.FavoritesDir, logging.NewNop())
	if err != nil {
		t.Fatalf("favorites.NewStore: %v", err)
	}
	return store
}
