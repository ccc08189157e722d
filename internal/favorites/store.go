package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"sirikali/internal/fileutil"
	"sirikali/internal/logging"
)

var (
	// ErrAlreadyExists is returned by Add when a record for the entry key exists.
	ErrAlreadyExists = errors.New("favorite already exists")
	// ErrFailedToCreate is returned by Add when the record cannot be written.
	ErrFailedToCreate = errors.New("failed to create favorite")
)

var validate = validator.New()

// Store reads and writes favorite records in a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore opens the favorites directory, creating it when missing.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("favorites directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create favorites directory: %w", err)
	}
	return &Store{dir: dir, logger: logging.NewComponentLogger(logger, "favorites")}, nil
}

// Dir returns the directory holding the records.
func (s *Store) Dir() string { return s.dir }

// Add persists a new entry. It fails with ErrAlreadyExists when an entry with
// the same volume path and mount point is stored.
func (s *Store) Add(e Entry) error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %s", ErrFailedToCreate, formatValidationError(err))
	}
	data, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrFailedToCreate, err)
	}
	path := s.recordPath(e)
	if err := fileutil.WriteNewFileAtomic(path, data, 0o600); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("%w: %v", ErrFailedToCreate, err)
	}
	s.logger.Debug("favorite added",
		logging.String(logging.FieldCipherFolder, e.VolumePath),
		logging.String(logging.FieldPlainFolder, e.MountPointPath),
		logging.String("record", filepath.Base(path)),
	)
	return nil
}

// Remove deletes the record for e. A missing record is not an error.
func (s *Store) Remove(e Entry) error {
	err := os.Remove(s.recordPath(e))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// Replace removes old and adds updated. The two steps are not atomic: when
// the add fails after the remove, old is gone.
func (s *Store) Replace(old, updated Entry) error {
	if err := s.Remove(old); err != nil {
		return err
	}
	return s.Add(updated)
}

// ReadAll returns every parsable record in directory order. Unparsable
// records are logged and skipped.
func (s *Store) ReadAll() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || fileutil.IsTemp(de.Name()) {
			continue
		}
		path := filepath.Join(s.dir, de.Name())
		entry, err := readRecord(path)
		if err != nil {
			logging.WarnWithContext(s.logger, "skipping unreadable favorite", "favorite_parse_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix or delete the record file"),
				logging.String(logging.FieldImpact, "favorite is not listed"),
			)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReadByKey finds an entry by volume path and mount point. An empty
// mountPointPath matches on the volume path alone; the first match in
// directory order wins.
func (s *Store) ReadByKey(volumePath, mountPointPath string) (Entry, bool, error) {
	entries, err := s.ReadAll()
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.VolumePath != volumePath {
			continue
		}
		if mountPointPath == "" || e.MountPointPath == mountPointPath {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

func readRecord(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return e, nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Sprintf("%s: validation failed on '%s' tag", e.Field(), e.Tag())
	}
	return err.Error()
}
