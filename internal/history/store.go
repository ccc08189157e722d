package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Operation names the orchestrator request that produced an event.
type Operation string

const (
	OperationCreate  Operation = "create"
	OperationMount   Operation = "mount"
	OperationUnmount Operation = "unmount"
)

// Event is one journaled outcome.
type Event struct {
	ID           int64
	RequestID    string
	Operation    Operation
	CipherFolder string
	PlainFolder  string
	Engine       string
	Status       string
	ExitCode     int
	Message      string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Recorder accepts events. The orchestrator depends on this interface only.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Store is the SQLite-backed journal.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open creates or opens the journal at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends ev.
func (s *Store) Record(ctx context.Context, ev Event) error {
	if ev.FinishedAt.IsZero() {
		ev.FinishedAt = time.Now()
	}
	if ev.StartedAt.IsZero() {
		ev.StartedAt = ev.FinishedAt
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO mount_events (
                request_id, operation, cipher_folder, plain_folder, engine,
                status, exit_code, message, started_at, finished_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.RequestID,
			string(ev.Operation),
			ev.CipherFolder,
			ev.PlainFolder,
			nullableString(ev.Engine),
			ev.Status,
			ev.ExitCode,
			nullableString(ev.Message),
			ev.StartedAt.UTC().Format(time.RFC3339Nano),
			ev.FinishedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, operation, cipher_folder, plain_folder, engine,
                status, exit_code, message, started_at, finished_at
         FROM mount_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev                  Event
			op                  string
			engine, message     sql.NullString
			startedAt, finished string
		)
		if err := rows.Scan(&ev.ID, &ev.RequestID, &op, &ev.CipherFolder, &ev.PlainFolder, &engine,
			&ev.Status, &ev.ExitCode, &message, &startedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Operation = Operation(op)
		ev.Engine = engine.String
		ev.Message = message.String
		ev.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		ev.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
