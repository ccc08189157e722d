package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sirikali/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	events := []history.Event{
		{RequestID: "r1", Operation: history.OperationMount, CipherFolder: "/c", PlainFolder: "/p", Engine: "gocryptfs", Status: "success", StartedAt: started, FinishedAt: started.Add(time.Second)},
		{RequestID: "r2", Operation: history.OperationUnmount, CipherFolder: "/c", PlainFolder: "/p", Status: "failedToUnmount", ExitCode: 1, Message: "device busy"},
	}
	for _, ev := range events {
		if err := store.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].RequestID != "r2" || got[0].Message != "device busy" || got[0].Engine != "" {
		t.Fatalf("unexpected newest event %+v", got[0])
	}
	if got[1].Operation != history.OperationMount || !got[1].StartedAt.Equal(started) {
		t.Fatalf("unexpected oldest event %+v", got[1])
	}
	if got[1].FinishedAt.Sub(got[1].StartedAt) != time.Second {
		t.Fatalf("timestamps not preserved: %+v", got[1])
	}
}

func TestRecentLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, history.Event{RequestID: "r", Operation: history.OperationCreate, CipherFolder: "/c", PlainFolder: "/p", Status: "success"}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(context.Background(), history.Event{RequestID: "r", Operation: history.OperationMount, CipherFolder: "/c", PlainFolder: "/p", Status: "success"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Recent(context.Background(), 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected persisted event, got %d err=%v", len(got), err)
	}
}
