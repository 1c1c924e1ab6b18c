package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.March, 1, 20, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Product: "Lamp", Scene: "LampScene", Author: "alice", Comment: "show the lamp", Confidence: 0.93, Method: "substring", SwitchedAt: base},
		{Product: "Mouse", Scene: "MouseScene", Author: "bob", Comment: "mouse pls", Confidence: 0.71, Method: "similarity", SwitchedAt: base.Add(time.Minute)},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Product != "Mouse" {
		t.Fatalf("expected newest first, got %q", recent[0].Product)
	}
	if recent[1].Author != "alice" || recent[1].Confidence != 0.93 {
		t.Fatalf("unexpected entry %+v", recent[1])
	}
	if !recent[1].SwitchedAt.Equal(base) {
		t.Fatalf("timestamp round trip failed: %v", recent[1].SwitchedAt)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, Entry{Product: "Lamp", Scene: "LampScene"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	recent, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
}

func TestSummaryCountsPerProduct(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, product := range []string{"Lamp", "Mouse", "Lamp", "Lamp"} {
		if err := store.Record(ctx, Entry{Product: product, Scene: product + "Scene"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 products, got %d", len(summary))
	}
	if summary[0].Product != "Lamp" || summary[0].Switches != 3 {
		t.Fatalf("unexpected leader %+v", summary[0])
	}
	if summary[1].Product != "Mouse" || summary[1].Switches != 1 {
		t.Fatalf("unexpected runner-up %+v", summary[1])
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := store.Record(context.Background(), Entry{Product: "Lamp", Scene: "LampScene"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	recent, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected persisted entry, got %d", len(recent))
	}
}
