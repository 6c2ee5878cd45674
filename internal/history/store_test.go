package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	started := time.Unix(1700000000, 0)
	first := Run{
		StartedAt:     started,
		FinishedAt:    started.Add(2 * time.Second),
		Cwd:           "/work",
		Chain:         "gif,jpeg,png,svg",
		Succeeded:     1,
		Failed:        1,
		OriginalBytes: 1000,
		SavedBytes:    600,
		Items: []Item{
			{Path: "a.png", Destination: "/work/out/a.png", OriginalSize: 1000, OptimizedSize: 400},
			{Path: "b.png", Error: "transform b.png: png: corrupt"},
		},
	}

	id, err := store.Record(ctx, first)
	if err != nil {
		t.Fatalf("failed to record run: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero ID")
	}
	if _, err := store.Record(ctx, Run{StartedAt: started, FinishedAt: started, Cwd: "/work", Chain: "png"}); err != nil {
		t.Fatalf("failed to record second run: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Chain != "png" {
		t.Errorf("expected newest run first, got chain %q", runs[0].Chain)
	}

	got := runs[1]
	got.Items = nil
	want := first
	want.ID = id
	want.Items = nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}

	items, err := store.Items(ctx, id)
	if err != nil {
		t.Fatalf("failed to list items: %v", err)
	}
	if diff := cmp.Diff(first.Items, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d runs", len(limited))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close #%d: %v", i+1, err)
		}
	}
}
