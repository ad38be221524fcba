package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/build"
)

func testRecord(buildID string, started time.Time) Record {
	return Record{
		BuildID:   buildID,
		Document:  "base.dvi",
		Outcome:   "success",
		Passes:    2,
		Warnings:  1,
		Duration:  750 * time.Millisecond,
		StartedAt: started,
	}
}

func TestStoreRecordAndRetrieve(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	started := time.Now().Truncate(time.Second)

	if err := store.Record(ctx, testRecord("build-1", started)); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}

	rec, err := store.ByBuildID(ctx, "build-1")
	if err != nil {
		t.Fatalf("failed to get record: %v", err)
	}
	if rec.Document != "base.dvi" {
		t.Errorf("expected document base.dvi, got %s", rec.Document)
	}
	if rec.Outcome != "success" {
		t.Errorf("expected outcome success, got %s", rec.Outcome)
	}
	if rec.Passes != 2 {
		t.Errorf("expected 2 passes, got %d", rec.Passes)
	}
	if rec.Duration != 750*time.Millisecond {
		t.Errorf("expected duration 750ms, got %s", rec.Duration)
	}
	if !rec.StartedAt.Equal(started) {
		t.Errorf("expected start %v, got %v", started, rec.StartedAt)
	}
}

func TestStoreByBuildIDNotFound(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	_, err = store.ByBuildID(t.Context(), "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRecentOrdersNewestFirst(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := range 3 {
		rec := testRecord("build-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("failed to record build: %v", err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].BuildID != "build-c" {
		t.Errorf("expected newest first, got %s", records[0].BuildID)
	}
	if records[1].BuildID != "build-b" {
		t.Errorf("expected build-b second, got %s", records[1].BuildID)
	}
}

func TestStoreRecentDefaultLimit(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(t.Context(), 0)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records in a fresh store, got %d", len(records))
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Record(t.Context(), testRecord("build-1", time.Now())); err != nil {
		t.Fatalf("failed to record build: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	records, err := reopened.Recent(t.Context(), 10)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after reopen, got %d", len(records))
	}
}

func TestFromReport(t *testing.T) {
	start := time.Now().Add(-2 * time.Second)
	report := &build.Report{
		BuildID:      "id-1",
		Document:     "thesis.dvi",
		Start:        start,
		End:          start.Add(1500 * time.Millisecond),
		Passes:       2,
		ToolWarnings: []string{"Overfull \\hbox", "No file thesis.toc."},
		Outcome:      build.OutcomeWarnings,
	}

	rec := FromReport(report)
	if rec.BuildID != "id-1" {
		t.Errorf("expected build id id-1, got %s", rec.BuildID)
	}
	if rec.Document != "thesis.dvi" {
		t.Errorf("expected document thesis.dvi, got %s", rec.Document)
	}
	if rec.Outcome != "warnings" {
		t.Errorf("expected outcome warnings, got %s", rec.Outcome)
	}
	if rec.Warnings != 2 {
		t.Errorf("expected 2 warnings, got %d", rec.Warnings)
	}
	if rec.Duration != 1500*time.Millisecond {
		t.Errorf("expected duration 1.5s, got %s", rec.Duration)
	}
}
