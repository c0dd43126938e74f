package staffing

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func storedInsight(resourceID, summary string, azure bool) StoredInsight {
	return StoredInsight{
		ResourceInsight: ResourceInsight{
			ResourceID:   resourceID,
			ResourceName: resourceID,
			Summary:      summary,
		},
		GeneratedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		UsingAzure:  azure,
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "insights.json"))

	records, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestFileStoreUpsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insights.json")
	s := NewFileStore(path)
	ctx := context.Background()

	if err := s.Upsert(ctx, []StoredInsight{
		storedInsight("r1", "first", false),
		storedInsight("r2", "second", false),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(ctx, []StoredInsight{storedInsight("r1", "replaced", true)}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	// a fresh handle must see the same state
	records, err := NewFileStore(path).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (upsert is keyed, not append)", len(records))
	}
	if records[0].ResourceID != "r1" || records[0].Summary != "replaced" || !records[0].UsingAzure {
		t.Errorf("r1 not replaced: %+v", records[0])
	}
	if records[1].ResourceID != "r2" || records[1].Summary != "second" {
		t.Errorf("r2 changed unexpectedly: %+v", records[1])
	}
}

func TestFileStoreLastWriteWinsInBatch(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "insights.json"))
	ctx := context.Background()

	err := s.Upsert(ctx, []StoredInsight{
		storedInsight("r1", "early", false),
		storedInsight("r1", "late", true),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	records, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 || records[0].Summary != "late" {
		t.Errorf("got %+v, want single record with the later summary", records)
	}
}

func TestFileStoreRejectsEmptyKey(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "insights.json"))
	if err := s.Upsert(context.Background(), []StoredInsight{storedInsight("", "x", false)}); err == nil {
		t.Error("expected error for record without resource id")
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insights.db")
	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	records, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load on fresh store: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("fresh store has %d records", len(records))
	}

	if err := s.Upsert(ctx, []StoredInsight{
		storedInsight("r1", "first", false),
		storedInsight("r2", "second", true),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(ctx, []StoredInsight{storedInsight("r2", "updated", true)}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	records, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Load orders by resource_id
	if records[0].ResourceID != "r1" || records[1].ResourceID != "r2" {
		t.Errorf("order = %s, %s; want r1, r2", records[0].ResourceID, records[1].ResourceID)
	}
	if records[1].Summary != "updated" {
		t.Errorf("r2 summary = %q, want updated", records[1].Summary)
	}
	if !records[1].UsingAzure || records[1].GeneratedAt.IsZero() {
		t.Errorf("metadata lost on round trip: %+v", records[1])
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insights.db")
	ctx := context.Background()

	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	if err := s.Upsert(ctx, []StoredInsight{storedInsight("r1", "persisted", false)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	s.Close()

	s2, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	records, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if len(records) != 1 || records[0].Summary != "persisted" {
		t.Errorf("got %+v, want the persisted record", records)
	}
}
