package staffing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_staffing/internal/engine"
)

// SQLiteStore keeps insights in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the SQLite insight database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initInsightSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// initInsightSchema creates the insights table if it doesn't exist.
func initInsightSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS insights (
		resource_id  TEXT PRIMARY KEY,
		payload      TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		using_azure  INTEGER NOT NULL DEFAULT 0
	)`)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads all stored insights ordered by resource ID.
func (s *SQLiteStore) Load(ctx context.Context) ([]StoredInsight, error) {
	engine.IncrStoreLoads()
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM insights ORDER BY resource_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: query insights: %w", err)
	}
	defer rows.Close()

	out := []StoredInsight{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("sqlite store: scan insight: %w", err)
		}
		var rec StoredInsight
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("sqlite store: decode insight: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite store: iterate insights: %w", err)
	}
	return out, nil
}

// Upsert writes the given records, replacing any existing row per resource.
func (s *SQLiteStore) Upsert(ctx context.Context, records []StoredInsight) error {
	if len(records) == 0 {
		return nil
	}
	engine.IncrStoreUpserts()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite store: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if rec.ResourceID == "" {
			return errors.New("sqlite store: insight record without resource id")
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("sqlite store: encode insight %s: %w", rec.ResourceID, err)
		}
		azure := 0
		if rec.UsingAzure {
			azure = 1
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO insights (resource_id, payload, generated_at, using_azure)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(resource_id) DO UPDATE SET
				payload = excluded.payload,
				generated_at = excluded.generated_at,
				using_azure = excluded.using_azure`,
			rec.ResourceID, string(payload), rec.GeneratedAt.UTC().Format(time.RFC3339), azure)
		if err != nil {
			return fmt.Errorf("sqlite store: upsert insight %s: %w", rec.ResourceID, err)
		}
	}
	return tx.Commit()
}
