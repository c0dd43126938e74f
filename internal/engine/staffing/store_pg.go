package staffing

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_staffing/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PGStore keeps insights in PostgreSQL behind a pgx pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// ConnectPGStore creates a pgx pool and ensures the insight schema.
func ConnectPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	if databaseURL == "" {
		return nil, errors.New("pg store: database URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pg store: parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("pg store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg store: ping postgres: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg store: run migrations: %w", err)
	}

	slog.Info("insight postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

// Close releases the connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

func (s *PGStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Load reads all stored insights ordered by resource ID.
func (s *PGStore) Load(ctx context.Context) ([]StoredInsight, error) {
	engine.IncrStoreLoads()
	rows, err := s.pool.Query(ctx, `SELECT payload FROM insights ORDER BY resource_id`)
	if err != nil {
		return nil, fmt.Errorf("pg store: query insights: %w", err)
	}
	defer rows.Close()

	out := []StoredInsight{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("pg store: scan insight: %w", err)
		}
		var rec StoredInsight
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("pg store: decode insight: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg store: iterate insights: %w", err)
	}
	return out, nil
}

// Upsert writes the given records, replacing any existing row per resource.
func (s *PGStore) Upsert(ctx context.Context, records []StoredInsight) error {
	if len(records) == 0 {
		return nil
	}
	engine.IncrStoreUpserts()
	for _, rec := range records {
		if rec.ResourceID == "" {
			return errors.New("pg store: insight record without resource id")
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("pg store: encode insight %s: %w", rec.ResourceID, err)
		}
		_, err = s.pool.Exec(ctx, `INSERT INTO insights (resource_id, payload, generated_at, using_azure)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (resource_id) DO UPDATE SET
				payload = EXCLUDED.payload,
				generated_at = EXCLUDED.generated_at,
				using_azure = EXCLUDED.using_azure`,
			rec.ResourceID, payload, rec.GeneratedAt.UTC(), rec.UsingAzure)
		if err != nil {
			return fmt.Errorf("pg store: upsert insight %s: %w", rec.ResourceID, err)
		}
	}
	return nil
}
