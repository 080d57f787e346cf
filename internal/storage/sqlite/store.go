// Package sqlite is the SQLite implementation of the tenant store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/drishiq/concierge/internal/storage"
)

// Store is a SQLite-backed TenantStore.
type Store struct {
	db *sql.DB
}

var _ storage.TenantStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tenant_config (
			tenant_id TEXT PRIMARY KEY,
			name TEXT,
			config TEXT NOT NULL DEFAULT '{}',
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tenant_config_updated ON tenant_config(updated_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// GetTenantRecord returns the raw record for tenantID, or (nil, nil) when no
// row exists.
func (s *Store) GetTenantRecord(ctx context.Context, tenantID string) (*storage.TenantRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT tenant_id, COALESCE(name, ''), config, updated_at FROM tenant_config WHERE tenant_id = ?`,
		tenantID)

	var rec storage.TenantRecord
	var configJSON string
	if err := row.Scan(&rec.TenantID, &rec.Name, &configJSON, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query tenant %s: %w", tenantID, err)
	}

	if err := json.Unmarshal([]byte(configJSON), &rec.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config for tenant %s: %w", tenantID, err)
	}
	return &rec, nil
}

// PutTenantRecord inserts or replaces the record for rec.TenantID.
func (s *Store) PutTenantRecord(ctx context.Context, rec *storage.TenantRecord) error {
	configJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return fmt.Errorf("failed to encode config for tenant %s: %w", rec.TenantID, err)
	}

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tenant_config (tenant_id, name, config, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(tenant_id) DO UPDATE SET name = excluded.name, config = excluded.config, updated_at = excluded.updated_at`,
		rec.TenantID, rec.Name, string(configJSON), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert tenant %s: %w", rec.TenantID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
