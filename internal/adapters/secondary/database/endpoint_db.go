package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vibin/wikisearch-bot/internal/core/domain"
	"github.com/vibin/wikisearch-bot/internal/core/ports"
)

// EndpointDatabase persists tenant endpoint configuration in SQLite.
// It implements the ports.EndpointStorePort interface.
type EndpointDatabase struct {
	db    *sql.DB
	mutex sync.RWMutex
}

// NewEndpointDatabase opens the endpoint database at path, creating the
// file and schema if needed.
func NewEndpointDatabase(path string) (*EndpointDatabase, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &EndpointDatabase{db: db}, nil
}

// createSchema creates the config table if it doesn't exist
func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS config (
			tenant TEXT NOT NULL,
			alias TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			PRIMARY KEY (tenant, alias)
		)
	`)
	return err
}

// Close closes the database connection
func (d *EndpointDatabase) Close() error {
	return d.db.Close()
}

// Get returns the endpoint URL for a tenant alias
func (d *EndpointDatabase) Get(ctx context.Context, tenant, alias string) (string, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	var endpoint string
	err := d.db.QueryRowContext(ctx,
		"SELECT endpoint FROM config WHERE tenant = ? AND alias = ?",
		tenant, alias,
	).Scan(&endpoint)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrEndpointNotFound
	}
	if err != nil {
		return "", err
	}
	return endpoint, nil
}

// Upsert writes the endpoint for (tenant, alias). Update-then-insert keeps
// concurrent writers converging on the last value instead of erroring.
func (d *EndpointDatabase) Upsert(ctx context.Context, tenant, alias, endpoint string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	_, err := d.db.ExecContext(ctx,
		"UPDATE config SET endpoint = ? WHERE tenant = ? AND alias = ?",
		endpoint, tenant, alias,
	)
	if err != nil {
		return err
	}

	_, err = d.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO config (tenant, alias, endpoint) VALUES (?, ?, ?)",
		tenant, alias, endpoint,
	)
	return err
}

// Delete removes one alias for a tenant
func (d *EndpointDatabase) Delete(ctx context.Context, tenant, alias string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	_, err := d.db.ExecContext(ctx,
		"DELETE FROM config WHERE tenant = ? AND alias = ?",
		tenant, alias,
	)
	return err
}

// ListByTenant returns all records for a tenant ordered by alias
func (d *EndpointDatabase) ListByTenant(ctx context.Context, tenant string) ([]domain.EndpointRecord, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	rows, err := d.db.QueryContext(ctx,
		"SELECT tenant, alias, endpoint FROM config WHERE tenant = ? ORDER BY alias",
		tenant,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.EndpointRecord
	for rows.Next() {
		var rec domain.EndpointRecord
		if err := rows.Scan(&rec.Tenant, &rec.Alias, &rec.Endpoint); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountByTenant returns the number of records for a tenant
func (d *EndpointDatabase) CountByTenant(ctx context.Context, tenant string) (int, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	var count int
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM config WHERE tenant = ?",
		tenant,
	).Scan(&count)
	return count, err
}

// DeleteTenant removes every record for a tenant. Used when the community
// behind the tenant goes away for good.
func (d *EndpointDatabase) DeleteTenant(ctx context.Context, tenant string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	_, err := d.db.ExecContext(ctx,
		"DELETE FROM config WHERE tenant = ?",
		tenant,
	)
	return err
}
