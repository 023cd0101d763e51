package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure the record types implement the interfaces.
var (
	_ driven.RecordStoreFactory = RecordStores{}
	_ driven.RecordStore        = (*recordStore)(nil)
)

// RecordStores opens one SQLite record table per file.
type RecordStores struct{}

// Open opens or creates the record table at path.
func (RecordStores) Open(path string) (driven.RecordStore, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	return s.RecordStore(), nil
}

// RecordStore returns a RecordStore view of this database. Closing the
// view closes the database.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

// Replace deletes every record and inserts records in one transaction,
// preserving their order.
func (r *recordStore) Replace(ctx context.Context, records []domain.Record) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (path, content, is_dir) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Path, rec.Content, rec.IsDir); err != nil {
			return fmt.Errorf("saving record %s: %w", rec.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns all records in insertion order.
func (r *recordStore) List(ctx context.Context) ([]domain.Record, error) {
	rows, err := r.store.db.QueryContext(ctx, "SELECT path, content, is_dir FROM records ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.Path, &rec.Content, &rec.IsDir); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (r *recordStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// Path returns the database file path.
func (r *recordStore) Path() string {
	return r.store.path
}

// Close closes the underlying database.
func (r *recordStore) Close() error {
	return r.store.Close()
}
