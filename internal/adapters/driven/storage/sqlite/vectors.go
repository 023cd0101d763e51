package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/repochat/internal/adapters/driven/vector"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure the vector types implement the interfaces.
var (
	_ driven.VectorIndexConnector = (*VectorConnector)(nil)
	_ driven.VectorIndex          = (*vectorIndex)(nil)
)

// VectorConnector opens the local embedding index stored in one
// SQLite file.
type VectorConnector struct {
	path       string
	collection string
}

// NewVectorConnector creates a connector for the named collection in the
// database at path.
func NewVectorConnector(path, collection string) *VectorConnector {
	if collection == "" {
		collection = domain.DefaultCollection
	}
	return &VectorConnector{path: path, collection: collection}
}

// Connect opens the database. The caller closes the returned index.
func (c *VectorConnector) Connect(_ context.Context) (driven.VectorIndex, error) {
	s, err := Open(c.path)
	if err != nil {
		return nil, err
	}
	return s.VectorIndex(c.collection), nil
}

// VectorIndex returns a view of the named collection. Closing the view
// closes the database.
func (s *Store) VectorIndex(collection string) driven.VectorIndex {
	return &vectorIndex{store: s, collection: collection}
}

// vectorIndex implements driven.VectorIndex with exact search.
type vectorIndex struct {
	store      *Store
	collection string
}

// HasCollection reports whether the collection row exists.
func (v *vectorIndex) HasCollection(ctx context.Context) (bool, error) {
	_, err := v.dimensions(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CreateCollection registers the collection. Existing collections are kept.
func (v *vectorIndex) CreateCollection(ctx context.Context, dimensions int) error {
	if dimensions < 1 {
		return fmt.Errorf("%w: collection dimensions must be positive", domain.ErrInvalidInput)
	}
	_, err := v.store.db.ExecContext(ctx,
		"INSERT INTO collections (name, dimensions) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		v.collection, dimensions)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}

// DropCollection removes the collection; its vectors cascade.
func (v *vectorIndex) DropCollection(ctx context.Context) error {
	if _, err := v.store.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", v.collection); err != nil {
		return fmt.Errorf("dropping collection: %w", err)
	}
	return nil
}

// Insert writes entries in one transaction. Every vector must match the
// collection dimension.
func (v *vectorIndex) Insert(ctx context.Context, entries []domain.IndexEntry) error {
	dims, err := v.dimensions(ctx)
	if err != nil {
		return err
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO vectors (collection, path, embedding) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if len(e.Vector) != dims {
			return fmt.Errorf("%w: vector for %s has %d dimensions, collection has %d",
				domain.ErrInvalidInput, e.Path, len(e.Vector), dims)
		}
		if _, err := stmt.ExecContext(ctx, v.collection, e.Path, float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("saving vector %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scans the collection and returns the k nearest paths.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if _, err := v.dimensions(ctx); err != nil {
		return nil, err
	}

	rows, err := v.store.db.QueryContext(ctx,
		"SELECT id, path, embedding FROM vectors WHERE collection = ? ORDER BY id", v.collection)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var candidates []vector.Candidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			c    vector.Candidate
			blob []byte
		)
		if err := rows.Scan(&c.Seq, &c.Path, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		c.Vector = bytesToFloat32Slice(blob)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	return vector.Nearest(query, candidates, k)
}

// Close closes the underlying database.
func (v *vectorIndex) Close() error {
	return v.store.Close()
}

func (v *vectorIndex) dimensions(ctx context.Context) (int, error) {
	var dims int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", v.collection).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("collection %s: %w", v.collection, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("reading collection: %w", err)
	}
	return dims, nil
}
