// Package milvus provides the embedding index backed by a Milvus server.
//
// The collection holds an auto-assigned INT64 primary key, the originating
// file path and the embedding, with an IVF_FLAT index using L2 distance.
package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure the types implement the interfaces.
var (
	_ driven.VectorIndexConnector = (*Connector)(nil)
	_ driven.VectorIndex          = (*Index)(nil)
)

// Collection field names.
const (
	FieldID     = "id"
	FieldPath   = "path"
	FieldVector = "content_vector"
)

const shardCount = 2

// api is the subset of the Milvus client the index uses.
type api interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	DropCollection(ctx context.Context, collName string, opts ...client.DropCollectionOption) error
	Insert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Flush(ctx context.Context, collName string, async bool, opts ...client.FlushOption) error
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string,
		vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int,
		sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	Close() error
}

// Config holds configuration for the Milvus index.
type Config struct {
	// Address is the host:port of the Milvus server.
	Address string

	// Collection is the collection name (default: document_collection).
	Collection string

	// NList is the IVF cluster count used when creating the index.
	NList int

	// NProbe is the number of clusters scanned per search.
	NProbe int

	// ConnectTimeout bounds the dial. The client blocks until the server
	// answers, so an unreachable address would otherwise hang.
	ConnectTimeout time.Duration
}

// Connector dials Milvus once per Connect call.
type Connector struct {
	cfg  Config
	dial func(ctx context.Context, address string) (api, error)
}

// NewConnector creates a connector. Zero values use the defaults.
func NewConnector(cfg Config) *Connector {
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.NList < 1 {
		cfg.NList = domain.DefaultNList
	}
	if cfg.NProbe < 1 {
		cfg.NProbe = domain.DefaultNProbe
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = domain.DefaultConnectTimeout
	}
	return &Connector{cfg: cfg, dial: dialMilvus}
}

func dialMilvus(ctx context.Context, address string) (api, error) {
	return client.NewClient(ctx, client.Config{Address: address})
}

// Connect opens a client connection. The caller closes the returned index.
func (c *Connector) Connect(ctx context.Context) (driven.VectorIndex, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	cli, err := c.dial(ctx, c.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("milvus: connect %s: %w", c.cfg.Address, err)
	}
	return &Index{client: cli, cfg: c.cfg}, nil
}

// Index is one open connection to the collection.
type Index struct {
	client api
	cfg    Config
}

// HasCollection reports whether the collection exists.
func (i *Index) HasCollection(ctx context.Context) (bool, error) {
	ok, err := i.client.HasCollection(ctx, i.cfg.Collection)
	if err != nil {
		return false, fmt.Errorf("milvus: has collection: %w", err)
	}
	return ok, nil
}

// CreateCollection creates the collection, builds its IVF_FLAT index and
// loads it for search. Existing collections are left alone.
func (i *Index) CreateCollection(ctx context.Context, dimensions int) error {
	exists, err := i.HasCollection(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	schema := entity.NewSchema().
		WithName(i.cfg.Collection).
		WithDescription("repochat file embeddings").
		WithField(entity.NewField().
			WithName(FieldID).
			WithDataType(entity.FieldTypeInt64).
			WithIsPrimaryKey(true).
			WithIsAutoID(true)).
		WithField(entity.NewField().
			WithName(FieldPath).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(domain.MaxIndexedPathLength)).
		WithField(entity.NewField().
			WithName(FieldVector).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dimensions)))

	if err := i.client.CreateCollection(ctx, schema, shardCount); err != nil {
		return fmt.Errorf("milvus: create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, i.cfg.NList)
	if err != nil {
		return fmt.Errorf("milvus: index params: %w", err)
	}
	if err := i.client.CreateIndex(ctx, i.cfg.Collection, FieldVector, idx, false); err != nil {
		return fmt.Errorf("milvus: create index: %w", err)
	}
	if err := i.client.LoadCollection(ctx, i.cfg.Collection, false); err != nil {
		return fmt.Errorf("milvus: load collection: %w", err)
	}
	return nil
}

// DropCollection removes the collection.
func (i *Index) DropCollection(ctx context.Context) error {
	if err := i.client.DropCollection(ctx, i.cfg.Collection); err != nil {
		return fmt.Errorf("milvus: drop collection: %w", err)
	}
	return nil
}

// Insert writes entries column-wise and flushes so they are searchable.
func (i *Index) Insert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	dims := len(entries[0].Vector)
	paths := make([]string, len(entries))
	vectors := make([][]float32, len(entries))
	for n, e := range entries {
		if len(e.Vector) != dims {
			return fmt.Errorf("%w: vector for %s has %d dimensions, expected %d",
				domain.ErrInvalidInput, e.Path, len(e.Vector), dims)
		}
		paths[n] = e.Path
		vectors[n] = e.Vector
	}

	_, err := i.client.Insert(ctx, i.cfg.Collection, "",
		entity.NewColumnVarChar(FieldPath, paths),
		entity.NewColumnFloatVector(FieldVector, dims, vectors))
	if err != nil {
		return fmt.Errorf("milvus: insert: %w", err)
	}
	if err := i.client.Flush(ctx, i.cfg.Collection, false); err != nil {
		return fmt.Errorf("milvus: flush: %w", err)
	}
	return nil
}

// Search returns up to k paths ordered by ascending L2 distance.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k < 1 {
		return []driven.VectorHit{}, nil
	}
	if err := i.client.LoadCollection(ctx, i.cfg.Collection, false); err != nil {
		return nil, fmt.Errorf("milvus: load collection: %w", err)
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(i.cfg.NProbe)
	if err != nil {
		return nil, fmt.Errorf("milvus: search params: %w", err)
	}

	results, err := i.client.Search(ctx, i.cfg.Collection, nil, "", []string{FieldPath},
		[]entity.Vector{entity.FloatVector(query)}, FieldVector, entity.L2, k, sp)
	if err != nil {
		return nil, fmt.Errorf("milvus: search: %w", err)
	}

	hits := []driven.VectorHit{}
	for _, r := range results {
		paths, err := pathColumn(r.Fields)
		if err != nil {
			return nil, err
		}
		for n := 0; n < r.ResultCount && n < len(paths); n++ {
			hit := driven.VectorHit{Path: paths[n]}
			if n < len(r.Scores) {
				hit.Distance = r.Scores[n]
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

func pathColumn(fields []entity.Column) ([]string, error) {
	for _, col := range fields {
		if col.Name() != FieldPath {
			continue
		}
		varchar, ok := col.(*entity.ColumnVarChar)
		if !ok {
			return nil, fmt.Errorf("milvus: unexpected %s column type %T", FieldPath, col)
		}
		return varchar.Data(), nil
	}
	return nil, fmt.Errorf("milvus: search result has no %s field", FieldPath)
}

// Close closes the client connection.
func (i *Index) Close() error {
	return i.client.Close()
}
