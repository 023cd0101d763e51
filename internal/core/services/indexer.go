package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// Index build defaults.
const (
	DefaultEmbedBatchSize   = 32
	DefaultEmbedConcurrency = 4
	recordTableExt          = ".db"
)

// IndexConfig configures an IndexService.
type IndexConfig struct {
	// ExtractionDir is searched for record tables when no source is given.
	ExtractionDir string

	// Collection names the target collection in summaries.
	Collection string

	// Dimensions is the collection vector size.
	Dimensions int

	// Retry bounds connection attempts.
	Retry RetryPolicy

	// BatchSize is the number of texts per embedding request.
	BatchSize int

	// Concurrency is the number of embedding requests in flight.
	Concurrency int

	// RequestsPerSecond throttles embedding requests. Zero disables throttling.
	RequestsPerSecond float64
}

// IndexService populates the embedding index from a record table.
// It is the only writer to the index.
type IndexService struct {
	connector driven.VectorIndexConnector
	embedder  driven.EmbeddingService
	records   driven.RecordStoreFactory
	cfg       IndexConfig
	limiter   *rate.Limiter
}

// NewIndexService creates an index service.
func NewIndexService(
	connector driven.VectorIndexConnector,
	embedder driven.EmbeddingService,
	records driven.RecordStoreFactory,
	cfg IndexConfig,
) *IndexService {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultEmbedBatchSize
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultEmbedConcurrency
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.Dimensions < 1 && embedder != nil {
		cfg.Dimensions = embedder.Dimensions()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &IndexService{
		connector: connector,
		embedder:  embedder,
		records:   records,
		cfg:       cfg,
		limiter:   limiter,
	}
}

// Build creates the collection if absent and inserts one vector per
// embeddable record. Directory records, empty files and over-long paths
// are skipped.
func (s *IndexService) Build(ctx context.Context, opts driving.IndexOptions) (*domain.IndexSummary, error) {
	logger.Section("Index Build")

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	source := opts.Source
	if source == "" {
		var err error
		source, err = LatestRecordTable(s.cfg.ExtractionDir)
		if err != nil {
			return nil, err
		}
	}
	logger.Info("Reading records from %s", source)

	entries, skipped, err := s.loadRecords(ctx, source)
	if err != nil {
		return nil, err
	}

	idx, err := connectIndex(ctx, s.connector, s.cfg.Retry)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	summary := &domain.IndexSummary{Collection: s.cfg.Collection, Source: source, Skipped: skipped}

	exists, err := idx.HasCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	if exists && opts.Rebuild {
		logger.Info("Dropping existing collection")
		if err := idx.DropCollection(ctx); err != nil {
			return nil, fmt.Errorf("drop collection: %w", err)
		}
		exists = false
	}
	if !exists {
		if err := idx.CreateCollection(ctx, s.cfg.Dimensions); err != nil {
			return nil, fmt.Errorf("create collection: %w", err)
		}
		summary.Created = true
	}

	inserted, err := s.embedAndInsert(ctx, idx, entries)
	summary.Inserted = inserted
	if err != nil {
		return summary, err
	}

	logger.Info("Inserted %d vectors, skipped %d records", summary.Inserted, summary.Skipped)
	return summary, nil
}

// loadRecords reads the table and returns the embeddable records.
func (s *IndexService) loadRecords(ctx context.Context, source string) ([]domain.Record, int, error) {
	store, err := s.records.Open(source)
	if err != nil {
		return nil, 0, fmt.Errorf("open record table: %w", err)
	}
	defer store.Close()

	records, err := store.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}

	out := make([]domain.Record, 0, len(records))
	skipped := 0
	for _, r := range records {
		if !r.Embeddable() {
			skipped++
			continue
		}
		if len(r.Path) > domain.MaxIndexedPathLength {
			logger.Warn("Skipping %s: path longer than %d bytes", r.Path, domain.MaxIndexedPathLength)
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, skipped, nil
}

// embedAndInsert embeds records in concurrent batches and inserts the
// batches in order once all embeddings are available.
func (s *IndexService) embedAndInsert(ctx context.Context, idx driven.VectorIndex, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batches := batchRecords(records, s.cfg.BatchSize)
	results := make([][]domain.IndexEntry, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			entries, err := s.embedBatch(gctx, batch)
			if err != nil {
				return err
			}
			results[i] = entries
			logger.Debug("Embedded batch %d/%d", i+1, len(batches))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	inserted := 0
	for _, entries := range results {
		if err := idx.Insert(ctx, entries); err != nil {
			return inserted, fmt.Errorf("insert vectors: %w", err)
		}
		inserted += len(entries)
	}
	return inserted, nil
}

func (s *IndexService) embedBatch(ctx context.Context, batch []domain.Record) ([]domain.IndexEntry, error) {
	texts := make([]string, len(batch))
	for i, r := range batch {
		texts[i] = r.Content
	}

	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vecs) != len(batch) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vecs), len(batch))
	}

	entries := make([]domain.IndexEntry, len(batch))
	for i, r := range batch {
		if len(vecs[i]) != s.cfg.Dimensions {
			return nil, fmt.Errorf("embedding for %s has %d dimensions, collection expects %d",
				r.Path, len(vecs[i]), s.cfg.Dimensions)
		}
		entries[i] = domain.IndexEntry{Path: r.Path, Vector: vecs[i]}
	}
	return entries, nil
}

func batchRecords(records []domain.Record, size int) [][]domain.Record {
	batches := make([][]domain.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, records[start:end])
	}
	return batches
}

// LatestRecordTable returns the most recently modified record table in dir.
func LatestRecordTable(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w in %s", domain.ErrNoRecords, dir)
		}
		return "", fmt.Errorf("read extraction directory: %w", err)
	}

	var latest string
	var latestMod int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordTableExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = filepath.Join(dir, e.Name())
			latestMod = mod
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%w in %s", domain.ErrNoRecords, dir)
	}
	return latest, nil
}
