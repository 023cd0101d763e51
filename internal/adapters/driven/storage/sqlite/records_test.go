package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

func TestRecordStore_ReplaceAndList(t *testing.T) {
	ctx := context.Background()
	records := setupTestStore(t).RecordStore()
	defer records.Close()

	input := []domain.Record{
		{Path: "/proj/src", IsDir: true},
		{Path: "/proj/src/main.go", Content: "package main\n"},
		{Path: "/proj/README.md", Content: "# proj"},
	}
	require.NoError(t, records.Replace(ctx, input))

	got, err := records.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, input, got)

	count, err := records.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRecordStore_ReplaceDiscardsPrevious(t *testing.T) {
	ctx := context.Background()
	records := setupTestStore(t).RecordStore()
	defer records.Close()

	require.NoError(t, records.Replace(ctx, []domain.Record{{Path: "/old", Content: "old"}}))
	require.NoError(t, records.Replace(ctx, []domain.Record{{Path: "/new", Content: "new"}}))

	got, err := records.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{{Path: "/new", Content: "new"}}, got)
}

func TestRecordStore_Empty(t *testing.T) {
	ctx := context.Background()
	records := setupTestStore(t).RecordStore()
	defer records.Close()

	got, err := records.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, records.Replace(ctx, nil))
	count, err := records.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordStores_OpenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "extraction", "proj.db")

	first, err := RecordStores{}.Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, first.Path())
	require.NoError(t, first.Replace(ctx, []domain.Record{{Path: "/proj/a.go", Content: "a"}}))
	require.NoError(t, first.Close())

	second, err := RecordStores{}.Open(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{{Path: "/proj/a.go", Content: "a"}}, got)
}
