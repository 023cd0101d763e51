package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/repochat/internal/core/domain"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func TestExtractionService_Extract(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "myproject")
	writeTree(t, root, map[string]string{
		"main.go":       "package main",
		"pkg/util.go":   "package pkg",
		"assets/logo":   "\xff\xfe\x00binary",
		"docs/empty.md": "",
	})

	stores := memory.NewRecordStores()
	extractionDir := filepath.Join(base, "extraction")
	svc := NewExtractionService(stores, filepath.Join(base, "workspace"), extractionDir)

	summary, err := svc.Extract(context.Background(), root)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(extractionDir, "myproject.db"), summary.Output)
	assert.Equal(t, 4, summary.Files)
	assert.Equal(t, 3, summary.Dirs)
	assert.Equal(t, 1, summary.Unreadable)

	records, err := stores.Table(summary.Output).List(context.Background())
	require.NoError(t, err)
	byPath := map[string]domain.Record{}
	for _, r := range records {
		byPath[r.Path] = r
	}
	assert.Equal(t, "package main", byPath[filepath.Join(root, "main.go")].Content)
	assert.Equal(t, "package pkg", byPath[filepath.Join(root, "pkg", "util.go")].Content)
	assert.True(t, byPath[filepath.Join(root, "pkg")].IsDir)
	assert.Equal(t, "", byPath[filepath.Join(root, "assets", "logo")].Content)
	_, hasRoot := byPath[root]
	assert.False(t, hasRoot)
	assert.DirExists(t, extractionDir)
}

func TestExtractionService_Extract_ReplacesPreviousRecords(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "proj")
	writeTree(t, root, map[string]string{"a.go": "a", "b.go": "b"})
	stores := memory.NewRecordStores()
	svc := NewExtractionService(stores, "", filepath.Join(base, "out"))

	_, err := svc.Extract(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "b.go")))
	summary, err := svc.Extract(context.Background(), root)
	require.NoError(t, err)

	n, _ := stores.Table(summary.Output).Count(context.Background())
	assert.Equal(t, 1, n)
}

func TestExtractionService_Extract_Errors(t *testing.T) {
	base := t.TempDir()
	svc := NewExtractionService(memory.NewRecordStores(), "", base)

	_, err := svc.Extract(context.Background(), filepath.Join(base, "nope"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	file := filepath.Join(base, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = svc.Extract(context.Background(), file)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractionService_RecordTablePath(t *testing.T) {
	svc := NewExtractionService(nil, "", "extraction")

	assert.Equal(t, filepath.Join("extraction", "proj.db"), svc.RecordTablePath("/tmp/proj/"))
	assert.Equal(t, filepath.Join("extraction", "workspace.db"), svc.RecordTablePath("workspace"))
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestExtractionService_Ingest(t *testing.T) {
	base := t.TempDir()
	workspace := filepath.Join(base, "workspace")
	writeTree(t, workspace, map[string]string{"stale.txt": "old"})

	archive := filepath.Join(base, "upload.zip")
	writeZip(t, archive, map[string]string{
		"app/main.py":  "print(1)",
		"app/README":   "hello",
		"app/sub/x.py": "x = 1",
	})

	stores := memory.NewRecordStores()
	svc := NewExtractionService(stores, workspace, filepath.Join(base, "extraction"))

	summary, err := svc.Ingest(context.Background(), archive)

	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(workspace, "stale.txt"))
	assert.FileExists(t, filepath.Join(workspace, "app", "main.py"))
	assert.Equal(t, 3, summary.Files)
	assert.Equal(t, filepath.Join(base, "extraction", "workspace.db"), summary.Output)
}

func TestExtractionService_Ingest_RejectsTraversal(t *testing.T) {
	base := t.TempDir()
	archive := filepath.Join(base, "evil.zip")
	writeZip(t, archive, map[string]string{"../../escape.txt": "pwned"})
	svc := NewExtractionService(memory.NewRecordStores(), filepath.Join(base, "ws"), filepath.Join(base, "out"))

	_, err := svc.Ingest(context.Background(), archive)

	assert.ErrorIs(t, err, domain.ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(base, "escape.txt"))
}

// fakeFetcher serves a fixed zip archive.
type fakeFetcher struct {
	archive []byte
	err     error
	got     domain.RepoRef
}

func (f *fakeFetcher) FetchArchive(_ context.Context, repo domain.RepoRef, w io.Writer) error {
	f.got = repo
	if f.err != nil {
		return f.err
	}
	_, err := w.Write(f.archive)
	return err
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractionService_IngestRepository(t *testing.T) {
	base := t.TempDir()
	fetcher := &fakeFetcher{archive: zipBytes(t, map[string]string{
		"octo-widgets-abc123/main.go": "package main",
		"octo-widgets-abc123/go.mod":  "module widgets",
	})}
	svc := NewExtractionService(memory.NewRecordStores(), filepath.Join(base, "ws"), filepath.Join(base, "out")).
		WithFetcher(fetcher)

	summary, err := svc.IngestRepository(context.Background(), "octo/widgets@main")

	require.NoError(t, err)
	assert.Equal(t, domain.RepoRef{Owner: "octo", Name: "widgets", Ref: "main"}, fetcher.got)
	assert.Equal(t, 2, summary.Files)
	assert.FileExists(t, filepath.Join(base, "ws", "octo-widgets-abc123", "main.go"))
}

func TestExtractionService_IngestRepository_Errors(t *testing.T) {
	base := t.TempDir()
	newSvc := func() *ExtractionService {
		return NewExtractionService(memory.NewRecordStores(), filepath.Join(base, "ws"), filepath.Join(base, "out"))
	}

	_, err := newSvc().IngestRepository(context.Background(), "not-a-repo")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = newSvc().IngestRepository(context.Background(), "octo/widgets")
	assert.ErrorIs(t, err, ErrNoRepositoryFetcher)

	missing := &fakeFetcher{err: fmt.Errorf("%w: octo/gone", domain.ErrNotFound)}
	_, err = newSvc().WithFetcher(missing).IngestRepository(context.Background(), "octo/gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	broken := &fakeFetcher{err: errors.New("connection reset")}
	_, err = newSvc().WithFetcher(broken).IngestRepository(context.Background(), "octo/widgets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch octo/widgets")
}

func TestSafeJoin(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "a/b.go"},
		{name: "./a.go"},
		{name: "a/../b.go"},
		{name: "../x", wantErr: true},
		{name: "a/../../x", wantErr: true},
		{name: "/etc/passwd", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := safeJoin("/root", tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsafePath)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEditService_Apply(t *testing.T) {
	root := t.TempDir()
	svc := NewEditService()

	written, err := svc.Apply(root, []domain.FileEdit{
		{Path: "pkg/a.go", Content: "package pkg"},
		{Path: "README.md", Content: "# hi\n"},
	})

	require.NoError(t, err)
	assert.Len(t, written, 2)
	data, err := os.ReadFile(filepath.Join(root, "pkg", "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package pkg\n", string(data))
	data, err = os.ReadFile(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# hi\n", string(data))
}

func TestEditService_Apply_RejectsEscapeBeforeWriting(t *testing.T) {
	root := t.TempDir()
	svc := NewEditService()

	_, err := svc.Apply(root, []domain.FileEdit{
		{Path: "ok.go", Content: "x"},
		{Path: "../escape.go", Content: "y"},
	})

	assert.ErrorIs(t, err, domain.ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(root, "ok.go"))
}
