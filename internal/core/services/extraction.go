package services

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// ErrNoRepositoryFetcher is returned by IngestRepository when no fetcher is configured.
var ErrNoRepositoryFetcher = errors.New("repository download not configured")

// maxArchiveFileSize caps a single unpacked archive entry.
const maxArchiveFileSize = 64 << 20

// ExtractionService scans directory trees into record tables.
type ExtractionService struct {
	records       driven.RecordStoreFactory
	fetcher       driven.RepositoryFetcher
	workspaceDir  string
	extractionDir string
}

// NewExtractionService creates an extraction service.
func NewExtractionService(records driven.RecordStoreFactory, workspaceDir, extractionDir string) *ExtractionService {
	return &ExtractionService{
		records:       records,
		workspaceDir:  workspaceDir,
		extractionDir: extractionDir,
	}
}

// WithFetcher enables IngestRepository.
func (s *ExtractionService) WithFetcher(f driven.RepositoryFetcher) *ExtractionService {
	s.fetcher = f
	return s
}

// RecordTablePath returns the table location for root: the extraction
// directory joined with the last path segment of root.
func (s *ExtractionService) RecordTablePath(root string) string {
	base := filepath.Base(filepath.Clean(root))
	return filepath.Join(s.extractionDir, base+recordTableExt)
}

// Extract walks root and replaces the record table named after it.
// Directories below root are recorded with empty content. Files that are
// not valid UTF-8 or cannot be read are recorded with empty content.
func (s *ExtractionService) Extract(ctx context.Context, root string) (*domain.ExtractionSummary, error) {
	logger.Section("Extraction")

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: path %q does not exist", domain.ErrNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", domain.ErrInvalidInput, root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	summary := &domain.ExtractionSummary{Root: absRoot, Output: s.RecordTablePath(absRoot)}
	var records []domain.Record

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			logger.Warn("Skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}

		if d.IsDir() {
			records = append(records, domain.Record{Path: path, IsDir: true})
			summary.Dirs++
			logger.Debug("Directory: %s", path)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		content, ok := readText(path)
		if !ok {
			summary.Unreadable++
		}
		records = append(records, domain.Record{Path: path, Content: content})
		summary.Files++
		logger.Debug("File: %s (%d bytes)", path, len(content))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	if err := os.MkdirAll(s.extractionDir, 0o755); err != nil {
		return nil, fmt.Errorf("create extraction directory: %w", err)
	}

	store, err := s.records.Open(summary.Output)
	if err != nil {
		return nil, fmt.Errorf("open record table: %w", err)
	}
	defer store.Close()

	if err := store.Replace(ctx, records); err != nil {
		return nil, fmt.Errorf("write records: %w", err)
	}

	logger.Info("Stored %d files and %d directories in %s", summary.Files, summary.Dirs, summary.Output)
	return summary, nil
}

// Ingest clears the workspace, unpacks the zip archive into it, then
// extracts the workspace.
func (s *ExtractionService) Ingest(ctx context.Context, archive string) (*domain.ExtractionSummary, error) {
	if err := os.RemoveAll(s.workspaceDir); err != nil {
		return nil, fmt.Errorf("clear workspace: %w", err)
	}
	if err := os.MkdirAll(s.workspaceDir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	if err := unzip(ctx, archive, s.workspaceDir); err != nil {
		return nil, err
	}
	return s.Extract(ctx, s.workspaceDir)
}

// IngestRepository downloads a hosted repository archive and ingests it.
// target is "owner/name" or "owner/name@ref".
func (s *ExtractionService) IngestRepository(ctx context.Context, target string) (*domain.ExtractionSummary, error) {
	repo, err := domain.ParseRepoRef(target)
	if err != nil {
		return nil, err
	}
	if s.fetcher == nil {
		return nil, ErrNoRepositoryFetcher
	}

	tmp, err := os.CreateTemp("", "repochat-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	logger.Info("Downloading %s", repo)
	err = s.fetcher.FetchArchive(ctx, repo, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", repo, err)
	}
	return s.Ingest(ctx, tmp.Name())
}

// readText returns the file content if it is readable UTF-8 text.
func readText(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Cannot read %s: %v", path, err)
		return "", false
	}
	if !utf8.Valid(data) {
		logger.Debug("Skipping content of %s: not UTF-8 text", path)
		return "", false
	}
	return string(data), true
}

// unzip extracts archive into dest, rejecting entries that escape dest.
func unzip(ctx context.Context, archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if errors.Is(err, zip.ErrInsecurePath) {
		if r != nil {
			r.Close()
		}
		return fmt.Errorf("%w: %w", domain.ErrUnsafePath, err)
	}
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			continue
		}
		if err := extractZipFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	n, err := io.Copy(dst, io.LimitReader(src, maxArchiveFileSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	if n > maxArchiveFileSize {
		return fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, f.Name, maxArchiveFileSize)
	}
	return nil
}

// safeJoin joins name below root, rejecting absolute names and names
// that escape root.
func safeJoin(root, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsafePath, name)
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsafePath, name)
	}
	return filepath.Join(root, cleaned), nil
}
