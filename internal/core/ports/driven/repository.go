package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// RepositoryFetcher downloads a hosted repository as a zip archive.
type RepositoryFetcher interface {
	// FetchArchive writes the zip archive of repo to w.
	// An unknown repository or ref yields an error wrapping domain.ErrNotFound.
	FetchArchive(ctx context.Context, repo domain.RepoRef, w io.Writer) error
}
