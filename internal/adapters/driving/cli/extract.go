package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

var extractCmd = &cobra.Command{
	Use:   "extract <dir>",
	Short: "Extract a source tree into a record table",
	Long: `Walks a directory and writes one record per file and directory to
<extraction-dir>/<base>.db, replacing any previous table of that name.
Files that cannot be read as text are recorded with empty content.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var ingestGitHub string

var ingestCmd = &cobra.Command{
	Use:   "ingest <archive.zip>",
	Short: "Unpack a zip archive into the workspace and extract it",
	Long: `Clears the workspace directory, unpacks the archive into it and runs
extraction on the result. Archive entries that would escape the workspace
are rejected.

With --github the archive is downloaded from GitHub instead. Private
repositories need a token in github.token or GITHUB_TOKEN.`,
	Example: `  repochat ingest ./project.zip
  repochat ingest --github octo/widgets@main`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestGitHub, "github", "", "download owner/name[@ref] from GitHub")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, root)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	summary, err := extractionService.Extract(cmd.Context(), root)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	printExtraction(cmd, summary)
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	if ingestGitHub != "" {
		if len(args) > 0 {
			return fmt.Errorf("%w: pass an archive or --github, not both", domain.ErrInvalidInput)
		}
		summary, err := extractionService.IngestRepository(cmd.Context(), ingestGitHub)
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			return fmt.Errorf("ingest failed: %w\nCheck GITHUB_TOKEN or the github.token setting", err)
		case errors.Is(err, domain.ErrRateLimited):
			return fmt.Errorf("ingest failed: %w\nWait for the quota to reset or set GITHUB_TOKEN", err)
		case err != nil:
			return fmt.Errorf("ingest failed: %w", err)
		}
		printExtraction(cmd, summary)
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: an archive path or --github is required", domain.ErrInvalidInput)
	}

	archive := args[0]
	if _, err := os.Stat(archive); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, archive)
	}

	summary, err := extractionService.Ingest(cmd.Context(), archive)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printExtraction(cmd, summary)
	return nil
}

func printExtraction(cmd *cobra.Command, s *domain.ExtractionSummary) {
	cmd.Printf("Extracted %s\n", s.Root)
	cmd.Printf("  Files:      %d\n", s.Files)
	cmd.Printf("  Dirs:       %d\n", s.Dirs)
	if s.Unreadable > 0 {
		cmd.Printf("  Unreadable: %d\n", s.Unreadable)
	}
	cmd.Printf("Records written to %s\n", s.Output)
}
