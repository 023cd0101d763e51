package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

var (
	indexSource  string
	indexRebuild bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the embedding index from extracted records",
	Long: `Embeds every non-empty file record and inserts it into the vector
collection, creating the collection if needed. Without --source the most
recent record table in the extraction directory is used.

Connection attempts are retried a bounded number of times; the command
exits non-zero once they are exhausted.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexSource, "source", "s", "", "record table to index (default: newest in extraction dir)")
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "drop the collection before indexing")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	summary, err := indexService.Build(cmd.Context(), driving.IndexOptions{
		Source:  indexSource,
		Rebuild: indexRebuild,
	})
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if summary.Created {
		cmd.Printf("Created collection %s\n", summary.Collection)
	}
	cmd.Printf("Indexed %s into %s\n", summary.Source, summary.Collection)
	cmd.Printf("  Inserted: %d\n", summary.Inserted)
	cmd.Printf("  Skipped:  %d\n", summary.Skipped)
	return nil
}
