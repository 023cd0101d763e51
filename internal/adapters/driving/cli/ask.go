package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

var (
	askMode  string
	askApply string
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about the indexed project",
	Long: `Runs one retrieval-augmented turn and prints the answer.

In developer mode the answer's file blocks are listed, and with --apply
they are written below the given directory. Paths that would escape the
directory are rejected.`,
	Example: `  repochat ask "how is the index built?"
  repochat ask --mode debugger "why does extraction skip some files?"
  repochat ask --mode developer --apply ./out "add a --dry-run flag to ingest"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", domain.ModeAnalyzer.String(), "operating mode (analyzer, debugger, developer)")
	askCmd.Flags().StringVar(&askApply, "apply", "", "write developer-mode edits below this directory")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON form of an answer.
type askOutput struct {
	Mode    string            `json:"mode"`
	Display string            `json:"display"`
	Edits   []domain.FileEdit `json:"edits,omitempty"`
	Written []string          `json:"written,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	mode, err := domain.ParseMode(askMode)
	if err != nil {
		return err
	}
	if askApply != "" && !mode.ProducesEdits() {
		return fmt.Errorf("--apply requires --mode %s", domain.ModeDeveloper)
	}

	query := strings.Join(args, " ")
	interp, err := chatService.Ask(cmd.Context(), query, mode)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredential) {
			return fmt.Errorf("%w. Run 'repochat settings key' to set it", err)
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	var written []string
	if askApply != "" && len(interp.Edits) > 0 {
		if editApplier == nil {
			return errors.New("edit applier not configured")
		}
		written, err = editApplier.Apply(askApply, interp.Edits)
		if err != nil {
			return fmt.Errorf("apply edits: %w", err)
		}
	}

	if askJSON {
		data, err := json.MarshalIndent(askOutput{
			Mode:    mode.String(),
			Display: interp.Display,
			Edits:   interp.Edits,
			Written: written,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if interp.Display != "" {
		cmd.Println(interp.Display)
	}
	if len(interp.Edits) > 0 {
		cmd.Println()
		cmd.Printf("Proposed edits (%d):\n", len(interp.Edits))
		for _, e := range interp.Edits {
			cmd.Printf("  %s\n", e.Path)
		}
	}
	if len(written) > 0 {
		cmd.Printf("Wrote %d file(s) under %s\n", len(written), askApply)
	}
	return nil
}
