package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui"
	"github.com/custodia-labs/repochat/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive chat UI",
	Long: `Launch the interactive terminal chat for the indexed project.

Controls:
  enter    - Send the question
  tab      - Cycle mode (analyzer, debugger, developer)
  ctrl+s   - Settings (set the API key)
  ctrl+l   - Clear the conversation
  pgup/dn  - Scroll the transcript
  f1       - Help
  ctrl+c   - Quit

Prompt templates under ~/.repochat/prompts are reloaded when edited.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if chatService == nil {
		return errors.New("chat service not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Prompt edits take effect on the next turn while the UI runs.
	if promptWatcher != nil {
		go func() {
			if err := promptWatcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	app, err := tui.NewApp(&tui.Ports{
		Chat:     chatService,
		Settings: settingsService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
