// Package cli provides the repochat command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
	"github.com/custodia-labs/repochat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

// PromptSource returns the instruction template for a mode.
type PromptSource interface {
	Select(mode domain.Mode) (string, error)
}

// PromptWatcher reloads prompt templates when they change on disk.
type PromptWatcher interface {
	Watch(ctx context.Context) error
}

// Services holds the driving ports the commands call.
type Services struct {
	Settings   driving.SettingsService
	Chat       driving.ChatService
	Extraction driving.ExtractionService
	Index      driving.IndexService
	Edits      driving.EditApplier
	Prompts    PromptSource
	Watcher    PromptWatcher
}

// Options are the global flag values handed to the bootstrap function.
type Options struct {
	Verbose   bool
	ConfigDir string
}

// Bootstrap builds the services once flags are parsed.
type Bootstrap func(opts Options) (*Services, error)

var bootstrap Bootstrap

// Services used by the commands. Set by the composition root or by tests.
var (
	settingsService   driving.SettingsService
	chatService       driving.ChatService
	extractionService driving.ExtractionService
	indexService      driving.IndexService
	editApplier       driving.EditApplier
	promptSource      PromptSource
	promptWatcher     PromptWatcher
)

var rootCmd = &cobra.Command{
	Use:   "repochat",
	Short: "Chat with a code repository",
	Long: `repochat answers questions about a code repository.

Extract a source tree into a record table, build the embedding index, then
ask questions in one of three modes:
  analyzer   - explain structure and architecture
  debugger   - find bugs and suggest fixes
  developer  - propose complete file edits

Run 'repochat chat' for the interactive terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if bootstrap == nil {
			return nil
		}
		svc, err := bootstrap(Options{Verbose: verbose, ConfigDir: configDir})
		if err != nil {
			return fmt.Errorf("initialise: %w", err)
		}
		SetServices(svc)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.repochat)")
}

// SetBootstrap registers the function that builds services after flag parsing.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	settingsService = s.Settings
	chatService = s.Chat
	extractionService = s.Extraction
	indexService = s.Index
	editApplier = s.Edits
	promptSource = s.Prompts
	promptWatcher = s.Watcher
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
