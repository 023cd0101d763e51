// Command repochat answers questions about a code repository using
// retrieval-augmented generation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/repochat/internal/adapters/driven/ai"
	"github.com/custodia-labs/repochat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repochat/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/repochat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/repochat/internal/adapters/driven/vector/milvus"
	"github.com/custodia-labs/repochat/internal/adapters/driving/cli"
	"github.com/custodia-labs/repochat/internal/connectors/github"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/core/services"
	"github.com/custodia-labs/repochat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

const (
	promptsDirName = "prompts"
	vectorDBName   = "vectors.db"
	githubTokenKey = "github.token"
	githubTokenEnv = "GITHUB_TOKEN"
)

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires adapters to services once global flags are known.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	configDir, err := resolveConfigDir(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	promptStore, err := file.NewPromptStore(filepath.Join(configDir, promptsDirName))
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	credentials := services.NewCredentialsService(configStore)

	// Connectivity is checked on first use so offline commands stay fast.
	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("embedding service unavailable: %v", err)
		embedder = nil
	}

	connector := vectorConnector(settings.VectorIndex, configDir)
	retry := services.RetryPolicyFrom(settings.VectorIndex)

	selector := services.NewPromptSelector(promptStore)
	chat := services.NewChatService(
		services.NewRetriever(connector, embedder, settings.Retrieval.TopK, retry),
		services.NewGroundingAssembler(filesystem.Reader{}),
		selector,
		services.NewResponseGenerator(settings.LLM, credentials, ai.Factory{}),
	)

	index := services.NewIndexService(connector, embedder, sqlite.RecordStores{}, services.IndexConfig{
		ExtractionDir:     settings.Workspace.ExtractionDir,
		Collection:        settings.VectorIndex.Collection,
		Dimensions:        settings.VectorIndex.Dimensions,
		Retry:             retry,
		RequestsPerSecond: settings.Embedding.RequestsPerSecond,
	})

	token := os.Getenv(githubTokenEnv)
	if token == "" {
		token = configStore.GetString(githubTokenKey)
	}
	extraction := services.NewExtractionService(sqlite.RecordStores{}, settings.Workspace.Dir, settings.Workspace.ExtractionDir).
		WithFetcher(github.NewClient(context.Background(), token))

	logger.Debug("config: %s, vector backend: %s", configStore.Path(), settings.VectorIndex.Backend)

	return &cli.Services{
		Settings:   settingsService,
		Chat:       chat,
		Extraction: extraction,
		Index:      index,
		Edits:      services.NewEditService(),
		Prompts:    selector,
		Watcher:    promptStore,
	}, nil
}

func vectorConnector(vi domain.VectorIndexSettings, configDir string) driven.VectorIndexConnector {
	if vi.Backend == domain.VectorBackendSQLite {
		return sqlite.NewVectorConnector(filepath.Join(configDir, vectorDBName), vi.Collection)
	}
	return milvus.NewConnector(milvus.Config{
		Address:        vi.Address(),
		Collection:     vi.Collection,
		NList:          vi.NList,
		NProbe:         vi.NProbe,
		ConnectTimeout: vi.ConnectTimeout,
	})
}

func resolveConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".repochat"), nil
}
