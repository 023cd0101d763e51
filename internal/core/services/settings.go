package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMTemperature    = "llm.temperature"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedRPS          = "embedding.requests_per_second"
	keyVectorBackend     = "vector_index.backend"
	keyVectorHost        = "vector_index.host"
	keyVectorPort        = "vector_index.port"
	keyVectorCollection  = "vector_index.collection"
	keyVectorDims        = "vector_index.dimensions"
	keyVectorNList       = "vector_index.nlist"
	keyVectorNProbe      = "vector_index.nprobe"
	keyVectorAttempts    = "vector_index.connect_attempts"
	keyVectorRetryDelay  = "vector_index.retry_delay"
	keyVectorTimeout     = "vector_index.connect_timeout"
	keyRetrievalTopK     = "retrieval.top_k"
	keyWorkspaceDir      = "workspace.dir"
	keyExtractionDir     = "workspace.extraction_dir"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	credentials driven.CredentialProvider
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		credentials: NewCredentialsService(configStore),
	}
}

// Get retrieves current application settings. The LLM API key reflects
// the environment override when one is set.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:         s.getBackend(defaults.VectorIndex.Backend),
			Host:            s.getString(keyVectorHost, defaults.VectorIndex.Host),
			Port:            s.getInt(keyVectorPort, defaults.VectorIndex.Port),
			Collection:      s.getString(keyVectorCollection, defaults.VectorIndex.Collection),
			Dimensions:      s.getInt(keyVectorDims, defaults.VectorIndex.Dimensions),
			NList:           s.getInt(keyVectorNList, defaults.VectorIndex.NList),
			NProbe:          s.getInt(keyVectorNProbe, defaults.VectorIndex.NProbe),
			ConnectAttempts: s.getInt(keyVectorAttempts, defaults.VectorIndex.ConnectAttempts),
			RetryDelay:      s.getDuration(keyVectorRetryDelay, defaults.VectorIndex.RetryDelay),
			ConnectTimeout:  s.getDuration(keyVectorTimeout, defaults.VectorIndex.ConnectTimeout),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
		},
		Workspace: domain.WorkspaceSettings{
			Dir:           s.getString(keyWorkspaceDir, defaults.Workspace.Dir),
			ExtractionDir: s.getString(keyExtractionDir, defaults.Workspace.ExtractionDir),
		},
	}

	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaBaseURL
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaBaseURL
	}

	key, err := s.credentials.APIKey()
	if err != nil {
		return nil, fmt.Errorf("resolve api key: %w", err)
	}
	settings.LLM.APIKey = key

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyVectorBackend, settings.VectorIndex.Backend.String()},
		{keyVectorHost, settings.VectorIndex.Host},
		{keyVectorPort, settings.VectorIndex.Port},
		{keyVectorCollection, settings.VectorIndex.Collection},
		{keyVectorDims, settings.VectorIndex.Dimensions},
		{keyVectorNList, settings.VectorIndex.NList},
		{keyVectorNProbe, settings.VectorIndex.NProbe},
		{keyVectorAttempts, settings.VectorIndex.ConnectAttempts},
		{keyVectorRetryDelay, settings.VectorIndex.RetryDelay.String()},
		{keyVectorTimeout, settings.VectorIndex.ConnectTimeout.String()},
		{keyRetrievalTopK, settings.Retrieval.TopK},
		{keyWorkspaceDir, settings.Workspace.Dir},
		{keyExtractionDir, settings.Workspace.ExtractionDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Keys are only written when supplied so an environment override is
	// never copied into the config file.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	return nil
}

// SetAPIKey stores the chat model API key.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: API key cannot be empty", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
		return fmt.Errorf("save llm api_key: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// The collection dimension follows the model.
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.VectorIndex.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider. An empty apiKey keeps the stored key.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	if err := s.Save(settings); err != nil {
		return err
	}
	if apiKey != "" {
		return s.SetAPIKey(apiKey)
	}
	return nil
}

// SetVectorBackend configures the vector store location.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend, host string, port int) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", backend)
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidInput, port)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.VectorIndex.Backend = backend
	if host != "" {
		settings.VectorIndex.Host = host
	}
	if port != 0 {
		settings.VectorIndex.Port = port
	}
	return s.Save(settings)
}

// Validate checks the settings are usable for retrieval and generation.
// A missing LLM key is not an error here: it is reported per request.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", settings.LLM.Provider)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.VectorIndex.Backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", settings.VectorIndex.Backend)
	}
	if settings.VectorIndex.Dimensions < 1 {
		return fmt.Errorf("%w: vector dimensions must be positive", domain.ErrInvalidInput)
	}
	if settings.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: retrieval top_k must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	val := s.configStore.GetString(keyVectorBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.VectorBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
