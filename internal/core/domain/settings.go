package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies the store holding the embedding index.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMilvus is a Milvus server reached over gRPC.
	VectorBackendMilvus VectorBackend = "milvus"

	// VectorBackendSQLite is a local single-file index with exact L2 search.
	VectorBackendSQLite VectorBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendMilvus, VectorBackendSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendMilvus:
		return "Milvus (IVF_FLAT, L2)"
	case VectorBackendSQLite:
		return "SQLite (local, exact L2)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls during index builds.
	// Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature sent with every request.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorIndexSettings holds embedding index configuration.
type VectorIndexSettings struct {
	// Backend selects the vector store implementation.
	Backend VectorBackend

	// Host and Port locate a Milvus server.
	Host string
	Port int

	// Collection is the name of the singleton collection.
	Collection string

	// Dimensions is the embedding vector size.
	Dimensions int

	// NList is the IVF cluster count used when creating the index.
	NList int

	// NProbe is the number of clusters scanned per search.
	NProbe int

	// ConnectAttempts bounds connection retries.
	ConnectAttempts int

	// RetryDelay is the fixed wait between connection attempts.
	RetryDelay time.Duration

	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration
}

// Address returns the host:port form of the store location.
func (v VectorIndexSettings) Address() string {
	return fmt.Sprintf("%s:%d", v.Host, v.Port)
}

// RetrievalSettings holds query-time retrieval configuration.
type RetrievalSettings struct {
	// TopK is the number of nearest paths returned per query.
	TopK int
}

// WorkspaceSettings holds on-disk locations used by ingestion.
type WorkspaceSettings struct {
	// Dir receives the unpacked archive. It is cleared on every ingest.
	Dir string

	// ExtractionDir holds one record table per extracted root.
	ExtractionDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// VectorIndex holds embedding index settings.
	VectorIndex VectorIndexSettings

	// Retrieval holds query-time settings.
	Retrieval RetrievalSettings

	// Workspace holds ingestion paths.
	Workspace WorkspaceSettings
}

// Defaults for the retrieval pipeline.
const (
	DefaultLLMModel        = "gpt-3.5-turbo"
	DefaultTemperature     = 0.7
	DefaultEmbeddingModel  = "all-minilm"
	DefaultDimensions      = 384
	DefaultCollection      = "document_collection"
	DefaultVectorHost      = "localhost"
	DefaultVectorPort      = 19530
	DefaultNList           = 1024
	DefaultNProbe          = 16
	DefaultTopK            = 5
	DefaultConnectAttempts = 5
	DefaultRetryDelay      = 5 * time.Second
	DefaultConnectTimeout  = 5 * time.Second
	DefaultWorkspaceDir    = "workspace"
	DefaultExtractionDir   = "extraction"
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM API key is left empty; it must be supplied through
// configuration or the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModel,
			Temperature: DefaultTemperature,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModel,
		},
		VectorIndex: VectorIndexSettings{
			Backend:         VectorBackendMilvus,
			Host:            DefaultVectorHost,
			Port:            DefaultVectorPort,
			Collection:      DefaultCollection,
			Dimensions:      DefaultDimensions,
			NList:           DefaultNList,
			NProbe:          DefaultNProbe,
			ConnectAttempts: DefaultConnectAttempts,
			RetryDelay:      DefaultRetryDelay,
			ConnectTimeout:  DefaultConnectTimeout,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		Workspace: WorkspaceSettings{
			Dir:           DefaultWorkspaceDir,
			ExtractionDir: DefaultExtractionDir,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// AllVectorBackends returns every supported vector backend.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendMilvus,
		VectorBackendSQLite,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: DefaultEmbeddingModel,
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    DefaultLLMModel,
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004":   768,
		"gemini-embedding-001": 768,
	}
}
