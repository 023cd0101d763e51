package services

import (
	"os"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure CredentialsService implements the interface.
var _ driven.CredentialProvider = (*CredentialsService)(nil)

// Environment variables consulted before the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
var apiKeyEnvVars = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
	domain.AIProviderGemini:    "GEMINI_API_KEY",
}

// CredentialsService resolves the LLM API key on every call so that a key
// stored while the application runs takes effect on the next request.
type CredentialsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewCredentialsService creates a credentials service reading the process environment.
func NewCredentialsService(configStore driven.ConfigStore) *CredentialsService {
	return &CredentialsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// APIKey returns the key for the configured LLM provider.
// The environment variable wins over the config file.
func (s *CredentialsService) APIKey() (string, error) {
	provider := domain.AIProvider(s.configStore.GetString(keyLLMProvider))
	if provider == "" {
		provider = domain.DefaultAppSettings().LLM.Provider
	}

	if env, ok := apiKeyEnvVars[provider]; ok {
		if key := s.getenv(env); key != "" {
			return key, nil
		}
	}
	return s.configStore.GetString(keyLLMAPIKey), nil
}

// EnvVar returns the environment variable consulted for provider, if any.
func EnvVar(provider domain.AIProvider) string {
	return apiKeyEnvVars[provider]
}
