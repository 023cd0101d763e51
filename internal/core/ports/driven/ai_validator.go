package driven

import "github.com/custodia-labs/repochat/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved, so a
// bad key is reported by the settings command rather than by the next ask.
// Settings that are not configured are valid.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
