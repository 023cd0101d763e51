package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// pinger is the part of a provider client the validator needs.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// ConfigValidator checks provider settings by building a client and pinging
// it. Settings that are not configured pass, since nothing would use them.
type ConfigValidator struct {
	// Timeout bounds each ping. Zero means pingTimeout.
	Timeout time.Duration
}

// NewConfigValidator creates a validator with the default ping timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{Timeout: pingTimeout}
}

// ValidateEmbedding pings the embedding provider described by cfg.
func (v *ConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	if cfg == nil || !cfg.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(cfg)
	if err != nil {
		return err
	}
	return v.ping(svc)
}

// ValidateLLM pings the LLM provider described by cfg.
func (v *ConfigValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	if cfg == nil || !cfg.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(cfg)
	if err != nil {
		return err
	}
	return v.ping(svc)
}

func (v *ConfigValidator) ping(p pinger) error {
	defer p.Close()

	timeout := v.Timeout
	if timeout <= 0 {
		timeout = pingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Ping(ctx)
}
