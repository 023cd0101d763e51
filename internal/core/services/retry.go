package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// RetryPolicy bounds connection attempts to the vector store.
type RetryPolicy struct {
	// Attempts is the total number of tries. Values below 1 mean one try.
	Attempts int

	// Delay is the fixed wait between tries.
	Delay time.Duration

	// Timeout bounds each try. Zero leaves tries bounded only by ctx.
	Timeout time.Duration
}

// RetryPolicyFrom builds a policy from vector index settings.
func RetryPolicyFrom(s domain.VectorIndexSettings) RetryPolicy {
	return RetryPolicy{Attempts: s.ConnectAttempts, Delay: s.RetryDelay, Timeout: s.ConnectTimeout}
}

func (p RetryPolicy) connect(ctx context.Context, connector driven.VectorIndexConnector) (driven.VectorIndex, error) {
	if p.Timeout <= 0 {
		return connector.Connect(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return connector.Connect(ctx)
}

// connectIndex opens a vector index connection, retrying with a fixed delay.
// The returned error wraps domain.ErrIndexUnavailable once attempts are exhausted.
func connectIndex(ctx context.Context, connector driven.VectorIndexConnector, policy RetryPolicy) (driven.VectorIndex, error) {
	attempts := max(policy.Attempts, 1)

	var lastErr error
	for i := 1; i <= attempts; i++ {
		idx, err := policy.connect(ctx, connector)
		if err == nil {
			return idx, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, ctx.Err())
		}
		lastErr = err
		logger.Warn("Vector store connection attempt %d/%d failed: %v", i, attempts, err)

		if i == attempts {
			break
		}

		timer := time.NewTimer(policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("%w: %d attempts: %w", domain.ErrIndexUnavailable, attempts, lastErr)
}
