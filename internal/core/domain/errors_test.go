package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrMissingCredential", ErrMissingCredential},
		{"ErrIndexUnavailable", ErrIndexUnavailable},
		{"ErrGeneration", ErrGeneration},
		{"ErrInvalidMode", ErrInvalidMode},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrNoRecords", ErrNoRecords},
		{"ErrUnsafePath", ErrUnsafePath},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrUnauthorized", ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_AreDistinct tests that no sentinel matches another
func TestErrors_AreDistinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrMissingCredential, ErrIndexUnavailable,
		ErrGeneration, ErrInvalidMode, ErrEmbeddingUnavailable, ErrLLMUnavailable,
		ErrNoRecords, ErrUnsafePath, ErrRateLimited, ErrUnauthorized,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

// TestErrors_Wrapping tests that wrapped sentinels keep their identity
func TestErrors_Wrapping(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("%w: %w", ErrIndexUnavailable, cause)

	assert.True(t, errors.Is(wrapped, ErrIndexUnavailable))
	assert.True(t, errors.Is(wrapped, cause))
	assert.False(t, errors.Is(wrapped, ErrGeneration))
}
