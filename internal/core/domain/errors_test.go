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
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrEmptyInput", ErrEmptyInput},
		{"ErrIndexNotFound", ErrIndexNotFound},
		{"ErrCorruptIndex", ErrCorruptIndex},
		{"ErrEmptyIndex", ErrEmptyIndex},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrEmptyContext", ErrEmptyContext},
		{"ErrEmbeddingBackend", ErrEmbeddingBackend},
		{"ErrGenerationUnavailable", ErrGenerationUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Distinct tests that load failures can be told apart
func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrCorruptIndex, ErrIndexNotFound))
	assert.False(t, errors.Is(ErrIndexNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrEmptyIndex, ErrEmptyInput))
	assert.False(t, errors.Is(ErrGenerationUnavailable, ErrEmbeddingBackend))
}

// TestErrors_Wrapping tests that wrapped errors keep their kind
func TestErrors_Wrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("%w: service unreachable (%w)", ErrGenerationUnavailable, cause)

	assert.True(t, errors.Is(err, ErrGenerationUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")

	wrapped := fmt.Errorf("load index %q: %w", "doc", ErrCorruptIndex)
	assert.True(t, errors.Is(wrapped, ErrCorruptIndex))
	assert.False(t, errors.Is(wrapped, ErrIndexNotFound))
}
