package ai

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
}

func TestConfigValidator_ValidateLLM_NilConfig(t *testing.T) {
	validator := NewConfigValidator()

	err := validator.ValidateLLM(nil)

	// Nothing to validate.
	assert.NoError(t, err)
}

func TestConfigValidator_ValidateLLM_UnconfiguredProvider(t *testing.T) {
	validator := NewConfigValidator()
	config := &domain.LLMSettings{
		Provider: "",
		Model:    "test-model",
	}

	assert.NoError(t, validator.ValidateLLM(config))
}

func TestConfigValidator_ValidateLLM_PingsProvider(t *testing.T) {
	validator := NewConfigValidator()

	ok := newOllamaServer(t, http.StatusOK)
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama, BaseURL: ok.URL, Model: "m",
	}))

	down := newOllamaServer(t, http.StatusServiceUnavailable)
	assert.Error(t, validator.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama, BaseURL: down.URL, Model: "m",
	}))
}
