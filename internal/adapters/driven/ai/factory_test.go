package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/llm/ollama"
	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/llm/ratelimit"
	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

func newOllamaServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		result.Close()
	})
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.LLMSettings{}, wantNil: true},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
		},
		{
			name: "azure deployment creates service",
			settings: &domain.LLMSettings{
				Provider:   domain.AIProviderOpenAI,
				APIKey:     "test-key",
				BaseURL:    "https://example.openai.azure.com",
				Model:      "gpt-4o",
				APIVersion: "2025-01-01-preview",
			},
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
		},
		{
			name:     "unknown provider is not configured",
			settings: &domain.LLMSettings{Provider: "unknown", APIKey: "test-key"},
			wantNil:  true,
		},
		{
			name:     "hosted provider without key is not configured",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateLLMService_RateLimitWrapping(t *testing.T) {
	local, err := CreateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.LLMService{}, local)

	paced, err := CreateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2", RateLimit: 1})
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.LLMService{}, paced)
	assert.Equal(t, "llama3.2", paced.ModelName())

	hosted, err := CreateLLMService(&domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.LLMService{}, hosted)
}

func TestCreateAndValidateLLMService(t *testing.T) {
	t.Run("reachable provider", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusOK)
		svc, err := CreateAndValidateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderOllama, BaseURL: server.URL, Model: "llama3.2",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.NoError(t, svc.Close())
	})

	t.Run("unreachable provider", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusInternalServerError)
		svc, err := CreateAndValidateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderOllama, BaseURL: server.URL, Model: "llama3.2",
		})
		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, err.Error(), "insights settings llm")
	})

	t.Run("unconfigured", func(t *testing.T) {
		svc, err := CreateAndValidateLLMService(nil)
		assert.NoError(t, err)
		assert.Nil(t, svc)
	})
}

func TestInit(t *testing.T) {
	t.Run("rules without llm", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		result := Init(&settings)
		defer result.Close()
		assert.Nil(t, result.LLMService)
		assert.False(t, result.FellBack)
		assert.Empty(t, result.Warnings)
	})

	t.Run("llm mode without provider falls back", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Classifier.Mode = domain.ClassifierLLM
		result := Init(&settings)
		assert.True(t, result.FellBack)
		require.Len(t, result.Warnings, 1)
	})

	t.Run("llm mode with unreachable provider falls back", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusBadGateway)
		settings := domain.DefaultAppSettings()
		settings.Classifier.Mode = domain.ClassifierLLM
		settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL, Model: "m"}
		result := Init(&settings)
		assert.Nil(t, result.LLMService)
		assert.True(t, result.FellBack)
		assert.Len(t, result.Warnings, 1)
	})

	t.Run("reachable provider", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusOK)
		settings := domain.DefaultAppSettings()
		settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL, Model: "m"}
		result := Init(&settings)
		defer result.Close()
		assert.NotNil(t, result.LLMService)
		assert.False(t, result.FellBack)
	})
}
