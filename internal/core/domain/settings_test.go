package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"ollama is valid", AIProviderOllama, true},
		{"openai is valid", AIProviderOpenAI, true},
		{"anthropic is valid", AIProviderAnthropic, true},
		{"empty string is invalid", AIProvider(""), false},
		{"unknown provider is invalid", AIProvider("cohere"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, "Anthropic (cloud)", AIProviderAnthropic.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"empty is not configured", LLMSettings{}, false},
		{"ollama without key is configured", LLMSettings{Provider: AIProviderOllama}, true},
		{"openai without key is not configured", LLMSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key is configured", LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}, true},
		{"anthropic with key is configured", LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestClassifierMode(t *testing.T) {
	assert.True(t, ClassifierRules.IsValid())
	assert.True(t, ClassifierLLM.IsValid())
	assert.False(t, ClassifierMode("magic").IsValid())

	assert.False(t, ClassifierRules.RequiresLLM())
	assert.True(t, ClassifierLLM.RequiresLLM())

	assert.Equal(t, []ClassifierMode{ClassifierRules, ClassifierLLM}, AllClassifierModes())
}

func TestCacheBackend(t *testing.T) {
	for _, b := range AllCacheBackends() {
		assert.True(t, b.IsValid(), b)
		assert.NotEqual(t, "Unknown", b.Description())
	}
	assert.False(t, CacheBackend("memcached").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	assert.Equal(t, ClassifierRules, settings.Classifier.Mode)
	assert.Equal(t, CacheSQLite, settings.Cache.Backend)
	assert.Equal(t, "localhost:6379", settings.Cache.RedisAddr)
	assert.False(t, settings.LLM.IsConfigured())
	assert.Empty(t, settings.DataDir)
}

func TestDefaultLLMModels(t *testing.T) {
	models := DefaultLLMModels()

	require.Len(t, models, len(AllLLMProviders()))
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, models[p], "missing default model for %s", p)
	}
}
