package driving

import "github.com/PetersQuinn/executive-insights/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	// baseURL is only kept for local or compatible endpoints.
	SetLLMProvider(provider domain.AIProvider, model, apiKey, baseURL string) error

	// SetClassifierMode selects the risk classifier backend.
	SetClassifierMode(mode domain.ClassifierMode) error

	// SetCacheBackend selects the risk cache backend.
	SetCacheBackend(backend domain.CacheBackend, redisAddr string) error

	// Validate checks if current settings are valid for the configured modes.
	Validate() error

	// RequiresLLM returns true if the classifier mode needs an LLM.
	RequiresLLM() bool

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
