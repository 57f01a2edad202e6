package services

import (
	"fmt"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMAPIVersion  = "llm.api_version"
	keyLLMRateLimit   = "llm.rate_limit"
	keyClassifierMode = "classifier.mode"
	keyCacheBackend   = "cache.backend"
	keyCacheRedisAddr = "cache.redis_addr"
	keyStorageDataDir = "storage.data_dir"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	maxRateLimitPerSec = 100
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:   s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:      s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:    s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyLLMAPIKey),
			APIVersion: s.configStore.GetString(keyLLMAPIVersion),
			RateLimit:  s.getFloat(keyLLMRateLimit, defaults.LLM.RateLimit),
		},
		Classifier: domain.ClassifierSettings{
			Mode: s.getClassifierMode(defaults.Classifier.Mode),
		},
		Cache: domain.CacheSettings{
			Backend:   s.getCacheBackend(defaults.Cache.Backend),
			RedisAddr: s.getString(keyCacheRedisAddr, defaults.Cache.RedisAddr),
		},
		DataDir: s.configStore.GetString(keyStorageDataDir),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyLLMAPIVersion, settings.LLM.APIVersion); err != nil {
		return fmt.Errorf("save llm api_version: %w", err)
	}
	if err := s.configStore.Set(keyLLMRateLimit, settings.LLM.RateLimit); err != nil {
		return fmt.Errorf("save llm rate_limit: %w", err)
	}

	// Save classifier and cache settings
	if err := s.configStore.Set(keyClassifierMode, settings.Classifier.Mode.String()); err != nil {
		return fmt.Errorf("save classifier mode: %w", err)
	}
	if err := s.configStore.Set(keyCacheBackend, settings.Cache.Backend.String()); err != nil {
		return fmt.Errorf("save cache backend: %w", err)
	}
	if err := s.configStore.Set(keyCacheRedisAddr, settings.Cache.RedisAddr); err != nil {
		return fmt.Errorf("save cache redis_addr: %w", err)
	}

	if settings.DataDir != "" {
		if err := s.configStore.Set(keyStorageDataDir, settings.DataDir); err != nil {
			return fmt.Errorf("save storage data_dir: %w", err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey, baseURL string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	// Local providers need a base URL; cloud providers only keep an explicit one
	// (Azure or a compatible gateway).
	baseURL = strings.TrimSpace(baseURL)
	switch {
	case baseURL != "":
		settings.LLM.BaseURL = baseURL
	case provider.IsLocal():
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	default:
		settings.LLM.BaseURL = ""
	}
	if provider != domain.AIProviderOpenAI {
		settings.LLM.APIVersion = ""
	}

	// Set API key
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetClassifierMode selects the risk classifier backend.
func (s *SettingsService) SetClassifierMode(mode domain.ClassifierMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid classifier mode: %s", mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Classifier.Mode = mode

	return s.Save(settings)
}

// SetCacheBackend selects the risk cache backend.
func (s *SettingsService) SetCacheBackend(backend domain.CacheBackend, redisAddr string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid cache backend: %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Cache.Backend = backend
	if redisAddr = strings.TrimSpace(redisAddr); redisAddr != "" {
		settings.Cache.RedisAddr = redisAddr
	}

	return s.Save(settings)
}

// Validate checks if current settings are valid for the configured modes.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Classifier.Mode.IsValid() {
		return fmt.Errorf("invalid classifier mode: %s", settings.Classifier.Mode)
	}

	// Check LLM configuration if required
	if settings.Classifier.Mode.RequiresLLM() && !settings.LLM.IsConfigured() {
		return fmt.Errorf(
			"classifier mode %q requires LLM provider to be configured",
			settings.Classifier.Mode.Description(),
		)
	}

	if settings.LLM.APIVersion != "" && settings.LLM.BaseURL == "" {
		return fmt.Errorf("azure api_version %q requires llm.base_url", settings.LLM.APIVersion)
	}

	if settings.LLM.RateLimit < 0 || settings.LLM.RateLimit > maxRateLimitPerSec {
		return fmt.Errorf("llm rate_limit must be between 0 and %d requests per second", maxRateLimitPerSec)
	}

	if settings.Cache.Backend == domain.CacheRedis && settings.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend %q requires cache.redis_addr", settings.Cache.Backend)
	}

	return nil
}

// RequiresLLM returns true if the classifier mode needs an LLM.
func (s *SettingsService) RequiresLLM() bool {
	settings, err := s.Get()
	if err != nil {
		return false
	}
	return settings.Classifier.Mode.RequiresLLM()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getClassifierMode(defaultVal domain.ClassifierMode) domain.ClassifierMode {
	mode := domain.ClassifierMode(s.configStore.GetString(keyClassifierMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	backend := domain.CacheBackend(s.configStore.GetString(keyCacheBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
