package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for LLM operations.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API (or an Azure/compatible endpoint).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ClassifierMode selects the risk classification backend.
type ClassifierMode string

// Available classifier modes.
const (
	// ClassifierRules uses the deterministic decision table.
	ClassifierRules ClassifierMode = "rules"

	// ClassifierLLM asks the configured LLM, validating its output locally.
	ClassifierLLM ClassifierMode = "llm"
)

// IsValid returns true if the classifier mode is recognised.
func (m ClassifierMode) IsValid() bool {
	return m == ClassifierRules || m == ClassifierLLM
}

// RequiresLLM returns true if this mode needs an LLM provider.
func (m ClassifierMode) RequiresLLM() bool {
	return m == ClassifierLLM
}

// String returns the string representation.
func (m ClassifierMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m ClassifierMode) Description() string {
	switch m {
	case ClassifierRules:
		return "Rules (deterministic decision table)"
	case ClassifierLLM:
		return "LLM (model-scored, locally validated)"
	default:
		return unknownDescription
	}
}

// CacheBackend selects where risk classifications are memoised.
type CacheBackend string

// Available cache backends.
const (
	CacheSQLite CacheBackend = "sqlite"
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

// IsValid returns true if the cache backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheSQLite, CacheMemory, CacheRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b CacheBackend) Description() string {
	switch b {
	case CacheSQLite:
		return "SQLite (persistent, local)"
	case CacheMemory:
		return "Memory (per process)"
	case CacheRedis:
		return "Redis (shared)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or Azure/compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// APIVersion selects an Azure OpenAI deployment when set.
	APIVersion string

	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ClassifierSettings holds risk classifier configuration.
type ClassifierSettings struct {
	Mode ClassifierMode
}

// CacheSettings holds risk cache configuration.
type CacheSettings struct {
	Backend CacheBackend

	// RedisAddr is host:port of the Redis server, used by the redis backend.
	RedisAddr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM        LLMSettings
	Classifier ClassifierSettings
	Cache      CacheSettings

	// DataDir overrides the SQLite data directory; empty means the default.
	DataDir string
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; the rule classifier and SQLite cache need no setup.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM:        LLMSettings{},
		Classifier: ClassifierSettings{Mode: ClassifierRules},
		Cache: CacheSettings{
			Backend:   CacheSQLite,
			RedisAddr: "localhost:6379",
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllClassifierModes returns every classifier mode.
func AllClassifierModes() []ClassifierMode {
	return []ClassifierMode{ClassifierRules, ClassifierLLM}
}

// AllCacheBackends returns every cache backend.
func AllCacheBackends() []CacheBackend {
	return []CacheBackend{CacheSQLite, CacheMemory, CacheRedis}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
