// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/PetersQuinn/executive-insights/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/PetersQuinn/executive-insights/internal/adapters/driven/llm/ollama"
	openaillm "github.com/PetersQuinn/executive-insights/internal/adapters/driven/llm/openai"
	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/llm/ratelimit"
	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService driven.LLMService
	Warnings   []string // Non-fatal issues that caused fallback.
	FellBack   bool     // True if the LLM classifier fell back to rules.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates the LLM service for the configured classifier mode.
// An unreachable or misconfigured LLM is not fatal: the result carries a
// warning and FellBack is set when the classifier asked for the LLM.
func Init(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	if settings == nil || !settings.LLM.IsConfigured() {
		if settings != nil && settings.Classifier.Mode.RequiresLLM() {
			result.Warnings = append(result.Warnings,
				"classifier mode llm needs an LLM provider; using rules. Run 'insights settings llm' to fix")
			result.FellBack = true
		}
		return result
	}

	svc, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = settings.Classifier.Mode.RequiresLLM()
		return result
	}
	result.LLMService = svc
	return result
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'insights settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'insights settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// This is intended for use by the settings commands to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Hosted providers are always paced; a local provider only when a rate
// limit is configured. Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var svc driven.LLMService
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaLLM(settings)

	case domain.AIProviderOpenAI:
		openai, err := createOpenAILLM(settings)
		if err != nil {
			return nil, err
		}
		svc = openai

	case domain.AIProviderAnthropic:
		anthropic, err := createAnthropicLLM(settings)
		if err != nil {
			return nil, err
		}
		svc = anthropic

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}

	if settings.Provider.IsLocal() && settings.RateLimit <= 0 {
		return svc, nil
	}
	return ratelimit.Wrap(svc, ratelimit.Config{RequestsPerSecond: settings.RateLimit}), nil
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI or Azure OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		APIVersion: settings.APIVersion,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
