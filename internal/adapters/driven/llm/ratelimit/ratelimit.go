// Package ratelimit wraps an LLM service with client-side request pacing.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Config holds rate limiting configuration for a provider.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
	// Backoff is how long to pause after the provider reports a rate limit.
	Backoff time.Duration
}

// DefaultConfig paces hosted providers well below their published limits.
var DefaultConfig = Config{RequestsPerSecond: 2.0, BurstSize: 4, Backoff: 30 * time.Second}

// LLMService paces calls to an inner LLM service with a token bucket and
// pauses every caller after the inner service returns ErrRateLimited.
// Rate-limited calls are not retried.
type LLMService struct {
	inner   driven.LLMService
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
	now     func() time.Time
}

// Wrap decorates inner with the given limits. A zero Config uses DefaultConfig.
func Wrap(inner driven.LLMService, cfg Config) *LLMService {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultConfig.BurstSize
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultConfig.Backoff
	}
	return &LLMService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		backoff: cfg.Backoff,
		now:     time.Now,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff recorded after a rate limit error.
func (s *LLMService) Wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if wait := retryAt.Sub(s.now()); wait > 0 {
		logger.Debug("llm backoff: waiting %s", wait.Round(time.Millisecond))
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return s.limiter.Wait(ctx)
}

// recordRateLimitError sets the shared backoff period.
func (s *LLMService) recordRateLimitError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retryAt = s.now().Add(s.backoff)
}

func (s *LLMService) observe(err error) error {
	if errors.Is(err, domain.ErrRateLimited) {
		logger.Warn("llm provider rate limited, backing off for %s", s.backoff)
		s.recordRateLimitError()
	}
	return err
}

// Generate waits for a token and forwards to the inner service.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.inner.Generate(ctx, prompt, opts)
	return out, s.observe(err)
}

// Chat waits for a token and forwards to the inner service.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := s.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.inner.Chat(ctx, messages, opts)
	return out, s.observe(err)
}

// ModelName returns the inner model name.
func (s *LLMService) ModelName() string {
	return s.inner.ModelName()
}

// Ping is not rate limited.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the inner service.
func (s *LLMService) Close() error {
	return s.inner.Close()
}
