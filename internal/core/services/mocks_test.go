package services

import (
	"context"
	"errors"
	"sync"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
)

// mockLLMService implements driven.LLMService for testing.
// Responses are returned in order; the last one repeats.
type mockLLMService struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
	opts      []driven.GenerateOptions
	block     bool
}

func newMockLLM(responses ...string) *mockLLMService {
	return &mockLLMService{responses: responses}
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	calls := len(m.prompts)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	if calls > len(m.responses) {
		return m.responses[len(m.responses)-1], nil
	}
	return m.responses[calls-1], nil
}

func (m *mockLLMService) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	return m.Generate(ctx, prompt, driven.GenerateOptions{})
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

func (m *mockLLMService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLMService) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// countingClassifier records how often it is asked to classify.
type countingClassifier struct {
	mu     sync.Mutex
	calls  int
	inner  driving.RiskClassifier
	result domain.Classification
	err    error
}

func (c *countingClassifier) Classify(ctx context.Context, current domain.KPIs, delta domain.KPIDelta) (domain.Classification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.inner != nil {
		return c.inner.Classify(ctx, current, delta)
	}
	return c.result, c.err
}

func (c *countingClassifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// failingCacheStore fails every operation.
type failingCacheStore struct {
	getErr error
	putErr error
}

func (f *failingCacheStore) Get(_ context.Context, _ string) (*domain.RiskCacheEntry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return nil, domain.ErrNotFound
}

func (f *failingCacheStore) Put(_ context.Context, _ domain.RiskCacheEntry) error {
	return f.putErr
}

func (f *failingCacheStore) ListByProject(_ context.Context, _ string) ([]domain.RiskCacheEntry, error) {
	return nil, errors.New("unavailable")
}

// stubRegistry normalises every document to fixed text.
type stubRegistry struct {
	text   string
	format string
	err    error
	seen   []string
}

func (r *stubRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	r.seen = append(r.seen, raw.MIMEType)
	if r.err != nil {
		return nil, r.err
	}
	return &driven.NormaliseResult{Document: domain.SourceDocument{
		URI:     raw.URI,
		Content: r.text,
		Format:  r.format,
	}}, nil
}

func (r *stubRegistry) Register(_ driven.Normaliser) {}

func (r *stubRegistry) SupportedMIMETypes() []string {
	return nil
}
