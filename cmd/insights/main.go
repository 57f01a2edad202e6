package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/ai"
	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/config/file"
	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/storage/memory"
	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/storage/redis"
	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/storage/sqlite"
	"github.com/PetersQuinn/executive-insights/internal/adapters/driving/cli"
	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
	"github.com/PetersQuinn/executive-insights/internal/core/services"
	"github.com/PetersQuinn/executive-insights/internal/logger"
	"github.com/PetersQuinn/executive-insights/internal/normalisers"
	"github.com/PetersQuinn/executive-insights/internal/normalisers/docx"
	"github.com/PetersQuinn/executive-insights/internal/normalisers/eml"
	"github.com/PetersQuinn/executive-insights/internal/normalisers/markdown"
	"github.com/PetersQuinn/executive-insights/internal/normalisers/plaintext"
	"github.com/PetersQuinn/executive-insights/internal/normalisers/pptx"
	"github.com/PetersQuinn/executive-insights/internal/normalisers/vtt"
)

// Version information, set during build.
var version = "dev"

const redisDialTimeout = 3 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// stdout is reserved for JSON-RPC in "mcp serve"; keep logs on stderr.
	logger.SetOutput(os.Stderr)

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	cacheStore, closeCache := openCacheStore(ctx, settings, store)
	defer closeCache()

	aiResult := ai.Init(settings)
	defer aiResult.Close()
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}
	llm := aiResult.LLMService

	prompts, err := file.NewPromptStore("", services.DefaultPrompts())
	if err != nil {
		return fmt.Errorf("failed to open prompts: %w", err)
	}

	var classifier driving.RiskClassifier = services.NewRuleClassifier()
	if settings.Classifier.Mode == domain.ClassifierLLM && llm != nil {
		llmClassifier := services.NewLLMClassifier(llm)
		llmClassifier.SetPromptStore(prompts)
		classifier = llmClassifier
	}

	registry := normalisers.NewRegistry(
		docx.New(),
		eml.New(),
		markdown.New(),
		plaintext.New(),
		pptx.New(),
		vtt.New(),
	)

	snapshotService := services.NewSnapshotService(store.SnapshotStore(), store.ProjectStore(), registry, llm)
	snapshotService.SetPromptStore(prompts)

	insightService := services.NewInsightService(store.SnapshotStore(), store.ProjectStore(), store.SummaryStore(), llm)
	insightService.SetPromptStore(prompts)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Project:    services.NewProjectService(store.ProjectStore()),
		Snapshot:   snapshotService,
		Compare:    services.NewCompareService(store.SnapshotStore(), classifier, services.NewRiskCache(cacheStore)),
		Insight:    insightService,
		Settings:   settingsService,
		Classifier: classifier,
	})

	return cli.Execute(ctx)
}

// openCacheStore returns the configured risk cache store. An unreachable
// redis server falls back to the SQLite cache with a warning.
func openCacheStore(ctx context.Context, settings *domain.AppSettings, store *sqlite.Store) (driven.RiskCacheStore, func()) {
	noop := func() {}
	switch settings.Cache.Backend {
	case domain.CacheMemory:
		return memory.NewRiskCacheStore(), noop
	case domain.CacheRedis:
		rc, err := redis.Connect(ctx, settings.Cache.RedisAddr, redisDialTimeout)
		if err != nil {
			logger.Warn("%v; using the sqlite risk cache", err)
			return store.RiskCacheStore(), noop
		}
		return rc, closer(rc)
	default:
		return store.RiskCacheStore(), noop
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Debug("closing cache: %v", err)
		}
	}
}
