package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driving"
	"github.com/PetersQuinn/executive-insights/internal/logger"
	"github.com/PetersQuinn/executive-insights/internal/metrics"
)

// Ensure SnapshotService implements the interface.
var _ driving.SnapshotService = (*SnapshotService)(nil)

// maxExtractChars bounds the report text sent for extraction.
const maxExtractChars = 6000

// FormatJSON is the file type recorded for imported snapshot documents.
const FormatJSON = "json"

// SnapshotService ingests status reports into snapshots.
type SnapshotService struct {
	snapshotStore driven.SnapshotStore
	projectStore  driven.ProjectStore
	normalisers   driven.NormaliserRegistry
	llm           driven.LLMService
	promptStore   driven.PromptStore
	now           func() time.Time
}

// NewSnapshotService creates a new snapshot service.
// llm may be nil, in which case only JSON imports are accepted.
func NewSnapshotService(
	snapshotStore driven.SnapshotStore,
	projectStore driven.ProjectStore,
	normalisers driven.NormaliserRegistry,
	llm driven.LLMService,
) *SnapshotService {
	return &SnapshotService{
		snapshotStore: snapshotStore,
		projectStore:  projectStore,
		normalisers:   normalisers,
		llm:           llm,
		now:           time.Now,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *SnapshotService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ingest normalises a report to text, extracts its snapshot with the LLM
// and saves it. JSON files skip extraction and are imported as-is.
func (s *SnapshotService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.Snapshot, error) {
	mimeType := domain.MIMETypeForFile(req.Filename)
	if mimeType == domain.MIMETypeJSON {
		return s.Import(ctx, req)
	}
	if s.llm == nil {
		return nil, fmt.Errorf("extracting %s: %w", req.Filename, domain.ErrLLMUnavailable)
	}
	if s.normalisers == nil {
		return nil, fmt.Errorf("normalising %s: %w", req.Filename, domain.ErrUnsupportedType)
	}

	result, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		URI:      req.Filename,
		MIMEType: mimeType,
		Content:  req.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("normalising %s: %w", req.Filename, err)
	}
	text := strings.TrimSpace(result.Document.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: %s contains no text", domain.ErrInvalidInput, req.Filename)
	}

	prompt := renderPrompt(loadPrompt(s.promptStore, driven.PromptExtractSnapshot, defaultExtractPrompt), map[string]string{
		"report": truncateRunes(text, maxExtractChars),
	})

	logger.Debug("extracting snapshot from %s with %s", req.Filename, s.llm.ModelName())
	raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 4096, JSON: true})
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", req.Filename, err)
	}

	var doc map[string]any
	if err := decodeModelJSON(raw, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: extraction of %s did not return a JSON object", domain.ErrInvalidInput, req.Filename)
	}
	// Identity and provenance are never taken from model output.
	for _, key := range []string{"id", "project_id", "uploaded_at", "filename", "file_type", "raw_text"} {
		delete(doc, key)
	}

	snap, err := domain.SnapshotFromMap(doc)
	if err != nil {
		return nil, err
	}
	snap.ID = uuid.New().String()
	snap.Filename = filepath.Base(req.Filename)
	snap.FileType = result.Document.Format
	snap.RawText = text
	snap.UploadedAt = s.now()

	return s.save(ctx, snap, req.ProjectName)
}

// Import saves a structured snapshot document. A missing ID is generated;
// an ID already stored fails with domain.ErrAlreadyExists.
func (s *SnapshotService) Import(ctx context.Context, req driving.IngestRequest) (*domain.Snapshot, error) {
	snap, err := domain.DecodeSnapshot(req.Content)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", req.Filename, err)
	}
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.UploadedAt.IsZero() {
		snap.UploadedAt = s.now()
	}
	if snap.Filename == "" && req.Filename != "" {
		snap.Filename = filepath.Base(req.Filename)
	}
	if snap.FileType == "" {
		snap.FileType = FormatJSON
	}
	return s.save(ctx, snap, req.ProjectName)
}

// save resolves the project, defaults the report date and stores snap.
func (s *SnapshotService) save(ctx context.Context, snap *domain.Snapshot, projectName string) (*domain.Snapshot, error) {
	name := strings.TrimSpace(projectName)
	if name == "" {
		name = snap.ProjectName
	}
	if name == "" {
		name = snap.ProjectID
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: no project name given or found in report", domain.ErrInvalidInput)
	}

	projectID, err := ensureProject(ctx, s.projectStore, name, s.now())
	if err != nil {
		return nil, err
	}
	snap.ProjectID = projectID
	snap.ProjectName = strings.TrimSpace(name)

	if snap.ReportDate == "" {
		snap.ReportDate = s.now().Format(domain.ReportDateLayout)
	}

	if err := s.snapshotStore.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	metrics.SnapshotsIngested.WithLabelValues(snap.FileType).Inc()
	logger.Info("saved snapshot %s for %s (%s)", snap.ID, snap.ProjectID, snap.ReportDate)
	return snap, nil
}

// Get retrieves a snapshot by ID.
func (s *SnapshotService) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	return s.snapshotStore.Get(ctx, id)
}

// List returns the snapshots of a project in report order.
func (s *SnapshotService) List(ctx context.Context, projectID string) ([]domain.Snapshot, error) {
	return s.snapshotStore.List(ctx, projectID)
}

// Previous returns the snapshot preceding snapshotID in its project.
func (s *SnapshotService) Previous(ctx context.Context, snapshotID string) (*domain.Snapshot, error) {
	snap, err := s.snapshotStore.Get(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	prev, err := s.snapshotStore.Previous(ctx, snap)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoPreviousSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("loading previous snapshot: %w", err)
	}
	return prev, nil
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
