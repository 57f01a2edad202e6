package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

// ==================== Risk Cache Store ====================

// riskCacheStore implements driven.RiskCacheStore.
type riskCacheStore struct {
	store *Store
}

var _ driven.RiskCacheStore = (*riskCacheStore)(nil)

// Get retrieves the entry for a pair hash.
func (s *riskCacheStore) Get(ctx context.Context, pairHash string) (*domain.RiskCacheEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT pair_hash, project_id, curr_date, prev_date, risk_json, generated_at
		FROM risk_cache WHERE pair_hash = ?
	`, pairHash)

	entry, err := scanRiskCacheEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Put stores or replaces an entry. Concurrent writers are last-write-wins.
func (s *riskCacheStore) Put(ctx context.Context, entry domain.RiskCacheEntry) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO risk_cache (pair_hash, project_id, curr_date, prev_date, risk_json, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(pair_hash) DO UPDATE SET
			project_id = excluded.project_id,
			curr_date = excluded.curr_date,
			prev_date = excluded.prev_date,
			risk_json = excluded.risk_json,
			generated_at = excluded.generated_at
	`, entry.PairHash, entry.ProjectID, entry.CurrentDate, entry.PreviousDate,
		entry.RiskJSON, toUnixNano(entry.GeneratedAt))
	if err != nil {
		return fmt.Errorf("saving risk cache entry: %w", err)
	}
	return nil
}

// ListByProject returns a project's entries ordered by current date.
func (s *riskCacheStore) ListByProject(ctx context.Context, projectID string) ([]domain.RiskCacheEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT pair_hash, project_id, curr_date, prev_date, risk_json, generated_at
		FROM risk_cache WHERE project_id = ?
		ORDER BY curr_date, pair_hash
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing risk cache entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.RiskCacheEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanRiskCacheEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating risk cache entries: %w", err)
	}
	return entries, nil
}

func scanRiskCacheEntry(row scanner) (*domain.RiskCacheEntry, error) {
	var entry domain.RiskCacheEntry
	var generatedAt int64
	if err := row.Scan(&entry.PairHash, &entry.ProjectID, &entry.CurrentDate,
		&entry.PreviousDate, &entry.RiskJSON, &generatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning risk cache entry: %w", err)
	}
	entry.GeneratedAt = fromUnixNano(generatedAt)
	return &entry, nil
}

// ==================== Summary Store ====================

// summaryStore implements driven.SummaryStore.
type summaryStore struct {
	store *Store
}

var _ driven.SummaryStore = (*summaryStore)(nil)

// Save appends a summary to the audit trail.
func (s *summaryStore) Save(ctx context.Context, summary *domain.ExecutiveSummary) error {
	idsJSON, err := marshalStrings(summary.SnapshotIDs)
	if err != nil {
		return fmt.Errorf("marshalling snapshot ids: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO summaries (id, project_id, tone, snapshot_ids, content, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, summary.ID, summary.ProjectID, string(summary.Tone), idsJSON,
		summary.Content, toUnixNano(summary.GeneratedAt))
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}

// List returns a project's summaries, newest first.
func (s *summaryStore) List(ctx context.Context, projectID string) ([]domain.ExecutiveSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project_id, tone, snapshot_ids, content, generated_at
		FROM summaries WHERE project_id = ?
		ORDER BY generated_at DESC, rowid DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing summaries: %w", err)
	}
	defer rows.Close()

	summaries := []domain.ExecutiveSummary{}
	for rows.Next() {
		var summary domain.ExecutiveSummary
		var tone, idsJSON string
		var generatedAt int64
		if err := rows.Scan(&summary.ID, &summary.ProjectID, &tone, &idsJSON,
			&summary.Content, &generatedAt); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		summary.Tone = domain.Tone(tone)
		summary.GeneratedAt = fromUnixNano(generatedAt)
		if err := json.Unmarshal([]byte(idsJSON), &summary.SnapshotIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling snapshot ids: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summaries: %w", err)
	}
	return summaries, nil
}
