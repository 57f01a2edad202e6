package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/PetersQuinn/executive-insights/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/PetersQuinn/executive-insights/internal/core/domain"
	"github.com/PetersQuinn/executive-insights/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.executive-insights/data/insights.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".executive-insights", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "insights.db")

	// WAL for concurrent readers; foreign_keys is per connection so it goes in the DSN.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ProjectStore returns a ProjectStore interface backed by this store.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{store: s}
}

// SnapshotStore returns a SnapshotStore interface backed by this store.
func (s *Store) SnapshotStore() driven.SnapshotStore {
	return &snapshotStore{store: s}
}

// RiskCacheStore returns a RiskCacheStore interface backed by this store.
func (s *Store) RiskCacheStore() driven.RiskCacheStore {
	return &riskCacheStore{store: s}
}

// SummaryStore returns a SummaryStore interface backed by this store.
func (s *Store) SummaryStore() driven.SummaryStore {
	return &summaryStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration executes one migration and records its version atomically.
func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(content); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ==================== Project Store ====================

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

// Save stores or updates a project.
func (s *projectStore) Save(ctx context.Context, project domain.Project) error {
	contactsJSON, err := marshalStrings(project.Contacts)
	if err != nil {
		return fmt.Errorf("marshalling contacts: %w", err)
	}
	tagsJSON, err := marshalStrings(project.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}
	status := project.Status
	if status == "" {
		status = domain.ProjectStatusActive
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, issuer, start_date, summary, contacts, tags, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			issuer = excluded.issuer,
			start_date = excluded.start_date,
			summary = excluded.summary,
			contacts = excluded.contacts,
			tags = excluded.tags,
			status = excluded.status
	`, project.ID, project.Name, nullString(project.Issuer), nullString(project.StartDate),
		nullString(project.Summary), contactsJSON, tagsJSON, string(status), toUnixNano(project.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// Get retrieves a project by ID.
func (s *projectStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, issuer, start_date, summary, contacts, tags, status, created_at
		FROM projects WHERE id = ?
	`, id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project. Its snapshots are removed by cascade.
func (s *projectStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// List returns all projects ordered by name.
func (s *projectStore) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, issuer, start_date, summary, contacts, tags, status, created_at
		FROM projects ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project //nolint:prealloc // size unknown from query
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*domain.Project, error) {
	var project domain.Project
	var issuer, startDate, summary sql.NullString
	var contactsJSON, tagsJSON, status string
	var createdAt int64

	if err := row.Scan(&project.ID, &project.Name, &issuer, &startDate, &summary,
		&contactsJSON, &tagsJSON, &status, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	project.Issuer = issuer.String
	project.StartDate = startDate.String
	project.Summary = summary.String
	project.Status = domain.ProjectStatus(status)
	project.CreatedAt = fromUnixNano(createdAt)

	if err := json.Unmarshal([]byte(contactsJSON), &project.Contacts); err != nil {
		return nil, fmt.Errorf("unmarshalling contacts: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &project.Tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags: %w", err)
	}
	return &project, nil
}

// ==================== Snapshot Store ====================

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

const snapshotColumns = "document"

// Save stores a new snapshot. Snapshots are never overwritten.
func (s *snapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	document, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}

	result, err := s.store.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, project_id, report_date, uploaded_at, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, snapshot.ID, snapshot.ProjectID, snapshot.ReportDate, toUnixNano(snapshot.UploadedAt), string(document))
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking snapshot insert: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Get retrieves a snapshot by ID.
func (s *snapshotStore) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+snapshotColumns+" FROM snapshots WHERE id = ?", id)
	return scanSnapshot(row)
}

// List returns the snapshots of a project in (report_date, uploaded_at) order.
func (s *snapshotStore) List(ctx context.Context, projectID string) ([]domain.Snapshot, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+` FROM snapshots
		WHERE project_id = ?
		ORDER BY report_date, uploaded_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []domain.Snapshot{}
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snapshots, nil
}

// Latest returns the most recent snapshot of a project.
func (s *snapshotStore) Latest(ctx context.Context, projectID string) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+` FROM snapshots
		WHERE project_id = ?
		ORDER BY report_date DESC, uploaded_at DESC, id DESC
		LIMIT 1
	`, projectID)
	return scanSnapshot(row)
}

// Previous returns the latest snapshot strictly before the given one.
func (s *snapshotStore) Previous(ctx context.Context, snapshot *domain.Snapshot) (*domain.Snapshot, error) {
	uploadedAt := toUnixNano(snapshot.UploadedAt)
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+` FROM snapshots
		WHERE project_id = ? AND id != ?
		  AND (report_date < ? OR (report_date = ? AND uploaded_at < ?))
		ORDER BY report_date DESC, uploaded_at DESC, id DESC
		LIMIT 1
	`, snapshot.ProjectID, snapshot.ID, snapshot.ReportDate, snapshot.ReportDate, uploadedAt)
	return scanSnapshot(row)
}

func scanSnapshot(row scanner) (*domain.Snapshot, error) {
	var document string
	if err := row.Scan(&document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal([]byte(document), &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshalling snapshot: %w", err)
	}
	return &snapshot, nil
}

// ==================== Helpers ====================

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// marshalStrings encodes a string list, using [] for nil.
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// toUnixNano converts a time to nanoseconds, mapping the zero time to 0.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// fromUnixNano is the inverse of toUnixNano.
func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
