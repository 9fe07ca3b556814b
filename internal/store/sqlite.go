package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/jira-bridge/internal/model"
)

// likeEscaper makes %, _ and the escape character match literally in a
// LIKE pattern using ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQLiteStore implements IssueCache using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ IssueCache = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertCachedIssue inserts a cache record or replaces the one with the
// same key.
func (s *SQLiteStore) UpsertCachedIssue(
	ctx context.Context,
	rec model.CacheRecord,
) error {
	if rec.JiraKey == "" {
		return errors.New("upserting cached issue: empty key")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO issue_cache (
			jira_key, summary, status, last_sync, raw_data
		) VALUES (?, ?, ?, ?, ?)`,
		rec.JiraKey, rec.Summary, rec.Status,
		rec.LastSync.UTC(), rec.RawData,
	)
	if err != nil {
		return fmt.Errorf("upserting cached issue %s: %w", rec.JiraKey, err)
	}
	return nil
}

// GetCachedIssues retrieves cache records matching the filter.
func (s *SQLiteStore) GetCachedIssues(
	ctx context.Context,
	filter CacheFilter,
) ([]model.CacheRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions,
			`(jira_key LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\')`)
		q := "%" + likeEscaper.Replace(*filter.Query) + "%"
		args = append(args, q, q)
	}

	query := "SELECT jira_key, summary, status, last_sync, raw_data FROM issue_cache"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "jira_key"
	allowedSorts := map[string]bool{
		"jira_key":  true,
		"summary":   true,
		"status":    true,
		"last_sync": true,
	}
	if allowedSorts[filter.SortBy] {
		sortBy = filter.SortBy
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	records := []model.CacheRecord{}
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("querying cached issues: %w", err)
	}
	return records, nil
}

// GetCachedIssue retrieves the cache record for a single key.
func (s *SQLiteStore) GetCachedIssue(
	ctx context.Context,
	key string,
) (*model.CacheRecord, error) {
	var rec model.CacheRecord
	err := s.db.GetContext(ctx, &rec, `
		SELECT jira_key, summary, status, last_sync, raw_data
		FROM issue_cache WHERE jira_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("getting cached issue %s: %w", key, err)
	}
	return &rec, nil
}
