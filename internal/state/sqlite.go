package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapdq/pkg/rule"

	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance.
// If logger is nil, a discard logger is used.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the database at path and applies migrations.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}

	s.logger.Debug("state store opened", slog.String("path", path))
	return nil
}

// OpenDB wraps an existing connection without migrating it.
func (s *SQLiteStore) OpenDB(db *sql.DB) {
	s.db = db
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path passed to Open.
func (s *SQLiteStore) Path() string { return s.path }

func generateID() string {
	return uuid.New().String()
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// --- Rule sets ---

// SaveRuleSets stores sets under source. Existing columns keep their
// position and get their rules replaced; new columns are appended.
func (s *SQLiteStore) SaveRuleSets(ctx context.Context, source string, sets []*rule.RuleSet) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(time.Now())
	for _, rs := range sets {
		data, err := json.Marshal(rs)
		if err != nil {
			return fmt.Errorf("failed to encode rule set %q: %w", rs.Name(), err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rule_sets (source, column_name, position, rules, updated_at)
			VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM rule_sets WHERE source = ?), ?, ?)
			ON CONFLICT (source, column_name) DO UPDATE SET rules = excluded.rules, updated_at = excluded.updated_at`,
			source, rs.Name(), source, string(data), now,
		)
		if err != nil {
			return fmt.Errorf("failed to save rule set %q: %w", rs.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rule sets: %w", err)
	}

	s.logger.Debug("saved rule sets", slog.String("source", source), slog.Int("count", len(sets)))
	return nil
}

// LoadRuleSets returns the rule sets stored for source in column order.
func (s *SQLiteStore) LoadRuleSets(ctx context.Context, source string) ([]*rule.RuleSet, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rules FROM rule_sets WHERE source = ? ORDER BY position`, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule sets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sets []*rule.RuleSet
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan rule set: %w", err)
		}
		rs := &rule.RuleSet{}
		if err := json.Unmarshal([]byte(data), rs); err != nil {
			return nil, fmt.Errorf("failed to decode rule set: %w", err)
		}
		sets = append(sets, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule sets: %w", err)
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("rule sets for %q: %w", source, ErrNotFound)
	}
	return sets, nil
}

// Sources lists every source with stored rule sets.
func (s *SQLiteStore) Sources(ctx context.Context) ([]SourceSummary, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, COUNT(*), MAX(updated_at)
		FROM rule_sets
		GROUP BY source
		ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SourceSummary
	for rows.Next() {
		var sum SourceSummary
		var updated string
		if err := rows.Scan(&sum.Source, &sum.Columns, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		if sum.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, fmt.Errorf("bad timestamp for source %q: %w", sum.Source, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sources: %w", err)
	}
	return out, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
