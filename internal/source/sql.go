package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"  // postgres driver
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // sqlite driver

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// drivers maps source types to database/sql driver names.
var drivers = map[string]string{
	TypeDuckDB:   "duckdb",
	TypePostgres: "pgx",
	TypeSQLite:   "sqlite",
}

// SQL streams the result of a query. NULL columns become null values and
// everything else is rendered as text.
type SQL struct {
	db     *sql.DB
	rows   *sql.Rows
	header []string
}

// OpenSQL connects to the database described by cfg and runs its query.
// A duckdb source without a query reads cfg.Path as a delimited file.
func OpenSQL(ctx context.Context, cfg Config) (*SQL, error) {
	driver, ok := drivers[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("no sql driver for source type %q", cfg.Type)
	}

	dsn, query := cfg.DSN, cfg.Query
	if cfg.Type == TypeDuckDB && query == "" && cfg.Path != "" {
		query = fmt.Sprintf("SELECT * FROM read_csv_auto('%s')", strings.ReplaceAll(cfg.Path, "'", "''"))
		if dsn == "" {
			dsn = ":memory:"
		}
	}
	if dsn == "" {
		dsn = cfg.Path
	}
	if query == "" {
		return nil, fmt.Errorf("%s source needs a query", cfg.Type)
	}
	if dsn == "" && cfg.Type != TypeDuckDB {
		return nil, fmt.Errorf("%s source needs a dsn", cfg.Type)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Type, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Type, err)
	}

	s, err := newSQL(ctx, db, query)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL runs query on an existing connection. Closing the source does not
// close db.
func NewSQL(ctx context.Context, db *sql.DB, query string) (*SQL, error) {
	s, err := newSQL(ctx, db, query)
	if err != nil {
		return nil, err
	}
	s.db = nil
	return s, nil
}

func newSQL(ctx context.Context, db *sql.DB, query string) (*SQL, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("%w: %v", ErrNoHeader, err)
	}
	return &SQL{db: db, rows: rows, header: cols}, nil
}

// Header implements Source.
func (s *SQL) Header() []string { return s.header }

// Next implements Source.
func (s *SQL) Next() (core.Row, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		return nil, io.EOF
	}

	raw := make([]any, len(s.header))
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	row := make(core.Row, len(raw))
	for i, v := range raw {
		row[i] = toValue(v)
	}
	return row, nil
}

func toValue(v any) core.Value {
	switch t := v.(type) {
	case nil:
		return core.Null()
	case []byte:
		return core.Text(string(t))
	case string:
		return core.Text(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return core.Text(t.Format(time.DateOnly))
		}
		return core.Text(t.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return core.Text(t.String())
	default:
		return core.Text(fmt.Sprint(t))
	}
}

// Close implements Source.
func (s *SQL) Close() error {
	var errs []error
	if s.rows != nil {
		errs = append(errs, s.rows.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
