// Package source provides the row streams that profiling and validation read.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

var (
	// ErrNotFound is returned when the input file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoHeader is returned when the first record cannot be read as a header.
	ErrNoHeader = errors.New("cannot parse header")
)

// Source is a stream of records with a fixed header.
type Source interface {
	// Header returns the column names.
	Header() []string
	// Next returns the next record, or io.EOF after the last one.
	Next() (core.Row, error)
	Close() error
}

// Source types.
const (
	TypeCSV      = "csv"
	TypeDuckDB   = "duckdb"
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Config selects and configures a Source.
type Config struct {
	// Type is one of the Type* constants. Empty means csv.
	Type string
	// Path is the data file for csv, or the database file for duckdb and sqlite.
	Path string
	// DSN is the connection string for postgres. It overrides Path for the
	// file-based databases when set.
	DSN string
	// Query selects the rows for database sources.
	Query string
	// Delimiter forces the csv field separator. Zero sniffs it.
	Delimiter rune
}

// Open creates the Source described by cfg.
func Open(ctx context.Context, cfg Config) (Source, error) {
	switch cfg.Type {
	case "", TypeCSV:
		return OpenCSV(cfg.Path, cfg.Delimiter)
	case TypeDuckDB, TypePostgres, TypeSQLite:
		return OpenSQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown source type %q (valid: csv, duckdb, postgres, sqlite)", cfg.Type)
	}
}

// Name returns a stable identifier for the data behind cfg, used to key
// persisted rule sets.
func (cfg Config) Name() string {
	switch {
	case cfg.Type == "" || cfg.Type == TypeCSV:
		return cfg.Path
	case cfg.Query != "":
		return cfg.Type + ":" + cfg.Query
	default:
		return cfg.Type + ":" + cfg.Path
	}
}
