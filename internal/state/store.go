// Package state persists rule sets and validation runs in SQLite.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/quality"
	"github.com/leapstack-labs/leapdq/pkg/rule"
)

// ErrNotFound is returned when a source or run has nothing stored.
var ErrNotFound = errors.New("not found")

// RunStatus is the lifecycle state of a validation run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusPassed    RunStatus = "passed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusErrored   RunStatus = "errored"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run is one validation of a data file.
type Run struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	File        string     `json:"file"`
	Strict      bool       `json:"strict"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Rows        int        `json:"rows"`
	Skipped     int        `json:"skipped"`
	Failures    int        `json:"failures"`
	Error       string     `json:"error,omitempty"`
}

// FailureRecord is a persisted validation failure.
type FailureRecord struct {
	RunID  string  `json:"run_id"`
	Row    int     `json:"row"`
	Column string  `json:"column"`
	Index  int     `json:"index"`
	Value  *string `json:"value"`
	Rule   string  `json:"rule,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

// SourceSummary describes the rule sets stored for one source.
type SourceSummary struct {
	Source    string    `json:"source"`
	Columns   int       `json:"columns"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the persistence contract used by the CLI and the server.
type Store interface {
	SaveRuleSets(ctx context.Context, source string, sets []*rule.RuleSet) error
	LoadRuleSets(ctx context.Context, source string) ([]*rule.RuleSet, error)
	Sources(ctx context.Context) ([]SourceSummary, error)

	CreateRun(ctx context.Context, source, file string, strict bool) (*Run, error)
	RecordFailure(ctx context.Context, runID string, f quality.Failure) error
	CompleteRun(ctx context.Context, id string, report *quality.Report, runErr error) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	RunFailures(ctx context.Context, id string, limit int) ([]FailureRecord, error)

	Close() error
}

var _ Store = (*SQLiteStore)(nil)
