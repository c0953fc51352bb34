package quality

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/rule"
)

var (
	// ErrRowShape marks a record whose field count differs from the header.
	ErrRowShape = errors.New("row shape mismatch")
	// ErrUnknownColumn is returned when a selected field is not in the header.
	ErrUnknownColumn = errors.New("unknown column")
)

// RowShapeError describes a skipped record.
type RowShapeError struct {
	Row      int
	Fields   int
	Expected int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("record %d has %d fields, expected %d", e.Row, e.Fields, e.Expected)
}

// Unwrap returns ErrRowShape.
func (e *RowShapeError) Unwrap() error { return ErrRowShape }

// Failure locates one field that failed validation.
type Failure struct {
	Column string
	Index  int // 0-based column index
	Row    int // 1-based, counting from the first data row
	Value  core.Value
	Verdict
}

// Rows is a stream of records with a fixed header.
type Rows interface {
	Header() []string
	Next() (core.Row, error)
}

// Report summarises a scan.
type Report struct {
	Rows      int            `json:"rows"`
	Skipped   int            `json:"skipped"`
	Failures  int            `json:"failures"`
	PerColumn map[string]int `json:"per_column,omitempty"`
}

// Scanner validates every row of a stream against per-column rule sets.
type Scanner struct {
	Validator *Validator
	// Field, when set, restricts checking to the named column.
	Field string
	// OnFailure receives each failing field as it is found.
	OnFailure func(Failure)
	// OnRowShape receives each skipped record.
	OnRowShape func(*RowShapeError)
	Logger     *slog.Logger
}

// Scan reads src to the end, checking each field against the rule set
// bound to its column. Row-shape mismatches and failing fields are reported
// through the callbacks and never stop the scan; read errors and context
// cancellation do.
func (s *Scanner) Scan(ctx context.Context, src Rows, sets []*rule.RuleSet) (*Report, error) {
	v := s.Validator
	if v == nil {
		v = New()
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	header := src.Header()
	bound, err := s.bind(header, sets)
	if err != nil {
		return nil, err
	}
	logger.Debug("scan started", "columns", len(header), "checked", countBound(bound))

	report := &Report{PerColumn: make(map[string]int)}

	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read record %d: %w", row, err)
		}

		if len(rec) != len(header) {
			report.Skipped++
			if s.OnRowShape != nil {
				s.OnRowShape(&RowShapeError{Row: row, Fields: len(rec), Expected: len(header)})
			}
			continue
		}
		report.Rows++

		for i, value := range rec {
			rs := bound[i]
			if rs == nil {
				continue
			}
			verdict := v.Evaluate(rs, value)
			if verdict.Valid {
				continue
			}
			report.Failures++
			report.PerColumn[header[i]]++
			if s.OnFailure != nil {
				s.OnFailure(Failure{Column: header[i], Index: i, Row: row, Value: value, Verdict: verdict})
			}
		}
	}

	logger.Debug("scan finished", "rows", report.Rows, "skipped", report.Skipped, "failures", report.Failures)
	return report, nil
}

// bind assigns a rule set to each header column. Columns are matched by
// name first. A column with no name match takes the set at its own index,
// unless that set is already bound to another column by name.
func (s *Scanner) bind(header []string, sets []*rule.RuleSet) ([]*rule.RuleSet, error) {
	byName := make(map[string]*rule.RuleSet, len(sets))
	for _, rs := range sets {
		if rs != nil {
			byName[rs.Name()] = rs
		}
	}

	bound := make([]*rule.RuleSet, len(header))

	if s.Field != "" {
		for i, name := range header {
			if name == s.Field {
				bound[i] = byName[s.Field]
				return bound, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, s.Field)
	}

	used := make(map[string]bool, len(sets))
	for i, name := range header {
		if rs, ok := byName[name]; ok {
			bound[i] = rs
			used[name] = true
		}
	}
	for i := range header {
		if bound[i] != nil || i >= len(sets) || sets[i] == nil {
			continue
		}
		if !used[sets[i].Name()] {
			bound[i] = sets[i]
			used[sets[i].Name()] = true
		}
	}
	return bound, nil
}

func countBound(bound []*rule.RuleSet) int {
	n := 0
	for _, rs := range bound {
		if rs != nil {
			n++
		}
	}
	return n
}
