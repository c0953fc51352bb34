package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// Column Profile
// =============================================================================

// CardinalityEntry is one distinct value and the number of times it was seen.
type CardinalityEntry struct {
	Key   string `json:"key" yaml:"key"`
	Count int64  `json:"count" yaml:"count"`
}

// ColumnProfile is the frozen statistical summary of one column.
// It is produced by a profiler and consumed read-only by rule derivation.
//
// The Total* counters describe the full population when the profiler tracked it.
// A value <= 0 means "not tracked", so a zero sampled count together with a
// non-positive total is treated as provably zero.
type ColumnProfile struct {
	Name string   `json:"fieldName" yaml:"fieldName"`
	Type BaseType `json:"type" yaml:"type"`

	TotalCount  int64 `json:"totalCount,omitempty" yaml:"totalCount,omitempty"`
	SampleCount int64 `json:"sampleCount,omitempty" yaml:"sampleCount,omitempty"`

	NullCount       int64 `json:"nullCount" yaml:"nullCount"`
	BlankCount      int64 `json:"blankCount" yaml:"blankCount"`
	TotalNullCount  int64 `json:"totalNullCount" yaml:"totalNullCount"`
	TotalBlankCount int64 `json:"totalBlankCount" yaml:"totalBlankCount"`

	Min       string `json:"min,omitempty" yaml:"min,omitempty"`
	Max       string `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength int    `json:"minLength" yaml:"minLength"`
	MaxLength int    `json:"maxLength" yaml:"maxLength"`

	LeadingWhiteSpace  bool `json:"leadingWhiteSpace" yaml:"leadingWhiteSpace"`
	TrailingWhiteSpace bool `json:"trailingWhiteSpace" yaml:"trailingWhiteSpace"`

	Uniqueness float64 `json:"uniqueness" yaml:"uniqueness"`

	IsSemanticType bool   `json:"isSemanticType" yaml:"isSemanticType"`
	SemanticType   string `json:"semanticType,omitempty" yaml:"semanticType,omitempty"`
	TypeModifier   string `json:"typeModifier,omitempty" yaml:"typeModifier,omitempty"`

	Cardinality       int                `json:"cardinality" yaml:"cardinality"`
	CardinalityDetail []CardinalityEntry `json:"cardinalityDetail,omitempty" yaml:"cardinalityDetail,omitempty"`

	RegExp string `json:"regExp,omitempty" yaml:"regExp,omitempty"`
}

// DistinctValues returns the distinct values in the order they are stored.
func (p *ColumnProfile) DistinctValues() []string {
	values := make([]string, 0, len(p.CardinalityDetail))
	for _, e := range p.CardinalityDetail {
		values = append(values, e.Key)
	}
	return values
}

// Validate checks the invariants of the profile contract.
// Callers are expected to warn on violations, not reject the profile:
// derivation is total and copes with degenerate statistics.
func (p *ColumnProfile) Validate() error {
	var errs []error

	if p.Uniqueness < 0 || p.Uniqueness > 1 {
		errs = append(errs, fmt.Errorf("uniqueness %v outside [0,1]", p.Uniqueness))
	}

	if p.Cardinality > 0 && len(p.CardinalityDetail) != p.Cardinality {
		errs = append(errs, fmt.Errorf("cardinality %d but %d detail entries",
			p.Cardinality, len(p.CardinalityDetail)))
	}

	seen := make(map[string]struct{}, len(p.CardinalityDetail))
	for _, e := range p.CardinalityDetail {
		if _, dup := seen[e.Key]; dup {
			errs = append(errs, fmt.Errorf("duplicate cardinality key %q", e.Key))
			continue
		}
		seen[e.Key] = struct{}{}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("profile %q: %w", p.Name, errors.Join(errs...))
}
