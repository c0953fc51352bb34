// Package derive maps column profiles to rule sets.
//
// Derivation is a pure, total function: every profile yields a RuleSet, and
// profiles with degenerate statistics simply yield fewer rules.
package derive

import (
	"context"
	"runtime"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/rule"
	"golang.org/x/sync/errgroup"
)

// ZeroPercent is the argument of NullPercent and BlankPercent when a column
// is provably free of nulls or blanks.
const ZeroPercent = "0.0"

// OneOfLimit is the exclusive upper bound on cardinality for emitting OneOf.
const OneOfLimit = 10

// RuleSet derives the minimal sufficient rule set for one column.
//
// Rules are emitted in a fixed order. The semantic type, when present,
// supersedes the type-specific rules (Pattern, OneOf, Min, Max, Format).
func RuleSet(p core.ColumnProfile) *rule.RuleSet {
	rs := rule.NewRuleSet(p.Name)

	rs.Add(rule.BaseTypeOf(p.Type))

	if p.NullCount == 0 && p.TotalNullCount <= 0 {
		rs.Add(rule.NullPercent(ZeroPercent))
	}
	if p.BlankCount == 0 && p.TotalBlankCount <= 0 {
		rs.Add(rule.BlankPercent(ZeroPercent))
	}
	if p.LeadingWhiteSpace {
		rs.Add(rule.TrimLeft())
	}
	if p.TrailingWhiteSpace {
		rs.Add(rule.TrimRight())
	}
	if p.Uniqueness == 1.0 {
		rs.Add(rule.Unique())
	}

	if p.IsSemanticType {
		rs.Add(rule.SemanticType(p.SemanticType))
		return rs
	}

	switch {
	case p.Type == core.TypeBoolean:
		// The type says it all.
	case p.Type == core.TypeString:
		if p.Cardinality > 0 && p.Cardinality < OneOfLimit {
			rs.Add(rule.OneOf(p.DistinctValues()...))
		} else {
			rs.Add(rule.Pattern(p.RegExp))
		}
	case p.Type.IsNumeric():
		rs.Add(rule.Pattern(p.RegExp))
		rs.Add(rule.Min(p.Min))
		rs.Add(rule.Max(p.Max))
	case p.Type.IsTemporal():
		rs.Add(rule.Format(p.TypeModifier))
		rs.Add(rule.Min(p.Min))
		rs.Add(rule.Max(p.Max))
	}

	return rs
}

// Option configures All.
type Option func(*options)

type options struct {
	workers int
	field   string
}

// WithWorkers bounds the number of columns derived concurrently.
// Values <= 0 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithField restricts derivation to the single column with the given name.
// An empty name derives every column.
func WithField(name string) Option {
	return func(o *options) { o.field = name }
}

// All derives a rule set for every profile, preserving input order.
// Columns are independent, so they are derived concurrently.
// The only error is cancellation of ctx.
func All(ctx context.Context, profiles []core.ColumnProfile, opts ...Option) ([]*rule.RuleSet, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	selected := profiles
	if o.field != "" {
		selected = nil
		for _, p := range profiles {
			if p.Name == o.field {
				selected = append(selected, p)
			}
		}
	}

	sets := make([]*rule.RuleSet, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sets[i] = RuleSet(selected[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}
