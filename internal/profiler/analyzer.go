// Package profiler computes column profiles from sampled raw values.
//
// It is a deliberately small profiler: enough statistics to drive rule
// derivation when no precomputed specification is supplied.
package profiler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/quality"
	"github.com/leapstack-labs/leapdq/pkg/semantic"
)

// Defaults.
const (
	DefaultSampleRows       = 100
	DefaultCardinalityLimit = 100
	DefaultSemanticSamples  = 5
)

// Analyzer accumulates values for one column.
type Analyzer interface {
	Train(v core.Value)
	Result() core.ColumnProfile
}

// Factory creates an Analyzer for the named column.
type Factory func(name string) Analyzer

// Option configures a TextAnalyzer.
type Option func(*config)

type config struct {
	cardinalityLimit int
	catalog          semantic.Catalog
	semanticSamples  int
}

// WithCardinalityLimit sets how many distinct values are tracked before
// cardinality is reported as unknown (0).
func WithCardinalityLimit(n int) Option {
	return func(c *config) { c.cardinalityLimit = n }
}

// WithCatalog enables semantic-type detection against the catalog's plugins.
// Detection needs a catalog that can list its qualifiers.
func WithCatalog(cat semantic.Catalog) Option {
	return func(c *config) { c.catalog = cat }
}

// WithSemanticSamples sets the minimum number of non-blank values required
// before a semantic type is declared.
func WithSemanticSamples(n int) Option {
	return func(c *config) { c.semanticSamples = n }
}

// NewFactory returns a Factory producing TextAnalyzers with the given options.
func NewFactory(opts ...Option) Factory {
	return func(name string) Analyzer {
		return NewTextAnalyzer(name, opts...)
	}
}

// TextAnalyzer profiles a column of raw text values.
type TextAnalyzer struct {
	name string
	cfg  config

	samples int64
	nulls   int64
	blanks  int64

	leading  bool
	trailing bool

	// values holds trimmed non-blank values in arrival order.
	values []string

	// counts tracks distinct trimmed values until the limit is exceeded.
	counts   map[string]int64
	order    []string
	overflow bool
}

// NewTextAnalyzer creates an analyzer for one column.
func NewTextAnalyzer(name string, opts ...Option) *TextAnalyzer {
	cfg := config{
		cardinalityLimit: DefaultCardinalityLimit,
		semanticSamples:  DefaultSemanticSamples,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &TextAnalyzer{
		name:   name,
		cfg:    cfg,
		counts: make(map[string]int64),
	}
}

// Train records one value.
func (a *TextAnalyzer) Train(v core.Value) {
	a.samples++

	switch {
	case v.IsNull():
		a.nulls++
		return
	case v.IsBlank():
		a.blanks++
		return
	}

	first, _ := utf8.DecodeRuneInString(v.String)
	last, _ := utf8.DecodeLastRuneInString(v.String)
	if unicode.IsSpace(first) {
		a.leading = true
	}
	if unicode.IsSpace(last) {
		a.trailing = true
	}

	s := strings.TrimSpace(v.String)
	a.values = append(a.values, s)

	if a.overflow {
		return
	}
	if _, seen := a.counts[s]; !seen {
		if len(a.order) >= a.cfg.cardinalityLimit {
			a.overflow = true
			return
		}
		a.order = append(a.order, s)
	}
	a.counts[s]++
}

// Result computes the profile of the values trained so far.
func (a *TextAnalyzer) Result() core.ColumnProfile {
	inf := infer(a.values)

	p := core.ColumnProfile{
		Name:               a.name,
		Type:               inf.typ,
		TotalCount:         -1,
		SampleCount:        a.samples,
		NullCount:          a.nulls,
		BlankCount:         a.blanks,
		TotalNullCount:     -1,
		TotalBlankCount:    -1,
		LeadingWhiteSpace:  a.leading,
		TrailingWhiteSpace: a.trailing,
	}

	if inf.format != nil {
		p.TypeModifier = inf.format.pattern
	}

	if len(a.values) > 0 {
		lo, hi := a.lengths()
		p.MinLength, p.MaxLength = lo, hi
		p.Min, p.Max = a.bounds(inf)
		p.Uniqueness = a.uniqueness()
	}

	if !a.overflow && len(a.order) > 0 {
		p.Cardinality = len(a.order)
		p.CardinalityDetail = a.detail()
	}

	switch {
	case inf.typ == core.TypeLong:
		p.RegExp = longRegex(a.values)
	case inf.typ == core.TypeDouble:
		p.RegExp = doubleRegex
	case inf.typ == core.TypeBoolean:
		p.RegExp = `(?i)(?:true|false|yes|no)`
	default:
		p.RegExp = shapeRegex(a.values)
	}
	p.RegExp = wrapWhitespace(p.RegExp, a.leading, a.trailing)

	if inf.typ == core.TypeString {
		if id, ok := a.semanticType(); ok {
			p.IsSemanticType = true
			p.SemanticType = id
		}
	}

	return p
}

func (a *TextAnalyzer) lengths() (int, int) {
	lo, hi := -1, 0
	for _, v := range a.values {
		n := utf8.RuneCountInString(v)
		if lo < 0 || n < lo {
			lo = n
		}
		hi = max(hi, n)
	}
	return lo, hi
}

// bounds returns the smallest and largest values in the column's native order.
func (a *TextAnalyzer) bounds(inf inference) (string, string) {
	var compare func(x, y string) int

	switch {
	case inf.typ == core.TypeLong:
		compare = func(x, y string) int {
			i, _ := strconv.ParseInt(x, 10, 64)
			j, _ := strconv.ParseInt(y, 10, 64)
			return cmp.Compare(i, j)
		}
	case inf.typ == core.TypeDouble:
		compare = func(x, y string) int {
			f, _ := strconv.ParseFloat(x, 64)
			g, _ := strconv.ParseFloat(y, 64)
			return cmp.Compare(f, g)
		}
	case inf.format != nil:
		layout := inf.format.layout
		compare = func(x, y string) int {
			s, _ := time.Parse(layout, x)
			t, _ := time.Parse(layout, y)
			return s.Compare(t)
		}
	case inf.typ == core.TypeBoolean:
		compare = func(x, y string) int {
			return strings.Compare(strings.ToLower(x), strings.ToLower(y))
		}
	default:
		compare = strings.Compare
	}

	return slices.MinFunc(a.values, compare), slices.MaxFunc(a.values, compare)
}

// uniqueness is the ratio of distinct to non-blank values.
func (a *TextAnalyzer) uniqueness() float64 {
	distinct := make(map[string]struct{}, len(a.values))
	for _, v := range a.values {
		distinct[v] = struct{}{}
	}
	if len(distinct) == len(a.values) {
		return 1.0
	}
	return float64(len(distinct)) / float64(len(a.values))
}

// detail orders distinct values by descending count, ties by first appearance.
func (a *TextAnalyzer) detail() []core.CardinalityEntry {
	out := make([]core.CardinalityEntry, len(a.order))
	for i, k := range a.order {
		out[i] = core.CardinalityEntry{Key: k, Count: a.counts[k]}
	}
	slices.SortStableFunc(out, func(x, y core.CardinalityEntry) int {
		return cmp.Compare(y.Count, x.Count)
	})
	return out
}

// semanticType returns the first qualifier, in sorted order, whose plugin
// accepts every value.
func (a *TextAnalyzer) semanticType() (string, bool) {
	lister, ok := a.cfg.catalog.(semantic.Lister)
	if !ok || len(a.values) < a.cfg.semanticSamples {
		return "", false
	}

	for _, id := range lister.Qualifiers() {
		plugin, ok := a.cfg.catalog.Lookup(id)
		if !ok {
			continue
		}
		if all(a.values, plugin.IsValid) {
			return plugin.Qualifier(), true
		}
	}
	return "", false
}

// Rows is a stream of records with a fixed header.
type Rows interface {
	Header() []string
	Next() (core.Row, error)
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	onRowShape func(*quality.RowShapeError)
}

// WithRowShape sets a callback for records skipped because their field
// count differs from the header.
func WithRowShape(fn func(*quality.RowShapeError)) RunOption {
	return func(c *runConfig) { c.onRowShape = fn }
}

// Run profiles up to limit data rows of src and returns one profile per
// header column, in header order. Records whose field count differs from
// the header are skipped. A limit <= 0 reads every row.
func Run(ctx context.Context, src Rows, limit int, factory Factory, logger *slog.Logger, opts ...RunOption) ([]core.ColumnProfile, error) {
	var rc runConfig
	for _, opt := range opts {
		opt(&rc)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if factory == nil {
		factory = NewFactory()
	}

	header := src.Header()
	analyzers := make([]Analyzer, len(header))
	for i, name := range header {
		analyzers[i] = factory(name)
	}

	trained := 0
	for record := 1; limit <= 0 || record <= limit; record++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", record, err)
		}
		if len(row) != len(header) {
			logger.Debug("skipping malformed record while profiling", "record", record, "fields", len(row), "expected", len(header))
			if rc.onRowShape != nil {
				rc.onRowShape(&quality.RowShapeError{Row: record, Fields: len(row), Expected: len(header)})
			}
			continue
		}

		for i, v := range row {
			analyzers[i].Train(v)
		}
		trained++
	}

	logger.Debug("profiled sample", "columns", len(header), "rows", trained)

	profiles := make([]core.ColumnProfile, len(analyzers))
	for i, a := range analyzers {
		profiles[i] = a.Result()
	}
	return profiles, nil
}
