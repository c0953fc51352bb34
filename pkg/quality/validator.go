// Package quality checks field values against derived rule sets.
//
// By default only three rule kinds are decisive: NullPercent rejects nulls,
// OneOf accepts or rejects non-null values by case-insensitive membership,
// and SemanticType delegates to a plugin from the configured catalog. The
// remaining kinds describe the column without being enforced. Strict mode
// additionally enforces BlankPercent, Pattern, Min, Max and Format.
package quality

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/rule"
	"github.com/leapstack-labs/leapdq/pkg/semantic"
)

// Verdict is the outcome of evaluating one value.
type Verdict struct {
	Valid bool `json:"valid"`
	// Rule is the decisive rule, or empty when the value was accepted by default.
	Rule string `json:"rule,omitempty"`
	// Reason describes a rejection.
	Reason string `json:"reason,omitempty"`
	// Severity is SeverityError for rejections by enforced rules and
	// SeverityWarning for rejections only strict mode makes. Unset when valid.
	Severity core.Severity `json:"severity,omitempty"`
}

// Validator evaluates values against rule sets. It is safe for concurrent use.
type Validator struct {
	catalog semantic.Catalog
	strict  bool
	logger  *slog.Logger

	patterns sync.Map // pattern string -> *regexp.Regexp, or nil when invalid
}

// Option configures a Validator.
type Option func(*Validator)

// WithCatalog sets the semantic-type catalog. Without one, SemanticType
// rules are never resolvable and therefore never fail.
func WithCatalog(c semantic.Catalog) Option {
	return func(v *Validator) { v.catalog = c }
}

// WithStrict enables enforcement of BlankPercent, Pattern, Min, Max and Format.
func WithStrict(strict bool) Option {
	return func(v *Validator) { v.strict = strict }
}

// WithLogger sets the logger used for rules that cannot be evaluated.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		catalog: semantic.None(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.catalog == nil {
		v.catalog = semantic.None()
	}
	return v
}

// Strict reports whether strict enforcement is enabled.
func (v *Validator) Strict() bool { return v.strict }

// Check reports whether value satisfies rs.
func (v *Validator) Check(rs *rule.RuleSet, value core.Value) bool {
	return v.Evaluate(rs, value).Valid
}

// Evaluate scans the rules of rs in order and returns on the first decisive
// rule. A value no rule decides on is valid.
func (v *Validator) Evaluate(rs *rule.RuleSet, value core.Value) Verdict {
	if rs == nil {
		return Verdict{Valid: true}
	}

	typ := core.TypeUnknown
	typed := false
	format := ""

	for i := 0; i < rs.Len(); i++ {
		r := rs.At(i)

		switch r.Kind() {
		case rule.KindBaseType:
			if !typed {
				typ, _ = core.ParseBaseType(r.Arg(0))
				typed = true
			}

		case rule.KindNullPercent:
			if value.IsNull() {
				return reject(r, "null value")
			}

		case rule.KindOneOf:
			if value.IsNull() {
				continue
			}
			for _, want := range r.Args() {
				if strings.EqualFold(value.String, want) {
					return Verdict{Valid: true, Rule: r.String()}
				}
			}
			return reject(r, fmt.Sprintf("%q is not one of %d allowed values", value.String, r.NumArgs()))

		case rule.KindSemanticType:
			if value.IsNull() || value.IsBlank() {
				continue
			}
			plugin, ok := v.catalog.Lookup(r.Arg(0))
			if !ok {
				v.logger.Debug("semantic type not resolvable, skipping", "semantic_type", r.Arg(0), "column", rs.Name())
				continue
			}
			if plugin.IsValid(value.String) {
				return Verdict{Valid: true, Rule: r.String()}
			}
			return reject(r, fmt.Sprintf("not a valid %s", plugin.Qualifier()))

		case rule.KindFormat:
			format = r.Arg(0)
			if v.strict {
				if reason, ok := v.checkFormat(rs, format, value); !ok {
					return rejectStrict(r, reason)
				}
			}

		case rule.KindBlankPercent:
			if v.strict && !value.IsNull() && value.IsBlank() {
				return rejectStrict(r, "blank value")
			}

		case rule.KindPattern:
			if v.strict {
				if reason, ok := v.checkPattern(rs, r.Arg(0), value); !ok {
					return rejectStrict(r, reason)
				}
			}

		case rule.KindMin, rule.KindMax:
			if v.strict {
				if reason, ok := v.checkBound(rs, r, typ, format, value); !ok {
					return rejectStrict(r, reason)
				}
			}
		}
	}

	return Verdict{Valid: true}
}

func reject(r rule.Rule, reason string) Verdict {
	return Verdict{Valid: false, Rule: r.String(), Reason: reason, Severity: core.SeverityError}
}

func rejectStrict(r rule.Rule, reason string) Verdict {
	return Verdict{Valid: false, Rule: r.String(), Reason: reason, Severity: core.SeverityWarning}
}

// present reports whether a value carries content that strict checks apply to.
func present(value core.Value) bool {
	return !value.IsNull() && !value.IsBlank()
}

func (v *Validator) checkPattern(rs *rule.RuleSet, pattern string, value core.Value) (string, bool) {
	if !present(value) || pattern == "" {
		return "", true
	}
	re := v.compile(rs, pattern)
	if re == nil {
		return "", true
	}
	if !re.MatchString(value.String) {
		return fmt.Sprintf("%q does not match %s", value.String, pattern), false
	}
	return "", true
}

// compile anchors and caches a pattern. Patterns Go cannot compile are
// logged once and then ignored.
func (v *Validator) compile(rs *rule.RuleSet, pattern string) *regexp.Regexp {
	if cached, ok := v.patterns.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		v.logger.Warn("pattern not supported, skipping", "column", rs.Name(), "pattern", pattern, "error", err)
		v.patterns.Store(pattern, (*regexp.Regexp)(nil))
		return nil
	}
	v.patterns.Store(pattern, re)
	return re
}

func (v *Validator) checkFormat(rs *rule.RuleSet, format string, value core.Value) (string, bool) {
	if !present(value) || format == "" {
		return "", true
	}
	layout, err := core.GoLayout(format)
	if err != nil {
		v.logger.Warn("format not supported, skipping", "column", rs.Name(), "format", format, "error", err)
		return "", true
	}
	if _, err := time.Parse(layout, strings.TrimSpace(value.String)); err != nil {
		return fmt.Sprintf("%q does not match format %s", value.String, format), false
	}
	return "", true
}

func (v *Validator) checkBound(rs *rule.RuleSet, r rule.Rule, typ core.BaseType, format string, value core.Value) (string, bool) {
	bound := r.Arg(0)
	if !present(value) || bound == "" {
		return "", true
	}

	var cmp int
	switch {
	case typ.IsNumeric():
		b, err := strconv.ParseFloat(bound, 64)
		if err != nil {
			return "", true
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(value.String), 64)
		if err != nil {
			return fmt.Sprintf("%q is not numeric", value.String), false
		}
		cmp = compareFloat(n, b)

	case typ.IsTemporal():
		if format == "" {
			return "", true
		}
		layout, err := core.GoLayout(format)
		if err != nil {
			return "", true
		}
		b, err := time.Parse(layout, bound)
		if err != nil {
			v.logger.Debug("bound does not match format, skipping", "column", rs.Name(), "bound", bound, "format", format)
			return "", true
		}
		t, err := time.Parse(layout, strings.TrimSpace(value.String))
		if err != nil {
			return fmt.Sprintf("%q does not match format %s", value.String, format), false
		}
		cmp = t.Compare(b)

	default:
		return "", true
	}

	if r.Kind() == rule.KindMin && cmp < 0 {
		return fmt.Sprintf("%s is below minimum %s", value.String, bound), false
	}
	if r.Kind() == rule.KindMax && cmp > 0 {
		return fmt.Sprintf("%s is above maximum %s", value.String, bound), false
	}
	return "", true
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
