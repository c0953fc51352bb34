package rule

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Kind names one entry of the fixed rule vocabulary.
type Kind string

// The rule vocabulary. The string value is the wire name.
const (
	KindBaseType     Kind = "BaseType"
	KindNullPercent  Kind = "NullPercent"
	KindBlankPercent Kind = "BlankPercent"
	KindTrimLeft     Kind = "TrimLeft"
	KindTrimRight    Kind = "TrimRight"
	KindUnique       Kind = "Unique"
	KindSemanticType Kind = "SemanticType"
	KindOneOf        Kind = "OneOf"
	KindPattern      Kind = "Pattern"
	KindMin          Kind = "Min"
	KindMax          Kind = "Max"
	KindFormat       Kind = "Format"
)

// Kinds lists the vocabulary in canonical order.
var Kinds = []Kind{
	KindBaseType, KindNullPercent, KindBlankPercent, KindTrimLeft, KindTrimRight,
	KindUnique, KindSemanticType, KindOneOf, KindPattern, KindMin, KindMax, KindFormat,
}

// ParseKind returns the Kind for a wire name.
func ParseKind(name string) (Kind, bool) {
	k := Kind(name)
	return k, slices.Contains(Kinds, k)
}

// Rule is one named, parameterized constraint. Rules are immutable.
type Rule struct {
	kind Kind
	args []string
}

// New creates a rule of the given kind. The arguments are copied.
// Use the per-kind constructors where possible; New exists for decoding.
func New(kind Kind, args ...string) (Rule, error) {
	if _, ok := ParseKind(string(kind)); !ok {
		return Rule{}, fmt.Errorf("unknown rule %q", kind)
	}
	return Rule{kind: kind, args: slices.Clone(args)}, nil
}

func mk(kind Kind, args ...string) Rule {
	return Rule{kind: kind, args: args}
}

// BaseTypeOf asserts the column's base type.
func BaseTypeOf(t core.BaseType) Rule { return mk(KindBaseType, t.String()) }

// NullPercent asserts the maximum percentage of nulls.
func NullPercent(pct string) Rule { return mk(KindNullPercent, pct) }

// BlankPercent asserts the maximum percentage of blank values.
func BlankPercent(pct string) Rule { return mk(KindBlankPercent, pct) }

// TrimLeft records that values carry leading white space.
func TrimLeft() Rule { return mk(KindTrimLeft, "true") }

// TrimRight records that values carry trailing white space.
func TrimRight() Rule { return mk(KindTrimRight, "true") }

// Unique asserts that no value repeats.
func Unique() Rule { return mk(KindUnique) }

// SemanticType asserts values belong to a cataloged semantic type.
func SemanticType(id string) Rule { return mk(KindSemanticType, id) }

// OneOf restricts values to a fixed set.
func OneOf(values ...string) Rule { return mk(KindOneOf, slices.Clone(values)...) }

// Pattern asserts values match a regular expression.
func Pattern(re string) Rule { return mk(KindPattern, re) }

// Min asserts a lower bound in the type's native representation.
func Min(v string) Rule { return mk(KindMin, v) }

// Max asserts an upper bound in the type's native representation.
func Max(v string) Rule { return mk(KindMax, v) }

// Format asserts a temporal layout (a date-format pattern).
func Format(layout string) Rule { return mk(KindFormat, layout) }

// Kind returns the rule kind.
func (r Rule) Kind() Kind { return r.kind }

// Name returns the wire name of the rule.
func (r Rule) Name() string { return string(r.kind) }

// Args returns a copy of the rule arguments.
func (r Rule) Args() []string { return slices.Clone(r.args) }

// NumArgs returns the number of arguments.
func (r Rule) NumArgs() int { return len(r.args) }

// Arg returns the i'th argument, or "" when out of range.
func (r Rule) Arg(i int) string {
	if i < 0 || i >= len(r.args) {
		return ""
	}
	return r.args[i]
}

// Equal reports whether two rules have the same kind and arguments.
func (r Rule) Equal(o Rule) bool {
	return r.kind == o.kind && slices.Equal(r.args, o.args)
}

// String renders the rule as Name(arg, ...).
func (r Rule) String() string {
	s := string(r.kind) + "("
	for i, a := range r.args {
		if i > 0 {
			s += ", "
		}
		s += a
	}
	return s + ")"
}
