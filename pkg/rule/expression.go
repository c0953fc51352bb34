package rule

import (
	"io"
	"strings"
)

// Expression renders the set as a single line in the compact constraint
// language (IsUnique, IsComplete, ColumnValues).
//
// Only Unique, NullPercent, Min, Max and OneOf have a template. BaseType sets
// the quoting mode and renders nothing; every other rule renders a single space.
// Values are bare when the first BaseType is Long or Double and double-quoted
// otherwise.
func (s *RuleSet) Expression() string {
	var b strings.Builder
	var baseType string
	haveType := false

	quote := func(v string) string {
		if baseType == "Long" || baseType == "Double" {
			return v
		}
		return `"` + v + `"`
	}

	column := `"` + s.name + `"`

	for _, r := range s.rules {
		switch r.kind {
		case KindBaseType:
			if !haveType {
				baseType = r.Arg(0)
				haveType = true
			}
		case KindUnique:
			b.WriteString("IsUnique " + column + ", ")
		case KindNullPercent:
			b.WriteString("IsComplete " + column + ", ")
		case KindMin:
			b.WriteString("ColumnValues " + column + " >= " + quote(r.Arg(0)) + ", ")
		case KindMax:
			b.WriteString("ColumnValues " + column + " <= " + quote(r.Arg(0)) + ", ")
		case KindOneOf:
			b.WriteString("ColumnValues " + column + " in [")
			for i, v := range r.args {
				if i != 0 {
					b.WriteString(", ")
				}
				b.WriteString(quote(v))
			}
			b.WriteString("]")
		default:
			b.WriteString(" ")
		}
	}

	return b.String()
}

// EncodeExpressions writes the expression form of every non-empty set inside a
// bracketed "Rules = [ ... ]" list, one set per line.
func EncodeExpressions(w io.Writer, sets []*RuleSet) error {
	if _, err := io.WriteString(w, "Rules = [\n"); err != nil {
		return err
	}
	for _, s := range NonEmptySets(sets) {
		if _, err := io.WriteString(w, s.Expression()+"\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]\n")
	return err
}
