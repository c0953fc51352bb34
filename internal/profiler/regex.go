package profiler

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxRepeat is the largest counted repetition RE2 accepts.
const maxRepeat = 1000

type charClass int

const (
	classLetter charClass = iota
	classDigit
	classSpace
	classLiteral
)

// run is a maximal sequence of characters sharing a class. Literal runs
// carry their character so shapes only merge on identical punctuation.
type run struct {
	class   charClass
	literal rune
	min     int
	max     int
}

func classify(r rune) charClass {
	switch {
	case unicode.IsLetter(r):
		return classLetter
	case unicode.IsDigit(r) && r < utf8.RuneSelf:
		return classDigit
	case r == ' ':
		return classSpace
	default:
		return classLiteral
	}
}

func shape(s string) []run {
	var runs []run
	for _, r := range s {
		c := classify(r)
		if n := len(runs); n > 0 && runs[n-1].class == c && (c != classLiteral || runs[n-1].literal == r) {
			runs[n-1].min++
			runs[n-1].max++
			continue
		}
		runs = append(runs, run{class: c, literal: r, min: 1, max: 1})
	}
	return runs
}

// mergeShapes widens the run lengths of a to cover b. It reports false when
// the two shapes have different run structure.
func mergeShapes(a, b []run) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].class != b[i].class || (a[i].class == classLiteral && a[i].literal != b[i].literal) {
			return false
		}
	}
	for i := range a {
		a[i].min = min(a[i].min, b[i].min)
		a[i].max = max(a[i].max, b[i].max)
	}
	return true
}

func quantifier(lo, hi int) string {
	switch {
	case hi > maxRepeat:
		return "+"
	case lo == 1 && hi == 1:
		return ""
	case lo == hi:
		return fmt.Sprintf("{%d}", lo)
	default:
		return fmt.Sprintf("{%d,%d}", lo, hi)
	}
}

func (r run) String() string {
	var atom string
	switch r.class {
	case classLetter:
		atom = `\p{L}`
	case classDigit:
		atom = `\d`
	case classSpace:
		atom = ` `
	default:
		atom = regexp.QuoteMeta(string(r.literal))
	}
	return atom + quantifier(r.min, r.max)
}

// shapeRegex returns a pattern that fully matches every value. Values with a
// common shape produce a precise pattern; otherwise only lengths are kept.
func shapeRegex(values []string) string {
	if len(values) == 0 {
		return ".*"
	}

	merged := shape(values[0])
	common := true
	for _, v := range values[1:] {
		if !mergeShapes(merged, shape(v)) {
			common = false
			break
		}
	}

	if common {
		var b strings.Builder
		for _, r := range merged {
			b.WriteString(r.String())
		}
		return b.String()
	}

	lo, hi := maxRepeat+1, 0
	for _, v := range values {
		n := utf8.RuneCountInString(v)
		lo = min(lo, n)
		hi = max(hi, n)
	}
	return "." + quantifier(lo, hi)
}

// longRegex describes integers by their digit counts.
func longRegex(values []string) string {
	signed := false
	lo, hi := maxRepeat+1, 0
	for _, v := range values {
		digits := strings.TrimLeft(v, "+-")
		if len(digits) != len(v) {
			signed = true
		}
		lo = min(lo, len(digits))
		hi = max(hi, len(digits))
	}
	prefix := ""
	if signed {
		prefix = "[+-]?"
	}
	return prefix + `\d` + quantifier(lo, hi)
}

const doubleRegex = `[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`

// wrapWhitespace allows the surrounding whitespace observed in the column.
func wrapWhitespace(pattern string, leading, trailing bool) string {
	if leading {
		pattern = `\s*` + pattern
	}
	if trailing {
		pattern += `\s*`
	}
	return pattern
}
