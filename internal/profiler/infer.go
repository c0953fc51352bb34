package profiler

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// temporalFormat pairs a date-time pattern, as reported in TypeModifier,
// with the base type it implies.
type temporalFormat struct {
	pattern string
	typ     core.BaseType
	layout  string
}

var temporalFormats = mustFormats([]temporalFormat{
	{pattern: "yyyy-MM-dd", typ: core.TypeLocalDate},
	{pattern: "MM/dd/yyyy", typ: core.TypeLocalDate},
	{pattern: "MM-dd-yyyy", typ: core.TypeLocalDate},
	{pattern: "M/d/yy", typ: core.TypeLocalDate},
	{pattern: "dd MMM yyyy", typ: core.TypeLocalDate},
	{pattern: "yyyy-MM-dd'T'HH:mm:ss", typ: core.TypeLocalDateTime},
	{pattern: "yyyy-MM-dd'T'HH:mm:ss.SSS", typ: core.TypeLocalDateTime},
	{pattern: "yyyy-MM-dd HH:mm:ss", typ: core.TypeLocalDateTime},
	{pattern: "yyyy-MM-dd HH:mm", typ: core.TypeLocalDateTime},
	{pattern: "yyyy-MM-dd'T'HH:mm:ssXXX", typ: core.TypeOffsetDateTime},
	{pattern: "yyyy-MM-dd'T'HH:mm:ss.SSSXXX", typ: core.TypeOffsetDateTime},
	{pattern: "yyyy-MM-dd HH:mm:ss z", typ: core.TypeZonedDateTime},
	{pattern: "HH:mm:ss", typ: core.TypeLocalTime},
	{pattern: "HH:mm", typ: core.TypeLocalTime},
})

func mustFormats(formats []temporalFormat) []temporalFormat {
	for i := range formats {
		layout, err := core.GoLayout(formats[i].pattern)
		if err != nil {
			panic(err)
		}
		formats[i].layout = layout
	}
	return formats
}

var decimal = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// hasLeadingZeros reports a zero-padded integer part. This usually means an
// identifier, not a number.
func hasLeadingZeros(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}

func parseLong(s string) (int64, bool) {
	if hasLeadingZeros(s) {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	return i, err == nil
}

func parseDouble(s string) (float64, bool) {
	if hasLeadingZeros(s) || !decimal.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}

// inference is the outcome of typing a column's non-blank values.
type inference struct {
	typ    core.BaseType
	format *temporalFormat
}

// infer picks the most specific type every value satisfies. Long widens to
// Double; anything else mixed falls back to String.
func infer(values []string) inference {
	if len(values) == 0 {
		return inference{typ: core.TypeString}
	}

	if all(values, func(s string) bool { _, ok := parseLong(s); return ok }) {
		return inference{typ: core.TypeLong}
	}
	if all(values, func(s string) bool { _, ok := parseDouble(s); return ok }) {
		return inference{typ: core.TypeDouble}
	}
	if all(values, parseBool) {
		return inference{typ: core.TypeBoolean}
	}
	for i := range temporalFormats {
		f := &temporalFormats[i]
		if all(values, func(s string) bool { _, err := time.Parse(f.layout, s); return err == nil }) {
			return inference{typ: f.typ, format: f}
		}
	}
	return inference{typ: core.TypeString}
}

func all(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}
