package core

import (
	"fmt"
	"strings"
)

// layoutTokens maps date-time pattern letters (as written in profile
// TypeModifier values, e.g. "yyyy-MM-dd") to Go reference-time layouts.
// Longer runs are listed first so the greedy scan picks them.
var layoutTokens = []struct {
	pattern string
	layout  string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"EEEE", "Monday"},
	{"EEE", "Mon"},
	{"HH", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"SSSSSSSSS", "000000000"},
	{"SSSSSS", "000000"},
	{"SSS", "000"},
	{"a", "PM"},
	{"XXX", "Z07:00"},
	{"XX", "Z0700"},
	{"X", "Z07"},
	{"xxx", "-07:00"},
	{"xx", "-0700"},
	{"x", "-07"},
	{"Z", "-0700"},
	{"z", "MST"},
}

// GoLayout converts a date-time pattern such as "yyyy-MM-dd'T'HH:mm:ss" to
// the equivalent Go time layout. Text between single quotes is literal and
// two single quotes stand for one quote. Unsupported pattern letters are an
// error.
func GoLayout(pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("empty date-time pattern")
	}

	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]

		if c == '\'' {
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				return "", fmt.Errorf("unterminated quote in pattern %q", pattern)
			}
			b.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}

		if !isPatternLetter(c) {
			b.WriteByte(c)
			i++
			continue
		}

		matched := false
		for _, tok := range layoutTokens {
			if strings.HasPrefix(pattern[i:], tok.pattern) && !continuesRun(pattern, i+len(tok.pattern), c) {
				b.WriteString(tok.layout)
				i += len(tok.pattern)
				matched = true
				break
			}
		}
		if !matched {
			return "", fmt.Errorf("unsupported pattern letter %q in %q", c, pattern)
		}
	}
	return b.String(), nil
}

func isPatternLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// continuesRun reports whether the letter run starting before pos is longer
// than the token just matched.
func continuesRun(pattern string, pos int, c byte) bool {
	return pos < len(pattern) && pattern[pos] == c
}
