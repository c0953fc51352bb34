package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	for _, s := range []Severity{SeverityError, SeverityWarning, SeverityInfo, SeverityHint} {
		got, ok := ParseSeverity(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	got, ok := ParseSeverity("fatal")
	assert.False(t, ok)
	assert.Equal(t, SeverityWarning, got)
	assert.Equal(t, "none", Severity(0).String())
}

func TestSeverity_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		S Severity `json:"s"`
	}{SeverityWarning})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"warning"}`, string(b))

	var s Severity
	require.NoError(t, json.Unmarshal([]byte(`"ERROR"`), &s))
	assert.Equal(t, SeverityError, s)
	assert.Error(t, json.Unmarshal([]byte(`"loud"`), &s))
}
