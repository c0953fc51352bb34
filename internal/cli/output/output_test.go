package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(mode Mode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		tty  bool
		want Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeText, false, ModeText},
		{ModeMarkdown, true, ModeMarkdown},
	}

	for _, tt := range tests {
		r, _, _ := newTest(tt.mode, tt.tty)
		assert.Equal(t, tt.want, r.EffectiveMode(), "mode=%q tty=%v", tt.mode, tt.tty)
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
}

func TestHeader(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Header(2, "Runs")
	assert.Equal(t, "## Runs\n\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.Header(1, "Runs")
	assert.Contains(t, out.String(), "Runs")
	assert.NotContains(t, out.String(), "#")
}

func TestTable(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Table([]string{"Column", "Failures"}, [][]string{{"age", "2"}})
	assert.Contains(t, out.String(), "| Column | Failures |")
	assert.Contains(t, out.String(), "| age | 2 |")

	r, out, _ = newTest(ModeText, false)
	r.Table([]string{"Column"}, [][]string{{"age"}})
	assert.Contains(t, out.String(), "┌")
	assert.Contains(t, out.String(), "age")
}

func TestJSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]int{"rows": 3}))
	assert.JSONEq(t, `{"rows": 3}`, out.String())
}

func TestMessagesWithoutColor(t *testing.T) {
	r, out, errOut := newTest(ModeText, false)
	r.Success("done")
	r.Muted("quiet")
	r.Errorf("bad %d\n", 1)

	assert.Equal(t, "✓ done\nquiet\n", out.String())
	assert.Equal(t, "bad 1\n", errOut.String())
}

func TestFormatKeyValue(t *testing.T) {
	assert.Equal(t, "- **Rows**: 10", FormatKeyValue("Rows", "10"))
	assert.Equal(t, "# T\n", FormatHeader(0, "T"))
}
