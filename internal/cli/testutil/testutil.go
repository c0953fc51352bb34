// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
)

// BaselineCSV is a small, clean data file.
const BaselineCSV = `id,name,age,status,email
1,Alice,34,A,alice@example.com
2,Bob,45,B,bob@example.com
3,Carol,29,A,carol@example.com
4,Dan,61,C,dan@example.com
5,Eve,38,B,eve@example.com
`

// TodayCSV holds one bad status, one unseen name and one short record.
const TodayCSV = `id,name,age,status,email
1,Alice,50,Z,alice@example.com
2,Bob,41,A
`

// ProfileJSON is a specification with the age and status columns.
const ProfileJSON = `[
  {"fieldName": "age", "type": "Long", "nullCount": 0, "totalNullCount": 0, "blankCount": 2,
   "uniqueness": 0.8, "min": "1", "max": "99", "regExp": "[0-9]+"},
  {"fieldName": "status", "type": "String", "nullCount": 1, "blankCount": 1, "uniqueness": 0.5,
   "cardinality": 3, "cardinalityDetail": [{"key": "A", "count": 10}, {"key": "B", "count": 5}, {"key": "C", "count": 2}]}
]
`

// Project is a temporary working directory with fixture files.
type Project struct {
	Dir      string
	Baseline string
	Today    string
	Profile  string
	State    string
}

// SetupTestProject creates a temporary project with data and profile fixtures.
func SetupTestProject(t *testing.T) *Project {
	t.Helper()

	dir := t.TempDir()
	p := &Project{
		Dir:      dir,
		Baseline: filepath.Join(dir, "baseline.csv"),
		Today:    filepath.Join(dir, "today.csv"),
		Profile:  filepath.Join(dir, "profile.json"),
		State:    filepath.Join(dir, ".leapdq", "state.db"),
	}

	files := map[string]string{
		p.Baseline: BaselineCSV,
		p.Today:    TodayCSV,
		p.Profile:  ProfileJSON,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", path, err)
		}
	}
	return p
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
