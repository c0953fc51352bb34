package quality

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	header []string
	rows   []core.Row
	err    error
	pos    int
}

func (f *fakeRows) Header() []string { return f.header }

func (f *fakeRows) Next() (core.Row, error) {
	if f.pos >= len(f.rows) {
		if f.err != nil {
			return nil, f.err
		}
		return nil, io.EOF
	}
	r := f.rows[f.pos]
	f.pos++
	return r, nil
}

func row(values ...string) core.Row {
	out := make(core.Row, len(values))
	for i, v := range values {
		if v == "<null>" {
			out[i] = core.Null()
			continue
		}
		out[i] = core.Text(v)
	}
	return out
}

func sampleSets() []*rule.RuleSet {
	return []*rule.RuleSet{
		set("id", rule.BaseTypeOf(core.TypeLong), rule.NullPercent("0.0")),
		set("status", rule.BaseTypeOf(core.TypeString), rule.OneOf("A", "B")),
	}
}

func TestScan_ReportsFailuresAndContinues(t *testing.T) {
	src := &fakeRows{
		header: []string{"id", "status"},
		rows: []core.Row{
			row("1", "A"),
			row("<null>", "b"),
			row("3", "X"),
			row("4", "A", "extra"),
			row("5", "B"),
		},
	}

	var failures []Failure
	var shapes []*RowShapeError
	s := &Scanner{
		Validator:  New(),
		OnFailure:  func(f Failure) { failures = append(failures, f) },
		OnRowShape: func(e *RowShapeError) { shapes = append(shapes, e) },
	}

	report, err := s.Scan(context.Background(), src, sampleSets())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.Failures)
	assert.Equal(t, map[string]int{"id": 1, "status": 1}, report.PerColumn)

	require.Len(t, failures, 2)
	assert.Equal(t, "id", failures[0].Column)
	assert.Equal(t, 0, failures[0].Index)
	assert.Equal(t, 2, failures[0].Row)
	assert.True(t, failures[0].Value.IsNull())

	assert.Equal(t, "status", failures[1].Column)
	assert.Equal(t, 1, failures[1].Index)
	assert.Equal(t, 3, failures[1].Row)
	assert.Equal(t, "X", failures[1].Value.String)

	require.Len(t, shapes, 1)
	assert.Equal(t, 4, shapes[0].Row)
	assert.Equal(t, 3, shapes[0].Fields)
	assert.Equal(t, 2, shapes[0].Expected)
	assert.ErrorIs(t, shapes[0], ErrRowShape)
}

func TestScan_MatchesColumnsByName(t *testing.T) {
	src := &fakeRows{
		header: []string{"status", "id"},
		rows:   []core.Row{row("A", "<null>")},
	}

	var failures []Failure
	s := &Scanner{OnFailure: func(f Failure) { failures = append(failures, f) }}

	_, err := s.Scan(context.Background(), src, sampleSets())
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "id", failures[0].Column)
	assert.Equal(t, 1, failures[0].Index)
}

func TestScan_FallsBackToPosition(t *testing.T) {
	src := &fakeRows{
		header: []string{"c0", "c1"},
		rows:   []core.Row{row("<null>", "Z")},
	}

	report, err := (&Scanner{}).Scan(context.Background(), src, sampleSets())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Failures)
}

func TestScan_RenamedColumnBindsByPosition(t *testing.T) {
	notNull := func(name string) *rule.RuleSet {
		return set(name, rule.NullPercent("0.0"))
	}
	src := &fakeRows{
		header: []string{"a", "b", "c"},
		rows:   []core.Row{row("x", "<null>", "y")},
	}

	var failures []Failure
	s := &Scanner{OnFailure: func(f Failure) { failures = append(failures, f) }}

	report, err := s.Scan(context.Background(), src, []*rule.RuleSet{notNull("a"), notNull("b_old"), notNull("c")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures)
	require.Len(t, failures, 1)
	assert.Equal(t, "b", failures[0].Column)
	assert.Equal(t, 1, failures[0].Index)
}

func TestScan_PositionFallbackSkipsSetsBoundByName(t *testing.T) {
	notNull := func(name string) *rule.RuleSet {
		return set(name, rule.NullPercent("0.0"))
	}
	// "a" matches the set at index 1 by name, so "z" at index 1 gets nothing.
	src := &fakeRows{
		header: []string{"q", "z", "a"},
		rows:   []core.Row{row("<null>", "<null>", "<null>")},
	}

	var failures []Failure
	s := &Scanner{OnFailure: func(f Failure) { failures = append(failures, f) }}

	_, err := s.Scan(context.Background(), src, []*rule.RuleSet{notNull("p"), notNull("a")})
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "q", failures[0].Column)
	assert.Equal(t, "a", failures[1].Column)
}

func TestScan_SelectedField(t *testing.T) {
	src := &fakeRows{
		header: []string{"id", "status"},
		rows:   []core.Row{row("<null>", "Z"), row("2", "A")},
	}

	var failures []Failure
	s := &Scanner{
		Field:     "status",
		OnFailure: func(f Failure) { failures = append(failures, f) },
	}

	report, err := s.Scan(context.Background(), src, sampleSets()[1:])
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures)
	require.Len(t, failures, 1)
	assert.Equal(t, "status", failures[0].Column)
	assert.Equal(t, 1, failures[0].Index)
}

func TestScan_SelectedFieldMissing(t *testing.T) {
	src := &fakeRows{header: []string{"id"}}

	_, err := (&Scanner{Field: "status"}).Scan(context.Background(), src, sampleSets())
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestScan_ReadErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeRows{header: []string{"id", "status"}, rows: []core.Row{row("1", "A")}, err: boom}

	report, err := (&Scanner{}).Scan(context.Background(), src, sampleSets())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, report.Rows)
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeRows{header: []string{"id", "status"}, rows: []core.Row{row("1", "A")}}
	_, err := (&Scanner{}).Scan(ctx, src, sampleSets())
	assert.ErrorIs(t, err, context.Canceled)
}
