package profiler

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"testing"

	"github.com/leapstack-labs/leapdq/internal/testutil"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/quality"
	"github.com/leapstack-labs/leapdq/pkg/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func train(a Analyzer, values ...string) core.ColumnProfile {
	for _, v := range values {
		if v == "<null>" {
			a.Train(core.Null())
			continue
		}
		a.Train(core.Text(v))
	}
	return a.Result()
}

func TestTextAnalyzer_InfersTypes(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		want     core.BaseType
		modifier string
	}{
		{"long", []string{"1", "22", "-3"}, core.TypeLong, ""},
		{"leading zeros are text", []string{"007", "012"}, core.TypeString, ""},
		{"long widens to double", []string{"1", "2.5", "3"}, core.TypeDouble, ""},
		{"boolean", []string{"true", "FALSE", "yes"}, core.TypeBoolean, ""},
		{"local date", []string{"2020-01-02", "2021-12-31"}, core.TypeLocalDate, "yyyy-MM-dd"},
		{"us date", []string{"01/02/2020", "12/31/2021"}, core.TypeLocalDate, "MM/dd/yyyy"},
		{"local date time", []string{"2020-01-02T03:04:05"}, core.TypeLocalDateTime, "yyyy-MM-dd'T'HH:mm:ss"},
		{"offset date time", []string{"2020-01-02T03:04:05+01:00", "2020-01-02T03:04:05Z"}, core.TypeOffsetDateTime, "yyyy-MM-dd'T'HH:mm:ssXXX"},
		{"local time", []string{"03:04:05", "23:59:59"}, core.TypeLocalTime, "HH:mm:ss"},
		{"mixed is string", []string{"1", "abc"}, core.TypeString, ""},
		{"all null is string", []string{"<null>", "<null>"}, core.TypeString, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := train(NewTextAnalyzer("c"), tt.values...)
			assert.Equal(t, tt.want, p.Type)
			assert.Equal(t, tt.modifier, p.TypeModifier)
		})
	}
}

func TestTextAnalyzer_Counts(t *testing.T) {
	p := train(NewTextAnalyzer("c"), "a", "<null>", "", "  ", " b", "c ")

	assert.Equal(t, "c", p.Name)
	assert.EqualValues(t, 6, p.SampleCount)
	assert.EqualValues(t, 1, p.NullCount)
	assert.EqualValues(t, 2, p.BlankCount)
	assert.EqualValues(t, -1, p.TotalNullCount)
	assert.EqualValues(t, -1, p.TotalBlankCount)
	assert.EqualValues(t, -1, p.TotalCount)
	assert.True(t, p.LeadingWhiteSpace)
	assert.True(t, p.TrailingWhiteSpace)
}

func TestTextAnalyzer_NumericBounds(t *testing.T) {
	p := train(NewTextAnalyzer("age"), "9", "10", "1", "99", "42")

	assert.Equal(t, "1", p.Min)
	assert.Equal(t, "99", p.Max)
	assert.Equal(t, 1, p.MinLength)
	assert.Equal(t, 2, p.MaxLength)
	assert.Equal(t, `\d{1,2}`, p.RegExp)
	assert.Equal(t, 1.0, p.Uniqueness)
}

func TestTextAnalyzer_TemporalBounds(t *testing.T) {
	p := train(NewTextAnalyzer("d"), "03/01/2020", "12/31/2019", "01/15/2020")

	assert.Equal(t, "12/31/2019", p.Min)
	assert.Equal(t, "03/01/2020", p.Max)
}

func TestTextAnalyzer_Cardinality(t *testing.T) {
	p := train(NewTextAnalyzer("status"), "B", "A", "A", "C", "A", "B")

	assert.Equal(t, 3, p.Cardinality)
	assert.Equal(t, []core.CardinalityEntry{{Key: "A", Count: 3}, {Key: "B", Count: 2}, {Key: "C", Count: 1}}, p.CardinalityDetail)
	assert.InDelta(t, 0.5, p.Uniqueness, 1e-9)
	assert.NoError(t, p.Validate())
}

func TestTextAnalyzer_CardinalityLimit(t *testing.T) {
	a := NewTextAnalyzer("id", WithCardinalityLimit(3))
	p := train(a, "a", "b", "c", "d")

	assert.Equal(t, 0, p.Cardinality)
	assert.Empty(t, p.CardinalityDetail)
	assert.Equal(t, 1.0, p.Uniqueness)
}

func TestTextAnalyzer_RegexMatchesEverySample(t *testing.T) {
	samples := [][]string{
		{"AB-123", "CD-45", "EF-6789"},
		{"hello world", "x", "12 monkeys!"},
		{"1", "-22", "+333"},
		{"1.5", "-2", ".25", "3e10"},
		{" padded", "trail "},
		{"2020-01-02", "1999-12-31"},
	}

	for i, values := range samples {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			p := train(NewTextAnalyzer("c"), values...)
			re, err := regexp.Compile(`^(?:` + p.RegExp + `)$`)
			require.NoError(t, err, p.RegExp)
			for _, v := range values {
				assert.True(t, re.MatchString(v), "%q !~ %s", v, p.RegExp)
			}
		})
	}
}

func TestTextAnalyzer_SemanticDetection(t *testing.T) {
	emails := []string{"a@example.com", "b@example.com", "c@example.org", "d@example.net", "e@example.com"}

	p := train(NewTextAnalyzer("email", WithCatalog(semantic.Builtin())), emails...)
	assert.True(t, p.IsSemanticType)
	assert.Equal(t, "EMAIL.EMAIL", p.SemanticType)

	p = train(NewTextAnalyzer("email", WithCatalog(semantic.Builtin())), emails[:4]...)
	assert.False(t, p.IsSemanticType, "too few samples")

	p = train(NewTextAnalyzer("email"), emails...)
	assert.False(t, p.IsSemanticType, "no catalog")
}

func TestTextAnalyzer_NumericColumnsAreNotSemantic(t *testing.T) {
	p := train(NewTextAnalyzer("age", WithCatalog(semantic.Builtin())), "12", "34", "56", "78", "9")
	assert.Equal(t, core.TypeLong, p.Type)
	assert.False(t, p.IsSemanticType)
}

type rows struct {
	header []string
	data   []core.Row
}

func (r *rows) Header() []string { return r.header }

func (r *rows) Next() (core.Row, error) {
	if len(r.data) == 0 {
		return nil, io.EOF
	}
	row := r.data[0]
	r.data = r.data[1:]
	return row, nil
}

func TestRun(t *testing.T) {
	src := &rows{
		header: []string{"id", "status"},
		data: []core.Row{
			{core.Text("1"), core.Text("A")},
			{core.Text("2"), core.Text("B")},
			{core.Text("3")},
			{core.Text("4"), core.Text("A")},
			{core.Text("x"), core.Text("Z")},
		},
	}

	profiles, err := Run(context.Background(), src, 4, NewFactory(), testutil.NewTestLogger(t))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, "id", profiles[0].Name)
	assert.Equal(t, core.TypeLong, profiles[0].Type, "fifth row is beyond the limit")
	assert.EqualValues(t, 3, profiles[0].SampleCount, "malformed row skipped")

	assert.Equal(t, "status", profiles[1].Name)
	assert.Equal(t, 2, profiles[1].Cardinality)
}

func TestRun_ReportsSkippedRecords(t *testing.T) {
	src := &rows{
		header: []string{"id", "status"},
		data: []core.Row{
			{core.Text("1"), core.Text("A")},
			{core.Text("2"), core.Text("B"), core.Text("extra")},
			{core.Text("3")},
		},
	}

	var skipped []*quality.RowShapeError
	_, err := Run(context.Background(), src, 0, NewFactory(), nil,
		WithRowShape(func(e *quality.RowShapeError) { skipped = append(skipped, e) }))
	require.NoError(t, err)

	require.Len(t, skipped, 2)
	assert.Equal(t, quality.RowShapeError{Row: 2, Fields: 3, Expected: 2}, *skipped[0])
	assert.Equal(t, quality.RowShapeError{Row: 3, Fields: 1, Expected: 2}, *skipped[1])
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &rows{header: []string{"a"}}, 0, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
