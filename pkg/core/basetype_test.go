package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseType(t *testing.T) {
	tests := []struct {
		in     string
		want   BaseType
		wantOK bool
	}{
		{"Long", TypeLong, true},
		{"LONG", TypeLong, true},
		{" localdate ", TypeLocalDate, true},
		{"ZonedDateTime", TypeZonedDateTime, true},
		{"Unknown", TypeUnknown, false},
		{"Decimal", TypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseBaseType(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestBaseType_Classes(t *testing.T) {
	assert.True(t, TypeLong.IsNumeric())
	assert.True(t, TypeDouble.IsNumeric())
	assert.False(t, TypeString.IsNumeric())
	assert.True(t, TypeLocalTime.IsTemporal())
	assert.False(t, TypeBoolean.IsTemporal())
	assert.Equal(t, "Unknown", BaseType(99).String())
}

func TestBaseType_JSON(t *testing.T) {
	b, err := json.Marshal(TypeOffsetDateTime)
	require.NoError(t, err)
	assert.Equal(t, `"OffsetDateTime"`, string(b))

	var got BaseType
	require.NoError(t, json.Unmarshal([]byte(`"double"`), &got))
	assert.Equal(t, TypeDouble, got)
}

func TestColumnProfile_Validate(t *testing.T) {
	p := ColumnProfile{
		Name:              "status",
		Uniqueness:        0.5,
		Cardinality:       2,
		CardinalityDetail: []CardinalityEntry{{Key: "A", Count: 3}, {Key: "B", Count: 1}},
	}
	require.NoError(t, p.Validate())
	assert.Equal(t, []string{"A", "B"}, p.DistinctValues())

	p.Uniqueness = 1.5
	p.CardinalityDetail = append(p.CardinalityDetail, CardinalityEntry{Key: "A", Count: 1})
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uniqueness")
	assert.Contains(t, err.Error(), "3 detail entries")
	assert.Contains(t, err.Error(), `duplicate cardinality key "A"`)
}
