package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd", "2006-01-02"},
		{"dd/MM/yyyy", "02/01/2006"},
		{"M/d/yy", "1/2/06"},
		{"yyyy-MM-dd'T'HH:mm:ss", "2006-01-02T15:04:05"},
		{"HH:mm:ss.SSS", "15:04:05.000"},
		{"yyyy-MM-dd'T'HH:mm:ssXXX", "2006-01-02T15:04:05Z07:00"},
		{"dd MMM yyyy", "02 Jan 2006"},
		{"hh:mm a", "03:04 PM"},
		{"yyyy-MM-dd HH:mm:ss z", "2006-01-02 15:04:05 MST"},
		{"''yy''", "'06'"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := GoLayout(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoLayout_Errors(t *testing.T) {
	for _, p := range []string{"", "yyyyy", "yyyy-MM-dd'T", "QQQ"} {
		_, err := GoLayout(p)
		assert.Error(t, err, p)
	}
}

func TestGoLayout_ParsesSample(t *testing.T) {
	layout, err := GoLayout("yyyy-MM-dd'T'HH:mm:ss")
	require.NoError(t, err)

	ts, err := time.Parse(layout, "2021-03-04T05:06:07")
	require.NoError(t, err)
	assert.Equal(t, 2021, ts.Year())
	assert.Equal(t, 7, ts.Second())
}
