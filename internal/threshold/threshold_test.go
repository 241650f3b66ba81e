package threshold

import (
	"testing"

	"github.com/and161185/pgsql-check/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind Kind
		wantLo   float64
		wantHi   float64
	}{
		{"at_most", "10", AtMost, 0, 10},
		{"at_most_fraction", "2.5", AtMost, 0, 2.5},
		{"below_only", "5:", BelowOnly, 5, 0},
		{"above_only", "~:7", AboveOnly, 0, 7},
		{"outside", "-1.5:3", Outside, -1.5, 3},
		{"inside", "@10:20", Inside, 10, 20},
		{"trimmed", " 10 ", AtMost, 0, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Parse(tc.text)
			require.NoError(t, err)
			require.NotNil(t, r)
			require.Equal(t, tc.wantKind, r.Kind)
			require.Equal(t, tc.wantLo, r.Lo)
			require.Equal(t, tc.wantHi, r.Hi)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "   "} {
		r, err := Parse(text)
		require.NoError(t, err)
		require.Nil(t, r)
		require.False(t, r.Alerts(-100))
		require.Equal(t, "", r.String())
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, text := range []string{"abc", "5:3:", "~:", "@5", "1.", ".5", "10%", "5:~", "@:3"} {
		t.Run(text, func(t *testing.T) {
			r, err := Parse(text)
			require.Nil(t, r)
			require.ErrorIs(t, err, errs.ErrMalformedRange)
			require.ErrorIs(t, err, errs.ErrConfiguration)
		})
	}
}

func TestAlerts(t *testing.T) {
	tests := []struct {
		text string
		v    float64
		want bool
	}{
		{"10", 11, true},
		{"10", 10, false},
		{"10", 0, false},
		{"10", -0.1, true},
		{"5:", 4.9, true},
		{"5:", 5, false},
		{"~:5", 5.1, true},
		{"~:5", -100, false},
		{"10:20", 9, true},
		{"10:20", 10, false},
		{"10:20", 20, false},
		{"10:20", 21, true},
		{"@10:20", 10, true},
		{"@10:20", 15, true},
		{"@10:20", 20, true},
		{"@10:20", 9.99, false},
		{"@10:20", 20.01, false},
	}
	for _, tc := range tests {
		r := MustParse(tc.text)
		require.Equal(t, tc.want, r.Alerts(tc.v), "range %q value %v", tc.text, tc.v)
	}
}

func TestAlerts_Properties(t *testing.T) {
	values := []float64{-50, -1, -0.5, 0, 0.5, 1, 4, 5, 6, 49.9, 50, 50.1, 100, 1e6}
	bounds := [][2]float64{{0, 0}, {0, 10}, {-5, 5}, {5, 50}, {1, 1}}

	for _, n := range []string{"0", "5", "50", "12.5"} {
		r := MustParse(n)
		for _, v := range values {
			require.Equal(t, v > r.Hi || v < 0, r.Alerts(v), "%q %v", n, v)
		}
	}
	for _, b := range bounds {
		outside := &Range{Kind: Outside, Lo: b[0], Hi: b[1]}
		inside := &Range{Kind: Inside, Lo: b[0], Hi: b[1]}
		for _, v := range values {
			require.Equal(t, v < b[0] || v > b[1], outside.Alerts(v))
			require.Equal(t, b[0] <= v && v <= b[1], inside.Alerts(v))
		}
	}
}

func TestString(t *testing.T) {
	require.Equal(t, "@1:2", MustParse("@1:2").String())
}
