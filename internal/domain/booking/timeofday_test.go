package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want TimeOfDay
	}{
		{"09:30", 9*60 + 30},
		{"00:00", 0},
		{"23:59", 23*60 + 59},
		{"5:51pm", 17*60 + 51},
		{"5:51 PM", 17*60 + 51},
		{"12:00am", 0},
		{"12:00 PM", 12 * 60},
		{" 9:30  ", 9*60 + 30},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseTimeOfDayRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "25:00", "9", "noon", "9:75"} {
		_, err := ParseTimeOfDay(in)
		require.Error(t, err, "input %q", in)
	}
}

func TestTimeOfDayDistance(t *testing.T) {
	a := MustTimeOfDay("09:10")
	b := MustTimeOfDay("09:30")
	require.Equal(t, 20, a.DistanceMinutes(b))
	require.Equal(t, 20, b.DistanceMinutes(a))
	require.Equal(t, 0, a.DistanceMinutes(a))
}

func TestTimeOfDayString(t *testing.T) {
	require.Equal(t, "17:51", MustTimeOfDay("5:51pm").String())
	require.Equal(t, "00:05", MustTimeOfDay("00:05").String())
}
