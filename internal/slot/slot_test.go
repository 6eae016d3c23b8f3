package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(t *testing.T, start, end string) Interval {
	t.Helper()
	v, err := ParseInterval(start, end)
	require.NoError(t, err)
	return v
}

func TestParseInterval(t *testing.T) {
	_, err := ParseInterval("09:00", "10:00")
	assert.NoError(t, err)

	_, err = ParseInterval("10:00", "10:00")
	assert.ErrorIs(t, err, ErrBadOrder)

	_, err = ParseInterval("11:00", "10:00")
	assert.ErrorIs(t, err, ErrBadOrder)

	_, err = ParseInterval("9:00", "10:00")
	assert.ErrorIs(t, err, ErrBadTime, "unpadded hour must be rejected")

	_, err = ParseInterval("09:00", "25:00")
	assert.ErrorIs(t, err, ErrBadTime)

	_, err = ParseInterval("09:00", "")
	assert.ErrorIs(t, err, ErrBadTime)
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2025-06-01"))
	assert.False(t, ValidDate("2025-6-01"))
	assert.False(t, ValidDate("2025-13-01"))
	assert.False(t, ValidDate("01-06-2025"))
	assert.False(t, ValidDate(""))
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name     string
		existing Interval
		cand     Interval
		want     bool
	}{
		{"identical", Interval{"09:00", "10:00"}, Interval{"09:00", "10:00"}, true},
		{"starts inside", Interval{"09:00", "10:00"}, Interval{"09:30", "10:30"}, true},
		{"ends inside", Interval{"09:00", "10:00"}, Interval{"08:30", "09:30"}, true},
		{"contains existing", Interval{"09:00", "10:00"}, Interval{"08:00", "11:00"}, true},
		{"contained by existing", Interval{"08:00", "11:00"}, Interval{"09:00", "10:00"}, true},
		{"abuts after", Interval{"09:00", "10:00"}, Interval{"10:00", "11:00"}, false},
		{"abuts before", Interval{"09:00", "10:00"}, Interval{"08:00", "09:00"}, false},
		{"disjoint", Interval{"09:00", "10:00"}, Interval{"14:00", "15:00"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.existing, tc.cand))
			// the predicate is symmetric
			assert.Equal(t, tc.want, Overlaps(tc.cand, tc.existing))
		})
	}
}

func TestOverlapsSelf(t *testing.T) {
	a := iv(t, "13:15", "14:45")
	assert.True(t, Overlaps(a, a))
}
