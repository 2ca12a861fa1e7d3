package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	for in, want := range map[string]time.Month{
		"March":     time.March,
		"december":  time.December,
		"sep":       time.September,
		"3":         time.March,
		" 12 ":      time.December,
		"SEPTEMBER": time.September,
	} {
		got, err := ParseMonth(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "13", "0", "Marchy", "ma"} {
		_, err := ParseMonth(in)
		assert.Error(t, err, in)
	}
}

func TestMonthRanges(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	from, to := CurrentMonth(now)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), to)

	from, to = PreviousMonth(now)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), to)
}
