package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "plain month step",
			start:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "clamps to leap February",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "clamps to non-leap February",
			start:    time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "31st to 30-day month",
			start:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "crosses a year boundary",
			start:    time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
			months:   3,
			expected: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "zero months is identity",
			start:    time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			months:   0,
			expected: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddMonths(tt.start, tt.months))
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 31, DaysInMonth(2024, time.January))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{"same day", base, base, 0},
		{"next day", base, base.AddDate(0, 0, 1), 1},
		{"previous day", base, base.AddDate(0, 0, -1), -1},
		{"ignores time of day", base.Add(23 * time.Hour), base.AddDate(0, 0, 1), 1},
		{"one month out", base, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.from, tt.to))
		})
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 6, 1, 17, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}
