package schedule

import (
	"testing"
	"time"

	"studio-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	var p models.WeeklyPattern
	p.Days[1] = []models.TimeRange{
		{StartMin: 840, EndMin: 960},
		{StartMin: 540, EndMin: 600},
		{StartMin: 700, EndMin: 700}, // empty, dropped
		{StartMin: 720, EndMin: 600}, // inverted, dropped
	}

	got := Normalize(p)

	require.Len(t, got.Days[1], 2)
	assert.Equal(t, models.TimeRange{StartMin: 540, EndMin: 600}, got.Days[1][0])
	assert.Equal(t, models.TimeRange{StartMin: 840, EndMin: 960}, got.Days[1][1])
	assert.Empty(t, got.Days[0])
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{date: date(2024, time.January, 1), want: "2024-W01"},
		{date: date(2024, time.January, 8), want: "2024-W02"},
		// ISO week of Dec 31 2024 belongs to 2025.
		{date: date(2024, time.December, 31), want: "2025-W01"},
		// Jan 1 2023 is a Sunday and falls in the last week of 2022.
		{date: date(2023, time.January, 1), want: "2022-W52"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, WeekKey(tc.date))
		})
	}
}

func TestWeekStart(t *testing.T) {
	monday := date(2024, time.January, 1)

	assert.Equal(t, monday, WeekStart(monday))
	assert.Equal(t, monday, WeekStart(date(2024, time.January, 3)))
	assert.Equal(t, monday, WeekStart(date(2024, time.January, 7))) // Sunday
	assert.Equal(t, date(2024, time.January, 8), WeekStart(date(2024, time.January, 8)))
}
