package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecurringDates(t *testing.T) {
	monWed := map[time.Weekday]bool{time.Monday: true, time.Wednesday: true}

	t.Run("walks forward from start date inclusive", func(t *testing.T) {
		// 2024-01-01 is a Monday.
		got := RecurringDates(date(2024, time.January, 1), monWed, 4)

		require.Len(t, got, 4)
		assert.Equal(t, date(2024, time.January, 1), got[0])
		assert.Equal(t, date(2024, time.January, 3), got[1])
		assert.Equal(t, date(2024, time.January, 8), got[2])
		assert.Equal(t, date(2024, time.January, 10), got[3])
	})

	t.Run("start date not matching any weekday is skipped", func(t *testing.T) {
		// 2024-01-02 is a Tuesday.
		got := RecurringDates(date(2024, time.January, 2), monWed, 2)

		require.Len(t, got, 2)
		assert.Equal(t, date(2024, time.January, 3), got[0])
		assert.Equal(t, date(2024, time.January, 8), got[1])
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		start := date(2024, time.March, 15)
		first := RecurringDates(start, monWed, 6)
		second := RecurringDates(start, monWed, 6)

		assert.Equal(t, first, second)
	})

	t.Run("empty weekdays yields no dates", func(t *testing.T) {
		assert.Nil(t, RecurringDates(date(2024, time.January, 1), nil, 4))
	})

	t.Run("non-positive count yields no dates", func(t *testing.T) {
		assert.Nil(t, RecurringDates(date(2024, time.January, 1), monWed, 0))
		assert.Nil(t, RecurringDates(date(2024, time.January, 1), monWed, -3))
	})

	t.Run("time of day is dropped", func(t *testing.T) {
		start := time.Date(2024, time.January, 1, 18, 45, 12, 0, time.UTC)
		got := RecurringDates(start, monWed, 1)

		require.Len(t, got, 1)
		assert.Equal(t, date(2024, time.January, 1), got[0])
	})
}
