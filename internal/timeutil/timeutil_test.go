package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutesBetween(t *testing.T) {
	start := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, 540, MinutesBetween(start, start.Add(9*time.Hour)))
	assert.Equal(t, 0, MinutesBetween(start, start))
	assert.Equal(t, -30, MinutesBetween(start, start.Add(-30*time.Minute)))
	// seconds truncate, never round up
	assert.Equal(t, 1, MinutesBetween(start, start.Add(119*time.Second)))
}

func TestSplitHoursMinutes_RoundTrip(t *testing.T) {
	for _, total := range []int{0, 1, 59, 60, 61, 510, 1439} {
		h, m := SplitHoursMinutes(total)
		assert.Equal(t, total, h*60+m, "total %d", total)
		assert.Less(t, m, 60)
	}
}

func TestFormatHoursMinutes(t *testing.T) {
	assert.Equal(t, "8h 30m", FormatHoursMinutes(510))
	assert.Equal(t, "0h 0m", FormatHoursMinutes(0))
	assert.Equal(t, "0h 59m", FormatHoursMinutes(59))
}

func TestSalaryForMinutes(t *testing.T) {
	assert.Equal(t, 170.0, SalaryForMinutes(510, 20))
	assert.Equal(t, 0.0, SalaryForMinutes(0, 20))
	// 25 minutes at 10/h = 4.1666... rounds to 4.17
	assert.Equal(t, 4.17, SalaryForMinutes(25, 10))
}

func TestSalaryForMinutes_Monotonic(t *testing.T) {
	prev := -1.0
	for total := 0; total <= 600; total++ {
		s := SalaryForMinutes(total, 17.5)
		require.GreaterOrEqual(t, s, prev, "total %d", total)
		prev = s
	}
}

func TestIsSuspectEndTime(t *testing.T) {
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsSuspectEndTime(day.Add(23*time.Hour+59*time.Minute)))
	assert.True(t, IsSuspectEndTime(day.Add(23*time.Hour+59*time.Minute+30*time.Second)))
	assert.False(t, IsSuspectEndTime(day.Add(23*time.Hour+58*time.Minute)))
	assert.False(t, IsSuspectEndTime(day))
}

func TestSameCalendarDay(t *testing.T) {
	morning := time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC)
	night := time.Date(2024, 3, 11, 23, 30, 0, 0, time.UTC)

	assert.True(t, SameCalendarDay(morning, night))
	assert.False(t, SameCalendarDay(morning, AddDays(night, 1)))
}

func TestDayWindowHelpers(t *testing.T) {
	now := time.Date(2024, 3, 11, 14, 22, 31, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), DayStart(now))
	assert.Equal(t, time.Date(2024, 3, 12, 14, 22, 31, 0, time.UTC), AddDays(now, 1))
	assert.Equal(t, time.Date(2024, 4, 11, 14, 22, 31, 0, time.UTC), AddMonths(now, 1))
}

func TestPayPeriod(t *testing.T) {
	// before the 20th the window starts in the previous month
	from, to := PayPeriod(time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), to)

	// on and after the 20th it starts in the current month
	from, to = PayPeriod(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC), to)

	from, to = PayPeriod(time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), to)
}
