package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fazecat/momentumwatch/Internal/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, utils.Chicago())
}

func TestIsMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		d    time.Time
		want bool
	}{
		{"regular tuesday", date(2025, time.June, 3), true},
		{"saturday", date(2025, time.June, 7), false},
		{"sunday", date(2025, time.June, 8), false},
		{"independence day", date(2025, time.July, 4), false},
		{"christmas", date(2025, time.December, 25), false},
		{"thanksgiving 2025", date(2025, time.November, 27), false},
		{"mlk day 2025", date(2025, time.January, 20), false},
		{"good friday 2025", date(2025, time.April, 18), false},
		{"memorial day 2025", date(2025, time.May, 26), false},
		{"juneteenth 2025", date(2025, time.June, 19), false},
		{"labor day 2025", date(2025, time.September, 1), false},
		{"day after christmas", date(2025, time.December, 26), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMarketOpen(tt.d))
		})
	}
}

func TestObservedHolidays(t *testing.T) {
	// July 4 2026 is a Saturday, observed Friday July 3
	assert.False(t, IsMarketOpen(date(2026, time.July, 3)))
}

func TestSessionTimes(t *testing.T) {
	d := date(2025, time.June, 3)
	open := SessionOpen(d)
	assert.Equal(t, 8, open.Hour())
	assert.Equal(t, 30, open.Minute())

	close := SessionClose(d)
	assert.Equal(t, 15, close.Hour())

	// Friday after Thanksgiving 2025 closes early
	early := date(2025, time.November, 28)
	assert.True(t, IsEarlyClose(early))
	assert.Equal(t, 12, SessionClose(early).Hour())
}

func TestPreviousTradingDay(t *testing.T) {
	// Monday walks back over the weekend to Friday
	mon := date(2025, time.June, 9)
	prev := PreviousTradingDay(mon)
	assert.Equal(t, time.Friday, prev.Weekday())
	assert.Equal(t, 6, prev.Day())

	// day after a Friday holiday walks back to Thursday
	mon2 := date(2025, time.April, 21) // Good Friday was Apr 18
	prev2 := PreviousTradingDay(mon2)
	assert.Equal(t, 17, prev2.Day())
}
