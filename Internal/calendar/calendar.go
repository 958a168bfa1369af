package calendar

import (
	"time"

	"github.com/fazecat/momentumwatch/Internal/utils"
)

// ============================================================================
// NYSE TRADING CALENDAR
// ============================================================================
// Session times are expressed in Chicago wall-clock: the regular session
// runs 8:30-15:00 CT, early closes end at 12:00 CT. Holiday dates are
// computed per year with weekend observance shifts (Saturday observed
// Friday, Sunday observed Monday).

// IsMarketOpen reports whether NYSE holds a regular session on d's date.
func IsMarketOpen(d time.Time) bool {
	d = d.In(utils.Chicago())
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	_, holiday := holidays(d.Year())[dateKey(d)]
	return !holiday
}

// SessionOpen returns the session open (8:30 CT) for d's date.
func SessionOpen(d time.Time) time.Time {
	d = d.In(utils.Chicago())
	return time.Date(d.Year(), d.Month(), d.Day(), 8, 30, 0, 0, utils.Chicago())
}

// SessionClose returns the session close for d's date: 15:00 CT, or
// 12:00 CT on early-close days.
func SessionClose(d time.Time) time.Time {
	d = d.In(utils.Chicago())
	hour := 15
	if IsEarlyClose(d) {
		hour = 12
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, utils.Chicago())
}

// IsEarlyClose reports whether d is a shortened session: July 3 when it
// trades, the Friday after Thanksgiving, and Christmas Eve when it trades.
func IsEarlyClose(d time.Time) bool {
	d = d.In(utils.Chicago())
	if !IsMarketOpen(d) {
		return false
	}

	if d.Month() == time.July && d.Day() == 3 {
		return true
	}
	if d.Month() == time.December && d.Day() == 24 {
		return true
	}
	// day after Thanksgiving
	thanksgiving := nthWeekday(d.Year(), time.November, time.Thursday, 4)
	return d.Month() == time.November && d.Day() == thanksgiving.Day()+1
}

// PreviousTradingDay walks back from d to the most recent prior session.
func PreviousTradingDay(d time.Time) time.Time {
	d = d.In(utils.Chicago())
	prev := d.AddDate(0, 0, -1)
	for !IsMarketOpen(prev) {
		prev = prev.AddDate(0, 0, -1)
	}
	return time.Date(prev.Year(), prev.Month(), prev.Day(), 0, 0, 0, 0, utils.Chicago())
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// holidays returns the NYSE full-closure dates for a year, keyed by
// YYYY-MM-DD, with observance shifts applied.
func holidays(year int) map[string]struct{} {
	days := []time.Time{
		observed(time.Date(year, time.January, 1, 0, 0, 0, 0, utils.Chicago())),
		nthWeekday(year, time.January, time.Monday, 3),  // MLK Day
		nthWeekday(year, time.February, time.Monday, 3), // Presidents Day
		goodFriday(year),
		lastWeekday(year, time.May, time.Monday), // Memorial Day
		observed(time.Date(year, time.June, 19, 0, 0, 0, 0, utils.Chicago())),
		observed(time.Date(year, time.July, 4, 0, 0, 0, 0, utils.Chicago())),
		nthWeekday(year, time.September, time.Monday, 1),   // Labor Day
		nthWeekday(year, time.November, time.Thursday, 4),  // Thanksgiving
		observed(time.Date(year, time.December, 25, 0, 0, 0, 0, utils.Chicago())),
	}

	set := make(map[string]struct{}, len(days))
	for _, d := range days {
		set[dateKey(d)] = struct{}{}
	}
	return set
}

// observed shifts a Saturday holiday to Friday and a Sunday holiday to
// Monday, matching NYSE observance rules.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, utils.Chicago())
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 7*(n-1))
}

func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, utils.Chicago()).AddDate(0, 0, -1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// goodFriday is two days before Easter Sunday (anonymous Gregorian
// computus).
func goodFriday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	dd := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - dd - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, utils.Chicago())
	return easter.AddDate(0, 0, -2)
}
