package utils

import "time"

// chicago is the scanner's home timezone. All schedule decisions are made
// in Chicago wall-clock time, which keeps the execution window DST-safe.
var chicago = loadChicago()

func loadChicago() *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		// CST without DST is the least-wrong fallback
		return time.FixedZone("CT", -6*3600)
	}
	return loc
}

func Chicago() *time.Location { return chicago }

func NowChicago() time.Time { return time.Now().In(chicago) }

// InExecutionWindow reports whether t falls within
// [target - windowMinutes, target + windowMinutes] Chicago wall-clock.
// Comparison is done in minutes from midnight so the check stays correct
// across DST transitions.
func InExecutionWindow(t time.Time, targetHour, targetMinute, windowMinutes int) bool {
	ct := t.In(chicago)
	cur := ct.Hour()*60 + ct.Minute()
	target := targetHour*60 + targetMinute
	return cur >= target-windowMinutes && cur <= target+windowMinutes
}

// FormatChicagoTimestamp renders t as "YYYY-MM-DD HH:MM:SS CT".
func FormatChicagoTimestamp(t time.Time) string {
	return t.In(chicago).Format("2006-01-02 15:04:05") + " CT"
}

// DateStr returns t's calendar date in Chicago as YYYY-MM-DD.
func DateStr(t time.Time) string {
	return t.In(chicago).Format("2006-01-02")
}
