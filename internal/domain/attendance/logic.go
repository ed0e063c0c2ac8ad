package attendance

import (
	"math"
	"time"
)

// WorkHours returns the elapsed hours between check-in and check-out,
// rounded to two decimals. Zero when either timestamp is missing or the
// interval is negative.
func WorkHours(checkIn, checkOut *time.Time) float64 {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	hours := checkOut.Sub(*checkIn).Hours()
	if hours < 0 {
		return 0
	}
	return math.Round(hours*100) / 100
}

// CheckInStatus classifies a check-in timestamp: late once the local
// wall-clock hour reaches the threshold, present before it.
func CheckInStatus(at time.Time, lateThresholdHour int) string {
	if at.Hour() >= lateThresholdHour {
		return StatusLate
	}
	return StatusPresent
}

// DayOf truncates a timestamp to its local calendar day.
func DayOf(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
}

// MonthWindow returns the first instant of the month containing at and the
// first instant of the next month.
func MonthWindow(at time.Time) (time.Time, time.Time) {
	start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	return start, start.AddDate(0, 1, 0)
}
