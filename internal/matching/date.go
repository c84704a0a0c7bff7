package matching

import "time"

// DateScore returns the date-proximity bonus/penalty for the absolute
// day delta between a and b, computed on UTC calendar days (§4.C).
func DateScore(a, b time.Time) int {
	delta := dayDelta(a, b)
	switch {
	case delta <= 3:
		return 15
	case delta <= 7:
		return 10
	case delta <= 15:
		return 5
	case delta > 30:
		return -10
	default:
		return 0
	}
}

func dayDelta(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(au.Sub(bu).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
