package stats

import "time"

// RelativeDate formats t against now as today, tomorrow, yesterday, a
// weekday name within the coming week, or "Jan 02".
func RelativeDate(t, now time.Time) string {
	loc := now.Location()
	days := int(dayStart(t, loc).Sub(dayStart(now, loc)).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days > 1 && days < 7:
		return t.In(loc).Weekday().String()
	default:
		return t.In(loc).Format("Jan 02")
	}
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
