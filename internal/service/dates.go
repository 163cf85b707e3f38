package service

import "time"

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rangeDays(from, to time.Time) (time.Time, time.Time, error) {
	if from.IsZero() || to.IsZero() {
		return time.Time{}, time.Time{}, invalid("from and to are required")
	}
	start, last := dateOnly(from), dateOnly(to)
	if start.After(last) {
		return time.Time{}, time.Time{}, invalid("from must be before or equal to to")
	}
	return start, last.AddDate(0, 0, 1), nil
}
