package reconcile

import (
	"fmt"
	"time"

	"github.com/nurpe/fuelops/internal/model"
)

// NewWindow resolves a period around date. Custom periods use from and to
// (both inclusive) and ignore date.
func NewWindow(period model.Period, date, from, to time.Time) (model.Window, error) {
	day := dateOnly(date)
	switch period {
	case model.PeriodDay:
		return model.Window{Period: period, Start: day, End: day.AddDate(0, 0, 1)}, nil
	case model.PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return model.Window{Period: period, Start: start, End: start.AddDate(0, 0, 7)}, nil
	case model.PeriodMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return model.Window{Period: period, Start: start, End: start.AddDate(0, 1, 0)}, nil
	case model.PeriodYear:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return model.Window{Period: period, Start: start, End: start.AddDate(1, 0, 0)}, nil
	case model.PeriodCustom:
		if from.IsZero() || to.IsZero() {
			return model.Window{}, fmt.Errorf("custom period requires from and to")
		}
		start, last := dateOnly(from), dateOnly(to)
		if start.After(last) {
			return model.Window{}, fmt.Errorf("from must be before or equal to to")
		}
		return model.Window{Period: period, Start: start, End: last.AddDate(0, 0, 1)}, nil
	default:
		return model.Window{}, fmt.Errorf("unknown period %q", period)
	}
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
