// Package period derives the calendar window a KPI record covers from its
// period type and a reference instant. The computation is pure: for a fixed
// (period type, reference, location) triple it always yields the same window,
// which is what makes the one-record-per-window invariant checkable.
package period

import (
	"fmt"
	"time"

	"github.com/sharda-hr/performance-service/internal/models"
)

// Window returns the inclusive [start, end] calendar dates containing ref,
// evaluated on ref's calendar date in loc. Both bounds are midnight in loc.
//
// Weeks start on Sunday. Quarters are the fixed Jan-Mar, Apr-Jun, Jul-Sep,
// Oct-Dec blocks. Half years split at July 1.
func Window(periodType models.PeriodType, ref time.Time, loc *time.Location) (time.Time, time.Time, error) {
	local := ref.In(loc)
	year, month, day := local.Date()
	date := time.Date(year, month, day, 0, 0, 0, 0, loc)

	switch periodType {
	case models.PeriodDaily:
		return date, date, nil

	case models.PeriodWeekly:
		start := date.AddDate(0, 0, -int(date.Weekday()))
		return start, start.AddDate(0, 0, 6), nil

	case models.PeriodMonthly:
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, -1), nil

	case models.PeriodQuarterly:
		firstMonth := month - (month-1)%3
		start := time.Date(year, firstMonth, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 3, -1), nil

	case models.PeriodHalfYearly:
		if month < time.July {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
				time.Date(year, time.June, 30, 0, 0, 0, 0, loc), nil
		}
		return time.Date(year, time.July, 1, 0, 0, 0, 0, loc),
			time.Date(year, time.December, 31, 0, 0, 0, 0, loc), nil

	case models.PeriodYearly:
		return time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
			time.Date(year, time.December, 31, 0, 0, 0, 0, loc), nil

	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period type: %s", periodType)
	}
}

// Overlaps reports whether the inclusive windows [aStart, aEnd] and
// [bStart, bEnd] share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
