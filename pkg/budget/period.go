package budget

import (
	"time"

	"github.com/relayhub/gateway/pkg/store"
)

// periodStart returns the start of the calendar period containing now, in
// now's location. Daily starts at local midnight, weekly at the most
// recent Monday midnight, monthly at the first of the month.
func periodStart(period store.BudgetPeriod, now time.Time) time.Time {
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	switch period {
	case store.PeriodWeekly:
		offset := int(midnight.Weekday()) - int(time.Monday)
		if offset < 0 {
			offset += 7
		}
		return midnight.AddDate(0, 0, -offset)
	case store.PeriodMonthly:
		return time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	default:
		return midnight
	}
}
