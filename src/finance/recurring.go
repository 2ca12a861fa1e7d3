package finance

import (
	"time"

	"wealth-server/src/models"
)

// NextRecurringDate advances date by one interval.
func NextRecurringDate(date time.Time, interval models.RecurringInterval) time.Time {
	switch interval {
	case models.IntervalDaily:
		return date.AddDate(0, 0, 1)
	case models.IntervalWeekly:
		return date.AddDate(0, 0, 7)
	case models.IntervalMonthly:
		return date.AddDate(0, 1, 0)
	case models.IntervalYearly:
		return date.AddDate(1, 0, 0)
	}
	return date
}

// IsTransactionDue reports whether a recurring template should produce a copy at now.
// A template that was never processed is always due.
func IsTransactionDue(t *models.Transaction, now time.Time) bool {
	if t.LastProcessed == nil {
		return true
	}
	if t.NextRecurringDate == nil {
		return false
	}
	return !t.NextRecurringDate.After(now)
}
