// Package calculator computes quota schedules and member balances for a
// natillera: how many quotas have fallen due and how far each member is
// ahead of or behind them.
package calculator

import (
	"time"

	"github.com/mmynk/natiapp/internal/models"
)

// halfMonthDay is the day offset of the second quota of a month for
// biweekly natilleras.
const halfMonthDay = 15

// DueDate returns the date the k-th quota (0-based) falls due, in loc.
// Monthly quotas fall on the start day of each month; biweekly ones also
// fall 15 days later.
func DueDate(n *models.Natillera, k int, loc *time.Location) time.Time {
	start := n.StartDate.In(loc)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	if n.Periodicity == models.PeriodicityBiweekly {
		due := start.AddDate(0, k/2, 0)
		if k%2 == 1 {
			due = due.AddDate(0, 0, halfMonthDay)
		}
		return due
	}
	return start.AddDate(0, k, 0)
}

// DuePeriods counts the quotas due on or before asOf, never past the end date.
func DuePeriods(n *models.Natillera, asOf time.Time, loc *time.Location) int {
	limit := asOf
	if !n.EndDate.IsZero() && n.EndDate.Before(limit) {
		limit = n.EndDate
	}

	count := 0
	for DueDate(n, count, loc).Compare(limit) <= 0 {
		count++
	}
	return count
}

// TotalPeriods counts every quota of the natillera's duration.
func TotalPeriods(n *models.Natillera, loc *time.Location) int {
	if n.EndDate.IsZero() {
		return 0
	}
	return DuePeriods(n, n.EndDate, loc)
}

// Expected is the amount a member should have paid by asOf.
func Expected(n *models.Natillera, asOf time.Time, loc *time.Location) int64 {
	return int64(DuePeriods(n, asOf, loc)) * n.QuotaAmount
}
