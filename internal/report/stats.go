package report

import (
	"github.com/mmynk/natiapp/internal/models"
)

// UnknownUser is shown for contributions whose author has no membership or profile.
const UnknownUser = "Usuario desconocido"

// Summary aggregates a set of contributions.
type Summary struct {
	Count     int
	Confirmed int
	Pending   int
	Rejected  int

	ConfirmedAmount int64
	PendingAmount   int64
	RejectedAmount  int64
}

func (s *Summary) add(c *models.Contribution) {
	s.Count++
	switch c.Status {
	case models.StatusConfirmed:
		s.Confirmed++
		s.ConfirmedAmount += c.Amount
	case models.StatusPending:
		s.Pending++
		s.PendingAmount += c.Amount
	case models.StatusRejected:
		s.Rejected++
		s.RejectedAmount += c.Amount
	}
}

// Plus returns the field-wise sum of s and o.
func (s Summary) Plus(o Summary) Summary {
	return Summary{
		Count:           s.Count + o.Count,
		Confirmed:       s.Confirmed + o.Confirmed,
		Pending:         s.Pending + o.Pending,
		Rejected:        s.Rejected + o.Rejected,
		ConfirmedAmount: s.ConfirmedAmount + o.ConfirmedAmount,
		PendingAmount:   s.PendingAmount + o.PendingAmount,
		RejectedAmount:  s.RejectedAmount + o.RejectedAmount,
	}
}

// Summarize counts contributions by status and sums their amounts.
func Summarize(contributions []*models.Contribution) Summary {
	var s Summary
	for _, c := range contributions {
		s.add(c)
	}
	return s
}

// ConfirmedTotal sums the amounts of confirmed contributions. Never negative
// since stored amounts are positive.
func ConfirmedTotal(contributions []*models.Contribution) int64 {
	var total int64
	for _, c := range contributions {
		if c.Status == models.StatusConfirmed {
			total += c.Amount
		}
	}
	return total
}

// MemberTotal is ConfirmedTotal restricted to one user.
func MemberTotal(contributions []*models.Contribution, userID string) int64 {
	var total int64
	for _, c := range contributions {
		if c.UserID == userID && c.Status == models.StatusConfirmed {
			total += c.Amount
		}
	}
	return total
}

// MemberStat is one row of the per-member statistics table.
type MemberStat struct {
	UserID      string
	DisplayName string
	Email       string
	Summary
}

// MemberStats returns one row per member, in member order, zero-filled for
// members without contributions. Contributions by users who are not members
// are grouped into a trailing UnknownUser row, so the rows always sum to
// Summarize(contributions).
func MemberStats(members []*models.Member, contributions []*models.Contribution) []MemberStat {
	rows := make([]MemberStat, len(members))
	index := make(map[string]int, len(members))
	for i, m := range members {
		rows[i] = MemberStat{UserID: m.UserID, DisplayName: m.DisplayName, Email: m.Email}
		index[m.UserID] = i
	}

	var orphans Summary
	for _, c := range contributions {
		if i, ok := index[c.UserID]; ok {
			rows[i].add(c)
			continue
		}
		orphans.add(c)
	}

	if orphans.Count > 0 {
		rows = append(rows, MemberStat{DisplayName: UnknownUser, Summary: orphans})
	}
	return rows
}

// SumStats adds up per-member rows.
func SumStats(rows []MemberStat) Summary {
	var total Summary
	for _, r := range rows {
		total = total.Plus(r.Summary)
	}
	return total
}
