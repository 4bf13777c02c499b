package service

import (
	"time"

	"github.com/mmynk/natiapp/internal/calculator"
	"github.com/mmynk/natiapp/internal/format"
	"github.com/mmynk/natiapp/internal/models"
	"github.com/mmynk/natiapp/internal/report"
	"github.com/mmynk/natiapp/internal/rpc"
)

func toUser(u *models.User) *rpc.User {
	return &rpc.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func toNatillera(n *models.Natillera, loc *time.Location) *rpc.Natillera {
	return &rpc.Natillera{
		ID:               n.ID,
		Name:             n.Name,
		AdminID:          n.AdminID,
		QuotaAmount:      n.QuotaAmount,
		QuotaDisplay:     format.Currency(n.QuotaAmount),
		Periodicity:      string(n.Periodicity),
		PeriodicityLabel: n.Periodicity.Label(),
		StartDate:        n.StartDate.In(loc).Format(time.DateOnly),
		EndDate:          n.EndDate.In(loc).Format(time.DateOnly),
		InvitationCode:   n.InvitationCode,
		CreatedAt:        n.CreatedAt,
	}
}

func toMembership(m *models.Membership) *rpc.Membership {
	return &rpc.Membership{
		ID:          m.ID,
		NatilleraID: m.NatilleraID,
		UserID:      m.UserID,
		Role:        string(m.Role),
		JoinedAt:    m.JoinedAt,
	}
}

func toMember(m *models.Member, now time.Time) *rpc.Member {
	return &rpc.Member{
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Role:        string(m.Role),
		JoinedAt:    m.JoinedAt,
		Joined:      format.DateAt(m.JoinedAt, format.Relative, now),
	}
}

func toContribution(e report.Entry, now time.Time) *rpc.Contribution {
	c := e.Contribution
	return &rpc.Contribution{
		ID:              c.ID,
		NatilleraID:     c.NatilleraID,
		UserID:          c.UserID,
		DisplayName:     e.DisplayName,
		Email:           e.Email,
		Amount:          c.Amount,
		AmountDisplay:   format.Currency(c.Amount),
		QuotaMonth:      c.QuotaMonth,
		QuotaMonthName:  format.MonthName(c.QuotaMonth),
		PaidAt:          c.PaymentDate(),
		ReportedAt:      c.ReportedAt,
		Reported:        format.DateAt(c.ReportedAt, format.Relative, now),
		Status:          string(c.Status),
		StatusLabel:     c.Status.Label(),
		ConfirmedAt:     c.ConfirmedAt,
		RejectedAt:      c.RejectedAt,
		RejectionReason: c.RejectionReason,
		ProofURL:        c.ProofURL,
	}
}

func toContributions(entries []report.Entry, now time.Time) []*rpc.Contribution {
	out := make([]*rpc.Contribution, len(entries))
	for i, e := range entries {
		out[i] = toContribution(e, now)
	}
	return out
}

func toSummary(s report.Summary) *rpc.Summary {
	return &rpc.Summary{
		Count:                  s.Count,
		Confirmed:              s.Confirmed,
		Pending:                s.Pending,
		Rejected:               s.Rejected,
		ConfirmedAmount:        s.ConfirmedAmount,
		PendingAmount:          s.PendingAmount,
		RejectedAmount:         s.RejectedAmount,
		ConfirmedAmountDisplay: format.Currency(s.ConfirmedAmount),
		PendingAmountDisplay:   format.Currency(s.PendingAmount),
	}
}

func toTotals(group int64, mine calculator.MemberBalance) *rpc.Totals {
	return &rpc.Totals{
		GroupTotal:        group,
		GroupTotalDisplay: format.Currency(group),
		MyTotal:           mine.Paid,
		MyTotalDisplay:    format.Currency(mine.Paid),
		DuePeriods:        mine.DuePeriods,
		MyExpected:        mine.Expected,
		MyExpectedDisplay: format.Currency(mine.Expected),
		MyBalance:         mine.Balance,
		MyBalanceDisplay:  format.Currency(mine.Balance),
		UpToDate:          mine.UpToDate(),
	}
}

func toBalances(balances []calculator.MemberBalance, r *report.Report) []*rpc.MemberBalance {
	out := make([]*rpc.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &rpc.MemberBalance{
			UserID:          b.UserID,
			DisplayName:     r.MemberName(b.UserID),
			DuePeriods:      b.DuePeriods,
			Expected:        b.Expected,
			ExpectedDisplay: format.Currency(b.Expected),
			Paid:            b.Paid,
			PaidDisplay:     format.Currency(b.Paid),
			Balance:         b.Balance,
			BalanceDisplay:  format.Currency(b.Balance),
			UpToDate:        b.UpToDate(),
		}
	}
	return out
}

// parseDay reads a YYYY-MM-DD field as midnight in loc. Empty is the zero time.
func parseDay(field, value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: field, Message: "fecha inválida, usa AAAA-MM-DD"}
	}
	return t, nil
}
