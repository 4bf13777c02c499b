package calculator

import (
	"sort"
	"time"

	"github.com/mmynk/natiapp/internal/models"
)

// MemberBalance compares a member's confirmed savings with the quotas due.
type MemberBalance struct {
	UserID     string
	DuePeriods int
	Expected   int64 // quotas due so far times the quota amount
	Paid       int64 // confirmed contributions
	Balance    int64 // Paid - Expected; negative means behind
}

// UpToDate reports whether the member has paid every quota due.
func (b MemberBalance) UpToDate() bool {
	return b.Balance >= 0
}

// Balance computes one member's balance given their confirmed total.
func Balance(n *models.Natillera, userID string, paid int64, asOf time.Time, loc *time.Location) MemberBalance {
	due := DuePeriods(n, asOf, loc)
	expected := int64(due) * n.QuotaAmount
	return MemberBalance{
		UserID:     userID,
		DuePeriods: due,
		Expected:   expected,
		Paid:       paid,
		Balance:    paid - expected,
	}
}

// Balances computes the balance of every member from the natillera's
// contributions. Only confirmed contributions count as paid. The result is
// ordered from the member furthest behind to the one furthest ahead, ties
// by user ID.
func Balances(n *models.Natillera, userIDs []string, contributions []*models.Contribution, asOf time.Time, loc *time.Location) []MemberBalance {
	paid := make(map[string]int64, len(userIDs))
	for _, c := range contributions {
		if c.Status == models.StatusConfirmed {
			paid[c.UserID] += c.Amount
		}
	}

	balances := make([]MemberBalance, len(userIDs))
	for i, id := range userIDs {
		balances[i] = Balance(n, id, paid[id], asOf, loc)
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Balance != balances[j].Balance {
			return balances[i].Balance < balances[j].Balance
		}
		return balances[i].UserID < balances[j].UserID
	})
	return balances
}
