package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/natiapp/internal/models"
)

// DateLayout is the layout of the date-range bounds accepted by ParseFilter.
const DateLayout = time.DateOnly

// Filter narrows a report. Zero-valued fields impose no constraint; set
// fields combine with AND.
type Filter struct {
	MemberID   string
	Status     models.Status
	DateFrom   time.Time
	DateTo     time.Time
	QuotaMonth string
}

// Active reports whether any field is set.
func (f Filter) Active() bool {
	return f.MemberID != "" || f.Status != "" || !f.DateFrom.IsZero() || !f.DateTo.IsZero() || f.QuotaMonth != ""
}

// Validate checks the filter fields that carry a format.
func (f Filter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return &models.ValidationError{Field: "status", Message: "estado inválido"}
	}
	if f.QuotaMonth != "" && !models.ValidQuotaMonth(f.QuotaMonth) {
		return &models.ValidationError{Field: "quota_month", Message: "el mes debe tener formato YYYY-MM"}
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateTo.Before(f.DateFrom) {
		return &models.ValidationError{Field: "date_to", Message: "la fecha final debe ser posterior a la inicial"}
	}
	return nil
}

// ParseFilter builds a Filter from request fields. Dates use DateLayout and
// are interpreted at midnight in loc.
func ParseFilter(memberID, status, dateFrom, dateTo, quotaMonth string, loc *time.Location) (Filter, error) {
	f := Filter{
		MemberID:   strings.TrimSpace(memberID),
		Status:     models.Status(strings.TrimSpace(status)),
		QuotaMonth: strings.TrimSpace(quotaMonth),
	}

	var err error
	if f.DateFrom, err = parseDay(dateFrom, "date_from", loc); err != nil {
		return Filter{}, err
	}
	if f.DateTo, err = parseDay(dateTo, "date_to", loc); err != nil {
		return Filter{}, err
	}

	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseDay(s, field string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: field, Message: fmt.Sprintf("fecha inválida %q", s)}
	}
	return t, nil
}

// endOfDay returns the last millisecond of t's calendar day in loc.
func endOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Match reports whether c satisfies every set predicate of f.
// Date bounds compare against the payment date; DateTo includes its whole day.
func (f Filter) Match(c *models.Contribution, loc *time.Location) bool {
	if f.MemberID != "" && c.UserID != f.MemberID {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.QuotaMonth != "" && c.QuotaMonth != f.QuotaMonth {
		return false
	}
	paid := c.PaymentDate()
	if !f.DateFrom.IsZero() && paid.Before(startOfDay(f.DateFrom, loc)) {
		return false
	}
	if !f.DateTo.IsZero() && paid.After(endOfDay(f.DateTo, loc)) {
		return false
	}
	return true
}

// Apply returns the contributions matching f, preserving order.
func Apply(f Filter, contributions []*models.Contribution, loc *time.Location) []*models.Contribution {
	if !f.Active() {
		return contributions
	}
	out := make([]*models.Contribution, 0, len(contributions))
	for _, c := range contributions {
		if f.Match(c, loc) {
			out = append(out, c)
		}
	}
	return out
}
