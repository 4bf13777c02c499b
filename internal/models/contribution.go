package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the review state of a contribution.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

// Label returns the Spanish label used in reports ("confirmado", ...).
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "pendiente"
	case StatusConfirmed:
		return "confirmado"
	case StatusRejected:
		return "rechazado"
	default:
		return string(s)
	}
}

// MinRejectionReason is the minimum number of characters of a trimmed rejection reason.
const MinRejectionReason = 10

// QuotaMonthLayout is the time layout of a quota month key.
const QuotaMonthLayout = "2006-01"

// Contribution is a member's report of one periodic payment.
type Contribution struct {
	ID          string
	NatilleraID string
	UserID      string

	// Amount is the reported amount, in pesos.
	Amount int64

	// QuotaMonth is the YYYY-MM cycle this payment covers.
	QuotaMonth string

	// PaidAt is when the member says the payment was made.
	// Zero when not stated; see PaymentDate.
	PaidAt time.Time

	ReportedAt time.Time
	Status     Status

	// ConfirmedAt is set iff Status is confirmed.
	ConfirmedAt *time.Time

	// RejectedAt and RejectionReason are set iff Status is rejected.
	RejectedAt      *time.Time
	RejectionReason string

	// ProofURL optionally points at an uploaded payment receipt.
	ProofURL string
}

// PaymentDate is the date used by date-range filters: PaidAt, or ReportedAt
// when the member did not state a payment date.
func (c *Contribution) PaymentDate() time.Time {
	if c.PaidAt.IsZero() {
		return c.ReportedAt
	}
	return c.PaidAt
}

// Validate checks the member-supplied fields of a new contribution.
func (c *Contribution) Validate() error {
	if c.Amount <= 0 {
		return invalid("amount", "el monto debe ser mayor a 0")
	}
	if !ValidQuotaMonth(c.QuotaMonth) {
		return invalid("quota_month", "el mes de la cuota debe tener formato YYYY-MM")
	}
	return nil
}

// ValidQuotaMonth reports whether s is a well-formed YYYY-MM key.
func ValidQuotaMonth(s string) bool {
	if len(s) != len(QuotaMonthLayout) {
		return false
	}
	_, err := time.Parse(QuotaMonthLayout, s)
	return err == nil
}

// ValidateRejectionReason trims the reason and checks its minimum length.
// It returns the trimmed reason.
func ValidateRejectionReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", invalid("reason", "debes indicar el motivo del rechazo")
	}
	if utf8.RuneCountInString(trimmed) < MinRejectionReason {
		return "", invalid("reason", "el motivo debe tener al menos 10 caracteres")
	}
	return trimmed, nil
}

// StatusUpdate is a partial update applied by an admin review.
type StatusUpdate struct {
	Status          Status
	ConfirmedAt     *time.Time
	RejectedAt      *time.Time
	RejectionReason string
}

// Confirm builds the update that confirms a contribution at the given time.
// Rejection fields are cleared.
func Confirm(at time.Time) StatusUpdate {
	return StatusUpdate{Status: StatusConfirmed, ConfirmedAt: &at}
}

// Reject builds the update that rejects a contribution with a validated reason.
// The confirmation timestamp is cleared.
func Reject(at time.Time, reason string) (StatusUpdate, error) {
	trimmed, err := ValidateRejectionReason(reason)
	if err != nil {
		return StatusUpdate{}, err
	}
	return StatusUpdate{Status: StatusRejected, RejectedAt: &at, RejectionReason: trimmed}, nil
}

// Apply writes the update onto c.
func (u StatusUpdate) Apply(c *Contribution) {
	c.Status = u.Status
	c.ConfirmedAt = u.ConfirmedAt
	c.RejectedAt = u.RejectedAt
	c.RejectionReason = u.RejectionReason
}
