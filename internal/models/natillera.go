package models

import (
	"strings"
	"time"
)

// Periodicity is how often members are expected to contribute.
type Periodicity string

const (
	PeriodicityMonthly  Periodicity = "monthly"
	PeriodicityBiweekly Periodicity = "biweekly"
)

// Valid reports whether p is a known periodicity.
func (p Periodicity) Valid() bool {
	return p == PeriodicityMonthly || p == PeriodicityBiweekly
}

// Label returns the Spanish label shown in the UI and in exports.
func (p Periodicity) Label() string {
	switch p {
	case PeriodicityMonthly:
		return "Mensual"
	case PeriodicityBiweekly:
		return "Quincenal"
	default:
		return string(p)
	}
}

// Natillera represents a savings group.
// It is immutable once created; there is no update path.
type Natillera struct {
	// ID is the unique identifier for the natillera (UUID format).
	ID string

	// Name is the display name (e.g., "Natillera Familia 2025").
	Name string

	// AdminID is the user that created the natillera and reviews payments.
	AdminID string

	// QuotaAmount is the expected amount per period, in pesos.
	QuotaAmount int64

	Periodicity Periodicity

	StartDate time.Time
	EndDate   time.Time

	// InvitationCode is the 6-character code members use to join. Unique.
	InvitationCode string

	CreatedAt time.Time
}

// Validate checks the user-supplied fields of a new natillera.
func (n *Natillera) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return invalid("name", "el nombre es requerido")
	}
	if n.QuotaAmount <= 0 {
		return invalid("quota_amount", "el monto debe ser mayor a 0")
	}
	if !n.Periodicity.Valid() {
		return invalid("periodicity", "periodicidad inválida")
	}
	if n.StartDate.IsZero() {
		return invalid("start_date", "la fecha de inicio es requerida")
	}
	if n.EndDate.IsZero() {
		return invalid("end_date", "la fecha de fin es requerida")
	}
	if !n.EndDate.After(n.StartDate) {
		return invalid("end_date", "la fecha de fin debe ser posterior a la fecha de inicio")
	}
	return nil
}

// NatilleraSummary is a natillera as seen from one of its members' dashboard.
type NatilleraSummary struct {
	Natillera
	MembershipID string
	Role         Role
	MemberCount  int
}
