package models

import "time"

// Role is a member's role inside a natillera.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Membership links a user to a natillera.
// At most one membership exists per (UserID, NatilleraID).
type Membership struct {
	ID          string
	UserID      string
	NatilleraID string
	Role        Role
	JoinedAt    time.Time
}

// IsAdmin reports whether the membership carries the admin role.
func (m *Membership) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// Member is a membership joined with the member's profile.
type Member struct {
	Membership
	DisplayName string
	Email       string
}
