package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/natiapp/internal/models"
)

// AddMembership inserts a membership. The UNIQUE (user_id, natillera_id)
// constraint makes the duplicate check atomic.
func (s *SQLiteStore) AddMembership(ctx context.Context, m *models.Membership) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	if m.Role == "" {
		m.Role = models.RoleMember
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships (id, user_id, natillera_id, role, joined_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.NatilleraID, string(m.Role), toMillis(m.JoinedAt),
	)
	if isUniqueViolation(err, "memberships.") {
		return models.ErrAlreadyMember
	}
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}

	return nil
}

// GetMembership returns the user's membership in a natillera.
func (s *SQLiteStore) GetMembership(ctx context.Context, natilleraID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	var role string
	var joined int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, natillera_id, role, joined_at
		 FROM memberships WHERE natillera_id = ? AND user_id = ?`,
		natilleraID, userID,
	).Scan(&m.ID, &m.UserID, &m.NatilleraID, &role, &joined)
	if err == sql.ErrNoRows {
		return nil, notFound("membership", natilleraID+"/"+userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	m.Role = models.Role(role)
	m.JoinedAt = fromMillis(joined)
	return m, nil
}

// ListMembers returns all memberships of a natillera, oldest first.
func (s *SQLiteStore) ListMembers(ctx context.Context, natilleraID string) ([]*models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, natillera_id, role, joined_at
		 FROM memberships WHERE natillera_id = ? ORDER BY joined_at, id`,
		natilleraID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		var role string
		var joined int64
		if err := rows.Scan(&m.ID, &m.UserID, &m.NatilleraID, &role, &joined); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		m.Role = models.Role(role)
		m.JoinedAt = fromMillis(joined)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
