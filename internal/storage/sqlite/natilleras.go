package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/natiapp/internal/format"
	"github.com/mmynk/natiapp/internal/models"
)

// codeAttempts bounds how many generated invitation codes are tried before
// giving up on a collision streak.
const codeAttempts = 5

const natilleraColumns = `id, name, admin_id, quota_amount, periodicity, start_date, end_date, invitation_code, created_at`

// CreateNatillera persists a natillera and its admin membership in one transaction.
// A generated invitation code that collides with an existing one is
// replaced and retried; a caller-supplied code that collides fails with
// models.ErrCodeTaken.
func (s *SQLiteStore) CreateNatillera(ctx context.Context, n *models.Natillera, admin *models.Membership) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	if admin.JoinedAt.IsZero() {
		admin.JoinedAt = n.CreatedAt
	}
	admin.NatilleraID = n.ID
	admin.UserID = n.AdminID
	admin.Role = models.RoleAdmin

	generated := n.InvitationCode == ""
	for attempt := 1; ; attempt++ {
		if generated {
			code, err := format.NewInvitationCode()
			if err != nil {
				return fmt.Errorf("failed to generate invitation code: %w", err)
			}
			n.InvitationCode = code
		}

		err := s.insertNatillera(ctx, n, admin)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err, "natilleras.invitation_code") {
			return err
		}
		if !generated {
			return models.ErrCodeTaken
		}
		if attempt == codeAttempts {
			return fmt.Errorf("failed to allocate invitation code after %d attempts: %w", attempt, models.ErrCodeTaken)
		}
	}
}

func (s *SQLiteStore) insertNatillera(ctx context.Context, n *models.Natillera, admin *models.Membership) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO natilleras (`+natilleraColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Name, n.AdminID, n.QuotaAmount, string(n.Periodicity),
		toMillis(n.StartDate), toMillis(n.EndDate), n.InvitationCode, toMillis(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert natillera: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memberships (id, user_id, natillera_id, role, joined_at) VALUES (?, ?, ?, ?, ?)`,
		admin.ID, admin.UserID, admin.NatilleraID, string(admin.Role), toMillis(admin.JoinedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetNatillera retrieves a natillera by ID.
func (s *SQLiteStore) GetNatillera(ctx context.Context, id string) (*models.Natillera, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+natilleraColumns+` FROM natilleras WHERE id = ?`, id)
	n, err := scanNatillera(row)
	if err == sql.ErrNoRows {
		return nil, notFound("natillera", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get natillera: %w", err)
	}
	return n, nil
}

// GetNatilleraByCode retrieves a natillera by its invitation code.
func (s *SQLiteStore) GetNatilleraByCode(ctx context.Context, code string) (*models.Natillera, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+natilleraColumns+` FROM natilleras WHERE invitation_code = ?`, code)
	n, err := scanNatillera(row)
	if err == sql.ErrNoRows {
		return nil, notFound("natillera with code", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get natillera by code: %w", err)
	}
	return n, nil
}

// ListUserNatilleras returns every natillera the user is a member of, with
// the user's role and the member count, most recently joined first.
func (s *SQLiteStore) ListUserNatilleras(ctx context.Context, userID string) ([]*models.NatilleraSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id, n.name, n.admin_id, n.quota_amount, n.periodicity, n.start_date, n.end_date,
		        n.invitation_code, n.created_at, m.id, m.role,
		        (SELECT COUNT(*) FROM memberships c WHERE c.natillera_id = n.id)
		 FROM memberships m
		 JOIN natilleras n ON n.id = m.natillera_id
		 WHERE m.user_id = ?
		 ORDER BY m.joined_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user natilleras: %w", err)
	}
	defer rows.Close()

	var summaries []*models.NatilleraSummary
	for rows.Next() {
		sum := &models.NatilleraSummary{}
		var periodicity, role string
		var start, end, created int64
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.AdminID, &sum.QuotaAmount, &periodicity,
			&start, &end, &sum.InvitationCode, &created, &sum.MembershipID, &role, &sum.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan natillera summary: %w", err)
		}
		sum.Periodicity = models.Periodicity(periodicity)
		sum.StartDate = fromMillis(start)
		sum.EndDate = fromMillis(end)
		sum.CreatedAt = fromMillis(created)
		sum.Role = models.Role(role)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate natilleras: %w", err)
	}

	return summaries, nil
}

func scanNatillera(row *sql.Row) (*models.Natillera, error) {
	n := &models.Natillera{}
	var periodicity string
	var start, end, created int64
	if err := row.Scan(&n.ID, &n.Name, &n.AdminID, &n.QuotaAmount, &periodicity,
		&start, &end, &n.InvitationCode, &created); err != nil {
		return nil, err
	}
	n.Periodicity = models.Periodicity(periodicity)
	n.StartDate = fromMillis(start)
	n.EndDate = fromMillis(end)
	n.CreatedAt = fromMillis(created)
	return n, nil
}
