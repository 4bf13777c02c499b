package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/natiapp/internal/models"
	"github.com/mmynk/natiapp/internal/storage"
)

const contributionColumns = `id, natillera_id, user_id, amount, quota_month, paid_at, reported_at,
	status, confirmed_at, rejected_at, rejection_reason, proof_url`

// CreateContribution persists a new contribution in pending state.
func (s *SQLiteStore) CreateContribution(ctx context.Context, c *models.Contribution) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.ReportedAt.IsZero() {
		c.ReportedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contributions (`+contributionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.NatilleraID, c.UserID, c.Amount, c.QuotaMonth, nullMillis(&c.PaidAt),
		toMillis(c.ReportedAt), string(c.Status), nullMillis(c.ConfirmedAt), nullMillis(c.RejectedAt),
		nullString(c.RejectionReason), nullString(c.ProofURL),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contribution: %w", err)
	}

	s.notify(ctx, c.NatilleraID)
	return nil
}

// GetContribution retrieves a contribution by ID.
func (s *SQLiteStore) GetContribution(ctx context.Context, id string) (*models.Contribution, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE id = ?`, id)
	c, err := scanContribution(row)
	if err == sql.ErrNoRows {
		return nil, notFound("contribution", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}
	return c, nil
}

// UpdateContributionStatus overwrites the review fields of a contribution.
func (s *SQLiteStore) UpdateContributionStatus(ctx context.Context, id string, update models.StatusUpdate) error {
	if !update.Status.Valid() {
		return fmt.Errorf("invalid status %q", update.Status)
	}

	var natilleraID string
	err := s.db.QueryRowContext(ctx, "SELECT natillera_id FROM contributions WHERE id = ?", id).Scan(&natilleraID)
	if err == sql.ErrNoRows {
		return notFound("contribution", id)
	}
	if err != nil {
		return fmt.Errorf("failed to check contribution existence: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE contributions
		 SET status = ?, confirmed_at = ?, rejected_at = ?, rejection_reason = ?
		 WHERE id = ?`,
		string(update.Status), nullMillis(update.ConfirmedAt), nullMillis(update.RejectedAt),
		nullString(update.RejectionReason), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update contribution: %w", err)
	}

	s.notify(ctx, natilleraID)
	return nil
}

// ListContributions returns contributions matching every set predicate.
func (s *SQLiteStore) ListContributions(ctx context.Context, q storage.ContributionQuery) ([]*models.Contribution, error) {
	if q.NatilleraID == "" && q.UserID == "" {
		return nil, errors.New("contribution query needs a natillera or a user")
	}

	var where []string
	var args []interface{}
	if q.NatilleraID != "" {
		where = append(where, "natillera_id = ?")
		args = append(args, q.NatilleraID)
	}
	if q.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, q.UserID)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY reported_at DESC, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}

	return contributions, nil
}

// SubscribeContributions registers fn for the natillera and immediately
// delivers the current snapshot.
func (s *SQLiteStore) SubscribeContributions(ctx context.Context, natilleraID string, fn storage.ContributionsFunc) (func(), error) {
	unsubscribe := s.hub.Subscribe(natilleraID, fn)

	snapshot, err := s.ListContributions(ctx, storage.ContributionQuery{NatilleraID: natilleraID})
	if err != nil {
		unsubscribe()
		return nil, err
	}
	fn(snapshot)

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return unsubscribe, nil
}

// notify pushes a fresh snapshot to the natillera's subscribers, if any.
// The write already succeeded, so a failed re-read is only logged.
func (s *SQLiteStore) notify(ctx context.Context, natilleraID string) {
	if s.hub.Subscribers(natilleraID) == 0 {
		return
	}
	snapshot, err := s.ListContributions(ctx, storage.ContributionQuery{NatilleraID: natilleraID})
	if err != nil {
		slog.Warn("Failed to load snapshot for subscribers", "natillera_id", natilleraID, "error", err)
		return
	}
	s.hub.Publish(natilleraID, snapshot)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanContribution(row scanner) (*models.Contribution, error) {
	c := &models.Contribution{}
	var paidAt, confirmedAt, rejectedAt sql.NullInt64
	var reason, proof sql.NullString
	var status string
	var reported int64

	if err := row.Scan(&c.ID, &c.NatilleraID, &c.UserID, &c.Amount, &c.QuotaMonth, &paidAt, &reported,
		&status, &confirmedAt, &rejectedAt, &reason, &proof); err != nil {
		return nil, err
	}

	c.Status = models.Status(status)
	c.ReportedAt = fromMillis(reported)
	if paidAt.Valid {
		c.PaidAt = fromMillis(paidAt.Int64)
	}
	c.ConfirmedAt = timePtr(confirmedAt)
	c.RejectedAt = timePtr(rejectedAt)
	if reason.Valid {
		c.RejectionReason = reason.String
	}
	if proof.Valid {
		c.ProofURL = proof.String
	}
	return c, nil
}
