// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/natiapp/internal/models"
)

// ContributionQuery selects contributions by equality predicates.
// Empty fields impose no constraint; NatilleraID or UserID must be set.
type ContributionQuery struct {
	NatilleraID string
	UserID      string
	Status      models.Status
}

// ContributionsFunc receives the full current result set of a subscription.
type ContributionsFunc func([]*models.Contribution)

// Store defines the data access operations over natilleras, memberships,
// contributions and users. There are no joins: callers issue several
// queries and combine results themselves.
type Store interface {
	// CreateNatillera persists a new natillera together with its admin
	// membership. ID, CreatedAt and InvitationCode are filled in when empty.
	CreateNatillera(ctx context.Context, n *models.Natillera, admin *models.Membership) error

	// GetNatillera retrieves a natillera by ID. Returns models.ErrNotFound if absent.
	GetNatillera(ctx context.Context, id string) (*models.Natillera, error)

	// GetNatilleraByCode looks a natillera up by invitation code.
	GetNatilleraByCode(ctx context.Context, code string) (*models.Natillera, error)

	// ListUserNatilleras returns the natilleras the user belongs to.
	ListUserNatilleras(ctx context.Context, userID string) ([]*models.NatilleraSummary, error)

	// AddMembership inserts a membership. Returns models.ErrAlreadyMember
	// when the (user, natillera) pair already exists.
	AddMembership(ctx context.Context, m *models.Membership) error

	// GetMembership returns the user's membership in a natillera.
	GetMembership(ctx context.Context, natilleraID, userID string) (*models.Membership, error)

	// ListMembers returns all memberships of a natillera, oldest first.
	ListMembers(ctx context.Context, natilleraID string) ([]*models.Membership, error)

	// CreateContribution persists a new contribution.
	CreateContribution(ctx context.Context, c *models.Contribution) error

	// GetContribution retrieves a contribution by ID.
	GetContribution(ctx context.Context, id string) (*models.Contribution, error)

	// UpdateContributionStatus applies a partial status update.
	UpdateContributionStatus(ctx context.Context, id string, update models.StatusUpdate) error

	// ListContributions returns matching contributions, most recently reported first.
	ListContributions(ctx context.Context, q ContributionQuery) ([]*models.Contribution, error)

	// SubscribeContributions calls fn with the natillera's contributions now
	// and after every change. The returned function releases the
	// subscription; cancelling ctx releases it too.
	SubscribeContributions(ctx context.Context, natilleraID string, fn ContributionsFunc) (func(), error)

	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil, nil when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil, nil when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateDisplayName changes a user's display name.
	UpdateDisplayName(ctx context.Context, id, displayName string) error

	// Close releases any resources held by the store.
	Close() error
}
