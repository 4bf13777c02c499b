// Package report derives totals, per-member statistics and filtered report
// datasets from natilleras, memberships and contributions.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/natiapp/internal/calculator"
	"github.com/mmynk/natiapp/internal/models"
	"github.com/mmynk/natiapp/internal/storage"
)

// DefaultTimezone is the location used for day boundaries when none is configured.
const DefaultTimezone = "America/Bogota"

// profileFetchLimit bounds concurrent profile reads while building a member list.
const profileFetchLimit = 8

// Store is the subset of storage.Store the engine reads from.
type Store interface {
	GetNatillera(ctx context.Context, id string) (*models.Natillera, error)
	ListMembers(ctx context.Context, natilleraID string) ([]*models.Membership, error)
	ListContributions(ctx context.Context, q storage.ContributionQuery) ([]*models.Contribution, error)
	ListUserNatilleras(ctx context.Context, userID string) ([]*models.NatilleraSummary, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Options configures an Engine.
type Options struct {
	// Location sets day boundaries for date filters. Defaults to UTC.
	Location *time.Location

	// Now is the clock stamped on built reports. Defaults to time.Now.
	Now func() time.Time
}

// Engine computes derived views. It never writes to the store.
type Engine struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// NewEngine creates an engine reading from store.
func NewEngine(store Store, opts Options) *Engine {
	e := &Engine{store: store, loc: opts.Location, now: opts.Now}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Location returns the engine's location for day boundaries.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Entry is a contribution enriched with its author's profile.
type Entry struct {
	*models.Contribution
	DisplayName string
	Email       string
}

// Report is the dataset handed to the export generators.
type Report struct {
	Natillera *models.Natillera
	Members   []*models.Member
	Filter    Filter

	// Entries are the contributions matching Filter, newest first.
	Entries []Entry

	// Summary and PerMember aggregate Entries.
	Summary   Summary
	PerMember []MemberStat

	// Overall aggregates every contribution of the natillera, ignoring Filter.
	Overall Summary

	// Balances compare each member's confirmed savings with the quotas due
	// at GeneratedAt, furthest behind first. They ignore Filter.
	Balances []calculator.MemberBalance

	Location    *time.Location
	GeneratedAt time.Time
}

// MemberName returns the display name of a member of the report's natillera.
func (r *Report) MemberName(userID string) string {
	for _, m := range r.Members {
		if m.UserID == userID {
			return m.DisplayName
		}
	}
	return UnknownUser
}

// UserSummary holds a user's statistics across every natillera they belong to.
type UserSummary struct {
	Natilleras        int
	TotalSaved        int64
	ConfirmedPayments int
}

// GroupTotal returns the sum of confirmed contributions of a natillera.
func (e *Engine) GroupTotal(ctx context.Context, natilleraID string) (int64, error) {
	cs, err := e.store.ListContributions(ctx, storage.ContributionQuery{
		NatilleraID: natilleraID,
		Status:      models.StatusConfirmed,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load contributions: %w", err)
	}
	return ConfirmedTotal(cs), nil
}

// MemberTotal returns the sum of a user's confirmed contributions in a natillera.
func (e *Engine) MemberTotal(ctx context.Context, natilleraID, userID string) (int64, error) {
	cs, err := e.store.ListContributions(ctx, storage.ContributionQuery{
		NatilleraID: natilleraID,
		UserID:      userID,
		Status:      models.StatusConfirmed,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load member contributions: %w", err)
	}
	return ConfirmedTotal(cs), nil
}

// Balance returns the user's quota progress in a natillera as of now.
func (e *Engine) Balance(ctx context.Context, natilleraID, userID string) (calculator.MemberBalance, error) {
	natillera, err := e.store.GetNatillera(ctx, natilleraID)
	if err != nil {
		return calculator.MemberBalance{}, fmt.Errorf("failed to load natillera: %w", err)
	}
	paid, err := e.MemberTotal(ctx, natilleraID, userID)
	if err != nil {
		return calculator.MemberBalance{}, err
	}
	return calculator.Balance(natillera, userID, paid, e.now(), e.loc), nil
}

// UserTotal returns the user's profile statistics across all natilleras.
func (e *Engine) UserTotal(ctx context.Context, userID string) (UserSummary, error) {
	natilleras, err := e.store.ListUserNatilleras(ctx, userID)
	if err != nil {
		return UserSummary{}, fmt.Errorf("failed to load natilleras: %w", err)
	}

	cs, err := e.store.ListContributions(ctx, storage.ContributionQuery{
		UserID: userID,
		Status: models.StatusConfirmed,
	})
	if err != nil {
		return UserSummary{}, fmt.Errorf("failed to load user contributions: %w", err)
	}

	return UserSummary{
		Natilleras:        len(natilleras),
		TotalSaved:        ConfirmedTotal(cs),
		ConfirmedPayments: len(cs),
	}, nil
}

// Members returns the natillera's memberships joined with each member's
// profile. Profiles are read concurrently; a missing profile falls back to
// UnknownUser.
func (e *Engine) Members(ctx context.Context, natilleraID string) ([]*models.Member, error) {
	memberships, err := e.store.ListMembers(ctx, natilleraID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	members := make([]*models.Member, len(memberships))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileFetchLimit)
	for i, m := range memberships {
		g.Go(func() error {
			user, err := e.store.GetUserByID(gctx, m.UserID)
			if err != nil {
				return fmt.Errorf("failed to load profile %s: %w", m.UserID, err)
			}
			member := &models.Member{Membership: *m, DisplayName: UnknownUser}
			if user != nil {
				member.DisplayName = user.DisplayName
				member.Email = user.Email
			}
			members[i] = member
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return members, nil
}

// Build loads a natillera's report filtered by f.
func (e *Engine) Build(ctx context.Context, natilleraID string, f Filter) (*Report, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	natillera, err := e.store.GetNatillera(ctx, natilleraID)
	if err != nil {
		return nil, fmt.Errorf("failed to load natillera: %w", err)
	}

	members, err := e.Members(ctx, natilleraID)
	if err != nil {
		return nil, err
	}

	all, err := e.store.ListContributions(ctx, storage.ContributionQuery{NatilleraID: natilleraID})
	if err != nil {
		return nil, fmt.Errorf("failed to load contributions: %w", err)
	}

	filtered := Apply(f, all, e.loc)
	now := e.now()

	userIDs := make([]string, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}

	return &Report{
		Natillera:   natillera,
		Members:     members,
		Filter:      f,
		Entries:     Enrich(filtered, members),
		Summary:     Summarize(filtered),
		PerMember:   MemberStats(members, filtered),
		Overall:     Summarize(all),
		Balances:    calculator.Balances(natillera, userIDs, all, now, e.loc),
		Location:    e.loc,
		GeneratedAt: now.In(e.loc),
	}, nil
}

// Enrich attaches each contribution's member profile.
func Enrich(contributions []*models.Contribution, members []*models.Member) []Entry {
	byUser := make(map[string]*models.Member, len(members))
	for _, m := range members {
		byUser[m.UserID] = m
	}

	entries := make([]Entry, len(contributions))
	for i, c := range contributions {
		entries[i] = Entry{Contribution: c, DisplayName: UnknownUser}
		if m, ok := byUser[c.UserID]; ok {
			entries[i].DisplayName = m.DisplayName
			entries[i].Email = m.Email
		}
	}
	return entries
}

// AvailableMonths returns the distinct quota months of a natillera's
// contributions, newest first.
func (e *Engine) AvailableMonths(ctx context.Context, natilleraID string) ([]string, error) {
	cs, err := e.store.ListContributions(ctx, storage.ContributionQuery{NatilleraID: natilleraID})
	if err != nil {
		return nil, fmt.Errorf("failed to load contributions: %w", err)
	}
	return Months(cs), nil
}

// Months returns the distinct quota months in contributions, newest first.
func Months(contributions []*models.Contribution) []string {
	seen := make(map[string]struct{})
	months := make([]string, 0)
	for _, c := range contributions {
		if _, ok := seen[c.QuotaMonth]; ok {
			continue
		}
		seen[c.QuotaMonth] = struct{}{}
		months = append(months, c.QuotaMonth)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}
