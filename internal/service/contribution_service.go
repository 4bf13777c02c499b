package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/natiapp/internal/calculator"
	"github.com/mmynk/natiapp/internal/events"
	"github.com/mmynk/natiapp/internal/models"
	"github.com/mmynk/natiapp/internal/proof"
	"github.com/mmynk/natiapp/internal/report"
	"github.com/mmynk/natiapp/internal/rpc"
	"github.com/mmynk/natiapp/internal/storage"
)

// ContributionService implements the ContributionService RPC interface.
type ContributionService struct {
	store     storage.Store
	engine    *report.Engine
	publisher events.Publisher
	uploader  proof.Uploader
	now       func() time.Time
}

var _ rpc.ContributionServiceHandler = (*ContributionService)(nil)

// NewContributionService creates a ContributionService over store.
func NewContributionService(store storage.Store, engine *report.Engine, publisher events.Publisher, uploader proof.Uploader) *ContributionService {
	return &ContributionService{
		store:     store,
		engine:    engine,
		publisher: publisher,
		uploader:  uploader,
		now:       time.Now,
	}
}

// ReportContribution records a pending payment by the caller.
func (s *ContributionService) ReportContribution(ctx context.Context, req *connect.Request[rpc.ReportContributionRequest]) (*connect.Response[rpc.ContributionResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ReportContribution request received",
		"natillera_id", req.Msg.NatilleraID,
		"user_id", userID,
		"amount", req.Msg.Amount,
		"quota_month", req.Msg.QuotaMonth,
		"proof_bytes", len(req.Msg.Proof),
	)

	paidAt, err := parseDay("paid_at", req.Msg.PaidAt, s.engine.Location())
	if err != nil {
		return nil, toConnectError("ReportContribution", err)
	}

	contribution := &models.Contribution{
		ID:          uuid.New().String(),
		NatilleraID: req.Msg.NatilleraID,
		UserID:      userID,
		Amount:      req.Msg.Amount,
		QuotaMonth:  req.Msg.QuotaMonth,
		PaidAt:      paidAt,
		Status:      models.StatusPending,
		ProofURL:    req.Msg.ProofURL,
	}
	if err := contribution.Validate(); err != nil {
		return nil, toConnectError("ReportContribution", err)
	}
	if len(req.Msg.Proof) > 0 {
		if err := proof.Check(req.Msg.Proof); err != nil {
			return nil, toConnectError("ReportContribution", err)
		}
	}

	if _, err := requireMember(ctx, s.store, req.Msg.NatilleraID, userID); err != nil {
		return nil, toConnectError("ReportContribution", err)
	}

	if len(req.Msg.Proof) > 0 {
		url, err := s.uploader.Upload(ctx, contribution.ID, req.Msg.Proof)
		if err != nil {
			return nil, toConnectError("ReportContribution", err)
		}
		contribution.ProofURL = url
	}

	contribution.ReportedAt = s.now().UTC()
	if err := s.store.CreateContribution(ctx, contribution); err != nil {
		return nil, toConnectError("ReportContribution", err)
	}

	e := events.New(events.ContributionReported, contribution.NatilleraID)
	e.UserID = userID
	e.ContributionID = contribution.ID
	e.Amount = contribution.Amount
	publish(ctx, s.publisher, e)

	slog.Info("Contribution reported", "contribution_id", contribution.ID, "natillera_id", contribution.NatilleraID)

	return connect.NewResponse(&rpc.ContributionResponse{
		Contribution: s.single(ctx, contribution),
	}), nil
}

// ConfirmContribution marks a contribution as confirmed. Admin only.
func (s *ContributionService) ConfirmContribution(ctx context.Context, req *connect.Request[rpc.ConfirmContributionRequest]) (*connect.Response[rpc.ContributionResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ConfirmContribution request received", "contribution_id", req.Msg.ContributionID, "user_id", userID)

	c, err := s.review(ctx, "ConfirmContribution", req.Msg.ContributionID, userID, models.Confirm(s.now().UTC()))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&rpc.ContributionResponse{Contribution: s.single(ctx, c)}), nil
}

// RejectContribution marks a contribution as rejected with a reason. Admin only.
func (s *ContributionService) RejectContribution(ctx context.Context, req *connect.Request[rpc.RejectContributionRequest]) (*connect.Response[rpc.ContributionResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("RejectContribution request received", "contribution_id", req.Msg.ContributionID, "user_id", userID)

	update, err := models.Reject(s.now().UTC(), req.Msg.Reason)
	if err != nil {
		return nil, toConnectError("RejectContribution", err)
	}

	c, err := s.review(ctx, "RejectContribution", req.Msg.ContributionID, userID, update)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&rpc.ContributionResponse{Contribution: s.single(ctx, c)}), nil
}

// review applies an admin status update. Reviewing an already reviewed
// contribution is allowed; the previous outcome is overwritten.
func (s *ContributionService) review(ctx context.Context, op, id, userID string, update models.StatusUpdate) (*models.Contribution, error) {
	if id == "" {
		return nil, toConnectError(op, &models.ValidationError{Field: "contribution_id", Message: "el aporte es requerido"})
	}

	c, err := s.store.GetContribution(ctx, id)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if _, err := requireAdmin(ctx, s.store, c.NatilleraID, userID); err != nil {
		return nil, toConnectError(op, err)
	}

	if c.Status != models.StatusPending {
		slog.Warn("Re-reviewing contribution",
			"contribution_id", c.ID,
			"from", c.Status,
			"to", update.Status,
			"user_id", userID,
		)
	}

	if err := s.store.UpdateContributionStatus(ctx, c.ID, update); err != nil {
		return nil, toConnectError(op, err)
	}
	update.Apply(c)

	kind := events.ContributionConfirmed
	if update.Status == models.StatusRejected {
		kind = events.ContributionRejected
	}
	e := events.New(kind, c.NatilleraID)
	e.UserID = c.UserID
	e.ContributionID = c.ID
	e.Amount = c.Amount
	e.Reason = c.RejectionReason
	publish(ctx, s.publisher, e)

	slog.Info("Contribution reviewed", "contribution_id", c.ID, "status", c.Status)
	return c, nil
}

// ListContributions lists the caller's contributions, or all of them for an admin asking for All.
func (s *ContributionService) ListContributions(ctx context.Context, req *connect.Request[rpc.ListContributionsRequest]) (*connect.Response[rpc.ListContributionsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListContributions request received",
		"natillera_id", req.Msg.NatilleraID,
		"user_id", userID,
		"status", req.Msg.Status,
		"all", req.Msg.All,
	)

	status := models.Status(req.Msg.Status)
	if status != "" && !status.Valid() {
		return nil, toConnectError("ListContributions", &models.ValidationError{Field: "status", Message: "estado inválido"})
	}

	check := requireMember
	if req.Msg.All {
		check = requireAdmin
	}
	if _, err := check(ctx, s.store, req.Msg.NatilleraID, userID); err != nil {
		return nil, toConnectError("ListContributions", err)
	}

	q := storage.ContributionQuery{NatilleraID: req.Msg.NatilleraID, Status: status}
	if !req.Msg.All {
		q.UserID = userID
	}
	contributions, err := s.store.ListContributions(ctx, q)
	if err != nil {
		return nil, toConnectError("ListContributions", err)
	}

	members, err := s.engine.Members(ctx, req.Msg.NatilleraID)
	if err != nil {
		return nil, toConnectError("ListContributions", err)
	}

	slog.Info("ListContributions successful", "natillera_id", req.Msg.NatilleraID, "count", len(contributions))

	return connect.NewResponse(&rpc.ListContributionsResponse{
		Contributions: toContributions(report.Enrich(contributions, members), s.now()),
	}), nil
}

// GetTotals returns the natillera's confirmed total and the caller's share of it.
func (s *ContributionService) GetTotals(ctx context.Context, req *connect.Request[rpc.GetTotalsRequest]) (*connect.Response[rpc.Totals], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetTotals request received", "natillera_id", req.Msg.NatilleraID, "user_id", userID)

	if _, err := requireMember(ctx, s.store, req.Msg.NatilleraID, userID); err != nil {
		return nil, toConnectError("GetTotals", err)
	}

	group, err := s.engine.GroupTotal(ctx, req.Msg.NatilleraID)
	if err != nil {
		return nil, toConnectError("GetTotals", err)
	}
	mine, err := s.engine.Balance(ctx, req.Msg.NatilleraID, userID)
	if err != nil {
		return nil, toConnectError("GetTotals", err)
	}

	return connect.NewResponse(toTotals(group, mine)), nil
}

// WatchContributions streams a snapshot of the natillera's contributions now
// and after every change, until the client goes away. Admins see every
// member's contributions, members only their own; totals always cover the
// whole natillera.
func (s *ContributionService) WatchContributions(ctx context.Context, req *connect.Request[rpc.WatchContributionsRequest], stream *connect.ServerStream[rpc.ContributionsSnapshot]) error {
	userID, err := callerID(ctx)
	if err != nil {
		return err
	}

	natilleraID := req.Msg.NatilleraID
	slog.Info("WatchContributions request received", "natillera_id", natilleraID, "user_id", userID)

	membership, err := requireMember(ctx, s.store, natilleraID, userID)
	if err != nil {
		return toConnectError("WatchContributions", err)
	}

	natillera, err := s.store.GetNatillera(ctx, natilleraID)
	if err != nil {
		return toConnectError("WatchContributions", err)
	}

	members, err := s.engine.Members(ctx, natilleraID)
	if err != nil {
		return toConnectError("WatchContributions", err)
	}

	updates := newLatest()
	unsubscribe, err := s.store.SubscribeContributions(ctx, natilleraID, updates.put)
	if err != nil {
		return toConnectError("WatchContributions", err)
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			slog.Info("WatchContributions closed", "natillera_id", natilleraID, "user_id", userID)
			return nil
		case all := <-updates.ch:
			if hasUnknownAuthor(all, members) {
				if fresh, err := s.engine.Members(ctx, natilleraID); err == nil {
					members = fresh
				} else {
					slog.Warn("Failed to refresh members", "natillera_id", natilleraID, "error", err)
				}
			}

			visible := all
			if !membership.IsAdmin() {
				visible = ownContributions(all, userID)
			}

			mine := calculator.Balance(natillera, userID, report.MemberTotal(all, userID), s.now(), s.engine.Location())
			snapshot := &rpc.ContributionsSnapshot{
				Contributions: toContributions(report.Enrich(visible, members), s.now()),
				Totals:        toTotals(report.ConfirmedTotal(all), mine),
			}
			if err := stream.Send(snapshot); err != nil {
				return err
			}
		}
	}
}

// single enriches one contribution with its author's profile.
func (s *ContributionService) single(ctx context.Context, c *models.Contribution) *rpc.Contribution {
	entry := report.Entry{Contribution: c, DisplayName: report.UnknownUser}
	if user, err := s.store.GetUserByID(ctx, c.UserID); err == nil && user != nil {
		entry.DisplayName = user.DisplayName
		entry.Email = user.Email
	}
	return toContribution(entry, s.now())
}

// latest holds the newest undelivered snapshot. Older ones are dropped, since
// each snapshot carries the full state.
type latest struct {
	mu sync.Mutex
	ch chan []*models.Contribution
}

func newLatest() *latest {
	return &latest{ch: make(chan []*models.Contribution, 1)}
}

func (l *latest) put(contributions []*models.Contribution) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.ch:
	default:
	}
	l.ch <- contributions
}

func ownContributions(contributions []*models.Contribution, userID string) []*models.Contribution {
	own := make([]*models.Contribution, 0, len(contributions))
	for _, c := range contributions {
		if c.UserID == userID {
			own = append(own, c)
		}
	}
	return own
}

func hasUnknownAuthor(contributions []*models.Contribution, members []*models.Member) bool {
	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.UserID] = true
	}
	for _, c := range contributions {
		if !known[c.UserID] {
			return true
		}
	}
	return false
}
