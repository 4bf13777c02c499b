package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/natiapp/internal/events"
	"github.com/mmynk/natiapp/internal/format"
	"github.com/mmynk/natiapp/internal/models"
	"github.com/mmynk/natiapp/internal/report"
	"github.com/mmynk/natiapp/internal/rpc"
	"github.com/mmynk/natiapp/internal/storage"
)

// NatilleraService implements the NatilleraService RPC interface.
type NatilleraService struct {
	store     storage.Store
	engine    *report.Engine
	publisher events.Publisher
	now       func() time.Time
}

var _ rpc.NatilleraServiceHandler = (*NatilleraService)(nil)

// NewNatilleraService creates a NatilleraService over store.
func NewNatilleraService(store storage.Store, engine *report.Engine, publisher events.Publisher) *NatilleraService {
	return &NatilleraService{store: store, engine: engine, publisher: publisher, now: time.Now}
}

// CreateNatillera creates a natillera with the caller as its admin.
func (s *NatilleraService) CreateNatillera(ctx context.Context, req *connect.Request[rpc.CreateNatilleraRequest]) (*connect.Response[rpc.NatilleraResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateNatillera request received",
		"user_id", userID,
		"name", req.Msg.Name,
		"quota_amount", req.Msg.QuotaAmount,
		"periodicity", req.Msg.Periodicity,
	)

	loc := s.engine.Location()
	start, err := parseDay("start_date", req.Msg.StartDate, loc)
	if err != nil {
		return nil, toConnectError("CreateNatillera", err)
	}
	end, err := parseDay("end_date", req.Msg.EndDate, loc)
	if err != nil {
		return nil, toConnectError("CreateNatillera", err)
	}

	natillera := &models.Natillera{
		Name:        strings.TrimSpace(req.Msg.Name),
		AdminID:     userID,
		QuotaAmount: req.Msg.QuotaAmount,
		Periodicity: models.Periodicity(req.Msg.Periodicity),
		StartDate:   start,
		EndDate:     end,
	}
	if err := natillera.Validate(); err != nil {
		return nil, toConnectError("CreateNatillera", err)
	}

	admin := &models.Membership{}
	if err := s.store.CreateNatillera(ctx, natillera, admin); err != nil {
		return nil, toConnectError("CreateNatillera", err)
	}

	e := events.New(events.NatilleraCreated, natillera.ID)
	e.UserID = userID
	publish(ctx, s.publisher, e)

	slog.Info("Natillera created", "natillera_id", natillera.ID, "invitation_code", natillera.InvitationCode)

	return connect.NewResponse(&rpc.NatilleraResponse{
		Natillera:  toNatillera(natillera, loc),
		Membership: toMembership(admin),
	}), nil
}

// GetNatillera returns a natillera the caller belongs to.
func (s *NatilleraService) GetNatillera(ctx context.Context, req *connect.Request[rpc.GetNatilleraRequest]) (*connect.Response[rpc.NatilleraResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetNatillera request received", "natillera_id", req.Msg.NatilleraID, "user_id", userID)

	membership, err := requireMember(ctx, s.store, req.Msg.NatilleraID, userID)
	if err != nil {
		return nil, toConnectError("GetNatillera", err)
	}

	natillera, err := s.store.GetNatillera(ctx, req.Msg.NatilleraID)
	if err != nil {
		return nil, toConnectError("GetNatillera", err)
	}

	return connect.NewResponse(&rpc.NatilleraResponse{
		Natillera:  toNatillera(natillera, s.engine.Location()),
		Membership: toMembership(membership),
	}), nil
}

// JoinNatillera adds the caller to the natillera owning the invitation code.
func (s *NatilleraService) JoinNatillera(ctx context.Context, req *connect.Request[rpc.JoinNatilleraRequest]) (*connect.Response[rpc.NatilleraResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Msg.InvitationCode))
	slog.Info("JoinNatillera request received", "user_id", userID, "invitation_code", code)

	if code == "" {
		return nil, toConnectError("JoinNatillera", &models.ValidationError{
			Field: "invitation_code", Message: "el código de invitación es requerido",
		})
	}

	natillera, err := s.store.GetNatilleraByCode(ctx, code)
	if errors.Is(err, models.ErrNotFound) {
		slog.Warn("JoinNatillera with unknown code", "user_id", userID, "invitation_code", code)
		return nil, toConnectError("JoinNatillera", models.ErrInvalidCode)
	}
	if err != nil {
		return nil, toConnectError("JoinNatillera", err)
	}

	membership := &models.Membership{
		UserID:      userID,
		NatilleraID: natillera.ID,
		Role:        models.RoleMember,
	}
	if err := s.store.AddMembership(ctx, membership); err != nil {
		return nil, toConnectError("JoinNatillera", err)
	}

	e := events.New(events.MemberJoined, natillera.ID)
	e.UserID = userID
	publish(ctx, s.publisher, e)

	slog.Info("Member joined", "natillera_id", natillera.ID, "user_id", userID)

	return connect.NewResponse(&rpc.NatilleraResponse{
		Natillera:  toNatillera(natillera, s.engine.Location()),
		Membership: toMembership(membership),
	}), nil
}

// ListMyNatilleras returns the caller's natilleras with role and member count.
func (s *NatilleraService) ListMyNatilleras(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[rpc.ListMyNatillerasResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListMyNatilleras request received", "user_id", userID)

	summaries, err := s.store.ListUserNatilleras(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListMyNatilleras", err)
	}

	loc := s.engine.Location()
	out := make([]*rpc.NatilleraSummary, len(summaries))
	for i, sum := range summaries {
		out[i] = &rpc.NatilleraSummary{
			Natillera:   toNatillera(&sum.Natillera, loc),
			Role:        string(sum.Role),
			MemberCount: sum.MemberCount,
		}
	}

	slog.Info("ListMyNatilleras successful", "user_id", userID, "count", len(out))
	return connect.NewResponse(&rpc.ListMyNatillerasResponse{Natilleras: out}), nil
}

// ListMembers returns the members of a natillera the caller belongs to.
func (s *NatilleraService) ListMembers(ctx context.Context, req *connect.Request[rpc.ListMembersRequest]) (*connect.Response[rpc.ListMembersResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListMembers request received", "natillera_id", req.Msg.NatilleraID, "user_id", userID)

	if _, err := requireMember(ctx, s.store, req.Msg.NatilleraID, userID); err != nil {
		return nil, toConnectError("ListMembers", err)
	}

	members, err := s.engine.Members(ctx, req.Msg.NatilleraID)
	if err != nil {
		return nil, toConnectError("ListMembers", err)
	}

	now := s.now().In(s.engine.Location())
	out := make([]*rpc.Member, len(members))
	for i, m := range members {
		out[i] = toMember(m, now)
	}

	return connect.NewResponse(&rpc.ListMembersResponse{Members: out}), nil
}

// GetProfileStats returns the caller's totals across every natillera.
func (s *NatilleraService) GetProfileStats(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[rpc.ProfileStatsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetProfileStats request received", "user_id", userID)

	stats, err := s.engine.UserTotal(ctx, userID)
	if err != nil {
		return nil, toConnectError("GetProfileStats", err)
	}

	return connect.NewResponse(&rpc.ProfileStatsResponse{
		Natilleras:        stats.Natilleras,
		TotalSaved:        stats.TotalSaved,
		TotalSavedDisplay: format.Currency(stats.TotalSaved),
		ConfirmedPayments: stats.ConfirmedPayments,
	}), nil
}
