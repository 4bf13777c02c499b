package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/natiapp/internal/export"
	"github.com/mmynk/natiapp/internal/format"
	"github.com/mmynk/natiapp/internal/report"
	"github.com/mmynk/natiapp/internal/rpc"
	"github.com/mmynk/natiapp/internal/storage"
)

// ExportObserver records export outcomes.
type ExportObserver interface {
	ObserveExport(format string, err error)
}

type noObserver struct{}

func (noObserver) ObserveExport(string, error) {}

// ReportService implements the ReportService RPC interface. Every operation
// is restricted to the natillera's admin.
type ReportService struct {
	store    storage.Store
	engine   *report.Engine
	observer ExportObserver
	now      func() time.Time
}

var _ rpc.ReportServiceHandler = (*ReportService)(nil)

// NewReportService creates a ReportService. observer may be nil.
func NewReportService(store storage.Store, engine *report.Engine, observer ExportObserver) *ReportService {
	if observer == nil {
		observer = noObserver{}
	}
	return &ReportService{store: store, engine: engine, observer: observer, now: time.Now}
}

// GetReport returns the filtered contributions with their statistics.
func (s *ReportService) GetReport(ctx context.Context, req *connect.Request[rpc.GetReportRequest]) (*connect.Response[rpc.GetReportResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetReport request received", "natillera_id", req.Msg.NatilleraID, "user_id", userID)

	r, err := s.build(ctx, req.Msg.NatilleraID, userID, req.Msg.Filter)
	if err != nil {
		return nil, toConnectError("GetReport", err)
	}

	perMember := make([]*rpc.MemberStat, len(r.PerMember))
	for i, m := range r.PerMember {
		perMember[i] = &rpc.MemberStat{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Email:       m.Email,
			Summary:     *toSummary(m.Summary),
		}
	}

	slog.Info("GetReport successful", "natillera_id", r.Natillera.ID, "entries", len(r.Entries))

	return connect.NewResponse(&rpc.GetReportResponse{
		Natillera:     toNatillera(r.Natillera, r.Location),
		Contributions: toContributions(r.Entries, s.now()),
		Summary:       toSummary(r.Summary),
		Overall:       toSummary(r.Overall),
		PerMember:     perMember,
		Balances:      toBalances(r.Balances, r),
	}), nil
}

// GetAvailableMonths lists the quota months present in the natillera, newest first.
func (s *ReportService) GetAvailableMonths(ctx context.Context, req *connect.Request[rpc.GetAvailableMonthsRequest]) (*connect.Response[rpc.GetAvailableMonthsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetAvailableMonths request received", "natillera_id", req.Msg.NatilleraID, "user_id", userID)

	if _, err := requireAdmin(ctx, s.store, req.Msg.NatilleraID, userID); err != nil {
		return nil, toConnectError("GetAvailableMonths", err)
	}

	keys, err := s.engine.AvailableMonths(ctx, req.Msg.NatilleraID)
	if err != nil {
		return nil, toConnectError("GetAvailableMonths", err)
	}

	months := make([]*rpc.Month, len(keys))
	for i, key := range keys {
		months[i] = &rpc.Month{Key: key, Name: format.MonthName(key)}
	}

	return connect.NewResponse(&rpc.GetAvailableMonthsResponse{Months: months}), nil
}

// ExportReport renders the filtered report as a PDF, XLSX or CSV file.
func (s *ReportService) ExportReport(ctx context.Context, req *connect.Request[rpc.ExportReportRequest]) (*connect.Response[rpc.ExportReportResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ExportReport request received",
		"natillera_id", req.Msg.NatilleraID,
		"user_id", userID,
		"format", req.Msg.Format,
	)

	f, err := export.ParseFormat(req.Msg.Format)
	if err != nil {
		return nil, toConnectError("ExportReport", err)
	}

	r, err := s.build(ctx, req.Msg.NatilleraID, userID, req.Msg.Filter)
	if err != nil {
		return nil, toConnectError("ExportReport", err)
	}

	artifact, err := export.Generate(f, r, export.Options{Now: s.now})
	s.observer.ObserveExport(string(f), err)
	if err != nil {
		return nil, toConnectError("ExportReport", err)
	}

	slog.Info("ExportReport successful",
		"natillera_id", r.Natillera.ID,
		"format", f,
		"filename", artifact.Filename,
		"bytes", len(artifact.Data),
	)

	return connect.NewResponse(&rpc.ExportReportResponse{
		Filename:    artifact.Filename,
		ContentType: artifact.ContentType,
		Data:        artifact.Data,
	}), nil
}

// build checks admin access, then parses the filter and builds the report.
func (s *ReportService) build(ctx context.Context, natilleraID, userID string, rf *rpc.ReportFilter) (*report.Report, error) {
	if rf == nil {
		rf = &rpc.ReportFilter{}
	}
	f, err := report.ParseFilter(rf.MemberID, rf.Status, rf.DateFrom, rf.DateTo, rf.QuotaMonth, s.engine.Location())
	if err != nil {
		return nil, err
	}

	if _, err := requireAdmin(ctx, s.store, natilleraID, userID); err != nil {
		return nil, err
	}

	return s.engine.Build(ctx, natilleraID, f)
}
