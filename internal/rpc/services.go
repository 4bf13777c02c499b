package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	AuthServiceName         = "natiapp.v1.AuthService"
	NatilleraServiceName    = "natiapp.v1.NatilleraService"
	ContributionServiceName = "natiapp.v1.ContributionService"
	ReportServiceName       = "natiapp.v1.ReportService"
)

// Procedure paths, in the form "/<service>/<method>".
const (
	AuthServiceRegisterProcedure          = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure             = "/" + AuthServiceName + "/Login"
	AuthServiceLogoutProcedure            = "/" + AuthServiceName + "/Logout"
	AuthServiceGetCurrentUserProcedure    = "/" + AuthServiceName + "/GetCurrentUser"
	AuthServiceUpdateDisplayNameProcedure = "/" + AuthServiceName + "/UpdateDisplayName"

	NatilleraServiceCreateNatilleraProcedure  = "/" + NatilleraServiceName + "/CreateNatillera"
	NatilleraServiceGetNatilleraProcedure     = "/" + NatilleraServiceName + "/GetNatillera"
	NatilleraServiceJoinNatilleraProcedure    = "/" + NatilleraServiceName + "/JoinNatillera"
	NatilleraServiceListMyNatillerasProcedure = "/" + NatilleraServiceName + "/ListMyNatilleras"
	NatilleraServiceListMembersProcedure      = "/" + NatilleraServiceName + "/ListMembers"
	NatilleraServiceGetProfileStatsProcedure  = "/" + NatilleraServiceName + "/GetProfileStats"

	ContributionServiceReportContributionProcedure  = "/" + ContributionServiceName + "/ReportContribution"
	ContributionServiceConfirmContributionProcedure = "/" + ContributionServiceName + "/ConfirmContribution"
	ContributionServiceRejectContributionProcedure  = "/" + ContributionServiceName + "/RejectContribution"
	ContributionServiceListContributionsProcedure   = "/" + ContributionServiceName + "/ListContributions"
	ContributionServiceGetTotalsProcedure           = "/" + ContributionServiceName + "/GetTotals"
	ContributionServiceWatchContributionsProcedure  = "/" + ContributionServiceName + "/WatchContributions"

	ReportServiceGetReportProcedure          = "/" + ReportServiceName + "/GetReport"
	ReportServiceGetAvailableMonthsProcedure = "/" + ReportServiceName + "/GetAvailableMonths"
	ReportServiceExportReportProcedure       = "/" + ReportServiceName + "/ExportReport"
)

// PublicProcedures can be called without a session token.
var PublicProcedures = map[string]bool{
	AuthServiceRegisterProcedure: true,
	AuthServiceLoginProcedure:    true,
}

// routes serves each procedure path with its handler.
type routes map[string]http.Handler

func (r routes) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r[req.URL.Path]; ok {
		h.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

func servicePath(name string) string { return "/" + name + "/" }

// AuthServiceHandler is implemented by the account service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
	Logout(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error)
	GetCurrentUser(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[UserResponse], error)
	UpdateDisplayName(context.Context, *connect.Request[UpdateDisplayNameRequest]) (*connect.Response[UserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(AuthServiceName), routes{
		AuthServiceRegisterProcedure:          connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...),
		AuthServiceLoginProcedure:             connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...),
		AuthServiceLogoutProcedure:            connect.NewUnaryHandler(AuthServiceLogoutProcedure, svc.Logout, opts...),
		AuthServiceGetCurrentUserProcedure:    connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...),
		AuthServiceUpdateDisplayNameProcedure: connect.NewUnaryHandler(AuthServiceUpdateDisplayNameProcedure, svc.UpdateDisplayName, opts...),
	}
}

// NatilleraServiceHandler is implemented by the natillera service.
type NatilleraServiceHandler interface {
	CreateNatillera(context.Context, *connect.Request[CreateNatilleraRequest]) (*connect.Response[NatilleraResponse], error)
	GetNatillera(context.Context, *connect.Request[GetNatilleraRequest]) (*connect.Response[NatilleraResponse], error)
	JoinNatillera(context.Context, *connect.Request[JoinNatilleraRequest]) (*connect.Response[NatilleraResponse], error)
	ListMyNatilleras(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[ListMyNatillerasResponse], error)
	ListMembers(context.Context, *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error)
	GetProfileStats(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[ProfileStatsResponse], error)
}

// NewNatilleraServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewNatilleraServiceHandler(svc NatilleraServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(NatilleraServiceName), routes{
		NatilleraServiceCreateNatilleraProcedure:  connect.NewUnaryHandler(NatilleraServiceCreateNatilleraProcedure, svc.CreateNatillera, opts...),
		NatilleraServiceGetNatilleraProcedure:     connect.NewUnaryHandler(NatilleraServiceGetNatilleraProcedure, svc.GetNatillera, opts...),
		NatilleraServiceJoinNatilleraProcedure:    connect.NewUnaryHandler(NatilleraServiceJoinNatilleraProcedure, svc.JoinNatillera, opts...),
		NatilleraServiceListMyNatillerasProcedure: connect.NewUnaryHandler(NatilleraServiceListMyNatillerasProcedure, svc.ListMyNatilleras, opts...),
		NatilleraServiceListMembersProcedure:      connect.NewUnaryHandler(NatilleraServiceListMembersProcedure, svc.ListMembers, opts...),
		NatilleraServiceGetProfileStatsProcedure:  connect.NewUnaryHandler(NatilleraServiceGetProfileStatsProcedure, svc.GetProfileStats, opts...),
	}
}

// ContributionServiceHandler is implemented by the contribution service.
type ContributionServiceHandler interface {
	ReportContribution(context.Context, *connect.Request[ReportContributionRequest]) (*connect.Response[ContributionResponse], error)
	ConfirmContribution(context.Context, *connect.Request[ConfirmContributionRequest]) (*connect.Response[ContributionResponse], error)
	RejectContribution(context.Context, *connect.Request[RejectContributionRequest]) (*connect.Response[ContributionResponse], error)
	ListContributions(context.Context, *connect.Request[ListContributionsRequest]) (*connect.Response[ListContributionsResponse], error)
	GetTotals(context.Context, *connect.Request[GetTotalsRequest]) (*connect.Response[Totals], error)
	WatchContributions(context.Context, *connect.Request[WatchContributionsRequest], *connect.ServerStream[ContributionsSnapshot]) error
}

// NewContributionServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewContributionServiceHandler(svc ContributionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(ContributionServiceName), routes{
		ContributionServiceReportContributionProcedure:  connect.NewUnaryHandler(ContributionServiceReportContributionProcedure, svc.ReportContribution, opts...),
		ContributionServiceConfirmContributionProcedure: connect.NewUnaryHandler(ContributionServiceConfirmContributionProcedure, svc.ConfirmContribution, opts...),
		ContributionServiceRejectContributionProcedure:  connect.NewUnaryHandler(ContributionServiceRejectContributionProcedure, svc.RejectContribution, opts...),
		ContributionServiceListContributionsProcedure:   connect.NewUnaryHandler(ContributionServiceListContributionsProcedure, svc.ListContributions, opts...),
		ContributionServiceGetTotalsProcedure:           connect.NewUnaryHandler(ContributionServiceGetTotalsProcedure, svc.GetTotals, opts...),
		ContributionServiceWatchContributionsProcedure:  connect.NewServerStreamHandler(ContributionServiceWatchContributionsProcedure, svc.WatchContributions, opts...),
	}
}

// ReportServiceHandler is implemented by the report service.
type ReportServiceHandler interface {
	GetReport(context.Context, *connect.Request[GetReportRequest]) (*connect.Response[GetReportResponse], error)
	GetAvailableMonths(context.Context, *connect.Request[GetAvailableMonthsRequest]) (*connect.Response[GetAvailableMonthsResponse], error)
	ExportReport(context.Context, *connect.Request[ExportReportRequest]) (*connect.Response[ExportReportResponse], error)
}

// NewReportServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewReportServiceHandler(svc ReportServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(ReportServiceName), routes{
		ReportServiceGetReportProcedure:          connect.NewUnaryHandler(ReportServiceGetReportProcedure, svc.GetReport, opts...),
		ReportServiceGetAvailableMonthsProcedure: connect.NewUnaryHandler(ReportServiceGetAvailableMonthsProcedure, svc.GetAvailableMonths, opts...),
		ReportServiceExportReportProcedure:       connect.NewUnaryHandler(ReportServiceExportReportProcedure, svc.ExportReport, opts...),
	}
}
