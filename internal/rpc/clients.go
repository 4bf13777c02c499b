package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

func procedureURL(baseURL, procedure string) string {
	return strings.TrimRight(baseURL, "/") + procedure
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, procedureURL(baseURL, procedure), clientOptions(opts)...)
}

// AuthServiceClient calls the account service.
type AuthServiceClient struct {
	register          *connect.Client[RegisterRequest, AuthResponse]
	login             *connect.Client[LoginRequest, AuthResponse]
	logout            *connect.Client[emptypb.Empty, emptypb.Empty]
	getCurrentUser    *connect.Client[emptypb.Empty, UserResponse]
	updateDisplayName *connect.Client[UpdateDisplayNameRequest, UserResponse]
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register:          newClient[RegisterRequest, AuthResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:             newClient[LoginRequest, AuthResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		logout:            newClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL, AuthServiceLogoutProcedure, opts),
		getCurrentUser:    newClient[emptypb.Empty, UserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
		updateDisplayName: newClient[UpdateDisplayNameRequest, UserResponse](httpClient, baseURL, AuthServiceUpdateDisplayNameProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Logout(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	return c.logout.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[UserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *AuthServiceClient) UpdateDisplayName(ctx context.Context, req *connect.Request[UpdateDisplayNameRequest]) (*connect.Response[UserResponse], error) {
	return c.updateDisplayName.CallUnary(ctx, req)
}

// NatilleraServiceClient calls the natillera service.
type NatilleraServiceClient struct {
	createNatillera  *connect.Client[CreateNatilleraRequest, NatilleraResponse]
	getNatillera     *connect.Client[GetNatilleraRequest, NatilleraResponse]
	joinNatillera    *connect.Client[JoinNatilleraRequest, NatilleraResponse]
	listMyNatilleras *connect.Client[emptypb.Empty, ListMyNatillerasResponse]
	listMembers      *connect.Client[ListMembersRequest, ListMembersResponse]
	getProfileStats  *connect.Client[emptypb.Empty, ProfileStatsResponse]
}

func NewNatilleraServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *NatilleraServiceClient {
	return &NatilleraServiceClient{
		createNatillera:  newClient[CreateNatilleraRequest, NatilleraResponse](httpClient, baseURL, NatilleraServiceCreateNatilleraProcedure, opts),
		getNatillera:     newClient[GetNatilleraRequest, NatilleraResponse](httpClient, baseURL, NatilleraServiceGetNatilleraProcedure, opts),
		joinNatillera:    newClient[JoinNatilleraRequest, NatilleraResponse](httpClient, baseURL, NatilleraServiceJoinNatilleraProcedure, opts),
		listMyNatilleras: newClient[emptypb.Empty, ListMyNatillerasResponse](httpClient, baseURL, NatilleraServiceListMyNatillerasProcedure, opts),
		listMembers:      newClient[ListMembersRequest, ListMembersResponse](httpClient, baseURL, NatilleraServiceListMembersProcedure, opts),
		getProfileStats:  newClient[emptypb.Empty, ProfileStatsResponse](httpClient, baseURL, NatilleraServiceGetProfileStatsProcedure, opts),
	}
}

func (c *NatilleraServiceClient) CreateNatillera(ctx context.Context, req *connect.Request[CreateNatilleraRequest]) (*connect.Response[NatilleraResponse], error) {
	return c.createNatillera.CallUnary(ctx, req)
}

func (c *NatilleraServiceClient) GetNatillera(ctx context.Context, req *connect.Request[GetNatilleraRequest]) (*connect.Response[NatilleraResponse], error) {
	return c.getNatillera.CallUnary(ctx, req)
}

func (c *NatilleraServiceClient) JoinNatillera(ctx context.Context, req *connect.Request[JoinNatilleraRequest]) (*connect.Response[NatilleraResponse], error) {
	return c.joinNatillera.CallUnary(ctx, req)
}

func (c *NatilleraServiceClient) ListMyNatilleras(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[ListMyNatillerasResponse], error) {
	return c.listMyNatilleras.CallUnary(ctx, req)
}

func (c *NatilleraServiceClient) ListMembers(ctx context.Context, req *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *NatilleraServiceClient) GetProfileStats(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[ProfileStatsResponse], error) {
	return c.getProfileStats.CallUnary(ctx, req)
}

// ContributionServiceClient calls the contribution service.
type ContributionServiceClient struct {
	reportContribution  *connect.Client[ReportContributionRequest, ContributionResponse]
	confirmContribution *connect.Client[ConfirmContributionRequest, ContributionResponse]
	rejectContribution  *connect.Client[RejectContributionRequest, ContributionResponse]
	listContributions   *connect.Client[ListContributionsRequest, ListContributionsResponse]
	getTotals           *connect.Client[GetTotalsRequest, Totals]
	watchContributions  *connect.Client[WatchContributionsRequest, ContributionsSnapshot]
}

func NewContributionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ContributionServiceClient {
	return &ContributionServiceClient{
		reportContribution:  newClient[ReportContributionRequest, ContributionResponse](httpClient, baseURL, ContributionServiceReportContributionProcedure, opts),
		confirmContribution: newClient[ConfirmContributionRequest, ContributionResponse](httpClient, baseURL, ContributionServiceConfirmContributionProcedure, opts),
		rejectContribution:  newClient[RejectContributionRequest, ContributionResponse](httpClient, baseURL, ContributionServiceRejectContributionProcedure, opts),
		listContributions:   newClient[ListContributionsRequest, ListContributionsResponse](httpClient, baseURL, ContributionServiceListContributionsProcedure, opts),
		getTotals:           newClient[GetTotalsRequest, Totals](httpClient, baseURL, ContributionServiceGetTotalsProcedure, opts),
		watchContributions:  newClient[WatchContributionsRequest, ContributionsSnapshot](httpClient, baseURL, ContributionServiceWatchContributionsProcedure, opts),
	}
}

func (c *ContributionServiceClient) ReportContribution(ctx context.Context, req *connect.Request[ReportContributionRequest]) (*connect.Response[ContributionResponse], error) {
	return c.reportContribution.CallUnary(ctx, req)
}

func (c *ContributionServiceClient) ConfirmContribution(ctx context.Context, req *connect.Request[ConfirmContributionRequest]) (*connect.Response[ContributionResponse], error) {
	return c.confirmContribution.CallUnary(ctx, req)
}

func (c *ContributionServiceClient) RejectContribution(ctx context.Context, req *connect.Request[RejectContributionRequest]) (*connect.Response[ContributionResponse], error) {
	return c.rejectContribution.CallUnary(ctx, req)
}

func (c *ContributionServiceClient) ListContributions(ctx context.Context, req *connect.Request[ListContributionsRequest]) (*connect.Response[ListContributionsResponse], error) {
	return c.listContributions.CallUnary(ctx, req)
}

func (c *ContributionServiceClient) GetTotals(ctx context.Context, req *connect.Request[GetTotalsRequest]) (*connect.Response[Totals], error) {
	return c.getTotals.CallUnary(ctx, req)
}

func (c *ContributionServiceClient) WatchContributions(ctx context.Context, req *connect.Request[WatchContributionsRequest]) (*connect.ServerStreamForClient[ContributionsSnapshot], error) {
	return c.watchContributions.CallServerStream(ctx, req)
}

// ReportServiceClient calls the report service.
type ReportServiceClient struct {
	getReport          *connect.Client[GetReportRequest, GetReportResponse]
	getAvailableMonths *connect.Client[GetAvailableMonthsRequest, GetAvailableMonthsResponse]
	exportReport       *connect.Client[ExportReportRequest, ExportReportResponse]
}

func NewReportServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ReportServiceClient {
	return &ReportServiceClient{
		getReport:          newClient[GetReportRequest, GetReportResponse](httpClient, baseURL, ReportServiceGetReportProcedure, opts),
		getAvailableMonths: newClient[GetAvailableMonthsRequest, GetAvailableMonthsResponse](httpClient, baseURL, ReportServiceGetAvailableMonthsProcedure, opts),
		exportReport:       newClient[ExportReportRequest, ExportReportResponse](httpClient, baseURL, ReportServiceExportReportProcedure, opts),
	}
}

func (c *ReportServiceClient) GetReport(ctx context.Context, req *connect.Request[GetReportRequest]) (*connect.Response[GetReportResponse], error) {
	return c.getReport.CallUnary(ctx, req)
}

func (c *ReportServiceClient) GetAvailableMonths(ctx context.Context, req *connect.Request[GetAvailableMonthsRequest]) (*connect.Response[GetAvailableMonthsResponse], error) {
	return c.getAvailableMonths.CallUnary(ctx, req)
}

func (c *ReportServiceClient) ExportReport(ctx context.Context, req *connect.Request[ExportReportRequest]) (*connect.Response[ExportReportResponse], error) {
	return c.exportReport.CallUnary(ctx, req)
}
