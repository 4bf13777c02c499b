package rpc

import "time"

// User is a public account profile.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a session token for the returned user.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type UpdateDisplayNameRequest struct {
	DisplayName string `json:"displayName"`
}

type UserResponse struct {
	User *User `json:"user"`
	// Token is refreshed when the profile changes.
	Token string `json:"token,omitempty"`
}

// Natillera is a savings group with display-ready fields.
type Natillera struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	AdminID          string    `json:"adminId"`
	QuotaAmount      int64     `json:"quotaAmount"`
	QuotaDisplay     string    `json:"quotaDisplay"`
	Periodicity      string    `json:"periodicity"`
	PeriodicityLabel string    `json:"periodicityLabel"`
	StartDate        string    `json:"startDate"`
	EndDate          string    `json:"endDate"`
	InvitationCode   string    `json:"invitationCode,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Membership struct {
	ID          string    `json:"id"`
	NatilleraID string    `json:"natilleraId"`
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// CreateNatilleraRequest dates use YYYY-MM-DD.
type CreateNatilleraRequest struct {
	Name        string `json:"name"`
	QuotaAmount int64  `json:"quotaAmount"`
	Periodicity string `json:"periodicity"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type NatilleraResponse struct {
	Natillera  *Natillera  `json:"natillera"`
	Membership *Membership `json:"membership"`
}

type GetNatilleraRequest struct {
	NatilleraID string `json:"natilleraId"`
}

type JoinNatilleraRequest struct {
	InvitationCode string `json:"invitationCode"`
}

type NatilleraSummary struct {
	Natillera   *Natillera `json:"natillera"`
	Role        string     `json:"role"`
	MemberCount int        `json:"memberCount"`
}

type ListMyNatillerasResponse struct {
	Natilleras []*NatilleraSummary `json:"natilleras"`
}

type ListMembersRequest struct {
	NatilleraID string `json:"natilleraId"`
}

type Member struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
	// Joined is the relative join date ("Hace 3 días").
	Joined string `json:"joined"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

type ProfileStatsResponse struct {
	Natilleras        int    `json:"natilleras"`
	TotalSaved        int64  `json:"totalSaved"`
	TotalSavedDisplay string `json:"totalSavedDisplay"`
	ConfirmedPayments int    `json:"confirmedPayments"`
}

// ReportContributionRequest reports a payment. PaidAt uses YYYY-MM-DD and
// defaults to today. Proof, when present, is uploaded and replaces ProofURL.
type ReportContributionRequest struct {
	NatilleraID string `json:"natilleraId"`
	Amount      int64  `json:"amount"`
	QuotaMonth  string `json:"quotaMonth"`
	PaidAt      string `json:"paidAt,omitempty"`
	ProofURL    string `json:"proofUrl,omitempty"`
	Proof       []byte `json:"proof,omitempty"`
}

type Contribution struct {
	ID              string     `json:"id"`
	NatilleraID     string     `json:"natilleraId"`
	UserID          string     `json:"userId"`
	DisplayName     string     `json:"displayName,omitempty"`
	Email           string     `json:"email,omitempty"`
	Amount          int64      `json:"amount"`
	AmountDisplay   string     `json:"amountDisplay"`
	QuotaMonth      string     `json:"quotaMonth"`
	QuotaMonthName  string     `json:"quotaMonthName"`
	PaidAt          time.Time  `json:"paidAt"`
	ReportedAt      time.Time  `json:"reportedAt"`
	Reported        string     `json:"reported"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"statusLabel"`
	ConfirmedAt     *time.Time `json:"confirmedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	ProofURL        string     `json:"proofUrl,omitempty"`
}

type ContributionResponse struct {
	Contribution *Contribution `json:"contribution"`
}

type ConfirmContributionRequest struct {
	ContributionID string `json:"contributionId"`
}

type RejectContributionRequest struct {
	ContributionID string `json:"contributionId"`
	Reason         string `json:"reason"`
}

// ListContributionsRequest lists the caller's contributions, or every
// member's when All is set by an admin.
type ListContributionsRequest struct {
	NatilleraID string `json:"natilleraId"`
	Status      string `json:"status,omitempty"`
	All         bool   `json:"all,omitempty"`
}

type ListContributionsResponse struct {
	Contributions []*Contribution `json:"contributions"`
}

type GetTotalsRequest struct {
	NatilleraID string `json:"natilleraId"`
}

type Totals struct {
	GroupTotal        int64  `json:"groupTotal"`
	GroupTotalDisplay string `json:"groupTotalDisplay"`
	MyTotal           int64  `json:"myTotal"`
	MyTotalDisplay    string `json:"myTotalDisplay"`

	// Quota progress of the caller: quotas due so far and how far ahead
	// (positive) or behind (negative) the confirmed total is.
	DuePeriods        int    `json:"duePeriods"`
	MyExpected        int64  `json:"myExpected"`
	MyExpectedDisplay string `json:"myExpectedDisplay"`
	MyBalance         int64  `json:"myBalance"`
	MyBalanceDisplay  string `json:"myBalanceDisplay"`
	UpToDate          bool   `json:"upToDate"`
}

type WatchContributionsRequest struct {
	NatilleraID string `json:"natilleraId"`
}

// ContributionsSnapshot is the full current state of a natillera's
// contributions as visible to the caller.
type ContributionsSnapshot struct {
	Contributions []*Contribution `json:"contributions"`
	Totals        *Totals         `json:"totals"`
}

// ReportFilter mirrors report.Filter; dates use YYYY-MM-DD.
type ReportFilter struct {
	MemberID   string `json:"memberId,omitempty"`
	Status     string `json:"status,omitempty"`
	DateFrom   string `json:"dateFrom,omitempty"`
	DateTo     string `json:"dateTo,omitempty"`
	QuotaMonth string `json:"quotaMonth,omitempty"`
}

type GetReportRequest struct {
	NatilleraID string        `json:"natilleraId"`
	Filter      *ReportFilter `json:"filter,omitempty"`
}

type Summary struct {
	Count                  int    `json:"count"`
	Confirmed              int    `json:"confirmed"`
	Pending                int    `json:"pending"`
	Rejected               int    `json:"rejected"`
	ConfirmedAmount        int64  `json:"confirmedAmount"`
	PendingAmount          int64  `json:"pendingAmount"`
	RejectedAmount         int64  `json:"rejectedAmount"`
	ConfirmedAmountDisplay string `json:"confirmedAmountDisplay"`
	PendingAmountDisplay   string `json:"pendingAmountDisplay"`
}

type MemberStat struct {
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	Summary
}

type MemberBalance struct {
	UserID          string `json:"userId"`
	DisplayName     string `json:"displayName"`
	DuePeriods      int    `json:"duePeriods"`
	Expected        int64  `json:"expected"`
	ExpectedDisplay string `json:"expectedDisplay"`
	Paid            int64  `json:"paid"`
	PaidDisplay     string `json:"paidDisplay"`
	Balance         int64  `json:"balance"`
	BalanceDisplay  string `json:"balanceDisplay"`
	UpToDate        bool   `json:"upToDate"`
}

type GetReportResponse struct {
	Natillera     *Natillera       `json:"natillera"`
	Contributions []*Contribution  `json:"contributions"`
	Summary       *Summary         `json:"summary"`
	Overall       *Summary         `json:"overall"`
	PerMember     []*MemberStat    `json:"perMember"`
	Balances      []*MemberBalance `json:"balances"`
}

type GetAvailableMonthsRequest struct {
	NatilleraID string `json:"natilleraId"`
}

type Month struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type GetAvailableMonthsResponse struct {
	Months []*Month `json:"months"`
}

type ExportReportRequest struct {
	NatilleraID string        `json:"natilleraId"`
	Filter      *ReportFilter `json:"filter,omitempty"`
	Format      string        `json:"format"`
}

type ExportReportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}
