package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/natiapp/internal/events"
	"github.com/mmynk/natiapp/internal/proof"
	"github.com/mmynk/natiapp/internal/rpc"
)

var pngProof = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func TestReportContribution(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	g := env.group(t)
	outsider := env.register(t, "otro@example.com", "Otro")

	resp, err := env.contributions.ReportContribution(ctx, withToken(&rpc.ReportContributionRequest{
		NatilleraID: g.natillera.ID,
		Amount:      50000,
		QuotaMonth:  "2025-03",
		PaidAt:      "2025-03-05",
	}, g.ana.token))
	if err != nil {
		t.Fatalf("ReportContribution failed: %v", err)
	}

	c := resp.Msg.Contribution
	if c.Status != "pending" || c.StatusLabel != "pendiente" {
		t.Errorf("expected pending contribution, got %s/%s", c.Status, c.StatusLabel)
	}
	if c.DisplayName != "Ana" || c.UserID != g.ana.userID {
		t.Errorf("expected contribution by Ana, got %s (%s)", c.DisplayName, c.UserID)
	}
	if c.AmountDisplay != "$50.000" || c.QuotaMonthName != "Marzo 2025" {
		t.Errorf("unexpected display fields %q %q", c.AmountDisplay, c.QuotaMonthName)
	}
	if want := time.Date(2025, 3, 5, 0, 0, 0, 0, cot); !c.PaidAt.Equal(want) {
		t.Errorf("expected paid at %v, got %v", want, c.PaidAt)
	}

	last := env.events.Events()
	if e := last[len(last)-1]; e.Kind != events.ContributionReported || e.ContributionID != c.ID || e.Amount != 50000 {
		t.Errorf("expected contribution.reported event, got %+v", e)
	}

	invalid := []struct {
		name string
		req  *rpc.ReportContributionRequest
	}{
		{"zero amount", &rpc.ReportContributionRequest{NatilleraID: g.natillera.ID, Amount: 0, QuotaMonth: "2025-03"}},
		{"negative amount", &rpc.ReportContributionRequest{NatilleraID: g.natillera.ID, Amount: -5, QuotaMonth: "2025-03"}},
		{"bad month", &rpc.ReportContributionRequest{NatilleraID: g.natillera.ID, Amount: 1, QuotaMonth: "2025-13"}},
		{"bad paid date", &rpc.ReportContributionRequest{NatilleraID: g.natillera.ID, Amount: 1, QuotaMonth: "2025-03", PaidAt: "ayer"}},
		{"no natillera", &rpc.ReportContributionRequest{Amount: 1, QuotaMonth: "2025-03"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.contributions.ReportContribution(ctx, withToken(tt.req, g.ana.token))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}

	t.Run("outsider", func(t *testing.T) {
		_, err := env.contributions.ReportContribution(ctx, withToken(&rpc.ReportContributionRequest{
			NatilleraID: g.natillera.ID, Amount: 50000, QuotaMonth: "2025-03",
		}, outsider.token))
		requireCode(t, err, connect.CodeNotFound)
	})
}

func TestReportContributionProof(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	g := env.group(t)

	resp, err := env.contributions.ReportContribution(ctx, withToken(&rpc.ReportContributionRequest{
		NatilleraID: g.natillera.ID,
		Amount:      50000,
		QuotaMonth:  "2025-04",
		Proof:       pngProof,
	}, g.luis.token))
	if err != nil {
		t.Fatalf("ReportContribution with proof failed: %v", err)
	}
	if want := "https://res.cloudinary.com/natiapp/" + resp.Msg.Contribution.ID; resp.Msg.Contribution.ProofURL != want {
		t.Errorf("expected proof URL %s, got %s", want, resp.Msg.Contribution.ProofURL)
	}

	_, err = env.contributions.ReportContribution(ctx, withToken(&rpc.ReportContributionRequest{
		NatilleraID: g.natillera.ID,
		Amount:      50000,
		QuotaMonth:  "2025-04",
		Proof:       []byte("just some text, not a receipt"),
	}, g.luis.token))
	requireCode(t, err, connect.CodeInvalidArgument)

	env.uploader.fail(proof.ErrDisabled)
	_, err = env.contributions.ReportContribution(ctx, withToken(&rpc.ReportContributionRequest{
		NatilleraID: g.natillera.ID,
		Amount:      50000,
		QuotaMonth:  "2025-05",
		Proof:       pngProof,
	}, g.luis.token))
	requireCode(t, err, connect.CodeFailedPrecondition)

	env.uploader.fail(errors.New("cloudinary timeout"))
	_, err = env.contributions.ReportContribution(ctx, withToken(&rpc.ReportContributionRequest{
		NatilleraID: g.natillera.ID,
		Amount:      50000,
		QuotaMonth:  "2025-05",
		Proof:       pngProof,
	}, g.luis.token))
	requireCode(t, err, connect.CodeInternal)

	list, err := env.contributions.ListContributions(ctx, withToken(&rpc.ListContributionsRequest{
		NatilleraID: g.natillera.ID,
	}, g.luis.token))
	if err != nil {
		t.Fatalf("ListContributions failed: %v", err)
	}
	if len(list.Msg.Contributions) != 1 {
		t.Errorf("expected failed uploads to store nothing, got %d contributions", len(list.Msg.Contributions))
	}
}

func TestReviewContribution(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	g := env.group(t)
	c := env.report(t, g.ana, g.natillera.ID, "2025-01", 50000)

	t.Run("member cannot review", func(t *testing.T) {
		_, err := env.contributions.ConfirmContribution(ctx, withToken(&rpc.ConfirmContributionRequest{
			ContributionID: c.ID,
		}, g.luis.token))
		requireCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("missing contribution", func(t *testing.T) {
		_, err := env.contributions.ConfirmContribution(ctx, withToken(&rpc.ConfirmContributionRequest{
			ContributionID: "missing",
		}, g.admin.token))
		requireCode(t, err, connect.CodeNotFound)
	})

	confirmed := env.confirm(t, g.admin, c.ID)
	if confirmed.Status != "confirmed" || confirmed.ConfirmedAt == nil {
		t.Fatalf("expected confirmed with timestamp, got %+v", confirmed)
	}

	t.Run("reason too short", func(t *testing.T) {
		_, err := env.contributions.RejectContribution(ctx, withToken(&rpc.RejectContributionRequest{
			ContributionID: c.ID,
			Reason:         "  123456789  ",
		}, g.admin.token))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	resp, err := env.contributions.RejectContribution(ctx, withToken(&rpc.RejectContributionRequest{
		ContributionID: c.ID,
		Reason:         "Comprobante ilegible",
	}, g.admin.token))
	if err != nil {
		t.Fatalf("RejectContribution failed: %v", err)
	}
	rejected := resp.Msg.Contribution
	if rejected.Status != "rejected" {
		t.Errorf("expected rejected, got %s", rejected.Status)
	}
	if rejected.RejectionReason != "Comprobante ilegible" {
		t.Errorf("unexpected reason %q", rejected.RejectionReason)
	}
	if rejected.ConfirmedAt != nil {
		t.Error("expected confirmedAt to be cleared")
	}
	if rejected.RejectedAt == nil {
		t.Error("expected rejectedAt to be set")
	}

	// The stored record matches the response.
	list, err := env.contributions.ListContributions(ctx, withToken(&rpc.ListContributionsRequest{
		NatilleraID: g.natillera.ID,
		Status:      "rejected",
	}, g.ana.token))
	if err != nil {
		t.Fatalf("ListContributions failed: %v", err)
	}
	if len(list.Msg.Contributions) != 1 || list.Msg.Contributions[0].ConfirmedAt != nil {
		t.Errorf("expected one stored rejection without confirmation, got %+v", list.Msg.Contributions)
	}

	var kinds []events.Kind
	for _, e := range env.events.Events() {
		if e.ContributionID == c.ID {
			kinds = append(kinds, e.Kind)
		}
	}
	want := []events.Kind{events.ContributionReported, events.ContributionConfirmed, events.ContributionRejected}
	if len(kinds) != len(want) {
		t.Fatalf("expected events %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}

func TestListContributionsAndTotals(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	g := env.group(t)

	for _, month := range []string{"2025-01", "2025-02", "2025-03"} {
		c := env.report(t, g.ana, g.natillera.ID, month, 50000)
		env.confirm(t, g.admin, c.ID)
	}
	env.report(t, g.luis, g.natillera.ID, "2025-01", 50000)

	t.Run("member sees own", func(t *testing.T) {
		resp, err := env.contributions.ListContributions(ctx, withToken(&rpc.ListContributionsRequest{
			NatilleraID: g.natillera.ID,
		}, g.luis.token))
		if err != nil {
			t.Fatalf("ListContributions failed: %v", err)
		}
		if len(resp.Msg.Contributions) != 1 || resp.Msg.Contributions[0].UserID != g.luis.userID {
			t.Errorf("expected only Luis's contribution, got %d", len(resp.Msg.Contributions))
		}
	})

	t.Run("member cannot list all", func(t *testing.T) {
		_, err := env.contributions.ListContributions(ctx, withToken(&rpc.ListContributionsRequest{
			NatilleraID: g.natillera.ID,
			All:         true,
		}, g.luis.token))
		requireCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("admin lists all", func(t *testing.T) {
		resp, err := env.contributions.ListContributions(ctx, withToken(&rpc.ListContributionsRequest{
			NatilleraID: g.natillera.ID,
			All:         true,
		}, g.admin.token))
		if err != nil {
			t.Fatalf("ListContributions failed: %v", err)
		}
		if len(resp.Msg.Contributions) != 4 {
			t.Errorf("expected 4 contributions, got %d", len(resp.Msg.Contributions))
		}

		pending, err := env.contributions.ListContributions(ctx, withToken(&rpc.ListContributionsRequest{
			NatilleraID: g.natillera.ID,
			All:         true,
			Status:      "pending",
		}, g.admin.token))
		if err != nil {
			t.Fatalf("ListContributions failed: %v", err)
		}
		if len(pending.Msg.Contributions) != 1 || pending.Msg.Contributions[0].DisplayName != "Luis" {
			t.Errorf("expected Luis's pending contribution, got %+v", pending.Msg.Contributions)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := env.contributions.ListContributions(ctx, withToken(&rpc.ListContributionsRequest{
			NatilleraID: g.natillera.ID,
			Status:      "approved",
		}, g.admin.token))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("totals", func(t *testing.T) {
		resp, err := env.contributions.GetTotals(ctx, withToken(&rpc.GetTotalsRequest{
			NatilleraID: g.natillera.ID,
		}, g.ana.token))
		if err != nil {
			t.Fatalf("GetTotals failed: %v", err)
		}
		if resp.Msg.GroupTotal != 150000 || resp.Msg.GroupTotalDisplay != "$150.000" {
			t.Errorf("expected group total $150.000, got %d %q", resp.Msg.GroupTotal, resp.Msg.GroupTotalDisplay)
		}
		if resp.Msg.MyTotal != 150000 {
			t.Errorf("expected Ana's total 150000, got %d", resp.Msg.MyTotal)
		}
		// The 2025 natillera has ended, so all twelve quotas are due.
		if resp.Msg.DuePeriods != 12 || resp.Msg.MyExpected != 600000 {
			t.Errorf("expected 12 quotas worth 600000, got %d worth %d", resp.Msg.DuePeriods, resp.Msg.MyExpected)
		}
		if resp.Msg.MyBalance != -450000 || resp.Msg.MyBalanceDisplay != "-$450.000" || resp.Msg.UpToDate {
			t.Errorf("expected Ana behind by $450.000, got %d %q", resp.Msg.MyBalance, resp.Msg.MyBalanceDisplay)
		}

		luis, err := env.contributions.GetTotals(ctx, withToken(&rpc.GetTotalsRequest{
			NatilleraID: g.natillera.ID,
		}, g.luis.token))
		if err != nil {
			t.Fatalf("GetTotals failed: %v", err)
		}
		if luis.Msg.MyTotal != 0 || luis.Msg.MyTotalDisplay != "$0" {
			t.Errorf("expected $0 for Luis, got %d %q", luis.Msg.MyTotal, luis.Msg.MyTotalDisplay)
		}
	})
}

func TestWatchContributions(t *testing.T) {
	env := setupTestServer(t)
	g := env.group(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := env.contributions.WatchContributions(ctx, withToken(&rpc.WatchContributionsRequest{
		NatilleraID: g.natillera.ID,
	}, g.ana.token))
	if err != nil {
		t.Fatalf("WatchContributions failed: %v", err)
	}
	defer stream.Close()

	if !stream.Receive() {
		t.Fatalf("expected initial snapshot: %v", stream.Err())
	}
	initial := stream.Msg()
	if len(initial.Contributions) != 0 || initial.Totals.GroupTotal != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial)
	}

	mine := env.report(t, g.ana, g.natillera.ID, "2025-01", 50000)
	other := env.report(t, g.luis, g.natillera.ID, "2025-01", 30000)
	env.confirm(t, g.admin, mine.ID)
	env.confirm(t, g.admin, other.ID)

	// Snapshots may be coalesced; wait for the state after the last change.
	var last *rpc.ContributionsSnapshot
	for stream.Receive() {
		last = stream.Msg()
		if last.Totals.GroupTotal == 80000 {
			break
		}
	}
	if last == nil || last.Totals.GroupTotal != 80000 {
		t.Fatalf("expected group total 80000, last snapshot %+v, err %v", last, stream.Err())
	}

	if last.Totals.MyTotal != 50000 {
		t.Errorf("expected Ana's total 50000, got %d", last.Totals.MyTotal)
	}
	if len(last.Contributions) != 1 || last.Contributions[0].ID != mine.ID {
		t.Errorf("expected only Ana's contribution to be visible, got %d", len(last.Contributions))
	}
	if last.Contributions[0].Status != "confirmed" {
		t.Errorf("expected confirmed contribution, got %s", last.Contributions[0].Status)
	}
}

func TestWatchContributionsAccess(t *testing.T) {
	env := setupTestServer(t)
	g := env.group(t)
	outsider := env.register(t, "otro@example.com", "Otro")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := env.contributions.WatchContributions(ctx, withToken(&rpc.WatchContributionsRequest{
		NatilleraID: g.natillera.ID,
	}, outsider.token))
	if err != nil {
		requireCode(t, err, connect.CodeNotFound)
		return
	}
	defer stream.Close()

	if stream.Receive() {
		t.Fatal("expected no snapshot for a non-member")
	}
	requireCode(t, stream.Err(), connect.CodeNotFound)
}
