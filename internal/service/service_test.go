package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/natiapp/internal/auth"
	"github.com/mmynk/natiapp/internal/events"
	"github.com/mmynk/natiapp/internal/middleware"
	"github.com/mmynk/natiapp/internal/report"
	"github.com/mmynk/natiapp/internal/rpc"
	"github.com/mmynk/natiapp/internal/storage/sqlite"
)

var cot = time.FixedZone("COT", -5*60*60)

// fakeUploader records uploads and returns a fixed URL, or err when set.
type fakeUploader struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, name string, _ []byte) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return "", u.err
	}
	u.names = append(u.names, name)
	return "https://res.cloudinary.com/natiapp/" + name, nil
}

func (u *fakeUploader) fail(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.err = err
}

// exportCounter counts export outcomes by format.
type exportCounter struct {
	mu     sync.Mutex
	ok     map[string]int
	failed int
}

func (c *exportCounter) ObserveExport(format string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failed++
		return
	}
	if c.ok == nil {
		c.ok = make(map[string]int)
	}
	c.ok[format]++
}

type testEnv struct {
	store         *sqlite.SQLiteStore
	events        *events.Memory
	uploader      *fakeUploader
	exports       *exportCounter
	auth          *rpc.AuthServiceClient
	natilleras    *rpc.NatilleraServiceClient
	contributions *rpc.ContributionServiceClient
	reports       *rpc.ReportServiceClient
}

// setupTestServer serves every service behind the auth interceptor.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "natiapp-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("failed to create store: %v", err)
	}

	env := &testEnv{
		store:    store,
		events:   &events.Memory{},
		uploader: &fakeUploader{},
		exports:  &exportCounter{},
	}

	jwtManager := auth.NewJWTManager("test-secret-key-123", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	engine := report.NewEngine(store, report.Options{Location: cot})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := connect.WithInterceptors(
		middleware.NewAuthInterceptor(jwtManager, rpc.PublicProcedures),
		middleware.LoggingInterceptor{},
	)

	mux := http.NewServeMux()
	mux.Handle(rpc.NewAuthServiceHandler(NewAuthService(authenticator, authenticator, jwtManager, logger), opts))
	mux.Handle(rpc.NewNatilleraServiceHandler(NewNatilleraService(store, engine, env.events), opts))
	mux.Handle(rpc.NewContributionServiceHandler(NewContributionService(store, engine, env.events, env.uploader), opts))
	mux.Handle(rpc.NewReportServiceHandler(NewReportService(store, engine, env.exports), opts))

	server := httptest.NewServer(mux)

	env.auth = rpc.NewAuthServiceClient(http.DefaultClient, server.URL)
	env.natilleras = rpc.NewNatilleraServiceClient(http.DefaultClient, server.URL)
	env.contributions = rpc.NewContributionServiceClient(http.DefaultClient, server.URL)
	env.reports = rpc.NewReportServiceClient(http.DefaultClient, server.URL)

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.RemoveAll(tempDir)
	})

	return env
}

// withToken wraps msg in a request carrying the session token.
func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func empty(token string) *connect.Request[emptypb.Empty] {
	return withToken(&emptypb.Empty{}, token)
}

type session struct {
	token  string
	userID string
}

func (e *testEnv) register(t *testing.T, email, displayName string) session {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&rpc.RegisterRequest{
		Email:       email,
		Password:    "password123",
		DisplayName: displayName,
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return session{token: resp.Msg.Token, userID: resp.Msg.User.ID}
}

func (e *testEnv) createNatillera(t *testing.T, admin session) *rpc.Natillera {
	t.Helper()
	resp, err := e.natilleras.CreateNatillera(context.Background(), withToken(&rpc.CreateNatilleraRequest{
		Name:        "Natillera Familia 2025",
		QuotaAmount: 50000,
		Periodicity: "monthly",
		StartDate:   "2025-01-01",
		EndDate:     "2025-12-31",
	}, admin.token))
	if err != nil {
		t.Fatalf("CreateNatillera failed: %v", err)
	}
	return resp.Msg.Natillera
}

func (e *testEnv) join(t *testing.T, member session, code string) {
	t.Helper()
	_, err := e.natilleras.JoinNatillera(context.Background(), withToken(&rpc.JoinNatilleraRequest{
		InvitationCode: code,
	}, member.token))
	if err != nil {
		t.Fatalf("JoinNatillera failed: %v", err)
	}
}

func (e *testEnv) report(t *testing.T, member session, natilleraID, month string, amount int64) *rpc.Contribution {
	t.Helper()
	resp, err := e.contributions.ReportContribution(context.Background(), withToken(&rpc.ReportContributionRequest{
		NatilleraID: natilleraID,
		Amount:      amount,
		QuotaMonth:  month,
	}, member.token))
	if err != nil {
		t.Fatalf("ReportContribution failed: %v", err)
	}
	return resp.Msg.Contribution
}

func (e *testEnv) confirm(t *testing.T, admin session, contributionID string) *rpc.Contribution {
	t.Helper()
	resp, err := e.contributions.ConfirmContribution(context.Background(), withToken(&rpc.ConfirmContributionRequest{
		ContributionID: contributionID,
	}, admin.token))
	if err != nil {
		t.Fatalf("ConfirmContribution failed: %v", err)
	}
	return resp.Msg.Contribution
}

// group is a natillera with an admin and two members.
type group struct {
	natillera *rpc.Natillera
	admin     session
	ana       session
	luis      session
}

func (e *testEnv) group(t *testing.T) group {
	t.Helper()
	g := group{
		admin: e.register(t, "admin@example.com", "Marta Admin"),
		ana:   e.register(t, "ana@example.com", "Ana"),
		luis:  e.register(t, "luis@example.com", "Luis"),
	}
	g.natillera = e.createNatillera(t, g.admin)
	e.join(t, g.ana, g.natillera.InvitationCode)
	e.join(t, g.luis, g.natillera.InvitationCode)
	return g
}

// requireCode fails unless err is a Connect error with the given code.
func requireCode(t *testing.T, err error, want connect.Code) *connect.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Fatalf("expected code %v, got %v (%s)", want, connectErr.Code(), connectErr.Message())
	}
	return connectErr
}
