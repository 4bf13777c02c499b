package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mmynk/natiapp/internal/auth"
	"github.com/mmynk/natiapp/internal/models"
)

const (
	whoamiProcedure  = "/test.v1.TestService/Whoami"
	publicProcedure  = "/test.v1.TestService/Ping"
	streamProcedure  = "/test.v1.TestService/Tick"
	missingProcedure = "/test.v1.TestService/Missing"
	brokenProcedure  = "/test.v1.TestService/Broken"
)

func whoami(ctx context.Context, _ *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	return connect.NewResponse(wrapperspb.String(GetUserID(ctx) + "|" + GetEmail(ctx))), nil
}

func missing(context.Context, *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	return nil, connect.NewError(connect.CodeNotFound, errors.New("natillera no encontrada"))
}

func broken(context.Context, *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	return nil, errors.New("database is locked")
}

func tick(ctx context.Context, _ *connect.Request[wrapperspb.StringValue], stream *connect.ServerStream[wrapperspb.StringValue]) error {
	for i := 0; i < 2; i++ {
		if err := stream.Send(wrapperspb.String(GetUserID(ctx))); err != nil {
			return err
		}
	}
	return nil
}

type testServer struct {
	url      string
	jwt      *auth.JWTManager
	metrics  *Metrics
	registry *prometheus.Registry
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	jwtManager := auth.NewJWTManager("middleware-test-secret", time.Hour)
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	opts := connect.WithInterceptors(
		metrics.Interceptor(),
		NewAuthInterceptor(jwtManager, map[string]bool{publicProcedure: true}),
		LoggingInterceptor{},
	)

	mux := http.NewServeMux()
	mux.Handle(whoamiProcedure, connect.NewUnaryHandler(whoamiProcedure, whoami, opts))
	mux.Handle(publicProcedure, connect.NewUnaryHandler(publicProcedure, whoami, opts))
	mux.Handle(streamProcedure, connect.NewServerStreamHandler(streamProcedure, tick, opts))
	mux.Handle(missingProcedure, connect.NewUnaryHandler(missingProcedure, missing, opts))
	mux.Handle(brokenProcedure, connect.NewUnaryHandler(brokenProcedure, broken, opts))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testServer{url: server.URL, jwt: jwtManager, metrics: metrics, registry: registry}
}

func (s *testServer) call(t *testing.T, procedure, token string) (string, error) {
	t.Helper()
	client := connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](http.DefaultClient, s.url+procedure)
	req := connect.NewRequest(wrapperspb.String(""))
	if token != "" {
		req.Header().Set("Authorization", token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return "", err
	}
	return resp.Msg.GetValue(), nil
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	token, err := s.jwt.Generate(&models.User{ID: "user-1", Email: "ana@example.com", DisplayName: "Ana"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestAuthInterceptor(t *testing.T) {
	srv := setupTestServer(t)
	token := srv.token(t)

	t.Run("valid token", func(t *testing.T) {
		got, err := srv.call(t, whoamiProcedure, "Bearer "+token)
		if err != nil {
			t.Fatalf("call failed: %v", err)
		}
		if got != "user-1|ana@example.com" {
			t.Errorf("expected caller in context, got %q", got)
		}
	})

	t.Run("lower case scheme", func(t *testing.T) {
		if _, err := srv.call(t, whoamiProcedure, "bearer "+token); err != nil {
			t.Fatalf("call failed: %v", err)
		}
	})

	t.Run("public procedure", func(t *testing.T) {
		got, err := srv.call(t, publicProcedure, "")
		if err != nil {
			t.Fatalf("call failed: %v", err)
		}
		if got != "|" {
			t.Errorf("expected anonymous caller, got %q", got)
		}
	})

	rejected := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", auth.ErrMissingToken},
		{"wrong scheme", "Basic " + token, auth.ErrInvalidToken},
		{"bearer without token", "Bearer ", auth.ErrInvalidToken},
		{"garbage token", "Bearer not-a-jwt", auth.ErrInvalidToken},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.call(t, whoamiProcedure, tt.header)
			if connect.CodeOf(err) != connect.CodeUnauthenticated {
				t.Fatalf("expected unauthenticated, got %v", err)
			}
			var connectErr *connect.Error
			if errors.As(err, &connectErr) && connectErr.Message() != tt.want.Error() {
				t.Errorf("expected message %q, got %q", tt.want.Error(), connectErr.Message())
			}
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewJWTManager("another-secret-value", time.Hour)
		forged, err := other.Generate(&models.User{ID: "user-2", Email: "x@example.com"})
		if err != nil {
			t.Fatal(err)
		}
		_, err = srv.call(t, whoamiProcedure, "Bearer "+forged)
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Fatalf("expected unauthenticated, got %v", err)
		}
	})
}

func TestAuthInterceptorStreaming(t *testing.T) {
	srv := setupTestServer(t)
	client := connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](http.DefaultClient, srv.url+streamProcedure)

	req := connect.NewRequest(wrapperspb.String(""))
	req.Header().Set("Authorization", "Bearer "+srv.token(t))
	stream, err := client.CallServerStream(context.Background(), req)
	if err != nil {
		t.Fatalf("CallServerStream failed: %v", err)
	}
	var got []string
	for stream.Receive() {
		got = append(got, stream.Msg().GetValue())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	stream.Close()
	if len(got) != 2 || got[0] != "user-1" {
		t.Errorf("expected two messages for user-1, got %v", got)
	}

	stream, err = client.CallServerStream(context.Background(), connect.NewRequest(wrapperspb.String("")))
	if err == nil {
		defer stream.Close()
		if stream.Receive() {
			t.Fatal("expected no messages without a token")
		}
		err = stream.Err()
	}
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestMetrics(t *testing.T) {
	srv := setupTestServer(t)
	token := srv.token(t)

	for i := 0; i < 2; i++ {
		if _, err := srv.call(t, whoamiProcedure, "Bearer "+token); err != nil {
			t.Fatalf("call failed: %v", err)
		}
	}
	if _, err := srv.call(t, whoamiProcedure, ""); err == nil {
		t.Fatal("expected unauthenticated call to fail")
	}

	if got := counterValue(t, srv.metrics.requests.WithLabelValues(whoamiProcedure, "ok")); got != 2 {
		t.Errorf("expected 2 successful calls, got %v", got)
	}
	if got := counterValue(t, srv.metrics.requests.WithLabelValues(whoamiProcedure, "unauthenticated")); got != 1 {
		t.Errorf("expected 1 unauthenticated call, got %v", got)
	}

	families, err := srv.registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	var found bool
	for _, f := range families {
		if f.GetName() == "natiapp_rpc_duration_seconds" {
			found = true
			if n := len(f.GetMetric()); n != 1 {
				t.Errorf("expected one duration series, got %d", n)
			}
			if c := f.GetMetric()[0].GetHistogram().GetSampleCount(); c != 3 {
				t.Errorf("expected 3 observations, got %d", c)
			}
		}
	}
	if !found {
		t.Error("duration histogram not registered")
	}

	srv.metrics.ObserveExport("pdf", nil)
	srv.metrics.ObserveExport("pdf", errors.New("boom"))
	srv.metrics.ObserveExport("csv", nil)
	if got := counterValue(t, srv.metrics.exports.WithLabelValues("pdf", "ok")); got != 1 {
		t.Errorf("expected 1 pdf export, got %v", got)
	}
	if got := counterValue(t, srv.metrics.exports.WithLabelValues("pdf", "error")); got != 1 {
		t.Errorf("expected 1 failed pdf export, got %v", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveExport("csv", nil)
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	srv := setupTestServer(t)
	if _, err := srv.call(t, whoamiProcedure, "Bearer "+srv.token(t)); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if _, err := srv.call(t, whoamiProcedure, ""); err == nil {
		t.Fatal("expected unauthenticated call to fail")
	}
	token := "Bearer " + srv.token(t)
	if _, err := srv.call(t, missingProcedure, token); connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := srv.call(t, brokenProcedure, token); err == nil {
		t.Fatal("expected broken call to fail")
	}

	out := buf.String()
	if !strings.Contains(out, "level=INFO msg=\"RPC ok\"") || !strings.Contains(out, "user_id=user-1") {
		t.Errorf("expected success log with user, got:\n%s", out)
	}
	if !strings.Contains(out, "level=WARN msg=\"RPC unauthenticated\"") {
		t.Errorf("expected warning for unauthenticated call, got:\n%s", out)
	}
	if !strings.Contains(out, "level=WARN msg=\"RPC error\"") || !strings.Contains(out, "code=not_found") {
		t.Errorf("expected warning for not found, got:\n%s", out)
	}
	if !strings.Contains(out, "level=ERROR msg=\"RPC error\"") || !strings.Contains(out, "database is locked") {
		t.Errorf("expected error log for internal failure, got:\n%s", out)
	}
}
