package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/natiapp/internal/auth"
	"github.com/mmynk/natiapp/internal/config"
	"github.com/mmynk/natiapp/internal/events"
	"github.com/mmynk/natiapp/internal/middleware"
	"github.com/mmynk/natiapp/internal/proof"
	"github.com/mmynk/natiapp/internal/report"
	"github.com/mmynk/natiapp/internal/rpc"
	"github.com/mmynk/natiapp/internal/service"
	"github.com/mmynk/natiapp/internal/storage/sqlite"
	"github.com/mmynk/natiapp/pkg/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	uploader, err := newUploader(cfg)
	if err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	engine := report.NewEngine(store, report.Options{Location: loc})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	// Auth runs before logging so that log lines carry the caller.
	opts := connect.WithInterceptors(
		metrics.Interceptor(),
		middleware.NewAuthInterceptor(jwtManager, rpc.PublicProcedures),
		middleware.LoggingInterceptor{},
	)

	mux := http.NewServeMux()
	mux.Handle(rpc.NewAuthServiceHandler(
		service.NewAuthService(authenticator, authenticator, jwtManager, slog.Default()), opts))
	mux.Handle(rpc.NewNatilleraServiceHandler(
		service.NewNatilleraService(store, engine, publisher), opts))
	mux.Handle(rpc.NewContributionServiceHandler(
		service.NewContributionService(store, engine, publisher, uploader), opts))
	mux.Handle(rpc.NewReportServiceHandler(
		service.NewReportService(store, engine, metrics), opts))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms",
		},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         7200,
	}).Handler(mux)

	// Wrap with h2c for HTTP/2 without TLS (required for Connect streaming)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		slog.Info("AMQP not configured, events disabled")
		return events.Nop{}, nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	slog.Info("Publishing events", "exchange", cfg.AMQPExchange)
	return publisher, nil
}

func newUploader(cfg *config.Config) (proof.Uploader, error) {
	if cfg.CloudinaryURL == "" {
		slog.Info("Cloudinary not configured, payment proofs disabled")
		return proof.Disabled{}, nil
	}
	uploader, err := proof.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	if err != nil {
		return nil, err
	}
	slog.Info("Payment proofs enabled", "folder", cfg.CloudinaryFolder)
	return uploader, nil
}
