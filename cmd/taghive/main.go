package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/taghive/taghive/pkg/analytics"
	"github.com/taghive/taghive/pkg/api"
	"github.com/taghive/taghive/pkg/auth"
	"github.com/taghive/taghive/pkg/config"
	"github.com/taghive/taghive/pkg/httputil"
	"github.com/taghive/taghive/pkg/ident"
	"github.com/taghive/taghive/pkg/middleware"
	"github.com/taghive/taghive/pkg/observability"
	"github.com/taghive/taghive/pkg/storage"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("taghive %s\n", version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "taghive: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.WithFields(map[string]any{
		"version":  version,
		"port":     cfg.Server.Port,
		"ops_port": cfg.Server.OpsPort,
	}).Info("starting taghive")

	if cfg.UsingDefaultAPIKey() {
		logger.Warn("running with the default demo api key; set TAGHIVE_API_KEY in production")
	}

	// Core wiring: store, analytics, access gate.
	store := storage.NewMemoryStore(storage.WithIDGenerator(ident.NewGenerator()))
	svc := analytics.NewService(store)
	gate := auth.NewGate(cfg.Auth.APIKey)
	authMW := middleware.NewAPIKeyAuth(gate, logger)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
		metrics.RegisterStoreGauges(store.Stats)
	}

	serverOpts := []api.Option{api.WithAuthMiddleware(authMW.Handler)}
	if metrics != nil {
		serverOpts = append(serverOpts, api.WithMetrics(metrics))
	}
	apiServer := api.NewServer(store, svc, logger, serverOpts...)

	mws := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
		httputil.CORSMiddleware(cfg.Server.CORSOrigins),
		httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes),
	}
	if metrics != nil {
		mws = append(mws, metrics.HTTPMiddleware)
	}
	handler := httputil.Chain(mws...)(apiServer)

	apiSrv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Ops server: probes and metrics on a separate listener so the data
	// plane's access gate never blocks them.
	health := observability.NewHealthChecker(version)
	health.AddCheck("store", func(ctx context.Context) error {
		_, _, _ = store.Stats()
		return nil
	})

	opsMux := http.NewServeMux()
	opsMux.HandleFunc("/healthz", health.Liveness)
	opsMux.HandleFunc("/readyz", health.Readiness)
	if metrics != nil {
		opsMux.Handle("/metrics", metrics.Handler())
	}
	opsSrv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.OpsPort),
		Handler: opsMux,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	shutdown.RegisterServer(apiSrv)
	shutdown.RegisterServer(opsSrv)

	var g errgroup.Group
	g.Go(func() error {
		logger.WithField("addr", apiSrv.Addr).Info("api server listening")
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", opsSrv.Addr).Info("ops server listening")
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return shutdown.WaitForShutdown()
	})

	return g.Wait()
}
