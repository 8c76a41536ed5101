package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"interview-scheduler/api"
	"interview-scheduler/config"
	"interview-scheduler/logging"
	"interview-scheduler/metrics"
	"interview-scheduler/scheduler"
	"interview-scheduler/solver"
)

func main() {
	// Define flags (flags override environment configuration)
	addr := flag.String("addr", "", "HTTP listen address (overrides SCHEDULER_HTTP_BIND/PORT)")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	env := flag.String("env", "", "Environment: development|production (overrides SCHEDULER_ENV)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *env != "" {
		cfg.Environment = *env
	}
	if *metricsAddr != "" {
		cfg.MetricsBind = *metricsAddr
	}
	listenAddr := cfg.Addr()
	if *addr != "" {
		listenAddr = *addr
	}

	log := logging.Setup(cfg.Environment)

	// Start metrics server if address provided
	if cfg.MetricsBind != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			log.Info().Str("addr", cfg.MetricsBind).Msg("metrics server listening")
			if err := http.ListenAndServe(cfg.MetricsBind, mux); err != nil {
				log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	engine := scheduler.New(
		solver.NewBacktracking(),
		scheduler.WithLogger(log),
		scheduler.WithMaxOrderings(cfg.MaxOrderings),
		scheduler.WithConcurrency(cfg.MaxConcurrentSolve),
	)
	server := api.NewServer(engine, log)

	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", listenAddr).Msg("interview scheduling API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
