// Package main runs a static web server whose connections are handled by a
// fixed-size worker pool.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jzx17/threadpool/internal/config"
	"github.com/jzx17/threadpool/internal/httpd"
	"github.com/jzx17/threadpool/internal/logger"
	"github.com/jzx17/threadpool/pkg/metrics"
	"github.com/jzx17/threadpool/pkg/worker"
)

var version = "dev"

func main() {
	var (
		configFile  = flag.String("config", "", "Path to config file (YAML/JSON)")
		addr        = flag.String("addr", "", "Listen address (overrides config)")
		workers     = flag.Int("workers", 0, "Number of pool workers (overrides config)")
		webRoot     = flag.String("web-root", "", "Directory holding index.html and 404.html (overrides config)")
		delay       = flag.Duration("delay", -1, "Simulated per-connection delay, e.g. 5s (overrides config)")
		logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("webserver version %s\n", version)
		return
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *workers > 0 {
		cfg.Pool.Workers = *workers
	}
	if *webRoot != "" {
		cfg.Server.WebRoot = *webRoot
	}
	if *delay >= 0 {
		cfg.Server.ResponseDelay = delay.String()
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: logger.Format(cfg.Log.Format),
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("webserver failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Validate has already checked both durations
	responseDelay, _ := cfg.ResponseDelay()
	shutdownTimeout, _ := cfg.ShutdownTimeout()
	readTimeout, _ := cfg.ReadTimeout()

	opts := []worker.Option{
		worker.WithLogger(log.With().Str("component", "pool").Logger()),
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		collector := metrics.NewCollector("webserver", "pool")
		if err := collector.Register(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, worker.WithMetrics(collector))

		metricsServer = newMetricsServer(cfg.Metrics, reg)
		go func() {
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	pool, err := worker.New(cfg.Pool.Workers, opts...)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}

	handler := httpd.NewHandler(httpd.HandlerConfig{
		WebRoot:        cfg.Server.WebRoot,
		ResponseDelay:  responseDelay,
		ReadBufferSize: cfg.Server.ReadBufferSize,
		ReadTimeout:    readTimeout,
	}, log)
	server := httpd.NewServer(pool, handler, log.With().Str("component", "httpd").Logger())

	serveErr := server.ListenAndServe(ctx, cfg.Server.Addr)

	log.Info().Msg("stopping, draining queued connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("worker pool did not drain in time")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics server shutdown failed")
		}
	}

	return serveErr
}

func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
