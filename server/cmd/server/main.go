package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/server/internal/api"
	"github.com/wqlegmed/death-time-calculator/server/internal/auth"
	"github.com/wqlegmed/death-time-calculator/server/internal/config"
	"github.com/wqlegmed/death-time-calculator/server/internal/metrics"
	"github.com/wqlegmed/death-time-calculator/server/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	slog.Info("dtc-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	lvl, _ := cfg.Level() // validated by Load
	level.Set(lvl)
	opts, _ := cfg.EngineOptions()

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"cache_ttl", cfg.Server.Cache.TTL.String(),
		"locale", opts.Locale,
		"decay_form", opts.Decay,
		"fixed_location", opts.FixedLocation,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Result cache with background TTL eviction.
	st := store.New(time.Duration(cfg.Server.Cache.TTL))

	h := api.New(estimate.NewEngine(opts), st, m, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Group(func(r chi.Router) {
		r.Use(auth.APIKey(
			cfg.Server.Auth.Mode,
			cfg.Server.Auth.EffectiveHeader(),
			cfg.Server.Auth.Key(),
			logger,
		))
		h.Register(r)
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		st.Run(gctx)
		return nil
	})

	// Hot reload: log level and engine options apply to the next request.
	// Port, auth and cache TTL changes need a restart.
	g.Go(func() error {
		err := config.Watch(gctx, *configPath, func(next *config.Config) {
			lvl, _ := next.Level()
			level.Set(lvl)
			nextOpts, _ := next.EngineOptions()
			h.SetEngine(estimate.NewEngine(nextOpts))
			slog.Info("config reloaded",
				"log_level", lvl.String(),
				"locale", nextOpts.Locale,
				"decay_form", nextOpts.Decay,
				"fixed_location", nextOpts.FixedLocation,
			)
		})
		if err != nil {
			slog.Warn("config watch disabled", "err", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("dtc-server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("dtc-server stopped", "err", err)
		os.Exit(1)
	}
}
