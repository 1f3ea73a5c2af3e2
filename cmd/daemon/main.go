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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/yt2g/internal/api"
	"github.com/ManuGH/yt2g/internal/config"
	"github.com/ManuGH/yt2g/internal/invidious"
	ytlog "github.com/ManuGH/yt2g/internal/log"
	"github.com/ManuGH/yt2g/internal/telemetry"
	"github.com/ManuGH/yt2g/internal/version"
)

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "print version and exit")
	mirrorFile := flag.String("mirrors", "", "path to mirrors file (YAML), overrides YT2G_MIRRORS_FILE")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	cfg := config.FromEnv()
	if *mirrorFile != "" {
		cfg.MirrorFile = *mirrorFile
	}

	ytlog.Configure(ytlog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: version.Version,
	})
	logger := ytlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Resolve(cfg)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Msg("failed to load configuration")
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("addr", cfg.ListenAddr).
		Int("mirrors", len(cfg.Mirrors)).
		Str("mirror_file", cfg.MirrorFile).
		Msg("configuration loaded")

	holder := config.NewHolder(cfg)
	if cfg.MirrorFile != "" {
		if err := holder.StartWatcher(ctx); err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "config.watch_failed").
				Str("path", cfg.MirrorFile).
				Msg("failed to watch mirrors file")
		}
	}

	tracing, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: version.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "telemetry.init_failed").
			Msg("failed to initialize tracing")
	}

	client := invidious.New(holder, cfg.UpstreamTimeout)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.New(holder, client).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.ListenAddr).
		Msg("starting yt2g")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info().Str("event", "shutdown").Msg("draining connections")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon exited with error")
	}
	logger.Info().Msg("server exiting")
}
