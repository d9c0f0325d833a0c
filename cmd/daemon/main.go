// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ManuGH/ivsgw/internal/api"
	"github.com/ManuGH/ivsgw/internal/cache"
	"github.com/ManuGH/ivsgw/internal/config"
	"github.com/ManuGH/ivsgw/internal/ivsapi"
	ivslog "github.com/ManuGH/ivsgw/internal/log"
	"github.com/ManuGH/ivsgw/internal/media"
	"github.com/ManuGH/ivsgw/internal/store"
	"github.com/ManuGH/ivsgw/internal/thumbcache"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		baseLogger := ivslog.Base()
		baseLogger.Fatal().Err(err).Str("event", "config.load_failed").Msg("failed to load configuration")
	}

	ivslog.Configure(ivslog.Config{Level: cfg.LogLevel, Service: "ivsgw"})
	logger := ivslog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("addr", cfg.Listen).
		Str("data_dir", cfg.DataDir).
		Str("api_base", cfg.APIBase).
		Msg("starting ivsgw")

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("cannot create data directory")
	}

	st, err := store.OpenSqlite(filepath.Join(cfg.DataDir, "media.db"))
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot open media store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn().Err(err).Msg("store close failed")
		}
	}()

	var neg cache.TTLCache
	if cfg.RedisAddr != "" {
		neg, err = cache.NewRedis(cfg.RedisAddr, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("cannot connect to redis")
		}
	} else {
		neg = cache.NewMemory(time.Minute)
	}
	defer neg.Close()

	apiOpts := []ivsapi.Option{ivsapi.WithTimeout(cfg.APITimeout)}
	if cfg.APIRateLimit > 0 {
		apiOpts = append(apiOpts, ivsapi.WithRateLimit(cfg.APIRateLimit, 1))
	}
	upstream := ivsapi.New(cfg.APIBase, apiOpts...)

	thumbs, err := thumbcache.New(cfg.ThumbnailDir, upstream,
		thumbcache.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		thumbcache.WithNegativeCache(neg, cfg.NegativeTTL),
	)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.ThumbnailDir).Msg("cannot initialise thumbnail cache")
	}

	svc := media.New(st, thumbs)
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.New(cfg, svc).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Str("event", "shutdown").Msg("signal received, shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Str("event", "stopped").Msg("ivsgw stopped")
}
