package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/vovakirdan/wirechat-client/internal/config"
	"github.com/vovakirdan/wirechat-client/internal/log"
	"github.com/vovakirdan/wirechat-client/internal/peer"
)

func main() {
	defaults := config.Default()

	configPath := flag.String("config", "", "path to the config file")
	flag.String("addr", defaults.Peer.Addr, "HTTP listen address")
	flag.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	boot := log.New("info", os.Stderr)
	cfg, path, err := config.Load(boot, *configPath, flag.CommandLine)
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	logger := log.New(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := peer.NewHub(cfg.Peer.MaxMessageLength, logger)
	go hub.Run(ctx)

	server := peer.NewServer(hub, cfg.Peer, logger)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	logger.Info().Str("addr", cfg.Peer.Addr).Str("config", path).Msg("starting wirechat peer")

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal().Err(err).Msg("peer exited with error")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Peer.ShutdownTimeout)
		defer cancel()

		logger.Info().Msg("shutting down http server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
		<-serverErr
	}
	logger.Info().Msg("peer stopped")
}
