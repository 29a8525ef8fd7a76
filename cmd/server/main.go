package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/sketchrelay/server/internal/config"
	"codeberg.org/sketchrelay/server/internal/logger"
)

func main() {
	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.FatalErr(err, "failed to load configuration")
	}

	flags, err := config.ParseServerFlags(os.Args[1:])
	if err != nil {
		logger.FatalErr(err, "failed to parse flags")
	}

	if err := cfg.ApplyFlags(flags); err != nil {
		logger.FatalErr(err, "invalid flags")
	}

	logger.SetDefault(logger.New(cfg.Environment, os.Getenv("LOG_LEVEL"), nil))
	logger.Info("starting sketchrelay server", "environment", cfg.Environment)

	srv, err := NewServer(cfg)
	if err != nil {
		logger.FatalErr(err, "failed to create server")
	}

	// bind before serving so a taken port fails startup
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		logger.FatalErr(err, "failed to bind listener", "addr", cfg.Addr())
	}

	// wait for interrupt signal for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx, ln); err != nil {
		logger.ErrorErr(err, "server stopped with error")
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: stop already called
	}

	logger.Info("server stopped")
}
