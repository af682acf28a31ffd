package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lungrisk/internal/adapters/config"
	"lungrisk/internal/bootstrap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := bootstrap.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	log := c.Log

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- c.HTTPServer.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Errorw("HTTP server stopped unexpectedly", "error", err)
		}
	}

	if err := bootstrap.NewLifecycle(cfg.HTTP.ShutdownTimeout).Shutdown(c); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		os.Exit(1)
	}
}
