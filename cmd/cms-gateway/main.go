// Package main provides the entry point for the CMS gateway.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/tourwise/cms-client/internal/di"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start gateway: %v\n", err)
		os.Exit(1)
	}

	logger := do.MustInvoke[di.AppLogger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down gateway")

	// The container shuts services down in reverse dependency order: the
	// HTTP listener drains first, then the cache store, limiter and Redis.
	if err := injector.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Shutdown error")
	}

	logger.Info().Msg("Gateway stopped")
}
