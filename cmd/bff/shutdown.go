package main

import (
	"context"
	"fmt"

	"github.com/vyrodovalexey/boombff/internal/observability"
)

// run starts the gateway and blocks until ctx is done, then shuts down
// within the configured timeout.
func run(ctx context.Context, app *application, logger observability.Logger) error {
	if err := app.gateway.Start(ctx); err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}

	<-ctx.Done()
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.Listen.ShutdownTimeout.Duration())
	defer cancel()

	if err := app.gateway.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop gateway gracefully", observability.Error(err))
		return err
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to flush traces", observability.Error(err))
	}

	logger.Info("boombff stopped")
	return nil
}
