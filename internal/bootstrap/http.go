package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shiftwork/scheduling-service/internal/service"
)

const (
	serverShutdownTimeout = 10 * time.Second
	// taskWaitBudget bounds how long shutdown waits for in-flight schedule
	// generation before giving up.
	taskWaitBudget = 30 * time.Second
)

// StartHTTPServer starts the HTTP server on the given port. The returned
// server instance is used for graceful shutdown.
func StartHTTPServer(logger *slog.Logger, handler http.Handler, port int) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer stops accepting new requests, drains in-flight ones, and
// then waits for background schedule tasks to settle.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, svc *service.SchedulingService, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if svc != nil {
		if svc.WaitForTasks(taskWaitBudget) {
			logger.Info("background tasks drained")
		} else {
			logger.Warn("background tasks still running at shutdown", "budget", taskWaitBudget)
		}
	}

	logger.Info("HTTP server stopped")
	return nil
}
