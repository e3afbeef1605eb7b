package dataservice

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shiftwork/scheduling-service/internal/core"
	"github.com/shiftwork/scheduling-service/internal/domain/circuit"
)

// HealthLoop probes the data service liveness endpoint on an interval. On a
// confirmed recovery it force-closes the breaker and triggers one retry sweep
// of the WaitingForRetry jobs; the atomic latch keeps sweeps from overlapping.
type HealthLoop struct {
	pinger   core.Pinger
	breaker  *circuit.Breaker
	retrier  core.JobRetrier
	interval time.Duration
	timeout  time.Duration
	retrying atomic.Bool
	logger   *slog.Logger
}

// NewHealthLoop builds a HealthLoop; Run must be called to start probing.
func NewHealthLoop(
	pinger core.Pinger,
	breaker *circuit.Breaker,
	retrier core.JobRetrier,
	interval, timeout time.Duration,
	logger *slog.Logger,
) *HealthLoop {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthLoop{
		pinger:   pinger,
		breaker:  breaker,
		retrier:  retrier,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("component", "health_loop"),
	}
}

// Run probes until ctx is cancelled. It exits on its next select without
// draining an in-flight sweep.
func (h *HealthLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.InfoContext(ctx, "health loop started",
		"interval", h.interval, "timeout", h.timeout)

	for {
		select {
		case <-ctx.Done():
			h.logger.InfoContext(ctx, "health loop stopped")
			return
		case <-ticker.C:
			h.probe(ctx)
		}
	}
}

func (h *HealthLoop) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.pinger.Ping(probeCtx); err != nil {
		// A failed probe counts one increment, same as a failed real call.
		h.breaker.RecordFailure()
		h.logger.WarnContext(ctx, "data service liveness probe failed", "err", err)
		return
	}

	if h.breaker.State() == circuit.StateClosed {
		return
	}

	h.breaker.ForceClose()
	h.logger.InfoContext(ctx, "data service recovered, circuit force-closed")

	if h.retrying.CompareAndSwap(false, true) {
		go func() {
			defer h.retrying.Store(false)
			if err := h.retrier.RetryWaitingJobs(ctx); err != nil {
				h.logger.ErrorContext(ctx, "retry sweep failed", "err", err)
			}
		}()
	}
}
