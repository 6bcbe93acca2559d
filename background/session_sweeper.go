// Package background contains services that run alongside the HTTP server,
// independently of any request.
package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/user/yelpcamp-go/observability"
)

// Sweeper removes expired sessions and reports how many it removed.
// *session.Manager satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// StartSessionSweeper launches a goroutine that calls Sweep every interval
// until stopChan is closed. Each sweep is bounded by timeout. The returned
// channel is closed once the goroutine has exited, so shutdown can wait for
// an in-flight sweep.
func StartSessionSweeper(sweeper Sweeper, interval, timeout time.Duration, stopChan <-chan struct{}, logger *slog.Logger) <-chan struct{} {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", "session_sweeper")
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sweepOnce(sweeper, timeout, logger)
			case <-stopChan:
				logger.Info("stop signal received")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	logger.Info("session sweeper started", "interval", interval)
	return done
}

func sweepOnce(sweeper Sweeper, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := sweeper.Sweep(ctx)
	if err != nil {
		logger.Error("sweeping expired sessions failed", "error", err)
		return
	}
	observability.SessionsSweptTotal.Add(float64(n))
	if n > 0 {
		logger.Info("expired sessions removed", "count", n)
	}
}
