package services

import (
	"context"
	"sync"
	"time"

	"github.com/celestiaorg/echo-agent/internal/logger"
)

// LaunchPaymentWorker periodically settles jobs awaiting payment, so paid jobs run
// and submit their result without anyone polling their status. It returns when
// ctx is cancelled.
func LaunchPaymentWorker(ctx context.Context, wg *sync.WaitGroup, jobService *Job, interval time.Duration) {
	defer wg.Done()
	if interval <= 0 {
		interval = time.Minute
	}

	logger.Info("Payment worker started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Payment worker received shutdown signal, stopping...")
			return
		case <-ticker.C:
		}

		settled, err := jobService.SettleAwaitingJobs(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Errorf("Payment worker error: %v", err)
			}
			continue
		}
		if settled > 0 {
			logger.Infof("Payment worker settled %d jobs awaiting payment", settled)
		}
	}
}
