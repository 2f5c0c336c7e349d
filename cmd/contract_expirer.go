package main

import (
	"context"
	"log"
	"time"

	"rentaBack/internal/metrics"
)

const (
	contractExpirerInterval = 6 * time.Hour
	contractExpirerTimeout  = 2 * time.Minute
	limiterCleanupInterval  = 5 * time.Minute
)

type overdueExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

func startContractExpirer(ctx context.Context, svc overdueExpirer, infoLog, errorLog *log.Logger) {
	if svc == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(contractExpirerInterval)
		defer ticker.Stop()

		run := func() {
			runCtx, cancel := context.WithTimeout(ctx, contractExpirerTimeout)
			defer cancel()

			expired, err := svc.ExpireOverdue(runCtx, time.Now().UTC())
			if err != nil {
				if errorLog != nil {
					errorLog.Printf("contract expirer: failed to expire overdue contracts: %v", err)
				}
				return
			}
			metrics.RecordWorker("contract_expirer", expired)
			if expired > 0 && infoLog != nil {
				infoLog.Printf("contract expirer: expired %d overdue contracts", expired)
			}
		}

		run()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}

func startLimiterCleanup(ctx context.Context, rl *RateLimiter) {
	if rl == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.Cleanup(now)
			}
		}
	}()
}

func (app *application) startWorkers(ctx context.Context) {
	startSubscriptionCleaner(ctx, app.subscriptionService, app.infoLog, app.errorLog)
	startContractExpirer(ctx, app.contractService, app.infoLog, app.errorLog)
	startLimiterCleanup(ctx, app.webhookLimiter)
}
