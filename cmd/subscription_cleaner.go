package main

import (
	"context"
	"log"
	"time"

	"rentaBack/internal/metrics"
)

const (
	subscriptionCleanerInterval = time.Hour
	subscriptionCleanerTimeout  = 1 * time.Minute
)

type lapsedExpirer interface {
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}

func startSubscriptionCleaner(ctx context.Context, svc lapsedExpirer, infoLog, errorLog *log.Logger) {
	if svc == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(subscriptionCleanerInterval)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, subscriptionCleanerTimeout)
			processed, err := svc.ExpireLapsed(runCtx, time.Now().UTC())
			cancel()
			if err != nil {
				if errorLog != nil {
					errorLog.Printf("subscription cleaner: failed to expire lapsed subscriptions: %v", err)
				}
				return
			}
			metrics.RecordWorker("subscription_cleaner", int(processed))
			if processed > 0 && infoLog != nil {
				infoLog.Printf("subscription cleaner: expired %d lapsed subscriptions", processed)
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
