package jobs

import (
	"context"
	"log"
	"time"

	"slotpoll/internal/config"
	"slotpoll/internal/monitoring"
	"slotpoll/internal/repository"
)

// StartAggregateGaugeJob periodically refreshes the polls/participants/
// votes gauges from the store until ctx is cancelled.
func StartAggregateGaugeJob(ctx context.Context, cfg config.Config, store *repository.Store) {
	if !cfg.GaugeJobEnabled {
		return
	}
	interval := cfg.GaugeJobInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				counts, err := store.CountAggregates(tickCtx)
				cancel()
				if err != nil {
					log.Printf("aggregate gauge job error: %v", err)
					continue
				}
				monitoring.SetAggregateGauges(counts.Events, counts.Participants, counts.Votes)
			}
		}
	}()
}
