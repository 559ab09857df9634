package worker

// Background goroutine that periodically replays the stock ledger and
// compares it with the live counters. Drift means a bug or a manual DB
// edit; the cron surfaces it in the logs without touching the counters.

import (
	"context"
	"time"

	"github.com/chathuwa-whiz/zors-pos/internal/dto"

	"github.com/rs/zerolog/log"
)

// StockAuditor is the slice of the inventory service the cron consumes.
// Declared here so this package does not depend on internal/service, which
// itself depends on the worker dispatcher.
type StockAuditor interface {
	ReconcileAll(ctx context.Context) ([]dto.ReconcileResponse, error)
}

// StartReconcileCron launches a goroutine that ticks every interval and
// audits every product's counter against its ledger. It respects the
// context for graceful shutdown.
func StartReconcileCron(ctx context.Context, inv StockAuditor, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("reconcile_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reconcile_cron: shutting down")
				return
			case <-ticker.C:
				runReconcile(ctx, inv)
			}
		}
	}()
}

func runReconcile(ctx context.Context, inv StockAuditor) {
	results, err := inv.ReconcileAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reconcile_cron: audit failed")
		return
	}

	drifted := 0
	for _, r := range results {
		if !r.InAgreement {
			drifted++
			log.Warn().
				Str("product_id", r.ProductID).
				Int("ledger_total", r.LedgerTotal).
				Int("stock_on_hand", r.StockOnHand).
				Int("drift", r.Drift).
				Msg("reconcile_cron: counter diverges from ledger")
		}
	}
	if drifted == 0 {
		log.Debug().Int("products", len(results)).Msg("reconcile_cron: all counters consistent")
	}
}
