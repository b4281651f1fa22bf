package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// batchSize caps how many processing orders one pass polls.
const batchSize = 100

// OrderSyncer promotes processing orders whose profiles are allocated.
// Implemented by service.OrderService.
type OrderSyncer interface {
	SyncProcessing(ctx context.Context, maxAge time.Duration, limit int) (int, error)
}

// OrderStatusWorker polls the supplier for orders still being allocated.
// Orders older than maxAge are left for manual follow-up.
type OrderStatusWorker struct {
	orders   OrderSyncer
	interval time.Duration
	maxAge   time.Duration
}

// NewOrderStatusWorker constructs an OrderStatusWorker.
func NewOrderStatusWorker(orders OrderSyncer, interval, maxAge time.Duration) *OrderStatusWorker {
	return &OrderStatusWorker{orders: orders, interval: interval, maxAge: maxAge}
}

// Start begins the periodic status check loop until context is canceled.
func (w *OrderStatusWorker) Start(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Dur("max_age", w.maxAge).
		Msg("Starting order status worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Order status worker stopped")
			return
		}
	}
}

func (w *OrderStatusWorker) run(ctx context.Context) {
	changed, err := w.orders.SyncProcessing(ctx, w.maxAge, batchSize)
	if err != nil {
		log.Error().Err(err).Msg("Order status check failed")
		return
	}
	if changed > 0 {
		log.Info().Int("ready", changed).Msg("Orders became ready")
	}
}
