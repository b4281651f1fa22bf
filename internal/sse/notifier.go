package sse

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/events"
	"github.com/GTDGit/reseller_portal/internal/metrics"
	"github.com/GTDGit/reseller_portal/internal/models"
)

// OrderNotifier is the interface services use to emit order events.
type OrderNotifier interface {
	NotifyOrderCreated(o *models.Order)
	NotifyOrderStatusChanged(o *models.Order)
}

// publishQueueSize bounds the events waiting for the publisher.
const publishQueueSize = 1024

// HubNotifier pushes events to the SSE hub inline and hands them to the
// event publisher through a bounded queue drained by Run, so a slow broker
// never holds up the request that changed the order.
type HubNotifier struct {
	hub       *Hub
	publisher events.Publisher
	queue     chan *events.OrderEvent
}

// NewHubNotifier creates a notifier backed by the given Hub and publisher.
// A nil publisher disables Kafka delivery.
func NewHubNotifier(hub *Hub, publisher events.Publisher) *HubNotifier {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &HubNotifier{
		hub:       hub,
		publisher: publisher,
		queue:     make(chan *events.OrderEvent, publishQueueSize),
	}
}

func (n *HubNotifier) NotifyOrderCreated(o *models.Order) {
	n.emit(events.NewOrderEvent(events.OrderCreated, o))
}

func (n *HubNotifier) NotifyOrderStatusChanged(o *models.Order) {
	n.emit(events.NewOrderEvent(events.OrderStatusChanged, o))
}

func (n *HubNotifier) emit(ev *events.OrderEvent) {
	n.hub.Publish(ev)

	select {
	case n.queue <- ev:
	default:
		metrics.PublishErrors.Inc()
		log.Warn().Str("order_id", ev.OrderID).Str("event", string(ev.Event)).Msg("Event queue full, dropping order event")
	}
}

// Run publishes queued events until ctx is cancelled.
func (n *HubNotifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.queue:
			n.publish(ctx, ev)
		}
	}
}

func (n *HubNotifier) publish(ctx context.Context, ev *events.OrderEvent) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := n.publisher.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Str("order_id", ev.OrderID).Str("event", string(ev.Event)).Msg("Failed to publish order event")
	}
}

// NopNotifier is a no-op implementation for when events are not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyOrderCreated(o *models.Order)       {}
func (n *NopNotifier) NotifyOrderStatusChanged(o *models.Order) {}
