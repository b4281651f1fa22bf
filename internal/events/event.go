// Package events defines order lifecycle events and publishes them to Kafka.
package events

import (
	"time"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// Type names an order event.
type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
)

// OrderEvent is the payload written to Kafka and pushed to SSE clients.
type OrderEvent struct {
	Event        Type               `json:"event"`
	OrderID      string             `json:"orderId"`
	OrderNo      string             `json:"orderNo"`
	PartnerID    int                `json:"partnerId"`
	PlanID       string             `json:"planId"`
	Mode         models.OrderMode   `json:"mode"`
	Quantity     int                `json:"quantity"`
	Status       models.OrderStatus `json:"status"`
	Currency     models.Currency    `json:"currency"`
	TotalPayment int64              `json:"totalPayment"`
	FailedReason *string            `json:"failedReason,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

// NewOrderEvent snapshots o as an event of type t.
func NewOrderEvent(t Type, o *models.Order) *OrderEvent {
	return &OrderEvent{
		Event:        t,
		OrderID:      o.ID,
		OrderNo:      o.OrderNo,
		PartnerID:    o.PartnerID,
		PlanID:       o.PlanID,
		Mode:         o.Mode,
		Quantity:     o.Quantity,
		Status:       o.Status,
		Currency:     o.Currency,
		TotalPayment: o.TotalPayment,
		FailedReason: o.FailedReason,
		Timestamp:    time.Now().UTC(),
	}
}
