package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// PlacedLine is the item movement carried by OrderPlaced.
type PlacedLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// OrderPlaced is raised after an order transaction commits.
type OrderPlaced struct {
	BaseEvent
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      string          `json:"userId,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Lines       []PlacedLine    `json:"lines"`
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

// NewOrderPlaced builds the event for a committed order.
func NewOrderPlaced(order *Order) OrderPlaced {
	lines := make([]PlacedLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, PlacedLine{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	return OrderPlaced{
		BaseEvent:   BaseEvent{Timestamp: order.CreatedAt},
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		Total:       order.Total,
		Lines:       lines,
	}
}
