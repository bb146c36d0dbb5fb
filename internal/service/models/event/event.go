package event

import "time"

type Type string

const (
	TypeOrderPlaced     Type = "order.placed"
	TypePaymentReceived Type = "payment.received"
)

// Event is the message published to RabbitMQ when the order flow reaches a
// milestone. Consumers (audit, email) are outside this service.
type Event struct {
	Type        Type      `json:"type"`
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      int64     `json:"userId"`
	TotalCents  int64     `json:"totalCents"`
	OccurredAt  time.Time `json:"occurredAt"`
}
