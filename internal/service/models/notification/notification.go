package notification

import "time"

type Type string

const (
	TypeOrderPlaced     Type = "order.placed"
	TypePaymentReceived Type = "payment.received"
)

// Notification is a fire-and-forget record surfaced by the admin dashboard.
type Notification struct {
	ID        int64     `json:"id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	OrderID   int64     `json:"orderId"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
