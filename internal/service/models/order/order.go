package order

import (
	"time"

	"github.com/avencatt/storefront/internal/service/models/address"
	"github.com/avencatt/storefront/internal/service/models/currency"
	"github.com/avencatt/storefront/internal/service/models/orderitem"
)

// Status is the fulfillment axis of an order's lifecycle.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// PaymentStatus tracks the payment gateway's view of an order, independently
// of the fulfillment status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethod selects how an order is settled.
type PaymentMethod string

const (
	PaymentMethodPaystack      PaymentMethod = "paystack"
	PaymentMethodPayOnDelivery PaymentMethod = "pay_on_delivery"
)

// Order is the central entity of the checkout flow. Monetary fields are in
// minor currency units and always recomputed server-side from the line items;
// a client-submitted total is never trusted.
type Order struct {
	ID               int64                 `json:"id"`
	OrderNumber      string                `json:"orderNumber"`
	UserID           int64                 `json:"userId"`
	Status           Status                `json:"status"`
	PaymentStatus    PaymentStatus         `json:"paymentStatus"`
	PaymentMethod    PaymentMethod         `json:"paymentMethod"`
	PaymentReference string                `json:"paymentReference,omitempty"`
	SubtotalCents    int64                 `json:"subtotalCents"`
	TaxCents         int64                 `json:"taxCents"`
	ShippingCents    int64                 `json:"shippingCents"`
	DiscountCents    int64                 `json:"discountCents"`
	TotalCents       int64                 `json:"totalCents"`
	Currency         currency.Currency     `json:"currency"`
	ShippingAddress  address.Address       `json:"shippingAddress"`
	BillingAddress   address.Address       `json:"billingAddress"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
	Items            []orderitem.OrderItem `json:"items"`
}
