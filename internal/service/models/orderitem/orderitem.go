package orderitem

import (
	"time"

	"github.com/avencatt/storefront/internal/service/models/currency"
)

// OrderItem is a snapshot of a product at the time the order was placed.
// UnitPriceCents is copied from the live product price and intentionally
// decoupled from it afterwards.
type OrderItem struct {
	ID             int64             `json:"id"`
	OrderID        int64             `json:"orderId"`
	ProductID      int64             `json:"productId"`
	ProductName    string            `json:"productName"`
	ImageURL       string            `json:"imageUrl"`
	Quantity       int               `json:"quantity"`
	UnitPriceCents int64             `json:"unitPriceCents"`
	LineTotalCents int64             `json:"lineTotalCents"`
	PriceCurrency  currency.Currency `json:"priceCurrency"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
