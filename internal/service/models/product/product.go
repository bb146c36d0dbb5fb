package product

import (
	"time"

	"github.com/avencatt/storefront/internal/service/models/currency"
)

// Product is the catalog view the order flow needs: current price and stock.
// Prices are copied into order line items at creation time and never follow
// later catalog changes.
type Product struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	ImageURL      string            `json:"imageUrl"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	Stock         int               `json:"stock"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
