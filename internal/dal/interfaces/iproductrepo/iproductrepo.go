package iproductrepo

import (
	"context"

	"github.com/avencatt/storefront/internal/service/models/product"
)

// IProductRepository is an interface for the product postgres repository.
type IProductRepository interface {
	// GetByIDs loads the current price and stock of the given products.
	GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error)

	// DecrementStock subtracts quantity from a product's stock if enough is
	// available. Returns whether the decrement was applied.
	DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error)
}
