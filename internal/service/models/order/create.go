package order

import "github.com/avencatt/storefront/internal/service/models/address"

// CreateOrderItemModel is a cart line submitted at checkout. Only the product
// id and quantity are trusted; prices come from the catalog.
type CreateOrderItemModel struct {
	ProductID int64
	Quantity  int
}

// CreateOrderModel is the validated input for creating an order.
type CreateOrderModel struct {
	UserID          int64
	Email           string
	PaymentMethod   PaymentMethod
	Items           []CreateOrderItemModel
	ShippingAddress address.Address
	BillingAddress  address.Address
}
