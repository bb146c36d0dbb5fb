package iorderrepo

import (
	"context"
	"time"

	"github.com/avencatt/storefront/internal/service/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	// Insert persists a new order and returns it with its generated id.
	Insert(ctx context.Context, o order.Order) (order.Order, error)

	// GetByID loads a single order without its items.
	GetByID(ctx context.Context, id int64) (*order.Order, error)

	// Query retrieves orders matching the filter.
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)

	// NextDailySequence atomically increments and returns the order-number
	// counter for the given day.
	NextDailySequence(ctx context.Context, day time.Time) (int64, error)

	// SetPaymentReference records the gateway reference on an order.
	SetPaymentReference(ctx context.Context, orderID int64, reference string) error

	// ConfirmPayment transitions an order to PAID/PROCESSING if and only if
	// it is not already PAID. Returns whether the update was applied.
	ConfirmPayment(ctx context.Context, orderID int64, reference string) (bool, error)

	// MarkPaymentFailed sets paymentStatus=FAILED while payment is still
	// PENDING; the fulfillment status is untouched.
	MarkPaymentFailed(ctx context.Context, orderID int64, reference string) (bool, error)

	// FindStalePendingPayments returns orders whose payment has been PENDING
	// for longer than olderThan and that hold a gateway reference.
	FindStalePendingPayments(ctx context.Context, olderThan time.Duration, limit int) ([]order.Order, error)
}
