package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/avencatt/storefront/internal/dal/postgres"
	"github.com/avencatt/storefront/internal/service/models/address"
	"github.com/avencatt/storefront/internal/service/models/currency"
	"github.com/avencatt/storefront/internal/service/models/order"
	"github.com/avencatt/storefront/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5"
)

var orderColumns = []string{
	"id",
	"order_number",
	"user_id",
	"status",
	"payment_status",
	"payment_method",
	"payment_reference",
	"subtotal_cents",
	"tax_cents",
	"shipping_cents",
	"discount_cents",
	"total_cents",
	"currency",
	"shipping_address",
	"billing_address",
	"created_at",
	"updated_at",
}

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id               int64
	OrderNumber      string
	UserId           int64
	Status           string
	PaymentStatus    string
	PaymentMethod    string
	PaymentReference string
	SubtotalCents    int64
	TaxCents         int64
	ShippingCents    int64
	DiscountCents    int64
	TotalCents       int64
	Currency         string
	ShippingAddress  []byte
	BillingAddress   []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return nil, err
	}

	var shipping, billing address.Address
	if len(o.ShippingAddress) > 0 {
		if err := json.Unmarshal(o.ShippingAddress, &shipping); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
	}
	if len(o.BillingAddress) > 0 {
		if err := json.Unmarshal(o.BillingAddress, &billing); err != nil {
			return nil, fmt.Errorf("decode billing address: %w", err)
		}
	}

	return &order.Order{
		ID:               o.Id,
		OrderNumber:      o.OrderNumber,
		UserID:           o.UserId,
		Status:           order.Status(o.Status),
		PaymentStatus:    order.PaymentStatus(o.PaymentStatus),
		PaymentMethod:    order.PaymentMethod(o.PaymentMethod),
		PaymentReference: o.PaymentReference,
		SubtotalCents:    o.SubtotalCents,
		TaxCents:         o.TaxCents,
		ShippingCents:    o.ShippingCents,
		DiscountCents:    o.DiscountCents,
		TotalCents:       o.TotalCents,
		Currency:         cur,
		ShippingAddress:  shipping,
		BillingAddress:   billing,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Items:            []orderitem.OrderItem{}, // populated separately
	}, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.OrderNumber,
		&dal.UserId,
		&dal.Status,
		&dal.PaymentStatus,
		&dal.PaymentMethod,
		&dal.PaymentReference,
		&dal.SubtotalCents,
		&dal.TaxCents,
		&dal.ShippingCents,
		&dal.DiscountCents,
		&dal.TotalCents,
		&dal.Currency,
		&dal.ShippingAddress,
		&dal.BillingAddress,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert persists a new order and returns it with its generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return order.Order{}, fmt.Errorf("encode shipping address: %w", err)
	}
	billing, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return order.Order{}, fmt.Errorf("encode billing address: %w", err)
	}

	query, args, err := sq.Insert("orders").
		Columns(orderColumns[1:]...).
		Values(
			o.OrderNumber,
			o.UserID,
			o.Status,
			o.PaymentStatus,
			o.PaymentMethod,
			o.PaymentReference,
			o.SubtotalCents,
			o.TaxCents,
			o.ShippingCents,
			o.DiscountCents,
			o.TotalCents,
			o.Currency,
			shipping,
			billing,
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.ID); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// GetByID loads a single order without its items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	o, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}

	return o, nil
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.UserIds) > 0 {
		builder = builder.Where(sq.Eq{"user_id": filter.UserIds})
	}
	if len(filter.PaymentStatuses) > 0 {
		builder = builder.Where(sq.Eq{"payment_status": filter.PaymentStatuses})
	}
	if !filter.CreatedBefore.IsZero() {
		builder = builder.Where(sq.Lt{"created_at": filter.CreatedBefore})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// NextDailySequence atomically increments and returns the per-day counter
// used for order numbers. The upsert closes the read-then-increment race the
// naive latest-order-of-the-day scan would have.
func (r *PostgresOrderRepository) NextDailySequence(ctx context.Context, day time.Time) (int64, error) {
	const query = `
		INSERT INTO order_day_counters (day, value)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET value = order_day_counters.value + 1
		RETURNING value
	`

	var seq int64
	if err := r.conn.QueryRow(ctx, query, day.Format("2006-01-02")).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to advance daily order counter: %w", err)
	}

	return seq, nil
}

// SetPaymentReference records the gateway reference on an order.
func (r *PostgresOrderRepository) SetPaymentReference(ctx context.Context, orderID int64, reference string) error {
	query, args, err := sq.Update("orders").
		Set("payment_reference", reference).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": orderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set payment reference: %w", err)
	}

	return nil
}

// ConfirmPayment applies the PAID/PROCESSING transition as a single
// conditional update, so the redirect callback, the webhook and the
// reconciliation sweep can all race it safely.
func (r *PostgresOrderRepository) ConfirmPayment(ctx context.Context, orderID int64, reference string) (bool, error) {
	query, args, err := sq.Update("orders").
		Set("payment_status", order.PaymentPaid).
		Set("status", order.StatusProcessing).
		Set("payment_reference", reference).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": orderID}).
		Where(sq.NotEq{"payment_status": order.PaymentPaid}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to confirm payment: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkPaymentFailed sets paymentStatus=FAILED while payment is still PENDING.
// The fulfillment status is left untouched and PAID is never downgraded.
func (r *PostgresOrderRepository) MarkPaymentFailed(ctx context.Context, orderID int64, reference string) (bool, error) {
	query, args, err := sq.Update("orders").
		Set("payment_status", order.PaymentFailed).
		Set("payment_reference", reference).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": orderID}).
		Where(sq.Eq{"payment_status": order.PaymentPending}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to mark payment failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// FindStalePendingPayments returns orders whose payment has been PENDING for
// longer than olderThan and that hold a gateway reference to verify against.
func (r *PostgresOrderRepository) FindStalePendingPayments(ctx context.Context, olderThan time.Duration, limit int) ([]order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"payment_status": order.PaymentPending}).
		Where(sq.NotEq{"payment_reference": ""}).
		Where(sq.Lt{"created_at": time.Now().Add(-olderThan)}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale pending payments: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
