package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/avencatt/storefront/internal/dal/postgres"
	"github.com/avencatt/storefront/internal/service/models/currency"
	"github.com/avencatt/storefront/internal/service/models/orderitem"
)

var orderItemColumns = []string{
	"id",
	"order_id",
	"product_id",
	"product_name",
	"image_url",
	"quantity",
	"unit_price_cents",
	"line_total_cents",
	"price_currency",
	"created_at",
	"updated_at",
}

// OrderItemDal represents the order item data access layer model.
type OrderItemDal struct {
	Id             int64
	OrderId        int64
	ProductId      int64
	ProductName    string
	ImageUrl       string
	Quantity       int
	UnitPriceCents int64
	LineTotalCents int64
	PriceCurrency  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ToModel converts OrderItemDal to the service layer OrderItem model.
func (i *OrderItemDal) ToModel() (*orderitem.OrderItem, error) {
	cur, err := currency.ParseCurrency(i.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &orderitem.OrderItem{
		ID:             i.Id,
		OrderID:        i.OrderId,
		ProductID:      i.ProductId,
		ProductName:    i.ProductName,
		ImageURL:       i.ImageUrl,
		Quantity:       i.Quantity,
		UnitPriceCents: i.UnitPriceCents,
		LineTotalCents: i.LineTotalCents,
		PriceCurrency:  cur,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}, nil
}

type PostgresOrderItemRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderItemRepository(conn postgres.Querier) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
	}
}

// BulkInsert inserts order items and returns them with generated ids.
func (r *PostgresOrderItemRepository) BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	if len(items) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	builder := sq.Insert("order_items").
		Columns(orderItemColumns[1:]...).
		PlaceholderFormat(sq.Dollar)

	for _, item := range items {
		builder = builder.Values(
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.ImageURL,
			item.Quantity,
			item.UnitPriceCents,
			item.LineTotalCents,
			item.PriceCurrency,
			item.CreatedAt,
			item.UpdatedAt,
		)
	}

	query, args, err := builder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&items[i].ID); err != nil {
			return nil, fmt.Errorf("failed to scan order item id: %w", err)
		}
		i++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}

// ListByOrderIDs retrieves the items of the given orders.
func (r *PostgresOrderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	query, args, err := sq.Select(orderItemColumns...).
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.ProductName,
			&dal.ImageUrl,
			&dal.Quantity,
			&dal.UnitPriceCents,
			&dal.LineTotalCents,
			&dal.PriceCurrency,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
