package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/avencatt/storefront/internal/dal/postgres"
	"github.com/avencatt/storefront/internal/service/models/currency"
	"github.com/avencatt/storefront/internal/service/models/product"
)

// ProductDal represents the product data access layer model.
type ProductDal struct {
	Id            int64
	Name          string
	ImageUrl      string
	PriceCents    int64
	PriceCurrency string
	Stock         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ToModel converts ProductDal to the service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	cur, err := currency.ParseCurrency(p.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &product.Product{
		ID:            p.Id,
		Name:          p.Name,
		ImageURL:      p.ImageUrl,
		PriceCents:    p.PriceCents,
		PriceCurrency: cur,
		Stock:         p.Stock,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

type PostgresProductRepository struct {
	conn postgres.Querier
}

func NewPostgresProductRepository(conn postgres.Querier) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
	}
}

// GetByIDs loads the current price and stock of the given products.
func (r *PostgresProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	if len(ids) == 0 {
		return []product.Product{}, nil
	}

	query, args, err := sq.Select(
		"id",
		"name",
		"image_url",
		"price_cents",
		"price_currency",
		"stock",
		"created_at",
		"updated_at",
	).
		From("products").
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.Name,
			&dal.ImageUrl,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.Stock,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// DecrementStock subtracts quantity from a product's stock only when enough
// stock remains, so two concurrent orders cannot both take the last unit.
func (r *PostgresProductRepository) DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	const query = `
		UPDATE products
		SET stock = stock - $2,
		    updated_at = now()
		WHERE id = $1 AND stock >= $2
	`

	tag, err := r.conn.Exec(ctx, query, productID, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock for product %d: %w", productID, err)
	}

	return tag.RowsAffected() > 0, nil
}
