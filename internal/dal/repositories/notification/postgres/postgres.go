package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/avencatt/storefront/internal/dal/postgres"
	"github.com/avencatt/storefront/internal/service/models/notification"
)

type PostgresNotificationRepository struct {
	conn postgres.Querier
}

func NewPostgresNotificationRepository(conn postgres.Querier) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{
		conn: conn,
	}
}

// Insert stores a notification record for the admin dashboard.
func (r *PostgresNotificationRepository) Insert(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	query, args, err := sq.Insert("notifications").
		Columns("type", "message", "order_id", "read", "created_at").
		Values(n.Type, n.Message, n.OrderID, n.Read, n.CreatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return notification.Notification{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&n.ID); err != nil {
		return notification.Notification{}, fmt.Errorf("failed to insert notification: %w", err)
	}

	return n, nil
}
