package uow

import (
	"context"

	"github.com/avencatt/storefront/internal/dal/interfaces/inotificationrepo"
	"github.com/avencatt/storefront/internal/dal/interfaces/iorderitemrepo"
	"github.com/avencatt/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/avencatt/storefront/internal/dal/interfaces/iproductrepo"
	"github.com/avencatt/storefront/internal/dal/postgres"
	notificationrepo "github.com/avencatt/storefront/internal/dal/repositories/notification/postgres"
	orderrepo "github.com/avencatt/storefront/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/avencatt/storefront/internal/dal/repositories/orderitem/postgres"
	productrepo "github.com/avencatt/storefront/internal/dal/repositories/product/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type unitOfWork struct {
	pool             *pgxpool.Pool
	tx               pgx.Tx
	orderRepo        iorderrepo.IOrderRepository
	orderItemRepo    iorderitemrepo.IOrderItemRepository
	productRepo      iproductrepo.IProductRepository
	notificationRepo inotificationrepo.INotificationRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	pool := client.Pool()
	return &unitOfWork{
		pool:             pool,
		orderRepo:        orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo:    orderitemrepo.NewPostgresOrderItemRepository(pool),
		productRepo:      productrepo.NewPostgresProductRepository(pool),
		notificationRepo: notificationrepo.NewPostgresNotificationRepository(pool),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) ProductRepository() iproductrepo.IProductRepository {
	return u.productRepo
}

func (u *unitOfWork) NotificationRepository() inotificationrepo.INotificationRepository {
	return u.notificationRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	// Rebuild repositories over the transaction
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.productRepo = productrepo.NewPostgresProductRepository(tx)
	u.notificationRepo = notificationrepo.NewPostgresNotificationRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}
