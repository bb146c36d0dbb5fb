package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avencatt/storefront/internal/dal/interfaces/inotificationrepo"
	"github.com/avencatt/storefront/internal/dal/interfaces/iorderitemrepo"
	"github.com/avencatt/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/avencatt/storefront/internal/dal/interfaces/iproductrepo"
	"github.com/avencatt/storefront/internal/dal/postgres"
	"github.com/avencatt/storefront/internal/dal/uow"
	"github.com/avencatt/storefront/internal/gateway/paystack"
	"github.com/avencatt/storefront/internal/service/errs"
	"github.com/avencatt/storefront/internal/service/models/currency"
	"github.com/avencatt/storefront/internal/service/models/event"
	"github.com/avencatt/storefront/internal/service/models/notification"
	"github.com/avencatt/storefront/internal/service/models/order"
	"github.com/avencatt/storefront/internal/service/models/orderitem"
	"github.com/avencatt/storefront/internal/service/models/product"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	ProductRepository() iproductrepo.IProductRepository
	NotificationRepository() inotificationrepo.INotificationRepository
}

type paymentGateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.Authorization, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, evts ...event.Event) error
}

// CheckoutConfig holds the pricing knobs of the order aggregator. Monetary
// values are in minor currency units; the tax rate is in basis points.
type CheckoutConfig struct {
	TaxRateBps                 int64
	FreeShippingThresholdCents int64
	ShippingFlatFeeCents       int64
	OrderPrefix                string
	CallbackURL                string
}

// CheckoutConfigFromViper reads the checkout knobs from configuration.
func CheckoutConfigFromViper() CheckoutConfig {
	cfg := CheckoutConfig{
		TaxRateBps:                 viper.GetInt64("checkout.tax_rate_bps"),
		FreeShippingThresholdCents: viper.GetInt64("checkout.free_shipping_threshold_cents"),
		ShippingFlatFeeCents:       viper.GetInt64("checkout.shipping_flat_fee_cents"),
		OrderPrefix:                viper.GetString("checkout.order_prefix"),
		CallbackURL:                viper.GetString("checkout.payment_callback_url"),
	}
	if cfg.OrderPrefix == "" {
		cfg.OrderPrefix = "ORD"
	}

	return cfg
}

// OrderService is the order aggregator: it validates cart contents against
// live stock and price, computes totals server-side, persists the order and
// drives payment initialization and reconciliation.
//
// Stock is decremented when the order is created, before payment is
// confirmed, and is never released if payment fails or is abandoned. That
// mirrors the storefront's existing behavior; releasing stock on failed
// payment is a pending product decision, not something this service decides.
type OrderService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	gateway    paymentGateway
	publisher  eventPublisher
	cfg        CheckoutConfig
	now        func() time.Time
}

func (s *OrderService) newUOW() unitOfWork {
	return s.uowFactory()
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		cfg: CheckoutConfigFromViper(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		panic("ordersvc: no unit of work source configured")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
		s.uowFactory = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithUnitOfWorkFactory overrides the unit of work source. Used by tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// WithPaymentGateway sets the payment gateway for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPaymentGateway(gateway paymentGateway) option {
	return func(s *OrderService) {
		s.gateway = gateway
	}
}

// WithEventPublisher sets the event publisher for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventPublisher(publisher eventPublisher) option {
	return func(s *OrderService) {
		s.publisher = publisher
	}
}

// WithCheckoutConfig overrides the checkout pricing knobs.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCheckoutConfig(cfg CheckoutConfig) option {
	return func(s *OrderService) {
		s.cfg = cfg
	}
}

// WithClock overrides the time source. Used by tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// CreateOrder validates the submitted cart against live stock and prices,
// persists the order in PENDING/PENDING with decremented stock, emits a
// notification and, for gateway-backed payment methods, opens a hosted
// checkout session.
//
// A gateway initialization failure is returned to the caller but the order
// stays persisted in PENDING so checkout can be resumed.
func (s *OrderService) CreateOrder(ctx context.Context, m order.CreateOrderModel) (*order.Order, string, error) {
	if m.PaymentMethod == "" {
		m.PaymentMethod = order.PaymentMethodPaystack
	}

	if err := s.validateCreateOrder(&m); err != nil {
		return nil, "", err
	}

	now := s.now()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, "", err
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	products, err := s.loadProducts(ctx, work, m.Items)
	if err != nil {
		return nil, "", err
	}

	items, subtotal := buildLineItems(m.Items, products, now)

	shipping := s.cfg.ShippingFlatFeeCents
	if subtotal >= s.cfg.FreeShippingThresholdCents {
		shipping = 0
	}
	tax := subtotal * s.cfg.TaxRateBps / 10000
	var discount int64
	total := subtotal + tax + shipping - discount

	seq, err := work.OrderRepository().NextDailySequence(ctx, now)
	if err != nil {
		return nil, "", err
	}

	o := order.Order{
		OrderNumber:     fmt.Sprintf("%s%s%03d", s.cfg.OrderPrefix, now.Format("060102"), seq),
		UserID:          m.UserID,
		Status:          order.StatusPending,
		PaymentStatus:   order.PaymentPending,
		PaymentMethod:   m.PaymentMethod,
		SubtotalCents:   subtotal,
		TaxCents:        tax,
		ShippingCents:   shipping,
		DiscountCents:   discount,
		TotalCents:      total,
		Currency:        currency.CurrencyNGN,
		ShippingAddress: m.ShippingAddress,
		BillingAddress:  m.BillingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	o, err = work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return nil, "", err
	}

	for i := range items {
		items[i].OrderID = o.ID
	}
	items, err = work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return nil, "", err
	}
	o.Items = items

	for _, item := range items {
		applied, err := work.ProductRepository().DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, "", err
		}
		if !applied {
			return nil, "", fmt.Errorf("product %d: %w", item.ProductID, errs.ErrInsufficientStock)
		}
	}

	if _, err := work.NotificationRepository().Insert(ctx, notification.Notification{
		Type:      notification.TypeOrderPlaced,
		Message:   fmt.Sprintf("New order %s placed", o.OrderNumber),
		OrderID:   o.ID,
		CreatedAt: now,
	}); err != nil {
		return nil, "", err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, "", err
	}

	s.publishEvent(ctx, event.Event{
		Type:        event.TypeOrderPlaced,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		TotalCents:  o.TotalCents,
		OccurredAt:  now,
	})

	if m.PaymentMethod != order.PaymentMethodPaystack {
		return &o, "", nil
	}

	paymentURL, err := s.initializePayment(ctx, &o, m.Email)
	if err != nil {
		// The order is already persisted; the client retries checkout from it.
		return &o, "", err
	}

	return &o, paymentURL, nil
}

func (s *OrderService) validateCreateOrder(m *order.CreateOrderModel) error {
	if len(m.Items) == 0 {
		return errs.Validation("items", "order must contain at least one item")
	}

	for i, item := range m.Items {
		if item.ProductID <= 0 {
			return errs.Validation(fmt.Sprintf("items[%d].productId", i), "must be positive")
		}
		if item.Quantity <= 0 {
			return errs.Validation(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
	}

	if missing := m.ShippingAddress.MissingFields(); len(missing) > 0 {
		return errs.Validation("shippingAddress."+missing[0], "required")
	}

	if m.BillingAddress.IsZero() {
		m.BillingAddress = m.ShippingAddress
	}

	if m.PaymentMethod == order.PaymentMethodPaystack && m.Email == "" {
		return errs.Validation("email", "required for gateway payment")
	}

	return nil
}

func (s *OrderService) loadProducts(ctx context.Context, work unitOfWork, items []order.CreateOrderItemModel) (map[int64]product.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := work.ProductRepository().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, errs.ErrNotFound)
		}
		if p.Stock < item.Quantity {
			return nil, fmt.Errorf("product %d (%s): %w", p.ID, p.Name, errs.ErrInsufficientStock)
		}
	}

	return byID, nil
}

func buildLineItems(items []order.CreateOrderItemModel, products map[int64]product.Product, now time.Time) ([]orderitem.OrderItem, int64) {
	lines := make([]orderitem.OrderItem, 0, len(items))
	var subtotal int64

	for _, item := range items {
		p := products[item.ProductID]
		lineTotal := p.PriceCents * int64(item.Quantity)
		subtotal += lineTotal

		lines = append(lines, orderitem.OrderItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			ImageURL:       p.ImageURL,
			Quantity:       item.Quantity,
			UnitPriceCents: p.PriceCents,
			LineTotalCents: lineTotal,
			PriceCurrency:  p.PriceCurrency,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	return lines, subtotal
}

func (s *OrderService) initializePayment(ctx context.Context, o *order.Order, email string) (string, error) {
	reference := uuid.New().String()

	auth, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       email,
		AmountCents: o.TotalCents,
		Reference:   reference,
		CallbackURL: s.cfg.CallbackURL,
		Metadata: paystack.Metadata{
			OrderID:     o.ID,
			UserID:      o.UserID,
			OrderNumber: o.OrderNumber,
		},
	})
	if err != nil {
		slog.Error("Payment initialization failed", "order_id", o.ID, "error", err)

		return "", fmt.Errorf("payment initialization failed: %w", errs.ErrExternalService)
	}

	if err := s.newUOW().OrderRepository().SetPaymentReference(ctx, o.ID, auth.Reference); err != nil {
		return "", err
	}
	o.PaymentReference = auth.Reference

	return auth.AuthorizationURL, nil
}

// GetOrder loads a single order with its items. Ownership is checked: an
// order of another user is reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*order.Order, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || o.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", orderID, errs.ErrNotFound)
	}

	items, err := work.OrderItemRepository().ListByOrderIDs(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

// GetOrders retrieves the caller's orders with their items.
func (s *OrderService) GetOrders(ctx context.Context, userID int64, model order.QueryOrdersModel) ([]order.Order, error) {
	model.UserIds = []int64{userID}

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &model)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	items, err := work.OrderItemRepository().ListByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].Items = append(orders[i].Items, item)
			}
		}
	}

	return orders, nil
}

// SettlePaymentByReference asks the gateway for the authoritative outcome of
// a transaction and applies it to the order named in the verified metadata.
// It is invoked by the redirect callback and by the reconciliation sweep.
func (s *OrderService) SettlePaymentByReference(ctx context.Context, reference string) (*order.Order, bool, error) {
	txn, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, false, fmt.Errorf("verify %s: %w", reference, errs.ErrExternalService)
	}

	orderID := txn.Metadata.OrderID
	if orderID == 0 {
		return nil, false, fmt.Errorf("transaction %s carries no order: %w", reference, errs.ErrNotFound)
	}

	if txn.Succeeded() {
		if err := s.confirmPayment(ctx, orderID, txn.Reference); err != nil {
			return nil, false, err
		}
	} else {
		if _, err := s.newUOW().OrderRepository().MarkPaymentFailed(ctx, orderID, txn.Reference); err != nil {
			return nil, false, err
		}
	}

	o, err := s.newUOW().OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if o == nil {
		return nil, false, fmt.Errorf("order %d: %w", orderID, errs.ErrNotFound)
	}

	return o, txn.Succeeded(), nil
}

// ApplyChargeEvent applies a webhook event. Signature validation happens at
// the transport; events other than charge.success are acknowledged unchanged.
func (s *OrderService) ApplyChargeEvent(ctx context.Context, evt paystack.Event) error {
	if evt.Event != paystack.EventChargeSuccess {
		slog.Info("Ignoring webhook event", "event", evt.Event)

		return nil
	}

	orderID := evt.Data.Metadata.OrderID
	if orderID == 0 {
		return errs.Validation("data.metadata.orderId", "required")
	}

	return s.confirmPayment(ctx, orderID, evt.Data.Reference)
}

// confirmPayment is the single idempotent PAID/PROCESSING transition shared
// by the callback, the webhook and the reconciliation sweep. The conditional
// update applies at most once no matter how many observers race it.
func (s *OrderService) confirmPayment(ctx context.Context, orderID int64, reference string) error {
	work := s.newUOW()

	applied, err := work.OrderRepository().ConfirmPayment(ctx, orderID, reference)
	if err != nil {
		return err
	}
	if !applied {
		slog.Info("Payment already confirmed", "order_id", orderID)

		return nil
	}

	o, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil || o == nil {
		slog.Warn("Confirmed payment but could not reload order", "order_id", orderID, "error", err)

		return nil
	}

	if _, err := work.NotificationRepository().Insert(ctx, notification.Notification{
		Type:      notification.TypePaymentReceived,
		Message:   fmt.Sprintf("Payment received for order %s", o.OrderNumber),
		OrderID:   o.ID,
		CreatedAt: s.now(),
	}); err != nil {
		slog.Warn("Failed to record payment notification", "order_id", o.ID, "error", err)
	}

	s.publishEvent(ctx, event.Event{
		Type:        event.TypePaymentReceived,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		TotalCents:  o.TotalCents,
		OccurredAt:  s.now(),
	})

	return nil
}

// SettleStalePayments reconciles orders whose payment has been PENDING for
// longer than olderThan. Returns how many orders were looked at.
func (s *OrderService) SettleStalePayments(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	stale, err := s.newUOW().OrderRepository().FindStalePendingPayments(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	for _, o := range stale {
		if _, _, err := s.SettlePaymentByReference(ctx, o.PaymentReference); err != nil {
			slog.Warn("Failed to settle stale payment", "order_id", o.ID, "error", err)
		}
	}

	return len(stale), nil
}

func (s *OrderService) publishEvent(ctx context.Context, evt event.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Warn("Failed to publish order event", "type", evt.Type, "order_id", evt.OrderID, "error", err)
	}
}
