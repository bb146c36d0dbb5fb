package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/avencatt/storefront/internal/dal/interfaces/inotificationrepo"
	"github.com/avencatt/storefront/internal/dal/interfaces/iorderitemrepo"
	"github.com/avencatt/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/avencatt/storefront/internal/dal/interfaces/iproductrepo"
	"github.com/avencatt/storefront/internal/gateway/paystack"
	"github.com/avencatt/storefront/internal/service/errs"
	"github.com/avencatt/storefront/internal/service/models/address"
	"github.com/avencatt/storefront/internal/service/models/currency"
	"github.com/avencatt/storefront/internal/service/models/event"
	"github.com/avencatt/storefront/internal/service/models/notification"
	"github.com/avencatt/storefront/internal/service/models/order"
	"github.com/avencatt/storefront/internal/service/models/orderitem"
	"github.com/avencatt/storefront/internal/service/models/product"
)

type fakeStore struct {
	orders        map[int64]order.Order
	items         []orderitem.OrderItem
	products      map[int64]product.Product
	notifications []notification.Notification
	counters      map[string]int64

	nextOrderID int64
	nextItemID  int64
	nextNotifID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[int64]order.Order),
		products: make(map[int64]product.Product),
		counters: make(map[string]int64),
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := &fakeStore{
		orders:      make(map[int64]order.Order, len(s.orders)),
		products:    make(map[int64]product.Product, len(s.products)),
		counters:    make(map[string]int64, len(s.counters)),
		nextOrderID: s.nextOrderID,
		nextItemID:  s.nextItemID,
		nextNotifID: s.nextNotifID,
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	c.items = append([]orderitem.OrderItem(nil), s.items...)
	c.notifications = append([]notification.Notification(nil), s.notifications...)

	return c
}

// fakeUOW applies writes directly to the store and restores a snapshot on
// rollback, so failed checkouts must leave the store untouched.
type fakeUOW struct {
	s         *fakeStore
	snap      *fakeStore
	committed bool
}

func (u *fakeUOW) Begin(_ context.Context) error {
	u.snap = u.s.clone()

	return nil
}

func (u *fakeUOW) Commit(_ context.Context) error {
	u.committed = true

	return nil
}

func (u *fakeUOW) Rollback(_ context.Context) error {
	if u.snap != nil && !u.committed {
		*u.s = *u.snap
	}

	return nil
}

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return &fakeOrderRepo{s: u.s}
}

func (u *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return &fakeItemRepo{s: u.s}
}

func (u *fakeUOW) ProductRepository() iproductrepo.IProductRepository {
	return &fakeProductRepo{s: u.s}
}

func (u *fakeUOW) NotificationRepository() inotificationrepo.INotificationRepository {
	return &fakeNotifRepo{s: u.s}
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	r.s.nextOrderID++
	o.ID = r.s.nextOrderID
	r.s.orders[o.ID] = o

	return o, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}

	return &o, nil
}

func (r *fakeOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var out []order.Order
	for _, o := range r.s.orders {
		if len(filter.UserIds) > 0 && !containsInt64(filter.UserIds, o.UserID) {
			continue
		}
		if len(filter.Ids) > 0 && !containsInt64(filter.Ids, o.ID) {
			continue
		}
		out = append(out, o)
	}

	return out, nil
}

func (r *fakeOrderRepo) NextDailySequence(_ context.Context, day time.Time) (int64, error) {
	key := day.Format("2006-01-02")
	r.s.counters[key]++

	return r.s.counters[key], nil
}

func (r *fakeOrderRepo) SetPaymentReference(_ context.Context, orderID int64, reference string) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d not found", orderID)
	}
	o.PaymentReference = reference
	r.s.orders[orderID] = o

	return nil
}

func (r *fakeOrderRepo) ConfirmPayment(_ context.Context, orderID int64, reference string) (bool, error) {
	o, ok := r.s.orders[orderID]
	if !ok || o.PaymentStatus == order.PaymentPaid {
		return false, nil
	}

	o.PaymentStatus = order.PaymentPaid
	o.Status = order.StatusProcessing
	o.PaymentReference = reference
	r.s.orders[orderID] = o

	return true, nil
}

func (r *fakeOrderRepo) MarkPaymentFailed(_ context.Context, orderID int64, reference string) (bool, error) {
	o, ok := r.s.orders[orderID]
	if !ok || o.PaymentStatus != order.PaymentPending {
		return false, nil
	}

	o.PaymentStatus = order.PaymentFailed
	o.PaymentReference = reference
	r.s.orders[orderID] = o

	return true, nil
}

func (r *fakeOrderRepo) FindStalePendingPayments(_ context.Context, olderThan time.Duration, limit int) ([]order.Order, error) {
	cutoff := time.Now().Add(-olderThan)

	var out []order.Order
	for _, o := range r.s.orders {
		if o.PaymentStatus == order.PaymentPending && o.PaymentReference != "" && o.CreatedAt.Before(cutoff) {
			out = append(out, o)
		}
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

type fakeItemRepo struct{ s *fakeStore }

func (r *fakeItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	for i := range items {
		r.s.nextItemID++
		items[i].ID = r.s.nextItemID
		r.s.items = append(r.s.items, items[i])
	}

	return items, nil
}

func (r *fakeItemRepo) ListByOrderIDs(_ context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	var out []orderitem.OrderItem
	for _, item := range r.s.items {
		if containsInt64(orderIDs, item.OrderID) {
			out = append(out, item)
		}
	}

	return out, nil
}

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, productID int64, quantity int) (bool, error) {
	p, ok := r.s.products[productID]
	if !ok || p.Stock < quantity {
		return false, nil
	}

	p.Stock -= quantity
	r.s.products[productID] = p

	return true, nil
}

type fakeNotifRepo struct{ s *fakeStore }

func (r *fakeNotifRepo) Insert(_ context.Context, n notification.Notification) (notification.Notification, error) {
	r.s.nextNotifID++
	n.ID = r.s.nextNotifID
	r.s.notifications = append(r.s.notifications, n)

	return n, nil
}

type fakeGateway struct {
	initErr   error
	initCalls []paystack.InitializeRequest
	txns      map[string]paystack.Transaction
	verifyErr error
}

func (g *fakeGateway) InitializeTransaction(_ context.Context, req paystack.InitializeRequest) (*paystack.Authorization, error) {
	g.initCalls = append(g.initCalls, req)
	if g.initErr != nil {
		return nil, g.initErr
	}

	return &paystack.Authorization{
		AuthorizationURL: "https://checkout.paystack.com/" + req.Reference,
		AccessCode:       "access_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) VerifyTransaction(_ context.Context, reference string) (*paystack.Transaction, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}

	txn, ok := g.txns[reference]
	if !ok {
		return nil, fmt.Errorf("transaction %s not found", reference)
	}

	return &txn, nil
}

type fakePublisher struct {
	events []event.Event
}

func (p *fakePublisher) Publish(_ context.Context, evts ...event.Event) error {
	p.events = append(p.events, evts...)

	return nil
}

func containsInt64(haystack []int64, needle int64) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}

	return false
}

var testClock = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func testService(store *fakeStore, gw *fakeGateway, pub *fakePublisher) *OrderService {
	return MustNewOrderService(
		WithUnitOfWorkFactory(func() unitOfWork { return &fakeUOW{s: store} }),
		WithPaymentGateway(gw),
		WithEventPublisher(pub),
		WithCheckoutConfig(CheckoutConfig{
			TaxRateBps:                 750,
			FreeShippingThresholdCents: 50000,
			ShippingFlatFeeCents:       2500,
			OrderPrefix:                "ORD",
			CallbackURL:                "http://localhost:8080/api/payments/callback",
		}),
		WithClock(func() time.Time { return testClock }),
	)
}

func testAddress() address.Address {
	return address.Address{
		FirstName:  "Ada",
		LastName:   "Obi",
		Address1:   "12 Marina Road",
		City:       "Lagos",
		State:      "Lagos",
		PostalCode: "101241",
	}
}

func seedProduct(store *fakeStore, id int64, priceCents int64, stock int) {
	store.products[id] = product.Product{
		ID:            id,
		Name:          fmt.Sprintf("Product %d", id),
		PriceCents:    priceCents,
		PriceCurrency: currency.CurrencyNGN,
		Stock:         stock,
	}
}

func createModel(items ...order.CreateOrderItemModel) order.CreateOrderModel {
	return order.CreateOrderModel{
		UserID:          7,
		Email:           "ada@example.com",
		Items:           items,
		ShippingAddress: testAddress(),
	}
}

func TestCreateOrder_ComputesTotalsServerSide(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 2500, 10)
	gw := &fakeGateway{}
	pub := &fakePublisher{}
	svc := testService(store, gw, pub)

	o, paymentURL, err := svc.CreateOrder(context.Background(), createModel(
		order.CreateOrderItemModel{ProductID: 1, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if o.SubtotalCents != 5000 {
		t.Errorf("subtotal = %d, want 5000", o.SubtotalCents)
	}
	if o.ShippingCents != 2500 {
		t.Errorf("shipping = %d, want 2500", o.ShippingCents)
	}
	if o.TaxCents != 375 {
		t.Errorf("tax = %d, want 375", o.TaxCents)
	}
	if o.TotalCents != 7875 {
		t.Errorf("total = %d, want 7875", o.TotalCents)
	}
	if o.Status != order.StatusPending || o.PaymentStatus != order.PaymentPending {
		t.Errorf("status = %s/%s, want PENDING/PENDING", o.Status, o.PaymentStatus)
	}
	if want := "ORD260314001"; o.OrderNumber != want {
		t.Errorf("orderNumber = %s, want %s", o.OrderNumber, want)
	}
	if paymentURL == "" {
		t.Error("expected a hosted checkout URL")
	}

	if got := store.products[1].Stock; got != 8 {
		t.Errorf("stock after order = %d, want 8", got)
	}
	if len(store.notifications) != 1 || store.notifications[0].Type != notification.TypeOrderPlaced {
		t.Errorf("notifications = %+v, want one order.placed", store.notifications)
	}
	if len(pub.events) != 1 || pub.events[0].Type != event.TypeOrderPlaced {
		t.Errorf("events = %+v, want one order.placed", pub.events)
	}
	if len(gw.initCalls) != 1 {
		t.Fatalf("gateway init calls = %d, want 1", len(gw.initCalls))
	}
	if gw.initCalls[0].AmountCents != 7875 {
		t.Errorf("gateway amount = %d, want 7875", gw.initCalls[0].AmountCents)
	}
	if gw.initCalls[0].Metadata.OrderID != o.ID {
		t.Errorf("gateway metadata order id = %d, want %d", gw.initCalls[0].Metadata.OrderID, o.ID)
	}
	if store.orders[o.ID].PaymentReference == "" {
		t.Error("payment reference not persisted")
	}
}

func TestCreateOrder_FreeShippingThreshold(t *testing.T) {
	cases := []struct {
		name         string
		priceCents   int64
		wantShipping int64
	}{
		{name: "at threshold", priceCents: 50000, wantShipping: 0},
		{name: "just below threshold", priceCents: 49999, wantShipping: 2500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			seedProduct(store, 1, tc.priceCents, 5)
			svc := testService(store, &fakeGateway{}, &fakePublisher{})

			o, _, err := svc.CreateOrder(context.Background(), createModel(
				order.CreateOrderItemModel{ProductID: 1, Quantity: 1},
			))
			if err != nil {
				t.Fatalf("CreateOrder: %v", err)
			}

			if o.ShippingCents != tc.wantShipping {
				t.Errorf("shipping = %d, want %d", o.ShippingCents, tc.wantShipping)
			}
		})
	}
}

func TestCreateOrder_SequenceIncrementsWithinDay(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 1000, 100)
	svc := testService(store, &fakeGateway{}, &fakePublisher{})

	first, _, err := svc.CreateOrder(context.Background(), createModel(
		order.CreateOrderItemModel{ProductID: 1, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("first order: %v", err)
	}
	second, _, err := svc.CreateOrder(context.Background(), createModel(
		order.CreateOrderItemModel{ProductID: 1, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("second order: %v", err)
	}

	if first.OrderNumber != "ORD260314001" || second.OrderNumber != "ORD260314002" {
		t.Errorf("order numbers = %s, %s; want ORD260314001, ORD260314002", first.OrderNumber, second.OrderNumber)
	}
}

func TestCreateOrder_InsufficientStockPersistsNothing(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 2500, 1)
	pub := &fakePublisher{}
	svc := testService(store, &fakeGateway{}, pub)

	_, _, err := svc.CreateOrder(context.Background(), createModel(
		order.CreateOrderItemModel{ProductID: 1, Quantity: 3},
	))
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	if len(store.orders) != 0 || len(store.items) != 0 || len(store.notifications) != 0 {
		t.Errorf("store not empty after rejected order: %+v", store)
	}
	if store.products[1].Stock != 1 {
		t.Errorf("stock = %d, want 1 (untouched)", store.products[1].Stock)
	}
	if len(pub.events) != 0 {
		t.Errorf("events published for a rejected order: %+v", pub.events)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, &fakeGateway{}, &fakePublisher{})

	_, _, err := svc.CreateOrder(context.Background(), createModel(
		order.CreateOrderItemModel{ProductID: 42, Quantity: 1},
	))
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 1000, 10)
	svc := testService(store, &fakeGateway{}, &fakePublisher{})

	cases := []struct {
		name      string
		model     order.CreateOrderModel
		wantField string
	}{
		{
			name:      "empty items",
			model:     createModel(),
			wantField: "items",
		},
		{
			name: "non-positive quantity",
			model: createModel(
				order.CreateOrderItemModel{ProductID: 1, Quantity: 0},
			),
			wantField: "items[0].quantity",
		},
		{
			name: "missing shipping city",
			model: func() order.CreateOrderModel {
				m := createModel(order.CreateOrderItemModel{ProductID: 1, Quantity: 1})
				m.ShippingAddress.City = ""
				return m
			}(),
			wantField: "shippingAddress.city",
		},
		{
			name: "missing email for gateway payment",
			model: func() order.CreateOrderModel {
				m := createModel(order.CreateOrderItemModel{ProductID: 1, Quantity: 1})
				m.Email = ""
				return m
			}(),
			wantField: "email",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.CreateOrder(context.Background(), tc.model)

			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tc.wantField {
				t.Errorf("field = %q, want %q", ve.Field, tc.wantField)
			}
		})
	}
}

func TestCreateOrder_BillingDefaultsToShipping(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 1000, 10)
	svc := testService(store, &fakeGateway{}, &fakePublisher{})

	o, _, err := svc.CreateOrder(context.Background(), createModel(
		order.CreateOrderItemModel{ProductID: 1, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if o.BillingAddress != testAddress() {
		t.Errorf("billing = %+v, want copy of shipping", o.BillingAddress)
	}
}

func TestCreateOrder_GatewayInitFailureKeepsOrder(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 2500, 10)
	gw := &fakeGateway{initErr: errors.New("gateway down")}
	svc := testService(store, gw, &fakePublisher{})

	o, paymentURL, err := svc.CreateOrder(context.Background(), createModel(
		order.CreateOrderItemModel{ProductID: 1, Quantity: 1},
	))
	if !errors.Is(err, errs.ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}
	if o == nil {
		t.Fatal("expected the persisted order to be returned")
	}
	if paymentURL != "" {
		t.Errorf("paymentURL = %q, want empty", paymentURL)
	}

	persisted := store.orders[o.ID]
	if persisted.PaymentStatus != order.PaymentPending {
		t.Errorf("payment status = %s, want PENDING", persisted.PaymentStatus)
	}
	if store.products[1].Stock != 9 {
		t.Errorf("stock = %d, want 9 (order committed before gateway call)", store.products[1].Stock)
	}
}

func TestCreateOrder_PayOnDeliverySkipsGateway(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, 1, 1000, 10)
	gw := &fakeGateway{}
	svc := testService(store, gw, &fakePublisher{})

	m := createModel(order.CreateOrderItemModel{ProductID: 1, Quantity: 1})
	m.PaymentMethod = order.PaymentMethodPayOnDelivery
	m.Email = ""

	_, paymentURL, err := svc.CreateOrder(context.Background(), m)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if paymentURL != "" {
		t.Errorf("paymentURL = %q, want empty", paymentURL)
	}
	if len(gw.initCalls) != 0 {
		t.Errorf("gateway called for pay on delivery: %d calls", len(gw.initCalls))
	}
}

func seedPendingOrder(store *fakeStore, id int64, userID int64, reference string, createdAt time.Time) {
	store.orders[id] = order.Order{
		ID:               id,
		OrderNumber:      fmt.Sprintf("ORD260314%03d", id),
		UserID:           userID,
		Status:           order.StatusPending,
		PaymentStatus:    order.PaymentPending,
		PaymentMethod:    order.PaymentMethodPaystack,
		PaymentReference: reference,
		TotalCents:       7875,
		Currency:         currency.CurrencyNGN,
		CreatedAt:        createdAt,
	}
	if id > store.nextOrderID {
		store.nextOrderID = id
	}
}

func TestSettlePaymentByReference(t *testing.T) {
	t.Run("successful charge confirms once", func(t *testing.T) {
		store := newFakeStore()
		seedPendingOrder(store, 1, 7, "ref-1", testClock)
		gw := &fakeGateway{txns: map[string]paystack.Transaction{
			"ref-1": {Status: "success", Reference: "ref-1", AmountCents: 7875, Metadata: paystack.Metadata{OrderID: 1}},
		}}
		pub := &fakePublisher{}
		svc := testService(store, gw, pub)

		o, paid, err := svc.SettlePaymentByReference(context.Background(), "ref-1")
		if err != nil {
			t.Fatalf("settle: %v", err)
		}
		if !paid {
			t.Fatal("paid = false, want true")
		}
		if o.PaymentStatus != order.PaymentPaid || o.Status != order.StatusProcessing {
			t.Errorf("order = %s/%s, want PROCESSING/PAID", o.Status, o.PaymentStatus)
		}

		// The webhook for the same charge races the callback; the second
		// observer must be a no-op.
		if _, paid, err = svc.SettlePaymentByReference(context.Background(), "ref-1"); err != nil || !paid {
			t.Fatalf("second settle: paid=%v err=%v", paid, err)
		}

		var received int
		for _, evt := range pub.events {
			if evt.Type == event.TypePaymentReceived {
				received++
			}
		}
		if received != 1 {
			t.Errorf("payment.received events = %d, want exactly 1", received)
		}
		if len(store.notifications) != 1 || store.notifications[0].Type != notification.TypePaymentReceived {
			t.Errorf("notifications = %+v, want one payment.received", store.notifications)
		}
	})

	t.Run("failed charge marks payment failed only", func(t *testing.T) {
		store := newFakeStore()
		seedPendingOrder(store, 1, 7, "ref-1", testClock)
		gw := &fakeGateway{txns: map[string]paystack.Transaction{
			"ref-1": {Status: "failed", Reference: "ref-1", Metadata: paystack.Metadata{OrderID: 1}},
		}}
		svc := testService(store, gw, &fakePublisher{})

		o, paid, err := svc.SettlePaymentByReference(context.Background(), "ref-1")
		if err != nil {
			t.Fatalf("settle: %v", err)
		}
		if paid {
			t.Error("paid = true, want false")
		}
		if o.PaymentStatus != order.PaymentFailed {
			t.Errorf("payment status = %s, want FAILED", o.PaymentStatus)
		}
		if o.Status != order.StatusPending {
			t.Errorf("fulfillment status = %s, want PENDING (untouched)", o.Status)
		}
	})

	t.Run("verification error", func(t *testing.T) {
		store := newFakeStore()
		gw := &fakeGateway{verifyErr: errors.New("timeout")}
		svc := testService(store, gw, &fakePublisher{})

		_, _, err := svc.SettlePaymentByReference(context.Background(), "ref-1")
		if !errors.Is(err, errs.ErrExternalService) {
			t.Fatalf("err = %v, want ErrExternalService", err)
		}
	})

	t.Run("transaction without order metadata", func(t *testing.T) {
		store := newFakeStore()
		gw := &fakeGateway{txns: map[string]paystack.Transaction{
			"ref-1": {Status: "success", Reference: "ref-1"},
		}}
		svc := testService(store, gw, &fakePublisher{})

		_, _, err := svc.SettlePaymentByReference(context.Background(), "ref-1")
		if !errors.Is(err, errs.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestApplyChargeEvent(t *testing.T) {
	t.Run("charge success confirms payment", func(t *testing.T) {
		store := newFakeStore()
		seedPendingOrder(store, 1, 7, "ref-1", testClock)
		svc := testService(store, &fakeGateway{}, &fakePublisher{})

		err := svc.ApplyChargeEvent(context.Background(), paystack.Event{
			Event: paystack.EventChargeSuccess,
			Data:  paystack.EventData{Reference: "ref-1", Status: "success", Metadata: paystack.Metadata{OrderID: 1}},
		})
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if store.orders[1].PaymentStatus != order.PaymentPaid {
			t.Errorf("payment status = %s, want PAID", store.orders[1].PaymentStatus)
		}
	})

	t.Run("other events are acknowledged unchanged", func(t *testing.T) {
		store := newFakeStore()
		seedPendingOrder(store, 1, 7, "ref-1", testClock)
		svc := testService(store, &fakeGateway{}, &fakePublisher{})

		err := svc.ApplyChargeEvent(context.Background(), paystack.Event{Event: "transfer.success"})
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if store.orders[1].PaymentStatus != order.PaymentPending {
			t.Errorf("payment status = %s, want PENDING", store.orders[1].PaymentStatus)
		}
	})

	t.Run("missing order metadata is a validation error", func(t *testing.T) {
		svc := testService(newFakeStore(), &fakeGateway{}, &fakePublisher{})

		err := svc.ApplyChargeEvent(context.Background(), paystack.Event{
			Event: paystack.EventChargeSuccess,
			Data:  paystack.EventData{Reference: "ref-1"},
		})

		var ve *errs.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
	})
}

func TestSettleStalePayments(t *testing.T) {
	store := newFakeStore()
	seedPendingOrder(store, 1, 7, "ref-stale", time.Now().Add(-time.Hour))
	seedPendingOrder(store, 2, 7, "ref-fresh", time.Now())
	gw := &fakeGateway{txns: map[string]paystack.Transaction{
		"ref-stale": {Status: "success", Reference: "ref-stale", Metadata: paystack.Metadata{OrderID: 1}},
	}}
	svc := testService(store, gw, &fakePublisher{})

	settled, err := svc.SettleStalePayments(context.Background(), 15*time.Minute, 10)
	if err != nil {
		t.Fatalf("settle stale: %v", err)
	}
	if settled != 1 {
		t.Errorf("settled = %d, want 1", settled)
	}
	if store.orders[1].PaymentStatus != order.PaymentPaid {
		t.Errorf("stale order payment status = %s, want PAID", store.orders[1].PaymentStatus)
	}
	if store.orders[2].PaymentStatus != order.PaymentPending {
		t.Errorf("fresh order payment status = %s, want PENDING", store.orders[2].PaymentStatus)
	}
}

func TestGetOrder_OwnershipCheck(t *testing.T) {
	store := newFakeStore()
	seedPendingOrder(store, 1, 7, "ref-1", testClock)
	svc := testService(store, &fakeGateway{}, &fakePublisher{})

	if _, err := svc.GetOrder(context.Background(), 7, 1); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}

	_, err := svc.GetOrder(context.Background(), 8, 1)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("foreign lookup err = %v, want ErrNotFound", err)
	}
}

func TestGetOrders_FiltersToCaller(t *testing.T) {
	store := newFakeStore()
	seedPendingOrder(store, 1, 7, "ref-1", testClock)
	seedPendingOrder(store, 2, 8, "ref-2", testClock)
	svc := testService(store, &fakeGateway{}, &fakePublisher{})

	orders, err := svc.GetOrders(context.Background(), 7, order.QueryOrdersModel{})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 1 {
		t.Errorf("orders = %+v, want only order 1", orders)
	}
}
