package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/avencatt/storefront/internal/service/models/address"
	"github.com/avencatt/storefront/internal/service/models/order"
	"github.com/avencatt/storefront/internal/transport/http/respond"
	"github.com/avencatt/storefront/pkg/http/middleware/auth"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, m order.CreateOrderModel) (*order.Order, string, error)
}

// itemInCreateOrderRequest represents a cart line in a create order request.
// Prices are deliberately absent: the server prices from the live catalog.
type itemInCreateOrderRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"  validate:"gt=0"`
}

// addressInCreateOrderRequest represents a postal address in a create order request.
type addressInCreateOrderRequest struct {
	FirstName  string `json:"firstName"  validate:"required"`
	LastName   string `json:"lastName"   validate:"required"`
	Address1   string `json:"address1"   validate:"required"`
	Address2   string `json:"address2"`
	City       string `json:"city"       validate:"required"`
	State      string `json:"state"      validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

func (r *addressInCreateOrderRequest) toModel() address.Address {
	return address.Address{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Address1:   r.Address1,
		Address2:   r.Address2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
	}
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	Email           string                       `json:"email"           validate:"required,email"`
	PaymentMethod   string                       `json:"paymentMethod"   validate:"omitempty,oneof=paystack pay_on_delivery"`
	Items           []itemInCreateOrderRequest   `json:"items"           validate:"required,min=1,dive"`
	ShippingAddress addressInCreateOrderRequest  `json:"shippingAddress" validate:"required"`
	BillingAddress  *addressInCreateOrderRequest `json:"billingAddress"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts createOrderRequest to order.CreateOrderModel.
func (r *createOrderRequest) toModel(userID int64) order.CreateOrderModel {
	items := make([]order.CreateOrderItemModel, len(r.Items))
	for i, item := range r.Items {
		items[i] = order.CreateOrderItemModel{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	m := order.CreateOrderModel{
		UserID:          userID,
		Email:           r.Email,
		PaymentMethod:   order.PaymentMethod(r.PaymentMethod),
		Items:           items,
		ShippingAddress: r.ShippingAddress.toModel(),
	}
	if r.BillingAddress != nil {
		m.BillingAddress = r.BillingAddress.toModel()
	}

	return m
}

// createOrderResponse represents a create order response. PaymentURL carries
// the gateway's hosted checkout page when one was opened.
type createOrderResponse struct {
	Order      *order.Order `json:"order"`
	PaymentURL string       `json:"paymentUrl,omitempty"`
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderReq := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&orderReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := orderReq.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	o, paymentURL, err := service.CreateOrder(r.Context(), orderReq.toModel(auth.UserIDFromContext(r.Context())))
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error creating order", "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, createOrderResponse{
		Order:      o,
		PaymentURL: paymentURL,
	})
}
