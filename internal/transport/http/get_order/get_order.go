package getorder

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avencatt/storefront/internal/service/errs"
	"github.com/avencatt/storefront/internal/service/models/order"
	"github.com/avencatt/storefront/internal/transport/http/respond"
	"github.com/avencatt/storefront/pkg/http/middleware/auth"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetOrder(ctx context.Context, userID, orderID int64) (*order.Order, error)
}

// getOrderResponse decorates the order with the display projection of its
// two status axes, shared by the customer and admin views.
type getOrderResponse struct {
	*order.Order
	StatusView        order.StatusView `json:"statusView"`
	PaymentStatusView order.StatusView `json:"paymentStatusView"`
}

// GetOrder handles fetching a single order. Ownership is enforced by the
// service layer.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, errs.Validation("id", "must be a numeric order id"))

		return
	}

	o, err := service.GetOrder(r.Context(), auth.UserIDFromContext(r.Context()), orderID)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting order", "order_id", orderID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, getOrderResponse{
		Order:             o,
		StatusView:        order.ProjectStatus(o.Status),
		PaymentStatusView: order.ProjectPaymentStatus(o.PaymentStatus),
	})
}
