package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/avencatt/storefront/internal/service/models/order"
	"github.com/avencatt/storefront/internal/transport/http/respond"
	"github.com/avencatt/storefront/pkg/http/middleware/auth"
	"github.com/gorilla/schema"
)

type service interface {
	GetOrders(ctx context.Context, userID int64, model order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Ids    []int64 `schema:"ids,omitempty"`
	Limit  int     `schema:"limit,omitempty"`
	Offset int     `schema:"offset,omitempty"`
}

func (q *queryOrdersRequest) ToModel() order.QueryOrdersModel {
	return order.QueryOrdersModel{
		Ids:    q.Ids,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
}

// ListOrders handles listing the caller's orders.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	orders, err := service.GetOrders(r.Context(), auth.UserIDFromContext(r.Context()), query.ToModel())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting orders", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, orders)
}
