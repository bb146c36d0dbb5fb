package paymentwebhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/avencatt/storefront/internal/gateway/paystack"
	"github.com/avencatt/storefront/internal/transport/http/respond"
)

type service interface {
	ApplyChargeEvent(ctx context.Context, evt paystack.Event) error
}

// PaymentWebhook handles server-to-server event delivery from the gateway.
// The signature covers the raw body, so it is read before any parsing; a
// request with a bad signature is dropped without touching the service.
func PaymentWebhook(w http.ResponseWriter, r *http.Request, service service, secret string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)

		return
	}

	signature := r.Header.Get(paystack.SignatureHeader)
	if !paystack.ValidSignature(secret, body, signature) {
		slog.Warn("Dropping webhook with invalid signature", "remote", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusBadRequest)

		return
	}

	var evt paystack.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding webhook event", "error", err)

		return
	}

	if err := service.ApplyChargeEvent(r.Context(), evt); err != nil {
		respond.Error(w, err)
		slog.Error("Error applying webhook event", "event", evt.Event, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
