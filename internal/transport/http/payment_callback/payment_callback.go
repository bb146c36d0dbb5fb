package paymentcallback

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avencatt/storefront/internal/service/models/order"
	"github.com/spf13/viper"
)

type service interface {
	SettlePaymentByReference(ctx context.Context, reference string) (*order.Order, bool, error)
}

// PaymentCallback handles the browser redirect back from the gateway's hosted
// checkout page. The query reference is verified against the gateway before
// anything is trusted, then the shopper is bounced back to the frontend with
// the outcome in the query string.
func PaymentCallback(w http.ResponseWriter, r *http.Request, service service) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		redirectError(w, r, "missing_reference")

		return
	}

	o, paid, err := service.SettlePaymentByReference(r.Context(), reference)
	if err != nil {
		slog.Error("Error settling payment from callback", "reference", reference, "error", err)
		redirectError(w, r, "verification_failed")

		return
	}

	if !paid {
		redirectError(w, r, "payment_failed")

		return
	}

	target := viper.GetString("frontend.base_url") + viper.GetString("frontend.confirmation_path")
	query := url.Values{}
	query.Set("orderId", strconv.FormatInt(o.ID, 10))
	query.Set("success", "true")

	http.Redirect(w, r, target+"?"+query.Encode(), http.StatusFound)
}

func redirectError(w http.ResponseWriter, r *http.Request, reason string) {
	target := viper.GetString("frontend.base_url") + viper.GetString("frontend.checkout_path")
	query := url.Values{}
	query.Set("error", reason)

	http.Redirect(w, r, target+"?"+query.Encode(), http.StatusFound)
}
