package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/avencatt/storefront/internal/gateway/paystack"
	"github.com/avencatt/storefront/internal/service/models/order"
	createorder "github.com/avencatt/storefront/internal/transport/http/create_order"
	getorder "github.com/avencatt/storefront/internal/transport/http/get_order"
	listorders "github.com/avencatt/storefront/internal/transport/http/list_orders"
	paymentcallback "github.com/avencatt/storefront/internal/transport/http/payment_callback"
	paymentwebhook "github.com/avencatt/storefront/internal/transport/http/payment_webhook"
	"github.com/avencatt/storefront/pkg/http/middleware/auth"
	"github.com/avencatt/storefront/pkg/http/middleware/trace"
	"github.com/avencatt/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type service interface {
	CreateOrder(ctx context.Context, m order.CreateOrderModel) (*order.Order, string, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*order.Order, error)
	GetOrders(ctx context.Context, userID int64, model order.QueryOrdersModel) ([]order.Order, error)
	SettlePaymentByReference(ctx context.Context, reference string) (*order.Order, bool, error)
	ApplyChargeEvent(ctx context.Context, evt paystack.Event) error
}

// pinger reports whether the datastore is reachable.
type pinger interface {
	Ping(ctx context.Context) error
}

type HTTPTransport struct {
	server        *http.Server
	router        *chi.Mux
	service       service
	db            pinger
	webhookSecret string
}

func NewHTTPTransport(service service, db pinger) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:        server,
		router:        router,
		service:       service,
		db:            db,
		webhookSecret: os.Getenv("PAYSTACK_SECRET_KEY"),
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/health", h.health)

	h.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Post("/orders", h.createOrder)
			r.Get("/orders", h.listOrders)
			r.Get("/orders/{id}", h.getOrder)
		})

		// The gateway calls these two; they carry their own authentication
		// (the verify roundtrip and the webhook signature respectively).
		r.Get("/payments/callback", h.paymentCallback)
		r.Post("/payments/webhook", h.paymentWebhook)
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) paymentCallback(w http.ResponseWriter, r *http.Request) {
	paymentcallback.PaymentCallback(w, r, h.service)
}

func (h *HTTPTransport) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	paymentwebhook.PaymentWebhook(w, r, h.service, h.webhookSecret)
}

func (h *HTTPTransport) health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			slog.Error("Health check failed", "error", err)
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)

			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
