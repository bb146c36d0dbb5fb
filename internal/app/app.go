package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avencatt/storefront/internal/dal/postgres"
	"github.com/avencatt/storefront/internal/dal/rabbitmq"
	"github.com/avencatt/storefront/internal/dal/repositories/events"
	outboxrepo "github.com/avencatt/storefront/internal/dal/repositories/outbox/postgres"
	"github.com/avencatt/storefront/internal/gateway/paystack"
	"github.com/avencatt/storefront/internal/jaeger"
	"github.com/avencatt/storefront/internal/service/services/ordersvc"
	httptransport "github.com/avencatt/storefront/internal/transport/http"
	"github.com/avencatt/storefront/internal/worker/outbox"
	"github.com/avencatt/storefront/internal/worker/reconcile"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

// App represents the application.
type App struct {
	orderSvc        *ordersvc.OrderService
	transport       *httptransport.HTTPTransport
	postgresClient  *postgres.Client
	rabbitClient    *rabbitmq.Client
	outboxWorker    *outbox.Worker
	reconcileWorker *reconcile.Worker
	tracerProvider  *sdktrace.TracerProvider
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	tracerProvider := jaeger.MustSetupTracing()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	outboxRepository := outboxrepo.NewOutboxRepository(postgresClient.Pool())
	publisher := events.NewRabbitMQPublisher(rabbitClient, outboxRepository)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithPaymentGateway(paystack.MustNewClient()),
		ordersvc.WithEventPublisher(publisher),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, postgresClient)
	transport.RegisterRoutes()

	return &App{
		orderSvc:        orderSvc,
		transport:       transport,
		postgresClient:  postgresClient,
		rabbitClient:    rabbitClient,
		outboxWorker:    outbox.NewWorker(outboxRepository, rabbitClient),
		reconcileWorker: reconcile.NewWorker(orderSvc),
		tracerProvider:  tracerProvider,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	workers, workerCtx := errgroup.WithContext(workerCtx)

	workers.Go(func() error {
		a.outboxWorker.Start(workerCtx)

		return nil
	})
	workers.Go(func() error {
		a.reconcileWorker.Start(workerCtx)

		return nil
	})

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorkers()
	if err := workers.Wait(); err != nil {
		slog.Error("Worker error during shutdown", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.tracerProvider.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
