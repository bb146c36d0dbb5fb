package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/avencatt/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/avencatt/storefront/internal/dal/rabbitmq"
	"github.com/avencatt/storefront/internal/service/models/event"
	"github.com/avencatt/storefront/internal/service/models/outbox"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"
)

const defaultMaxRetries = 5

type RabbitMQPublisher struct {
	client     *rabbitmq.Client
	queue      amqp.Queue
	outboxRepo ioutboxrepo.IOutboxRepository
}

func NewRabbitMQPublisher(client *rabbitmq.Client, outboxRepo ioutboxrepo.IOutboxRepository) *RabbitMQPublisher {
	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       "storefront.order.events",
		Durable:    true,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &RabbitMQPublisher{
		client:     client,
		queue:      queue,
		outboxRepo: outboxRepo,
	}
}

// Publish sends events to the order events queue. A failed publish is parked
// in the outbox for the outbox worker to retry, so callers never fail the
// order flow over a broker hiccup.
func (r *RabbitMQPublisher) Publish(ctx context.Context, evts ...event.Event) error {
	publishCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	g, publishCtx := errgroup.WithContext(publishCtx)
	g.SetLimit(3)

	for _, evt := range evts {
		evt := evt
		g.Go(func() error {
			payload, err := json.Marshal(evt)
			if err != nil {
				return err
			}

			err = r.client.Channel().Publish(
				"",
				r.queue.Name,
				false,
				false,
				amqp.Publishing{
					ContentType: "application/json",
					Body:        payload,
				},
			)
			if err != nil {
				slog.Warn("Failed to publish order event, parking in outbox",
					"type", evt.Type,
					"order_id", evt.OrderID,
					"error", err,
				)

				return r.outboxRepo.Insert(publishCtx, outbox.OutboxMessage{
					QueueName:   r.queue.Name,
					Payload:     payload,
					ContentType: "application/json",
					MaxRetries:  defaultMaxRetries,
					CreatedAt:   time.Now(),
					UpdatedAt:   time.Now(),
					NextRetryAt: time.Now(),
				})
			}

			return nil
		})
	}

	return g.Wait()
}
