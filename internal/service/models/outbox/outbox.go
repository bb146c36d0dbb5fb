package outbox

import (
	"time"
)

// OutboxMessage is an event that could not be published to RabbitMQ and is
// waiting for the outbox worker to retry it.
type OutboxMessage struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
