package services

import (
	"context"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
)

// OrderEventProducer writes order lifecycle events to the event stream.
type OrderEventProducer interface {
	SendOrderCreated(ctx context.Context, event models.OrderCreatedEvent) error
}

// IdempotencyStore remembers the result of a request under a client key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CardPaymentGateway creates card payments for orders.
type CardPaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, orderNumber string) (*PaymentIntent, error)
}

// PaymentIntent is the part of a card payment the client needs.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// MetricsRecorder records business metrics.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// Deduplicator claims message ids so that redelivered messages are processed once.
type Deduplicator interface {
	// Claim reports false when id was already claimed in scope.
	Claim(ctx context.Context, scope, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, scope, id string) error
}
