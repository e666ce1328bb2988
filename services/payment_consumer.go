package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	aws_pkg "github.com/CodeForFun2004/The-Chill-Cup-API/pkg/aws"
	"go.uber.org/zap"
)

const (
	paymentDedupScope = "payment"
	paymentDedupTTL   = 48 * time.Hour
)

// MessagePoller delivers queue messages to a handler until ctx is done.
type MessagePoller interface {
	StartPolling(ctx context.Context, handler aws_pkg.MessageHandler) error
}

// PaymentConfirmationConsumer confirms orders from bank-transfer
// notifications delivered through SQS.
type PaymentConfirmationConsumer struct {
	poller MessagePoller
	orders OrderService
	dedup  Deduplicator
	logger *zap.Logger
}

// NewPaymentConfirmationConsumer creates a new PaymentConfirmationConsumer.
// dedup may be nil, in which case ConfirmPayment's own idempotency applies.
func NewPaymentConfirmationConsumer(poller MessagePoller, orders OrderService, dedup Deduplicator, logger *zap.Logger) *PaymentConfirmationConsumer {
	return &PaymentConfirmationConsumer{poller: poller, orders: orders, dedup: dedup, logger: logger}
}

// Start polls until ctx is cancelled.
func (c *PaymentConfirmationConsumer) Start(ctx context.Context) {
	c.logger.Info("Starting payment confirmation consumer (SQS)")
	err := c.poller.StartPolling(ctx, c.HandleMessage)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error("Payment confirmation consumer stopped", zap.Error(err))
	}
}

// HandleMessage processes one queue message. Malformed messages and
// business rejections are dropped; a non-nil error leaves the message on the
// queue for redelivery.
func (c *PaymentConfirmationConsumer) HandleMessage(ctx context.Context, body string) error {
	// Messages fanned out from SNS arrive wrapped in an envelope.
	var envelope struct {
		Message string `json:"Message"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Message != "" {
		body = envelope.Message
	}

	var msg models.PaymentConfirmation
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		c.logger.Warn("Invalid payment confirmation JSON", zap.Error(err))
		return nil
	}
	if msg.OrderNumber == "" || msg.Reference == "" {
		c.logger.Warn("Payment confirmation missing fields",
			zap.String("order_number", msg.OrderNumber),
			zap.String("reference", msg.Reference),
		)
		return nil
	}

	if c.dedup != nil {
		claimed, err := c.dedup.Claim(ctx, paymentDedupScope, msg.Reference, paymentDedupTTL)
		if err != nil {
			c.logger.Warn("Dedup lookup failed, processing anyway", zap.String("reference", msg.Reference), zap.Error(err))
		} else if !claimed {
			c.logger.Info("Duplicate payment confirmation, skipping", zap.String("reference", msg.Reference))
			return nil
		}
	}

	svcErr := c.orders.ConfirmPayment(ctx, msg.OrderNumber, msg.Amount, msg.Reference)
	if svcErr == nil {
		return nil
	}
	if svcErr.StatusCode < 500 {
		c.logger.Warn("Payment confirmation rejected",
			zap.String("order_number", msg.OrderNumber),
			zap.String("reference", msg.Reference),
			zap.String("reason", svcErr.Message),
		)
		return nil
	}

	if c.dedup != nil {
		if err := c.dedup.Release(ctx, paymentDedupScope, msg.Reference); err != nil {
			c.logger.Warn("Failed to release dedup claim", zap.String("reference", msg.Reference), zap.Error(err))
		}
	}
	return svcErr
}
