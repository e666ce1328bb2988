package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 64 << 10

// WebhookParser verifies a provider callback and extracts the payment.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*services.PaymentConfirmationInput, error)
}

// PaymentController receives payment provider callbacks.
type PaymentController struct {
	parser       WebhookParser
	orderService services.OrderService
	logger       *zap.Logger
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(parser WebhookParser, orderService services.OrderService, logger *zap.Logger) *PaymentController {
	return &PaymentController{parser: parser, orderService: orderService, logger: logger}
}

// StripeWebhook handles POST /payments/stripe/webhook.
func (pc *PaymentController) StripeWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	payment, err := pc.parser.ParseWebhook(payload, ctx.GetHeader("Stripe-Signature"))
	if errors.Is(err, services.ErrWebhookIgnored) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err != nil {
		pc.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	svcErr := pc.orderService.ConfirmPayment(ctx.Request.Context(), payment.OrderNumber, payment.Amount, payment.Reference)
	if svcErr != nil && svcErr.StatusCode >= 500 {
		// Stripe retries on non-2xx.
		respondError(ctx, svcErr)
		return
	}
	if svcErr != nil {
		pc.logger.Warn("Stripe payment not applied",
			zap.String("order_number", payment.OrderNumber),
			zap.String("reference", payment.Reference),
			zap.String("reason", svcErr.Message),
		)
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "received"})
}
