package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/CodeForFun2004/The-Chill-Cup-API/controllers"
	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubWebhookParser struct {
	payment *services.PaymentConfirmationInput
	err     error
	gotSig  string
}

func (p *stubWebhookParser) ParseWebhook(_ []byte, signature string) (*services.PaymentConfirmationInput, error) {
	p.gotSig = signature
	return p.payment, p.err
}

func setupWebhookRouter(parser controllers.WebhookParser, orders services.OrderService) *gin.Engine {
	r := gin.New()
	pc := controllers.NewPaymentController(parser, orders, zap.NewNop())
	r.POST("/payments/stripe/webhook", pc.StripeWebhook)
	return r
}

func postWebhook(r *gin.Engine) (int, map[string]interface{}) {
	req, _ := http.NewRequest(http.MethodPost, "/payments/stripe/webhook", stringsReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := serve(r, req)
	return w.Code, decode(w)
}

func TestPaymentController_ConfirmsPayment(t *testing.T) {
	parser := &stubWebhookParser{payment: &services.PaymentConfirmationInput{OrderNumber: "#ORD-a1b2c3d", Amount: 87120, Reference: "pi_1"}}
	var confirmed string
	orders := &mockOrderService{
		confirmFn: func(_ context.Context, orderNumber string, amount int64, reference string) *services.ServiceError {
			confirmed = orderNumber
			assert.Equal(t, int64(87120), amount)
			assert.Equal(t, "pi_1", reference)
			return nil
		},
	}

	code, body := postWebhook(setupWebhookRouter(parser, orders))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "received", body["status"])
	assert.Equal(t, "#ORD-a1b2c3d", confirmed)
	assert.Equal(t, "t=1,v1=abc", parser.gotSig)
}

func TestPaymentController_IgnoredAndInvalid(t *testing.T) {
	code, body := postWebhook(setupWebhookRouter(&stubWebhookParser{err: services.ErrWebhookIgnored}, &mockOrderService{}))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ignored", body["status"])

	code, _ = postWebhook(setupWebhookRouter(&stubWebhookParser{err: errors.New("bad signature")}, &mockOrderService{}))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPaymentController_ConfirmErrors(t *testing.T) {
	parser := &stubWebhookParser{payment: &services.PaymentConfirmationInput{OrderNumber: "#ORD-x", Amount: 1, Reference: "pi_2"}}

	rejected := &mockOrderService{confirmFn: func(context.Context, string, int64, string) *services.ServiceError {
		return svcError(http.StatusBadRequest, services.CodeValidation)
	}}
	code, _ := postWebhook(setupWebhookRouter(parser, rejected))
	assert.Equal(t, http.StatusOK, code)

	failing := &mockOrderService{confirmFn: func(context.Context, string, int64, string) *services.ServiceError {
		return svcError(http.StatusInternalServerError, services.CodeInternal)
	}}
	code, _ = postWebhook(setupWebhookRouter(parser, failing))
	assert.Equal(t, http.StatusInternalServerError, code)
}
