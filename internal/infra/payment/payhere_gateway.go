package payment

import (
	"context"
	"errors"

	"course-platform/internal/config"
	"course-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*PayHereGateway)(nil)

// Gateway status codes, per PayHere notification docs.
const (
	statusCodeSuccess     = "2"
	statusCodePending     = "0"
	statusCodeCancelled   = "-1"
	statusCodeFailed      = "-2"
	statusCodeChargedback = "-3"
)

// PayHereGateway implements adapter.PaymentGateway for PayHere-style hosted
// checkout: a signed redirect out, a signed server-to-server notification back.
// There is no API call at checkout time.
type PayHereGateway struct {
	merchantID string
	secret     string
}

func NewPayHereGateway(cfg config.PayHereConfig) (*PayHereGateway, error) {
	if cfg.MerchantID == "" {
		return nil, errors.New("merchant id empty")
	}
	if cfg.Secret == "" {
		return nil, errors.New("merchant secret empty")
	}
	return &PayHereGateway{merchantID: cfg.MerchantID, secret: cfg.Secret}, nil
}

func (g *PayHereGateway) Name() string { return "payhere" }

func (g *PayHereGateway) SignCheckout(_ context.Context, orderID string, amountCents int64, currency string) (adapter.CheckoutParams, error) {
	if orderID == "" || amountCents <= 0 || currency == "" {
		return adapter.CheckoutParams{}, errors.New("incomplete checkout fields")
	}
	amount := FormatAmount(amountCents)
	return adapter.CheckoutParams{
		MerchantID: g.merchantID,
		OrderID:    orderID,
		Amount:     amount,
		Currency:   currency,
		Hash:       SignCheckout(g.merchantID, orderID, amount, currency, g.secret),
	}, nil
}

func (g *PayHereGateway) VerifyNotification(_ context.Context, n adapter.Notification) bool {
	// The merchant id in the payload is attacker-controlled; signatures are
	// only ever checked against our own.
	if n.MerchantID != g.merchantID {
		return false
	}
	return VerifyNotification(g.merchantID, n.OrderID, n.Amount, n.Currency, n.StatusCode, g.secret, n.Signature)
}

func (g *PayHereGateway) Success(statusCode string) bool {
	return statusCode == statusCodeSuccess
}

func (g *PayHereGateway) Pending(statusCode string) bool {
	return statusCode == statusCodePending
}
