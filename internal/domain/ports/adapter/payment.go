package adapter

import "context"

// CheckoutParams is everything the client needs to build the signed redirect
// form for the hosted gateway page.
type CheckoutParams struct {
	MerchantID string
	OrderID    string
	Amount     string // two-decimal wire format, e.g. "2500.00"
	Currency   string
	Hash       string // uppercase hex digest over the checkout fields
}

// Notification is the normalized server-to-server callback payload.
type Notification struct {
	MerchantID       string
	OrderID          string
	GatewayPaymentID string
	Amount           string // wire format as sent by the gateway
	Currency         string
	StatusCode       string
	StatusMessage    string
	Method           string
	Signature        string
}

// PaymentGateway is the hex port for the payment provider. PayHere-style
// gateways have no server-to-server call at checkout: the integration is a
// signed redirect out and a signed webhook back.
type PaymentGateway interface {
	Name() string

	// SignCheckout produces the redirect parameters for a pending payment.
	SignCheckout(ctx context.Context, orderID string, amountCents int64, currency string) (CheckoutParams, error)

	// VerifyNotification recomputes the webhook digest over the notification
	// fields and compares it to the received signature. It never errors on
	// malformed input; the caller decides what a false result means.
	VerifyNotification(ctx context.Context, n Notification) bool

	// Success reports whether a gateway status code denotes a captured payment.
	Success(statusCode string) bool

	// Pending reports whether a status code denotes a still-in-flight payment
	// that must not move the record out of pending.
	Pending(statusCode string) bool
}
