package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // row created; awaiting gateway notification
	PaymentStatusCompleted PaymentStatus = "completed" // gateway reported success (terminal)
	PaymentStatusFailed    PaymentStatus = "failed"    // gateway reported failure/cancel (terminal)
)

// Terminal reports whether no further status transition is permitted.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// Payment records one attempted transaction with the gateway.
// The ID doubles as the gateway order id and is generated at checkout,
// before the signed redirect is handed to the client.
type Payment struct {
	ID               string // order id (ULID), the gateway correlation key
	UserID           string // UUID
	CourseID         string // UUID
	AmountCents      int64  // minor units; immutable after creation
	Currency         string // e.g. "LKR"
	Status           PaymentStatus
	Method           string  // gateway identifier, e.g. "payhere"
	GatewayPaymentID *string // provider payment id, set on first notification
	StatusMessage    *string // provider status message, if any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Purchase represents durable access to a course for a user.
// At most one row exists per (user, course); AccessGranted is monotonic.
type Purchase struct {
	ID            string // UUID
	UserID        string // UUID
	CourseID      string // UUID
	PaymentID     string // Payment that most recently (re)granted access
	AccessGranted bool
	PurchaseDate  time.Time
}
