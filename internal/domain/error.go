package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrCourseNotPublished = errors.New("course is not published")
	ErrPriceMismatch      = errors.New("amount does not match course price")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidSignature   = errors.New("notification signature mismatch")
	ErrAlreadyExists      = errors.New("entity already exists")

	// Persistence errors. The only category callers may retry.
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")

	// ErrAccessGrant marks a failed purchase upsert after the payment already
	// reached completed. It must never be conflated with a payment failure.
	ErrAccessGrant = errors.New("access grant failed")
)
