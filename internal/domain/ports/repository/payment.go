package repository

import (
	"context"
	"time"

	"course-platform/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)

	// UpdateStatusIfPending atomically moves a payment into a terminal state
	// only when its current status is still 'pending'. It reports whether the
	// conditional write won; a false result with a nil error means another
	// delivery already finalized the payment.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.PaymentStatus, gatewayPaymentID, statusMessage *string) (bool, error)

	List(ctx context.Context, tx Tx, status string, offset, limit int) ([]*model.Payment, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)

	// ListCompletedUngranted returns completed payments whose purchase row is
	// missing or not yet granted, for the reconciler to repair.
	ListCompletedUngranted(ctx context.Context, tx Tx, limit int) ([]*model.Payment, error)

	SumCompletedByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
