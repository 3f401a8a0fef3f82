package usecase

import (
	"context"

	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/repository"
)

var _ ReportUseCase = (*reportUC)(nil)

// ReportUseCase serves the admin reconciliation views: raw payment listings
// and revenue totals. Payments are retained forever, so these queries are the
// audit trail.
type ReportUseCase interface {
	ListPayments(ctx context.Context, status string, offset, limit int) ([]*model.Payment, error)
	Revenue(ctx context.Context) (week, month, year int64, err error)
}

type reportUC struct {
	payments repository.PaymentRepository
}

func NewReportUseCase(payments repository.PaymentRepository) *reportUC {
	return &reportUC{payments: payments}
}

func (u *reportUC) ListPayments(ctx context.Context, status string, offset, limit int) ([]*model.Payment, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return u.payments.List(ctx, repository.NoTX, status, offset, limit)
}

func (u *reportUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	week, err := u.payments.SumCompletedByPeriod(ctx, repository.NoTX, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := u.payments.SumCompletedByPeriod(ctx, repository.NoTX, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	year, err := u.payments.SumCompletedByPeriod(ctx, repository.NoTX, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return week, month, year, nil
}
