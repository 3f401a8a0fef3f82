package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"course-platform/internal/domain"
	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ AccessGrantUseCase = (*accessGrantUC)(nil)

type AccessGrantUseCase interface {
	// Grant converts a completed payment into durable course access. It is
	// idempotent: a purchase that is already granted is a no-op success, and
	// repeated grants for the same (user, course) pair converge on one row.
	Grant(ctx context.Context, userID, courseID, paymentID string) (*model.Purchase, error)

	ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error)
}

type accessGrantUC struct {
	purchases repository.PurchaseRepository
	log       *zerolog.Logger
}

func NewAccessGrantUseCase(purchases repository.PurchaseRepository, logger *zerolog.Logger) *accessGrantUC {
	return &accessGrantUC{purchases: purchases, log: logger}
}

func (u *accessGrantUC) Grant(ctx context.Context, userID, courseID, paymentID string) (*model.Purchase, error) {
	if userID == "" || courseID == "" || paymentID == "" {
		return nil, domain.ErrInvalidArgument
	}

	pu, err := u.purchases.GrantAccess(ctx, repository.NoTX, userID, courseID, paymentID)
	if err != nil {
		// A swallowed failure here would leave a completed payment with no
		// access; surface it as retryable and let the caller report failure.
		u.log.Error().Err(err).Str("user_id", userID).Str("course_id", courseID).Str("payment_id", paymentID).Msg("access grant failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrAccessGrant, err)
	}

	if pu.PaymentID == paymentID {
		u.log.Info().Str("user_id", userID).Str("course_id", courseID).Str("payment_id", paymentID).Msg("course access granted")
	} else {
		// The upsert declined to touch an already-granted purchase.
		u.log.Info().Str("user_id", userID).Str("course_id", courseID).Str("payment_id", paymentID).Msg("access already granted, no-op")
	}
	return pu, nil
}

func (u *accessGrantUC) ListByUser(ctx context.Context, userID string) ([]*model.Purchase, error) {
	return u.purchases.ListByUser(ctx, repository.NoTX, userID)
}
