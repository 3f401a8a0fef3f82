package repository

import (
	"context"

	"course-platform/internal/domain/model"
)

type PurchaseRepository interface {
	// GrantAccess performs one atomic upsert keyed on (user_id, course_id):
	// create the row with access_granted=true, or flip an existing ungranted
	// row to true recording the payment id. A row that is already granted is
	// left untouched and reported as a no-op success. No code path ever sets
	// access_granted back to false.
	GrantAccess(ctx context.Context, tx Tx, userID, courseID, paymentID string) (*model.Purchase, error)

	FindByUserAndCourse(ctx context.Context, tx Tx, userID, courseID string) (*model.Purchase, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Purchase, error)
}
