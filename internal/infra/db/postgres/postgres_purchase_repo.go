package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-platform/internal/domain"
	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/repository"
)

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

const purchaseColumns = `id, user_id, course_id, payment_id, access_granted, purchase_date`

type purchaseRepo struct{ pool *pgxpool.Pool }

func NewPurchaseRepo(pool *pgxpool.Pool) *purchaseRepo {
	return &purchaseRepo{pool: pool}
}

// GrantAccess is a single conditional upsert on the (user_id, course_id)
// uniqueness invariant, never a read-then-write pair. Two concurrent grants
// both succeed: one inserts or flips the row, the other hits the no-op WHERE
// clause and falls through to the re-read. access_granted only ever moves to
// true here.
func (r *purchaseRepo) GrantAccess(ctx context.Context, tx repository.Tx, userID, courseID, paymentID string) (*model.Purchase, error) {
	const q = `
INSERT INTO purchases (` + purchaseColumns + `)
VALUES ($1, $2, $3, $4, TRUE, $5)
ON CONFLICT (user_id, course_id) DO UPDATE SET
  access_granted = TRUE,
  payment_id = EXCLUDED.payment_id
WHERE purchases.access_granted = FALSE;`

	_, err := execSQL(ctx, r.pool, tx, q, uuid.NewString(), userID, courseID, paymentID, time.Now().UTC())
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}

	// Zero rows affected means the purchase was already granted; the re-read
	// returns the surviving row either way.
	return r.FindByUserAndCourse(ctx, tx, userID, courseID)
}

func (r *purchaseRepo) FindByUserAndCourse(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.Purchase, error) {
	const q = `SELECT ` + purchaseColumns + ` FROM purchases WHERE user_id=$1 AND course_id=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, courseID)
	if err != nil {
		return nil, err
	}
	return scanPurchase(row)
}

func (r *purchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	const q = `SELECT ` + purchaseColumns + ` FROM purchases WHERE user_id=$1 ORDER BY purchase_date DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Purchase
	for rows.Next() {
		pu := new(model.Purchase)
		if err := rows.Scan(&pu.ID, &pu.UserID, &pu.CourseID, &pu.PaymentID, &pu.AccessGranted, &pu.PurchaseDate); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, pu)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}

func scanPurchase(row pgx.Row) (*model.Purchase, error) {
	pu := &model.Purchase{}
	err := row.Scan(&pu.ID, &pu.UserID, &pu.CourseID, &pu.PaymentID, &pu.AccessGranted, &pu.PurchaseDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return pu, nil
}
