package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"course-platform/internal/domain"
	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/adapter"
	"course-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutInput struct {
	CourseID    string
	UserID      string
	AmountCents int64
	Title       string
	Currency    string
}

type CheckoutUseCase interface {
	// Initiate validates the request, creates a pending payment row and signs
	// the gateway redirect. The row exists before the signature is returned:
	// a notification referencing this order id always has something to
	// transition.
	Initiate(ctx context.Context, in CheckoutInput) (adapter.CheckoutParams, error)
}

type checkoutUC struct {
	payments repository.PaymentRepository
	courses  *courseValidator
	users    *userValidator
	gateway  adapter.PaymentGateway
	log      *zerolog.Logger
}

// NewCheckoutUseCase builds the checkout orchestrator. The course repository
// passed here must be the authoritative (uncached) one.
func NewCheckoutUseCase(
	payments repository.PaymentRepository,
	courses repository.CourseRepository,
	users repository.UserRepository,
	gateway adapter.PaymentGateway,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		payments: payments,
		courses:  &courseValidator{courses: courses},
		users:    &userValidator{users: users},
		gateway:  gateway,
		log:      logger,
	}
}

func (u *checkoutUC) Initiate(ctx context.Context, in CheckoutInput) (adapter.CheckoutParams, error) {
	if err := validateCheckoutInput(in); err != nil {
		return adapter.CheckoutParams{}, err
	}

	course, err := u.courses.Validate(ctx, in.CourseID, in.AmountCents)
	if err != nil {
		return adapter.CheckoutParams{}, err
	}
	if !strings.EqualFold(course.Currency, in.Currency) {
		return adapter.CheckoutParams{}, domain.ErrPriceMismatch
	}
	if _, err := u.users.Validate(ctx, in.UserID); err != nil {
		return adapter.CheckoutParams{}, err
	}

	now := time.Now().UTC()
	p := &model.Payment{
		ID:          ulid.Make().String(),
		UserID:      in.UserID,
		CourseID:    in.CourseID,
		AmountCents: course.PriceCents,
		Currency:    course.Currency,
		Status:      model.PaymentStatusPending,
		Method:      u.gateway.Name(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return adapter.CheckoutParams{}, err
	}

	params, err := u.gateway.SignCheckout(ctx, p.ID, p.AmountCents, p.Currency)
	if err != nil {
		return adapter.CheckoutParams{}, err
	}

	u.log.Info().
		Str("order_id", p.ID).
		Str("user_id", p.UserID).
		Str("course_id", p.CourseID).
		Int64("amount_cents", p.AmountCents).
		Str("currency", p.Currency).
		Msg("checkout initiated")
	return params, nil
}

func validateCheckoutInput(in CheckoutInput) error {
	if in.AmountCents <= 0 {
		return domain.ErrInvalidArgument
	}
	if len(in.Currency) != 3 {
		return domain.ErrInvalidArgument
	}
	if _, err := uuid.Parse(in.CourseID); err != nil {
		return domain.ErrInvalidArgument
	}
	if _, err := uuid.Parse(in.UserID); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}
