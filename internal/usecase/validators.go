package usecase

import (
	"context"

	"course-platform/internal/domain"
	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/repository"
)

// priceToleranceCents absorbs currency rounding between the client-quoted
// amount and the catalog price. One minor unit, nothing more: a larger gap is
// treated as tampering, not corrected.
const priceToleranceCents = 1

// courseValidator confirms existence, published status and price agreement
// against the authoritative store. It must be constructed on the raw course
// repository, never the cache decorator: money decisions do not trust caches.
type courseValidator struct {
	courses repository.CourseRepository
}

func (v *courseValidator) Validate(ctx context.Context, courseID string, expectedCents int64) (*model.Course, error) {
	course, err := v.courses.FindByID(ctx, repository.NoTX, courseID)
	if err != nil {
		return nil, err
	}
	if !course.Published {
		return nil, domain.ErrCourseNotPublished
	}
	diff := course.PriceCents - expectedCents
	if diff < 0 {
		diff = -diff
	}
	if diff > priceToleranceCents {
		return nil, domain.ErrPriceMismatch
	}
	return course, nil
}

// userValidator is an existence check only. Authorization lives elsewhere.
type userValidator struct {
	users repository.UserRepository
}

func (v *userValidator) Validate(ctx context.Context, userID string) (*model.User, error) {
	return v.users.FindByID(ctx, repository.NoTX, userID)
}
