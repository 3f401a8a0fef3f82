package usecase

import (
	"context"

	"course-platform/internal/domain"
	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/repository"
)

var _ CourseUseCase = (*courseUC)(nil)

type CourseUseCase interface {
	Create(ctx context.Context, title string, priceCents int64, currency string, published bool) (*model.Course, error)
	Get(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, publishedOnly bool, offset, limit int) ([]*model.Course, error)
}

// courseUC serves catalog reads. It may sit on the cached course repository;
// checkout validation deliberately does not go through here.
type courseUC struct {
	courses repository.CourseRepository
}

func NewCourseUseCase(courses repository.CourseRepository) *courseUC {
	return &courseUC{courses: courses}
}

func (u *courseUC) Create(ctx context.Context, title string, priceCents int64, currency string, published bool) (*model.Course, error) {
	if title == "" || priceCents <= 0 || len(currency) != 3 {
		return nil, domain.ErrInvalidArgument
	}
	c := &model.Course{
		Title:      title,
		PriceCents: priceCents,
		Currency:   currency,
		Published:  published,
	}
	if err := u.courses.Save(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *courseUC) Get(ctx context.Context, id string) (*model.Course, error) {
	return u.courses.FindByID(ctx, repository.NoTX, id)
}

func (u *courseUC) List(ctx context.Context, publishedOnly bool, offset, limit int) ([]*model.Course, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return u.courses.List(ctx, repository.NoTX, publishedOnly, offset, limit)
}
