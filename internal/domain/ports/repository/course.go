package repository

import (
	"context"

	"course-platform/internal/domain/model"
)

type CourseRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Course) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Course, error)
	List(ctx context.Context, tx Tx, publishedOnly bool, offset, limit int) ([]*model.Course, error)
}
