package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/repository"
	"course-platform/internal/infra/metrics"
	red "course-platform/internal/infra/redis"
)

var _ repository.CourseRepository = (*courseRepoCacheDecorator)(nil)

// courseRepoCacheDecorator caches catalog reads in Redis. Payment-critical
// validation must NOT go through this decorator: checkout price checks read
// the inner repository directly so a stale cached price can never be trusted
// for money decisions.
type courseRepoCacheDecorator struct {
	inner repository.CourseRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCourseRepoCacheDecorator(inner repository.CourseRepository, cache red.RedisClient, ttl time.Duration) repository.CourseRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &courseRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *courseRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	key := fmt.Sprintf("course:%s", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var course model.Course
		if json.Unmarshal([]byte(val), &course) == nil {
			metrics.IncCacheRequest("course", "hit")
			return &course, nil
		}
	}

	metrics.IncCacheRequest("course", "miss")
	course, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(course); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return course, nil
}

// Save invalidates the cached entry for this course.
func (d *courseRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	if err := d.inner.Save(ctx, tx, c); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, fmt.Sprintf("course:%s", c.ID))
	return nil
}

// List is not cached: it is admin-facing and pagination keys would thrash.
func (d *courseRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, publishedOnly bool, offset, limit int) ([]*model.Course, error) {
	return d.inner.List(ctx, tx, publishedOnly, offset, limit)
}
