package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/mappers"
	"canvas-notion-sync/internal/providers"
)

// SelectCurrentOrFuture returns the courses the digest covers: the caller's
// current and future enrollments, or, when that listing fails or is empty,
// every active course whose term has not ended at now.
func SelectCurrentOrFuture(ctx context.Context, src providers.Source, now time.Time, log logger.Logger) ([]domain.CourseRef, error) {
	enrolled, err := src.ListEnrolledCourses(ctx)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("Enrolled course listing failed, falling back to active courses", logger.Error(err))
	case len(enrolled) == 0:
		log.Info("No current or future enrollments, falling back to active courses")
	default:
		return mappers.FromCanvasCourses(enrolled), nil
	}

	active, activeErr := src.ListActiveCourses(ctx)
	if activeErr != nil {
		return nil, fmt.Errorf("list courses: %w", errors.Join(err, activeErr))
	}

	var out []domain.CourseRef
	for _, c := range mappers.FromCanvasCourses(active) {
		if c.CurrentOrFuture(now) {
			out = append(out, c)
		}
	}
	return out, nil
}
