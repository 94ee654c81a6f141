package export

import (
	"context"
	"fmt"

	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/mappers"
	"canvas-notion-sync/internal/providers"
)

// CollectAssignments normalizes the assignments of every active course. A
// course whose assignments cannot be fetched is logged and left out.
func CollectAssignments(ctx context.Context, src providers.Source, onlyDated bool, log logger.Logger) ([]domain.AssignmentRecord, error) {
	courses, err := src.ListActiveCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: list active courses: %w", err)
	}

	var out []domain.AssignmentRecord
	for _, cc := range courses {
		c := mappers.FromCanvasCourse(cc)
		if c.ID == 0 {
			continue
		}
		assignments, err := src.ListAssignments(ctx, c.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("Error fetching assignments", logger.String("course", c.DisplayName()), logger.Error(err))
			continue
		}
		for _, a := range assignments {
			rec := mappers.FromCanvasAssignment(a, c.DisplayName())
			if onlyDated && !rec.HasDue() {
				continue
			}
			out = append(out, rec)
		}
	}
	return out, nil
}
