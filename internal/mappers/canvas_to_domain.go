package mappers

import (
	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/providers/canvas"
)

// FromCanvasAssignment flattens a Canvas assignment into the record that is
// upserted into Notion. course is the display name of the owning course.
func FromCanvasAssignment(a canvas.Assignment, course string) domain.AssignmentRecord {
	id := a.ID.String()
	return domain.AssignmentRecord{
		ID:            id,
		Name:          pickName(a.Name, "Assignment "+id),
		DueAt:         derefString(a.DueAt),
		URL:           a.HTMLURL,
		Points:        a.PointsPossible,
		Course:        course,
		Published:     a.Published == nil || *a.Published,
		WorkflowState: a.WorkflowState,
	}
}

// FromCanvasCourse keeps the fields the sync needs from a course listing.
func FromCanvasCourse(c canvas.Course) domain.CourseRef {
	ref := domain.CourseRef{ID: c.ID, Name: c.Name}
	if c.Term != nil {
		ref.Term = &domain.Term{Name: c.Term.Name, StartAt: c.Term.StartAt, EndAt: c.Term.EndAt}
	}
	return ref
}

func FromCanvasCourses(cs []canvas.Course) []domain.CourseRef {
	out := make([]domain.CourseRef, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromCanvasCourse(c))
	}
	return out
}

func pickName(a, fallback string) string {
	if a != "" {
		return a
	}
	return fallback
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
