package domain

import (
	"strconv"
	"time"
)

// CourseRef is a Canvas course as seen during one sync pass. It is fetched
// fresh on every run and never stored.
type CourseRef struct {
	ID   int64
	Name string
	Term *Term
}

// Term is the enrollment term attached to a course when the listing asked
// for include[]=term. Nil dates mean the term leaves that bound open.
type Term struct {
	Name    string
	StartAt *time.Time
	EndAt   *time.Time
}

// DisplayName is the course name, or "Course {id}" when Canvas sent none.
func (c CourseRef) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "Course " + strconv.FormatInt(c.ID, 10)
}

// CurrentOrFuture reports whether the course term has not definitively ended
// at now. Courses without a term, or whose term has no dates, qualify.
func (c CourseRef) CurrentOrFuture(now time.Time) bool {
	if c.Term == nil {
		return true
	}
	start, end := c.Term.StartAt, c.Term.EndAt
	if start == nil && end == nil {
		return true
	}
	if end != nil && !end.Before(now) {
		return true
	}
	if start != nil && start.After(now) {
		return true
	}
	return end == nil
}
