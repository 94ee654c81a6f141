package main

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/sync"
)

func renderCourses(w io.Writer, courses []domain.CourseRef) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Course", "Term", "Starts", "Ends"})

	for _, c := range courses {
		term, starts, ends := "", "", ""
		if c.Term != nil {
			term = c.Term.Name
			starts = formatDate(c.Term.StartAt)
			ends = formatDate(c.Term.EndAt)
		}
		t.AppendRow(table.Row{c.ID, c.DisplayName(), term, starts, ends})
	}
	t.AppendFooter(table.Row{"", "Total", len(courses)})
	t.Render()
}

func renderReport(w io.Writer, rep sync.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Run " + rep.RunID)

	t.AppendRows([]table.Row{
		{"Courses seen", rep.CoursesSeen},
		{"Courses skipped", rep.CoursesSkipped},
		{"Created", rep.Created},
		{"Updated", rep.Updated},
		{"Skipped (undated)", rep.Skipped},
		{"Failed", rep.Failed},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Digest courses", rep.DigestCourses},
		{"Digest courses skipped", rep.DigestCoursesSkipped},
		{"Digest blocks", rep.DigestBlocks},
	})
	if rep.AssignmentError != "" || rep.DigestError != "" {
		t.AppendSeparator()
		if rep.AssignmentError != "" {
			t.AppendRow(table.Row{"Assignment error", rep.AssignmentError})
		}
		if rep.DigestError != "" {
			t.AppendRow(table.Row{"Digest error", rep.DigestError})
		}
	}
	t.AppendFooter(table.Row{"Duration", (time.Duration(rep.DurationMS) * time.Millisecond).String()})
	t.Render()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}
