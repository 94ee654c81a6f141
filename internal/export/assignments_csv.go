package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"canvas-notion-sync/internal/domain"
)

// Keep header order stable: downstream spreadsheets import by position.
var assignmentsHeader = []string{
	"CANVAS_ID",
	"COURSE",
	"NAME",
	"DUE_AT",
	"POINTS",
	"STATUS",
	"URL",
}

// WriteAssignmentsCSV writes records with a header row. Absent due dates and
// points are left empty.
func WriteAssignmentsCSV(w io.Writer, records []domain.AssignmentRecord) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(assignmentsHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(toRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toRow(r domain.AssignmentRecord) []string {
	points := ""
	if r.Points != nil {
		points = strconv.FormatFloat(*r.Points, 'f', -1, 64)
	}

	return []string{
		r.ID,       // CANVAS_ID
		r.Course,   // COURSE
		r.Name,     // NAME
		r.DueAt,    // DUE_AT
		points,     // POINTS
		r.Status(), // STATUS
		r.URL,      // URL
	}
}
