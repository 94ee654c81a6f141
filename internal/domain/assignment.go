package domain

import "time"

// AssignmentRecord is the canonical flat form of a Canvas assignment. ID is
// the identity key: at most one Notion page carries a given ID.
type AssignmentRecord struct {
	ID   string
	Name string
	// DueAt is Canvas's due_at exactly as sent. Empty means undated.
	DueAt         string
	URL           string
	Points        *float64
	Course        string
	Published     bool
	WorkflowState string
}

// dueLayouts are tried in order by Due. Canvas sends RFC 3339; the others
// show up in imported or hand-edited assignments.
var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// HasDue reports whether Canvas sent a due date at all.
func (a AssignmentRecord) HasDue() bool { return a.DueAt != "" }

// Due parses DueAt. Values without a zone are read as UTC. ok is false when
// the record is undated or the value matches no known layout.
func (a AssignmentRecord) Due() (t time.Time, ok bool) {
	if a.DueAt == "" {
		return time.Time{}, false
	}
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, a.DueAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Status is the workflow state when Canvas reported one, otherwise
// "published" or "unpublished".
func (a AssignmentRecord) Status() string {
	if a.WorkflowState != "" {
		return a.WorkflowState
	}
	if a.Published {
		return "published"
	}
	return "unpublished"
}
