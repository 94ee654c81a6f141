package canvas

import (
	"encoding/json"
	"time"
)

/* -------- Response -------- */

type Course struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	CourseCode    string  `json:"course_code"`
	WorkflowState string  `json:"workflow_state"`
	Term          *Term   `json:"term,omitempty"`
	SyllabusBody  *string `json:"syllabus_body,omitempty"`
}

type Term struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`
}

// Assignment keeps every optional Canvas field nullable so the mapper can
// tell "absent" from zero values. ID is kept as the literal JSON number.
type Assignment struct {
	ID             json.Number `json:"id"`
	Name           string      `json:"name"`
	DueAt          *string     `json:"due_at"`
	HTMLURL        string      `json:"html_url"`
	PointsPossible *float64    `json:"points_possible"`
	Published      *bool       `json:"published"`
	WorkflowState  string      `json:"workflow_state"`
}

// Page is a wiki page. Listings omit Body; the single-page endpoint fills it.
type Page struct {
	PageID    int64   `json:"page_id"`
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Body      *string `json:"body,omitempty"`
	HTMLURL   string  `json:"html_url"`
	FrontPage bool    `json:"front_page"`
	Published bool    `json:"published"`
}

// BodyText returns the page body or "".
func (p Page) BodyText() string {
	if p.Body == nil {
		return ""
	}
	return *p.Body
}

type Module struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ModuleItem struct {
	ID          int64  `json:"id"`
	ModuleID    int64  `json:"module_id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	HTMLURL     string `json:"html_url"`
	ExternalURL string `json:"external_url"`

	// ModuleName is filled from the owning module, not by Canvas.
	ModuleName string `json:"-"`
}

// WebURL is the item's Canvas URL, or its external target for ExternalUrl items.
func (it ModuleItem) WebURL() string {
	if it.HTMLURL != "" {
		return it.HTMLURL
	}
	return it.ExternalURL
}

type File struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
}

// Name is the display name, falling back to the stored filename.
func (f File) Name() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Filename
}
