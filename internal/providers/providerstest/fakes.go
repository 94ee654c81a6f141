// Package providerstest has in-memory Source and Destination fakes for
// engine, digest and orchestrator tests.
package providerstest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/providers"
	"canvas-notion-sync/internal/providers/canvas"
)

// Source serves canned Canvas data. Errors keyed by course ID fail the
// matching per-course call.
type Source struct {
	Enrolled    []canvas.Course
	EnrolledErr error
	Active      []canvas.Course
	ActiveErr   error

	Assignments    map[int64][]canvas.Assignment
	AssignmentErrs map[int64]error

	Syllabi     map[int64]string
	FrontPages  map[int64]*canvas.Page
	Pages       map[int64][]canvas.Page
	ModuleItems map[int64][]canvas.ModuleItem
	Files       map[int64][]canvas.File

	// ContentErrs fails every digest content call for a course.
	ContentErrs map[int64]error

	mu    sync.Mutex
	calls []string
}

var _ providers.Source = (*Source)(nil)

func (s *Source) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

// Calls returns the calls made so far, formatted as "Method" or "Method(id)".
func (s *Source) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

func (s *Source) ListEnrolledCourses(ctx context.Context) ([]canvas.Course, error) {
	s.record("ListEnrolledCourses")
	return s.Enrolled, s.EnrolledErr
}

func (s *Source) ListActiveCourses(ctx context.Context) ([]canvas.Course, error) {
	s.record("ListActiveCourses")
	return s.Active, s.ActiveErr
}

func (s *Source) ListAssignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error) {
	s.record(fmt.Sprintf("ListAssignments(%d)", courseID))
	if err := s.AssignmentErrs[courseID]; err != nil {
		return nil, err
	}
	return s.Assignments[courseID], nil
}

func (s *Source) GetSyllabusBody(ctx context.Context, courseID int64) (string, error) {
	s.record(fmt.Sprintf("GetSyllabusBody(%d)", courseID))
	if err := s.ContentErrs[courseID]; err != nil {
		return "", err
	}
	return s.Syllabi[courseID], nil
}

func (s *Source) GetFrontPage(ctx context.Context, courseID int64) (*canvas.Page, error) {
	s.record(fmt.Sprintf("GetFrontPage(%d)", courseID))
	if err := s.ContentErrs[courseID]; err != nil {
		return nil, err
	}
	return s.FrontPages[courseID], nil
}

func (s *Source) ListPagesWithBodies(ctx context.Context, courseID int64) ([]canvas.Page, error) {
	s.record(fmt.Sprintf("ListPagesWithBodies(%d)", courseID))
	if err := s.ContentErrs[courseID]; err != nil {
		return nil, err
	}
	return s.Pages[courseID], nil
}

func (s *Source) ListModuleItems(ctx context.Context, courseID int64) ([]canvas.ModuleItem, error) {
	s.record(fmt.Sprintf("ListModuleItems(%d)", courseID))
	if err := s.ContentErrs[courseID]; err != nil {
		return nil, err
	}
	return s.ModuleItems[courseID], nil
}

func (s *Source) SearchFiles(ctx context.Context, courseID int64, term string) ([]canvas.File, error) {
	s.record(fmt.Sprintf("SearchFiles(%d)", courseID))
	if err := s.ContentErrs[courseID]; err != nil {
		return nil, err
	}
	return s.Files[courseID], nil
}

// Page is one database page held by Destination.
type Page struct {
	ID    string
	Props domain.Properties
}

// Destination keeps database pages and page children in memory. Filters
// match by exact text equality on the named property.
type Destination struct {
	mu sync.Mutex

	Pages    []*Page
	Children map[string][]string
	Appended map[string][][]domain.Block

	// ChildPageSize bounds ListChildBlocks pages; 0 means 100.
	ChildPageSize int

	// FailCreate / FailUpdate / FailQuery fail writes whose identity value
	// (under IdentityProp) is listed.
	IdentityProp string
	FailCreate   map[string]error
	FailUpdate   map[string]error
	QueryErr     error
	AppendErr    error
	// DeleteErrs fails DeleteBlock for the listed block IDs.
	DeleteErrs map[string]error

	nextID  int
	Creates int
	Updates int
	Queries int
	Deletes int
}

var _ providers.Destination = (*Destination)(nil)

func NewDestination(identityProp string) *Destination {
	return &Destination{
		IdentityProp: identityProp,
		Children:     map[string][]string{},
		Appended:     map[string][][]domain.Block{},
	}
}

func (d *Destination) QueryPages(ctx context.Context, f domain.Filter, limit int) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Queries++
	if d.QueryErr != nil {
		return nil, d.QueryErr
	}
	var ids []string
	for _, p := range d.Pages {
		if v, ok := p.Props[f.Property]; ok && v.Kind == f.Kind && v.Text == f.Equals {
			ids = append(ids, p.ID)
			if limit > 0 && len(ids) == limit {
				break
			}
		}
	}
	return ids, nil
}

func (d *Destination) CreatePage(ctx context.Context, props domain.Properties) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.FailCreate[props[d.IdentityProp].Text]; err != nil {
		return "", err
	}
	d.nextID++
	d.Creates++
	p := &Page{ID: fmt.Sprintf("page-%d", d.nextID), Props: clone(props)}
	d.Pages = append(d.Pages, p)
	return p.ID, nil
}

func (d *Destination) UpdatePage(ctx context.Context, pageID string, props domain.Properties) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.FailUpdate[props[d.IdentityProp].Text]; err != nil {
		return err
	}
	for _, p := range d.Pages {
		if p.ID == pageID {
			d.Updates++
			for k, v := range props {
				p.Props[k] = v
			}
			return nil
		}
	}
	return fmt.Errorf("update %s: %w", pageID, providers.ErrNotFound)
}

func (d *Destination) AppendBlocks(ctx context.Context, pageID string, blocks []domain.Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.AppendErr != nil {
		return d.AppendErr
	}
	d.Appended[pageID] = append(d.Appended[pageID], slices.Clone(blocks))
	for range blocks {
		d.nextID++
		d.Children[pageID] = append(d.Children[pageID], fmt.Sprintf("block-%d", d.nextID))
	}
	return nil
}

func (d *Destination) ListChildBlocks(ctx context.Context, pageID, cursor string) ([]string, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	size := d.ChildPageSize
	if size <= 0 {
		size = 100
	}
	all := d.Children[pageID]
	start := 0
	if cursor != "" {
		start = slices.Index(all, cursor)
		if start < 0 {
			return nil, "", fmt.Errorf("bad cursor %q", cursor)
		}
	}
	end := min(start+size, len(all))
	next := ""
	if end < len(all) {
		next = all[end]
	}
	return slices.Clone(all[start:end]), next, nil
}

func (d *Destination) DeleteBlock(ctx context.Context, blockID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.DeleteErrs[blockID]; err != nil {
		return err
	}
	for page, ids := range d.Children {
		if i := slices.Index(ids, blockID); i >= 0 {
			d.Children[page] = slices.Delete(ids, i, i+1)
			d.Deletes++
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", blockID, providers.ErrNotFound)
}

// LastAppend returns the most recent AppendBlocks payload for pageID.
func (d *Destination) LastAppend(pageID string) []domain.Block {
	d.mu.Lock()
	defer d.mu.Unlock()
	calls := d.Appended[pageID]
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

// PageByIdentity finds the page whose identity property equals id.
func (d *Destination) PageByIdentity(id string) *Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.Pages {
		if p.Props[d.IdentityProp].Text == id {
			return p
		}
	}
	return nil
}

func clone(props domain.Properties) domain.Properties {
	out := make(domain.Properties, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
