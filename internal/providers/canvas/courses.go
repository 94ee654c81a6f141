package canvas

import (
	"context"
	"fmt"
	"net/url"
)

/* -------- API -------- */

// ListEnrolledCourses lists the caller's current and future student
// enrollments, active or pending, with term metadata.
func (c *Client) ListEnrolledCourses(ctx context.Context) ([]Course, error) {
	params := c.perPage()
	params["enrollment_type[]"] = []string{"student"}
	params["enrollment_state[]"] = []string{"active", "invited_or_pending"}
	params["state[]"] = []string{"current", "future"}
	params["include[]"] = []string{"term"}

	return Collect(Paginate[Course](ctx, c, c.apiURL("/users/self/courses"), params))
}

// ListActiveCourses lists courses with an active enrollment, with term metadata.
func (c *Client) ListActiveCourses(ctx context.Context) ([]Course, error) {
	params := c.perPage()
	params.Set("enrollment_state", "active")
	params["include[]"] = []string{"term"}

	return Collect(Paginate[Course](ctx, c, c.apiURL("/courses"), params))
}

func (c *Client) ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	return Collect(Paginate[Assignment](ctx, c, c.apiURL(fmt.Sprintf("/courses/%d/assignments", courseID)), c.perPage()))
}

// GetSyllabusBody returns the course's built-in syllabus HTML, "" when unset.
func (c *Client) GetSyllabusBody(ctx context.Context, courseID int64) (string, error) {
	params := url.Values{"include[]": []string{"syllabus_body"}}
	var course Course
	if err := c.getJSON(ctx, c.apiURL(fmt.Sprintf("/courses/%d", courseID)), params, &course); err != nil {
		return "", err
	}
	if course.SyllabusBody == nil {
		return "", nil
	}
	return *course.SyllabusBody, nil
}

// GetFrontPage returns the course front page, or nil when the course has none.
func (c *Client) GetFrontPage(ctx context.Context, courseID int64) (*Page, error) {
	var page Page
	if err := c.getJSON(ctx, c.apiURL(fmt.Sprintf("/courses/%d/front_page", courseID)), nil, &page); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

// ListPagesWithBodies lists every wiki page and fetches each body.
func (c *Client) ListPagesWithBodies(ctx context.Context, courseID int64) ([]Page, error) {
	listURL := c.apiURL(fmt.Sprintf("/courses/%d/pages", courseID))
	pages, err := Collect(Paginate[Page](ctx, c, listURL, c.perPage()))
	if err != nil {
		return nil, err
	}

	out := make([]Page, 0, len(pages))
	for _, p := range pages {
		var full Page
		if err := c.getJSON(ctx, listURL+"/"+url.PathEscape(p.URL), nil, &full); err != nil {
			return nil, fmt.Errorf("canvas: page %q: %w", p.URL, err)
		}
		p.Body = full.Body
		out = append(out, p)
	}
	return out, nil
}

// ListModuleItems flattens the items of every module, tagging each with its
// module's name.
func (c *Client) ListModuleItems(ctx context.Context, courseID int64) ([]ModuleItem, error) {
	modsURL := c.apiURL(fmt.Sprintf("/courses/%d/modules", courseID))
	mods, err := Collect(Paginate[Module](ctx, c, modsURL, c.perPage()))
	if err != nil {
		return nil, err
	}

	var items []ModuleItem
	for _, m := range mods {
		itemsURL := fmt.Sprintf("%s/%d/items", modsURL, m.ID)
		for it, err := range Paginate[ModuleItem](ctx, c, itemsURL, c.perPage()) {
			if err != nil {
				return nil, fmt.Errorf("canvas: module %d items: %w", m.ID, err)
			}
			it.ModuleName = m.Name
			items = append(items, it)
		}
	}
	return items, nil
}

// SearchFiles runs Canvas' server-side file name search.
func (c *Client) SearchFiles(ctx context.Context, courseID int64, term string) ([]File, error) {
	params := c.perPage()
	params.Set("search_term", term)
	return Collect(Paginate[File](ctx, c, c.apiURL(fmt.Sprintf("/courses/%d/files", courseID)), params))
}
