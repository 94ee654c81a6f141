package canvas

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCanvas(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "tok")
}

func TestNew(t *testing.T) {
	c := New("https://school.instructure.com/", "tok")

	assert.Equal(t, "https://school.instructure.com", c.BaseURL)
	assert.Equal(t, 1, c.Retry.MaxAttempts)
	assert.Equal(t, 100, c.PerPage)
	assert.NotNil(t, c.HTTP)
}

func TestListEnrolledCoursesParams(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/self/courses", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, []string{"student"}, q["enrollment_type[]"])
		assert.Equal(t, []string{"active", "invited_or_pending"}, q["enrollment_state[]"])
		assert.Equal(t, []string{"current", "future"}, q["state[]"])
		assert.Equal(t, []string{"term"}, q["include[]"])
		assert.Equal(t, "100", q.Get("per_page"))
		fmt.Fprint(w, `[{"id":11,"name":"Biology 101","term":{"id":3,"name":"Fall","start_at":"2024-08-20T00:00:00Z","end_at":null}}]`)
	})

	got, err := newCanvas(t, mux).ListEnrolledCourses(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(11), got[0].ID)
	require.NotNil(t, got[0].Term)
	assert.Equal(t, time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC), got[0].Term.StartAt.UTC())
	assert.Nil(t, got[0].Term.EndAt)
}

func TestListActiveCourses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active", r.URL.Query().Get("enrollment_state"))
		fmt.Fprint(w, `[{"id":1,"name":"A"},{"id":2,"name":"B"}]`)
	})

	got, err := newCanvas(t, mux).ListActiveCourses(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListAssignmentsKeepsNulls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/5/assignments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":1001,"name":"Essay","due_at":"2024-09-01T23:59:00Z","html_url":"https://c/a/1001","points_possible":10,"published":true,"workflow_state":"published"},
			{"id":1002,"name":null,"due_at":null,"points_possible":null}
		]`)
	})

	got, err := newCanvas(t, mux).ListAssignments(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1001", got[0].ID.String())
	require.NotNil(t, got[0].PointsPossible)
	assert.Equal(t, 10.0, *got[0].PointsPossible)
	assert.Nil(t, got[1].DueAt)
	assert.Nil(t, got[1].Published)
	assert.Nil(t, got[1].PointsPossible)
}

func TestGetSyllabusBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/5", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "syllabus_body", r.URL.Query().Get("include[]"))
		fmt.Fprint(w, `{"id":5,"name":"Bio","syllabus_body":"<p>Week 1</p>"}`)
	})
	mux.HandleFunc("/api/v1/courses/6", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":6,"name":"Chem","syllabus_body":null}`)
	})
	c := newCanvas(t, mux)

	body, err := c.GetSyllabusBody(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "<p>Week 1</p>", body)

	body, err = c.GetSyllabusBody(context.Background(), 6)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestGetFrontPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/5/front_page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"url":"start-here","title":"Start Here","body":"<p>Hi</p>","html_url":"https://c/courses/5/pages/start-here","front_page":true}`)
	})
	mux.HandleFunc("/api/v1/courses/6/front_page", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errors":[{"message":"No front page has been set"}]}`)
	})
	mux.HandleFunc("/api/v1/courses/7/front_page", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newCanvas(t, mux)

	p, err := c.GetFrontPage(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Start Here", p.Title)
	assert.Equal(t, "<p>Hi</p>", p.BodyText())

	p, err = c.GetFrontPage(context.Background(), 6)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = c.GetFrontPage(context.Background(), 7)
	assert.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestListPagesWithBodies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/5/pages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"url":"welcome","title":"Welcome","html_url":"https://c/p/welcome"},{"url":"week-1","title":"Week 1","html_url":"https://c/p/week-1"}]`)
	})
	mux.HandleFunc("/api/v1/courses/5/pages/welcome", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"url":"welcome","title":"Welcome","body":"<p>Hello class</p>"}`)
	})
	mux.HandleFunc("/api/v1/courses/5/pages/week-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"url":"week-1","title":"Week 1","body":null}`)
	})

	got, err := newCanvas(t, mux).ListPagesWithBodies(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "<p>Hello class</p>", got[0].BodyText())
	assert.Equal(t, "https://c/p/welcome", got[0].HTMLURL)
	assert.Empty(t, got[1].BodyText())
}

func TestListModuleItemsTagsModuleName(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/5/modules", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":1,"name":"Getting Started"},{"id":2,"name":"Unit 1"}]`)
	})
	mux.HandleFunc("/api/v1/courses/5/modules/1/items", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":10,"title":"Intro video","type":"ExternalUrl","external_url":"https://video.test/1"}]`)
	})
	mux.HandleFunc("/api/v1/courses/5/modules/2/items", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":20,"title":"Reading","type":"Page","html_url":"https://c/mi/20"}]`)
	})

	got, err := newCanvas(t, mux).ListModuleItems(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Getting Started", got[0].ModuleName)
	assert.Equal(t, "https://video.test/1", got[0].WebURL())
	assert.Equal(t, "Unit 1", got[1].ModuleName)
	assert.Equal(t, "https://c/mi/20", got[1].WebURL())
}

func TestSearchFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/5/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "syllab", r.URL.Query().Get("search_term"))
		fmt.Fprint(w, `[{"id":1,"display_name":"","filename":"Syllabus.pdf","url":"https://c/f/1"}]`)
	})

	got, err := newCanvas(t, mux).SearchFiles(context.Background(), 5, "syllab")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Syllabus.pdf", got[0].Name())
}

func TestBrotliEncodedListing(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, err := bw.Write([]byte(`[{"id":1,"name":"Compressed"}]`))
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	})

	got, err := newCanvas(t, mux).ListActiveCourses(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Compressed", got[0].Name)
}

func TestGetSyllabusBody_MalformedJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/5", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":5,"syllabus_body":`)
	})
	c := newCanvas(t, mux)

	_, err := c.GetSyllabusBody(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json parse error")
}

func TestGetFrontPage_SendsAuthAndNoPaging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/5/front_page", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("per_page"))
		w.Header().Set("Link", `<http://ignored.test/next>; rel="next"`)
		fmt.Fprint(w, `{"url":"home","title":"Home"}`)
	})
	c := newCanvas(t, mux)

	p, err := c.GetFrontPage(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Home", p.Title)
}
