package sync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-notion-sync/internal/digest"
	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/metrics"
	"canvas-notion-sync/internal/providers/canvas"
	"canvas-notion-sync/internal/providers/providerstest"
	"canvas-notion-sync/internal/ratelimit"
	"canvas-notion-sync/internal/runlock"
)

type fakeDigest struct {
	calls   [][]domain.CourseRef
	result  digest.Result
	err     error
	onStart func()
}

func (f *fakeDigest) Run(ctx context.Context, courses []domain.CourseRef) (digest.Result, error) {
	if f.onStart != nil {
		f.onStart()
	}
	f.calls = append(f.calls, courses)
	return f.result, f.err
}

func dueAt(s string) *string { return &s }

func assignment(id, name string, due *string) canvas.Assignment {
	return canvas.Assignment{ID: json.Number(id), Name: name, DueAt: due}
}

type fixture struct {
	src    *providerstest.Source
	dst    *providerstest.Destination
	pacer  *ratelimit.Recorder
	digest *fakeDigest
	syncer *Syncer
}

func newFixture() *fixture {
	f := &fixture{
		src: &providerstest.Source{
			Active: []canvas.Course{{ID: 1, Name: "Biology"}, {ID: 2, Name: "Chemistry"}},
			Assignments: map[int64][]canvas.Assignment{
				1: {
					assignment("11", "Essay", dueAt("2024-09-10T23:59:00Z")),
					assignment("12", "Reading", nil),
				},
				2: {
					assignment("21", "Lab", dueAt("2024-09-12T23:59:00Z")),
				},
			},
			Enrolled: []canvas.Course{{ID: 1, Name: "Biology"}},
		},
		dst:    providerstest.NewDestination(fields.Identity),
		pacer:  &ratelimit.Recorder{},
		digest: &fakeDigest{result: digest.Result{BlocksWritten: 3}},
	}
	f.syncer = &Syncer{
		Source:    f.src,
		Upserter:  newUpserter(f.dst, f.pacer, logger.NewNop()),
		Digest:    f.digest,
		Pacer:     f.pacer,
		Lock:      &runlock.Local{},
		Log:       logger.NewNop(),
		OnlyDated: true,
	}
	return f
}

func TestRunOnce_UpsertsDatedAssignmentsAndBuildsDigest(t *testing.T) {
	f := newFixture()

	rep, err := f.syncer.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 2, rep.CoursesSeen)
	assert.Equal(t, 2, rep.Created)
	assert.Equal(t, 0, rep.Updated)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 0, rep.Failed)
	assert.Equal(t, 3, rep.DigestBlocks)
	assert.Empty(t, rep.DigestError)

	require.NotNil(t, f.dst.PageByIdentity("11"))
	require.NotNil(t, f.dst.PageByIdentity("21"))
	assert.Nil(t, f.dst.PageByIdentity("12"))
	assert.Equal(t, domain.RichTextValue("Chemistry"), f.dst.PageByIdentity("21").Props["Course"])

	require.Len(t, f.digest.calls, 1)
	assert.Equal(t, []domain.CourseRef{{ID: 1, Name: "Biology"}}, f.digest.calls[0])
}

func TestRunOnce_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.syncer.RunOnce(ctx)
	require.NoError(t, err)
	rep, err := f.syncer.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, rep.Created)
	assert.Equal(t, 2, rep.Updated)
	assert.Len(t, f.dst.Pages, 2)
}

func TestRunOnce_OnlyDated(t *testing.T) {
	for _, tc := range []struct {
		name      string
		onlyDated bool
		want      int
	}{
		{"enabled", true, 0},
		{"disabled", false, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.src.Active = []canvas.Course{{ID: 1, Name: "Biology"}}
			f.src.Assignments = map[int64][]canvas.Assignment{1: {assignment("12", "Reading", nil)}}
			f.syncer.OnlyDated = tc.onlyDated

			_, err := f.syncer.RunOnce(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, f.dst.Creates+f.dst.Updates)
		})
	}
}

func TestRunOnce_CourseFetchErrorSkipsCourse(t *testing.T) {
	f := newFixture()
	f.src.AssignmentErrs = map[int64]error{1: errors.New("canvas: 401")}

	rep, err := f.syncer.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.CoursesSkipped)
	assert.Equal(t, 1, rep.Created)
	assert.NotNil(t, f.dst.PageByIdentity("21"))
}

func TestRunOnce_UpsertErrorSkipsAssignment(t *testing.T) {
	f := newFixture()
	f.src.Assignments[1] = append(f.src.Assignments[1], assignment("13", "Quiz", dueAt("2024-09-20T00:00:00Z")))
	f.dst.FailCreate = map[string]error{"11": errors.New("notion: validation_error")}

	rep, err := f.syncer.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 2, rep.Created)
	assert.Equal(t, 1, f.pacer.Failures)
	assert.Equal(t, 2, f.pacer.Writes)
	assert.NotNil(t, f.dst.PageByIdentity("13"))
	assert.NotNil(t, f.dst.PageByIdentity("21"))
}

func TestRunOnce_DigestFailureDoesNotFailRun(t *testing.T) {
	f := newFixture()
	f.digest.err = errors.New("notion: 502")

	rep, err := f.syncer.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Created)
	assert.Contains(t, rep.DigestError, "502")
}

func TestRunOnce_AssignmentPassFailureStillRunsDigest(t *testing.T) {
	f := newFixture()
	f.src.ActiveErr = errors.New("canvas: 500")
	f.src.Enrolled = []canvas.Course{{ID: 1, Name: "Biology"}}

	rep, err := f.syncer.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Contains(t, rep.AssignmentError, "list active courses")
	assert.Len(t, f.digest.calls, 1)
}

func TestRunOnce_SkipDigest(t *testing.T) {
	f := newFixture()
	f.syncer.SkipDigest = true

	_, err := f.syncer.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.digest.calls)
}

func TestRunOnce_SecondRunWhileBusy(t *testing.T) {
	f := newFixture()
	m := metrics.New()
	f.syncer.Metrics = m

	var nestedErr error
	f.digest.onStart = func() {
		_, nestedErr = f.syncer.RunOnce(context.Background())
	}

	_, err := f.syncer.RunOnce(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrRunInProgress)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.ResultBusy)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.ResultOK)), 0)

	// lock released afterwards
	_, err = f.syncer.RunOnce(context.Background())
	require.NoError(t, err)
}

func TestRunOnce_CanceledContextAborts(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.syncer.RunOnce(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.digest.calls)
}

func TestRunOnce_RecordsMetrics(t *testing.T) {
	f := newFixture()
	m := metrics.New()
	f.syncer.Metrics = m
	f.src.AssignmentErrs = map[int64]error{2: errors.New("canvas: 500")}

	_, err := f.syncer.RunOnce(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(m.UpsertsTotal.WithLabelValues("created")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.UpsertsTotal.WithLabelValues("skipped")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CoursesSkippedTotal.WithLabelValues("assignments")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.DigestBlocks), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.RunInProgress), 0)
}

func TestRunOnce_OnlyDatedKeepsNonStandardDueDates(t *testing.T) {
	f := newFixture()
	f.src.Assignments = map[int64][]canvas.Assignment{
		1: {
			assignment("31", "Date only", dueAt("2024-09-01")),
			assignment("32", "No zone", dueAt("2024-09-01T23:59:00")),
			assignment("33", "Undated", nil),
		},
	}

	rep, err := f.syncer.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Created)
	assert.Equal(t, 1, rep.Skipped)
	require.NotNil(t, f.dst.PageByIdentity("31"))
	assert.Contains(t, f.dst.PageByIdentity("31").Props, "Due Date")
	require.NotNil(t, f.dst.PageByIdentity("32"))
}
