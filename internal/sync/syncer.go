// Package sync runs the Canvas to Notion pass: assignments are upserted into
// the database, then the digest page is rebuilt.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"canvas-notion-sync/internal/digest"
	"canvas-notion-sync/internal/domain"
	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/mappers"
	"canvas-notion-sync/internal/metrics"
	"canvas-notion-sync/internal/providers"
	"canvas-notion-sync/internal/ratelimit"
	"canvas-notion-sync/internal/runlock"
)

// ErrRunInProgress is returned by RunOnce when another run holds the lock.
var ErrRunInProgress = errors.New("sync: run already in progress")

// DigestRunner rebuilds the digest page; *digest.Builder implements it.
type DigestRunner interface {
	Run(ctx context.Context, courses []domain.CourseRef) (digest.Result, error)
}

var _ DigestRunner = (*digest.Builder)(nil)

// Syncer wires one full run. Lock, Metrics and Now are optional.
type Syncer struct {
	Source   providers.Source
	Upserter *Upserter
	Digest   DigestRunner
	Pacer    ratelimit.Pacer
	Lock     runlock.Locker
	Metrics  *metrics.Metrics
	Log      logger.Logger
	Now      func() time.Time

	// OnlyDated skips assignments without a due date.
	OnlyDated  bool
	SkipDigest bool
}

// Report is the outcome of one run. Item-level failures are counted, not
// returned as errors.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`

	CoursesSeen    int `json:"courses_seen"`
	CoursesSkipped int `json:"courses_skipped"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	Skipped        int `json:"skipped"`
	Failed         int `json:"failed"`

	DigestCourses        int    `json:"digest_courses"`
	DigestBlocks         int    `json:"digest_blocks"`
	DigestCoursesSkipped int    `json:"digest_courses_skipped"`
	AssignmentError      string `json:"assignment_error,omitempty"`
	DigestError          string `json:"digest_error,omitempty"`
}

// RunOnce performs the assignment pass then the digest pass. The passes are
// independent: a failure in one is recorded in the report and the other still
// runs. The returned error is non-nil only when the run could not start or
// ctx ended it early.
func (s *Syncer) RunOnce(ctx context.Context) (Report, error) {
	if s.Lock != nil {
		release, err := s.Lock.TryAcquire(ctx)
		if errors.Is(err, runlock.ErrLocked) {
			s.Metrics.RecordBusy()
			return Report{}, ErrRunInProgress
		}
		if err != nil {
			return Report{}, fmt.Errorf("sync: acquire run lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.Log.Warn("Run lock release failed", logger.Error(err))
			}
		}()
	}

	rep := Report{RunID: uuid.NewString(), StartedAt: s.now().UTC()}
	log := s.Log.With(logger.String("run_id", rep.RunID))
	log.Info("Starting sync")
	s.Metrics.RecordRunStart()

	err := s.run(ctx, log, &rep)

	elapsed := s.now().Sub(rep.StartedAt)
	rep.DurationMS = elapsed.Milliseconds()
	result := metrics.ResultOK
	switch {
	case err != nil:
		result = metrics.ResultError
	case rep.DigestError != "":
		result = metrics.ResultDigestFailed
	}
	s.Metrics.RecordRunEnd(result, elapsed, rep.DigestBlocks, s.now())

	if err != nil {
		log.Error("Sync aborted", logger.Error(err))
		return rep, err
	}
	log.Info("Sync complete",
		logger.Int("created", rep.Created),
		logger.Int("updated", rep.Updated),
		logger.Int("skipped", rep.Skipped),
		logger.Int("failed", rep.Failed),
		logger.Int("courses_skipped", rep.CoursesSkipped),
		logger.Int("digest_blocks", rep.DigestBlocks),
		logger.Duration("elapsed", elapsed),
	)
	return rep, nil
}

func (s *Syncer) run(ctx context.Context, log logger.Logger, rep *Report) error {
	if err := s.assignmentPass(ctx, log, rep); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rep.AssignmentError = err.Error()
		log.Error("Assignment pass failed", logger.Error(err))
	}

	if s.SkipDigest {
		return nil
	}
	if err := s.digestPass(ctx, log, rep); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rep.DigestError = err.Error()
		log.Error("Error updating digest page", logger.Error(err))
	}
	return nil
}

func (s *Syncer) assignmentPass(ctx context.Context, log logger.Logger, rep *Report) error {
	courses, err := s.Source.ListActiveCourses(ctx)
	if err != nil {
		return fmt.Errorf("list active courses: %w", err)
	}
	log.Info("Found active courses", logger.Int("count", len(courses)))

	for _, cc := range courses {
		c := mappers.FromCanvasCourse(cc)
		if c.ID == 0 {
			continue
		}
		rep.CoursesSeen++
		name := c.DisplayName()

		assignments, err := s.Source.ListAssignments(ctx, c.ID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rep.CoursesSkipped++
			s.Metrics.RecordCourseSkipped("assignments")
			log.Warn("Error fetching assignments", logger.String("course", name), logger.Error(err))
			continue
		}
		log.Info("Course assignments", logger.String("course", name), logger.Int("count", len(assignments)))

		for _, a := range assignments {
			rec := mappers.FromCanvasAssignment(a, name)
			if s.OnlyDated && !rec.HasDue() {
				rep.Skipped++
				s.Metrics.RecordUpsert("skipped")
				continue
			}

			action, err := s.Upserter.Upsert(ctx, rec)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				rep.Failed++
				s.Metrics.RecordUpsert("failed")
				log.Warn("Notion upsert failed",
					logger.String("course", name),
					logger.String("assignment", rec.Name),
					logger.String("canvas_id", rec.ID),
					logger.Error(err),
				)
				if err := s.Pacer.AfterFailure(ctx); err != nil {
					return err
				}
				continue
			}

			switch action {
			case ActionCreated:
				rep.Created++
			case ActionUpdated:
				rep.Updated++
			}
			s.Metrics.RecordUpsert(action.String())
		}
	}
	return nil
}

func (s *Syncer) digestPass(ctx context.Context, log logger.Logger, rep *Report) error {
	courses, err := SelectCurrentOrFuture(ctx, s.Source, s.now(), log)
	if err != nil {
		return err
	}
	rep.DigestCourses = len(courses)

	res, err := s.Digest.Run(ctx, courses)
	rep.DigestBlocks = res.BlocksWritten
	rep.DigestCoursesSkipped = res.CoursesSkipped
	for range res.CoursesSkipped {
		s.Metrics.RecordCourseSkipped("digest")
	}
	return err
}

func (s *Syncer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
