// Package ratelimit paces destination writes and course iteration so a run
// stays under Notion's request budget.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer is the write-path rate policy. Each method blocks until the next
// operation may proceed or ctx is done.
type Pacer interface {
	// AfterWrite is awaited after every destination upsert.
	AfterWrite(ctx context.Context) error
	// BetweenCourses is awaited after each digest course.
	BetweenCourses(ctx context.Context) error
	// AfterFailure is the cooldown following a failed upsert.
	AfterFailure(ctx context.Context) error
}

// Policy holds the pacing intervals. A zero interval disables that pause.
type Policy struct {
	WriteInterval   time.Duration
	CourseInterval  time.Duration
	FailureCooldown time.Duration
}

// Limiter implements Pacer with token-bucket limiters: consecutive writes
// (and consecutive courses) are spaced at least one interval apart, and a
// failure always costs the full cooldown.
type Limiter struct {
	writes   *rate.Limiter
	courses  *rate.Limiter
	cooldown time.Duration
}

var _ Pacer = (*Limiter)(nil)

func New(p Policy) *Limiter {
	return &Limiter{
		writes:   newLimiter(p.WriteInterval),
		courses:  newLimiter(p.CourseInterval),
		cooldown: p.FailureCooldown,
	}
}

func newLimiter(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

func (l *Limiter) AfterWrite(ctx context.Context) error {
	return l.writes.Wait(ctx)
}

func (l *Limiter) BetweenCourses(ctx context.Context) error {
	return l.courses.Wait(ctx)
}

func (l *Limiter) AfterFailure(ctx context.Context) error {
	if l.cooldown <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(l.cooldown)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlimited never waits. Tests and dry runs use it.
func Unlimited() Pacer { return unlimited{} }

type unlimited struct{}

func (unlimited) AfterWrite(ctx context.Context) error     { return ctx.Err() }
func (unlimited) BetweenCourses(ctx context.Context) error { return ctx.Err() }
func (unlimited) AfterFailure(ctx context.Context) error   { return ctx.Err() }

// Recorder counts waits without sleeping.
type Recorder struct {
	Writes   int
	Courses  int
	Failures int
}

var _ Pacer = (*Recorder)(nil)

func (r *Recorder) AfterWrite(ctx context.Context) error {
	r.Writes++
	return ctx.Err()
}

func (r *Recorder) BetweenCourses(ctx context.Context) error {
	r.Courses++
	return ctx.Err()
}

func (r *Recorder) AfterFailure(ctx context.Context) error {
	r.Failures++
	return ctx.Err()
}
