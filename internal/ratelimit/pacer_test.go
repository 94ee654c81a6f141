package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_SpacesWrites(t *testing.T) {
	l := New(Policy{WriteInterval: 40 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		require.NoError(t, l.AfterWrite(ctx))
	}
	// first token is free, the next two each wait one interval
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestLimiter_ZeroIntervalsDoNotWait(t *testing.T) {
	l := New(Policy{})
	ctx := context.Background()

	start := time.Now()
	for range 50 {
		require.NoError(t, l.AfterWrite(ctx))
		require.NoError(t, l.BetweenCourses(ctx))
		require.NoError(t, l.AfterFailure(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_CooldownWaitsFullInterval(t *testing.T) {
	l := New(Policy{FailureCooldown: 30 * time.Millisecond})

	start := time.Now()
	require.NoError(t, l.AfterFailure(context.Background()))
	require.NoError(t, l.AfterFailure(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestLimiter_CanceledContext(t *testing.T) {
	l := New(Policy{WriteInterval: time.Hour, CourseInterval: time.Hour, FailureCooldown: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.AfterWrite(ctx))
	cancel()

	assert.Error(t, l.AfterWrite(ctx))
	assert.ErrorIs(t, l.AfterFailure(ctx), context.Canceled)
}

func TestRecorder_Counts(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	_ = r.AfterWrite(ctx)
	_ = r.AfterWrite(ctx)
	_ = r.BetweenCourses(ctx)
	_ = r.AfterFailure(ctx)

	assert.Equal(t, 2, r.Writes)
	assert.Equal(t, 1, r.Courses)
	assert.Equal(t, 1, r.Failures)
}

func TestUnlimited(t *testing.T) {
	p := Unlimited()
	require.NoError(t, p.AfterWrite(context.Background()))
	require.NoError(t, p.BetweenCourses(context.Background()))
	require.NoError(t, p.AfterFailure(context.Background()))
}
