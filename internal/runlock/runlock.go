// Package runlock keeps sync runs from overlapping.
package runlock

import (
	"context"
	"errors"
	"sync"
)

// ErrLocked is returned by TryAcquire when another run holds the lock.
var ErrLocked = errors.New("runlock: run already in progress")

// Release gives the lock back.
type Release func(ctx context.Context) error

// Locker grants at most one holder at a time. TryAcquire never waits.
type Locker interface {
	TryAcquire(ctx context.Context) (Release, error)
}

// Local is an in-process lock.
type Local struct {
	mu sync.Mutex
}

var _ Locker = (*Local)(nil)

func (l *Local) TryAcquire(ctx context.Context) (Release, error) {
	if !l.mu.TryLock() {
		return nil, ErrLocked
	}
	var once sync.Once
	return func(context.Context) error {
		once.Do(l.mu.Unlock)
		return nil
	}, nil
}

// Chain acquires each locker in order and releases them in reverse. If a
// later locker is busy, the ones already held are released.
type Chain []Locker

var _ Locker = Chain(nil)

func (c Chain) TryAcquire(ctx context.Context) (Release, error) {
	held := make([]Release, 0, len(c))
	releaseAll := func(ctx context.Context) error {
		var errs []error
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, l := range c {
		rel, err := l.TryAcquire(ctx)
		if err != nil {
			_ = releaseAll(ctx)
			return nil, err
		}
		held = append(held, rel)
	}
	return releaseAll, nil
}
