package runlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SecondAcquireFails(t *testing.T) {
	ctx := context.Background()
	var l Local

	rel, err := l.TryAcquire(ctx)
	require.NoError(t, err)

	_, err = l.TryAcquire(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, rel(ctx))
	// releasing twice is harmless
	require.NoError(t, rel(ctx))

	rel2, err := l.TryAcquire(ctx)
	require.NoError(t, err)
	require.NoError(t, rel2(ctx))
}

// fakeRedis emulates SET NX and the compare-and-delete script on one map.
type fakeRedis struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	failSet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return redis.NewBoolResult(false, f.failSet)
	}
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[keys[0]] == args[0].(string) {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRedis_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	a := newRedis(fake, "", time.Minute)
	b := newRedis(fake, "", time.Minute)

	rel, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	assert.Contains(t, fake.values, DefaultKey)
	assert.Equal(t, time.Minute, fake.ttls[DefaultKey])

	_, err = b.TryAcquire(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, rel(ctx))
	assert.NotContains(t, fake.values, DefaultKey)

	relB, err := b.TryAcquire(ctx)
	require.NoError(t, err)
	require.NoError(t, relB(ctx))
}

func TestRedis_StaleReleaseKeepsNewerLock(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	l := newRedis(fake, "k", time.Minute)

	stale, err := l.TryAcquire(ctx)
	require.NoError(t, err)

	// simulate expiry and a new holder
	fake.mu.Lock()
	fake.values["k"] = "someone-else"
	fake.mu.Unlock()

	require.NoError(t, stale(ctx))
	assert.Equal(t, "someone-else", fake.values["k"])
}

func TestRedis_SetError(t *testing.T) {
	fake := newFakeRedis()
	fake.failSet = errors.New("connection refused")

	_, err := newRedis(fake, "k", 0).TryAcquire(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestChain_ReleasesHeldLocksWhenLaterIsBusy(t *testing.T) {
	ctx := context.Background()
	local := &Local{}
	fake := newFakeRedis()
	fake.values[DefaultKey] = "other-process"

	chain := Chain{local, newRedis(fake, "", time.Minute)}
	_, err := chain.TryAcquire(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	// local lock must have been given back
	rel, err := local.TryAcquire(ctx)
	require.NoError(t, err)
	require.NoError(t, rel(ctx))
}

func TestChain_AcquireAll(t *testing.T) {
	ctx := context.Background()
	local := &Local{}
	fake := newFakeRedis()
	chain := Chain{local, newRedis(fake, "", time.Minute)}

	rel, err := chain.TryAcquire(ctx)
	require.NoError(t, err)
	_, err = chain.TryAcquire(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, rel(ctx))
	assert.Empty(t, fake.values)
}
