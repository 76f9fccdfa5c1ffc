package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/SirWilliamIII/wanderer"
	"github.com/SirWilliamIII/wanderer/proxy"
	"github.com/SirWilliamIII/wanderer/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(cap int, opts ...session.Option) *session.Registry {
	return session.NewRegistry(cap, proxy.NewSelector(nil, nil), opts...)
}

func TestRegistry_Acquire_creates_sessions_lazily(t *testing.T) {
	t.Parallel()

	r := newRegistry(3)

	assert.Equal(t, 0, r.Len())

	s, err := r.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, wanderer.SessionGood, s.Status)
	assert.NotEmpty(t, s.ID)
	assert.NotNil(t, s.Jar)
	assert.NotEmpty(t, s.Fingerprint.UserAgent)
}

func TestRegistry_pool_never_exceeds_cap(t *testing.T) {
	t.Parallel()

	r := newRegistry(2)

	a, err := r.Acquire(context.Background())
	require.NoError(t, err)
	b, err := r.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Len())

	// Third acquire must block rather than exceed the cap.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = r.Acquire(ctx)
	require.Error(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Acquire_unblocks_on_release(t *testing.T) {
	t.Parallel()

	r := newRegistry(1)

	s, err := r.Acquire(context.Background())
	require.NoError(t, err)

	acquired := make(chan *wanderer.Session)
	go func() {
		got, err := r.Acquire(context.Background())
		if err == nil {
			acquired <- got
		}
	}()

	r.MarkGood(s)
	r.Release(s)

	select {
	case got := <-acquired:
		assert.Equal(t, s.ID, got.ID, "released session should be reused")
	case <-time.After(2 * time.Second):
		t.Fatal("blocked acquire was never released")
	}
}

func TestRegistry_MarkBad_evicts_after_threshold(t *testing.T) {
	t.Parallel()

	r := newRegistry(1)

	s, err := r.Acquire(context.Background())
	require.NoError(t, err)

	r.MarkBad(s)
	assert.Equal(t, wanderer.SessionDegraded, s.Status)

	r.MarkBad(s)
	r.MarkBad(s)
	assert.Equal(t, wanderer.SessionBad, s.Status)
	assert.Equal(t, 0, r.Len(), "bad session should be evicted")

	// Eviction frees the slot: the next acquire creates a fresh session.
	fresh, err := r.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, fresh.ID)
}

func TestRegistry_MarkGood_resets_failure_streak(t *testing.T) {
	t.Parallel()

	r := newRegistry(1)

	s, err := r.Acquire(context.Background())
	require.NoError(t, err)

	r.MarkBad(s)
	r.MarkBad(s)
	r.MarkGood(s)

	assert.Equal(t, wanderer.SessionGood, s.Status)
	assert.Equal(t, 0, s.ErrorScore)
	assert.Equal(t, 3, s.UsageCount, "usage counts every completion")
}

func TestRegistry_retires_saturated_sessions(t *testing.T) {
	t.Parallel()

	r := newRegistry(1, session.WithUsageCap(2))

	s, err := r.Acquire(context.Background())
	require.NoError(t, err)

	r.MarkGood(s)
	r.MarkGood(s)
	r.Release(s)

	fresh, err := r.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, fresh.ID, "saturated session should be replaced")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_eviction_marks_proxy_bad(t *testing.T) {
	t.Parallel()

	sel := proxy.NewSelector([]string{"http://basic1:8080"}, nil)
	r := session.NewRegistry(1, sel)

	s, err := r.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, wanderer.TierBasic, s.Proxy.Tier)

	r.MarkBad(s)
	r.MarkBad(s)
	r.MarkBad(s)

	assert.True(t, sel.Exhausted(), "evicted session's proxy should leave rotation")
}
