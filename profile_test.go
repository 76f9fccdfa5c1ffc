package wanderer_test

import (
	"testing"
	"time"

	"github.com/SirWilliamIII/wanderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProfile_recognized_modes(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"wander", "strict"} {
		t.Run(mode, func(t *testing.T) {
			t.Parallel()

			p, err := wanderer.ResolveProfile(mode)
			require.NoError(t, err)
			assert.Equal(t, wanderer.Mode(mode), p.Mode)
			assert.Positive(t, p.MaxRequests)
			assert.Positive(t, p.MaxConcurrency)
			assert.Positive(t, p.SessionPoolCap)
			assert.LessOrEqual(t, p.MinDelay, p.MaxDelay)
		})
	}
}

func TestResolveProfile_is_deterministic(t *testing.T) {
	t.Parallel()

	a, err := wanderer.ResolveProfile("strict")
	require.NoError(t, err)
	b, err := wanderer.ResolveProfile("strict")
	require.NoError(t, err)

	assert.Equal(t, a.MaxRequests, b.MaxRequests)
	assert.Equal(t, a.RestrictedPatterns, b.RestrictedPatterns)
}

func TestResolveProfile_unknown_mode_is_config_error(t *testing.T) {
	t.Parallel()

	_, err := wanderer.ResolveProfile("chaotic")
	require.Error(t, err)
	assert.Equal(t, wanderer.ECONFIG, wanderer.ErrorCode(err))
}

func TestResolveProfile_wander_pool_larger_than_strict(t *testing.T) {
	t.Parallel()

	wander, err := wanderer.ResolveProfile("wander")
	require.NoError(t, err)
	strict, err := wanderer.ResolveProfile("strict")
	require.NoError(t, err)

	assert.Greater(t, wander.SessionPoolCap, strict.SessionPoolCap)
	assert.Greater(t, wander.MaxConcurrency, strict.MaxConcurrency)
}

func TestResolveProfile_options_override_defaults(t *testing.T) {
	t.Parallel()

	p, err := wanderer.ResolveProfile("wander",
		wanderer.WithMaxRequests(42),
		wanderer.WithMaxDepth(1),
		wanderer.WithConcurrency(3),
		wanderer.WithDelayBounds(2*time.Second, 3*time.Second),
	)
	require.NoError(t, err)

	assert.Equal(t, 42, p.MaxRequests)
	assert.Equal(t, 1, p.MaxDepth)
	assert.Equal(t, 3, p.MaxConcurrency)
	assert.Equal(t, 2*time.Second, p.MinDelay)
	assert.Equal(t, 3*time.Second, p.MaxDelay)
}

func TestProfile_SkipURL_strict_filters_restricted_patterns(t *testing.T) {
	t.Parallel()

	p, err := wanderer.ResolveProfile("strict")
	require.NoError(t, err)

	assert.True(t, p.SkipURL("https://example.com/admin/users"))
	assert.True(t, p.SkipURL("https://example.com/login"))
	assert.False(t, p.SkipURL("https://example.com/blog/post"))
}

func TestProfile_SkipURL_wander_never_filters(t *testing.T) {
	t.Parallel()

	p, err := wanderer.ResolveProfile("wander",
		wanderer.WithRestrictedPatterns([]string{"/admin/"}))
	require.NoError(t, err)

	assert.False(t, p.SkipURL("https://example.com/admin/users"))
}

func TestResolveProfile_invalid_restricted_pattern(t *testing.T) {
	t.Parallel()

	_, err := wanderer.ResolveProfile("strict",
		wanderer.WithRestrictedPatterns([]string{"[unclosed"}))
	require.Error(t, err)
	assert.Equal(t, wanderer.ECONFIG, wanderer.ErrorCode(err))
}
