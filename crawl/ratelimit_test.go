package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/SirWilliamIII/wanderer"
	"github.com/SirWilliamIII/wanderer/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements wanderer.DomainLimiter interface", func(t *testing.T) {
		t.Parallel()
		var _ wanderer.DomainLimiter = crawl.NewDomainLimiter(1)
	})

	t.Run("allows immediate request when under limit", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "first request should be immediate")
	})

	t.Run("rate limits requests to same domain", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10) // 100ms between requests

		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond, "should wait for rate limit")
	})

	t.Run("different domains have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10)

		require.NoError(t, limiter.Wait(context.Background(), "a.example.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "b.example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "other domain should not wait")
	})

	t.Run("returns error when context canceled during wait", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(0.1) // 10s between requests

		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx, "example.com")
		assert.Error(t, err)
	})
}
