package batch_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SirWilliamIII/wanderer"
	"github.com/SirWilliamIII/wanderer/batch"
	"github.com/SirWilliamIII/wanderer/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// recordingService collects every flushed batch.
type recordingService struct {
	mu      sync.Mutex
	batches [][]*wanderer.Document
}

func (s *recordingService) service() *mock.DocumentService {
	return &mock.DocumentService{
		CreateDocumentsFn: func(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.batches = append(s.batches, docs)
			return &wanderer.BulkResult{Written: len(docs)}, nil
		},
	}
}

func (s *recordingService) sizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sizes []int
	for _, b := range s.batches {
		sizes = append(sizes, len(b))
	}
	return sizes
}

func doc(i int) *wanderer.Document {
	return &wanderer.Document{
		URL:    fmt.Sprintf("https://example.com/%d", i),
		Mode:   wanderer.ModeWander,
		Status: wanderer.StatusSuccess,
	}
}

func TestBatcher_flushes_at_size_threshold_and_debounce(t *testing.T) {
	t.Parallel()

	rec := &recordingService{}
	b := batch.NewBatcher(rec.service(), discard(),
		batch.WithSize(20),
		batch.WithDebounce(100*time.Millisecond),
	)

	// 45 documents: two size-triggered flushes of 20, the remaining 5 on
	// the debounce timer.
	for i := 0; i < 45; i++ {
		b.Enqueue(doc(i))
	}

	assert.Eventually(t, func() bool {
		sizes := rec.sizes()
		return len(sizes) == 3
	}, 2*time.Second, 10*time.Millisecond, "expected exactly three flushes")

	assert.Equal(t, []int{20, 20, 5}, rec.sizes())
	assert.Equal(t, 0, b.Pending())
}

func TestBatcher_Enqueue_does_not_block_on_storage(t *testing.T) {
	t.Parallel()

	slow := &mock.DocumentService{
		CreateDocumentsFn: func(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error) {
			time.Sleep(time.Second)
			return &wanderer.BulkResult{Written: len(docs)}, nil
		},
	}
	b := batch.NewBatcher(slow, discard(), batch.WithSize(2), batch.WithDebounce(time.Minute))

	start := time.Now()
	b.Enqueue(doc(0))
	b.Enqueue(doc(1)) // triggers a size flush against the slow store

	assert.Less(t, time.Since(start), 200*time.Millisecond, "enqueue must not wait for storage")
}

func TestBatcher_failed_flush_rebuffers_documents(t *testing.T) {
	t.Parallel()

	rec := &recordingService{}
	failing := true
	svc := &mock.DocumentService{
		CreateDocumentsFn: func(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error) {
			if failing {
				return nil, wanderer.Errorf(wanderer.EPERSIST, "datastore down")
			}
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.batches = append(rec.batches, docs)
			return &wanderer.BulkResult{Written: len(docs)}, nil
		},
	}
	b := batch.NewBatcher(svc, discard(),
		batch.WithSize(100),
		batch.WithDebounce(time.Minute),
		batch.WithRetryDelays([]time.Duration{time.Millisecond}),
	)

	b.Enqueue(doc(0))
	b.Enqueue(doc(1))

	err := b.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, wanderer.EPERSIST, wanderer.ErrorCode(err))
	assert.Equal(t, 2, b.Pending(), "failed flush must keep documents buffered")

	// Storage recovers; the same documents flush.
	failing = false
	require.NoError(t, b.Flush(context.Background()))
	assert.Equal(t, []int{2}, rec.sizes())
	assert.Equal(t, 0, b.Pending())
}

func TestBatcher_Close_performs_final_flush(t *testing.T) {
	t.Parallel()

	rec := &recordingService{}
	b := batch.NewBatcher(rec.service(), discard(),
		batch.WithSize(100),
		batch.WithDebounce(time.Hour),
	)

	b.Enqueue(doc(0))
	b.Enqueue(doc(1))
	b.Enqueue(doc(2))

	require.NoError(t, b.Close(context.Background()))
	assert.Equal(t, []int{3}, rec.sizes())

	// Enqueue after close is dropped, not buffered.
	b.Enqueue(doc(3))
	assert.Equal(t, 0, b.Pending())
}

func TestBatcher_empty_flush_is_noop(t *testing.T) {
	t.Parallel()

	rec := &recordingService{}
	b := batch.NewBatcher(rec.service(), discard())

	require.NoError(t, b.Flush(context.Background()))
	assert.Empty(t, rec.sizes())
}

func TestBatcher_retries_total_failures_with_backoff(t *testing.T) {
	t.Parallel()

	var attempts int
	svc := &mock.DocumentService{
		CreateDocumentsFn: func(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error) {
			attempts++
			if attempts < 3 {
				return nil, wanderer.Errorf(wanderer.EPERSIST, "transient")
			}
			return &wanderer.BulkResult{Written: len(docs)}, nil
		},
	}
	b := batch.NewBatcher(svc, discard(),
		batch.WithSize(100),
		batch.WithDebounce(time.Hour),
		batch.WithRetryDelays([]time.Duration{time.Millisecond, time.Millisecond}),
	)

	b.Enqueue(doc(0))

	require.NoError(t, b.Flush(context.Background()))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 0, b.Pending())
}

func TestBatcher_size_flush_carves_exactly_one_batch(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	rec := &recordingService{}
	svc := &mock.DocumentService{
		CreateDocumentsFn: func(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error) {
			<-release
			rec.mu.Lock()
			rec.batches = append(rec.batches, docs)
			rec.mu.Unlock()
			return &wanderer.BulkResult{Written: len(docs)}, nil
		},
	}
	b := batch.NewBatcher(svc, discard(), batch.WithSize(2), batch.WithDebounce(time.Hour))

	b.Enqueue(doc(0))
	b.Enqueue(doc(1)) // trips the threshold; the write blocks on release

	// Enqueued mid-write: must accumulate toward its own batch, not be
	// swept into the one already carved off.
	b.Enqueue(doc(2))
	assert.Equal(t, 1, b.Pending())

	close(release)
	assert.Eventually(t, func() bool {
		return len(rec.sizes()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []int{2}, rec.sizes())
	assert.Equal(t, 1, b.Pending())
}

func TestBatcher_rearms_debounce_after_failed_flush(t *testing.T) {
	t.Parallel()

	var failing atomic.Bool
	failing.Store(true)
	rec := &recordingService{}
	svc := &mock.DocumentService{
		CreateDocumentsFn: func(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error) {
			if failing.Load() {
				return nil, wanderer.Errorf(wanderer.EPERSIST, "datastore down")
			}
			rec.mu.Lock()
			rec.batches = append(rec.batches, docs)
			rec.mu.Unlock()
			return &wanderer.BulkResult{Written: len(docs)}, nil
		},
	}
	b := batch.NewBatcher(svc, discard(),
		batch.WithSize(100),
		batch.WithDebounce(20*time.Millisecond),
		batch.WithRetryDelays([]time.Duration{time.Millisecond}),
	)

	b.Enqueue(doc(0))

	// First timed flush fails and re-buffers. Once storage recovers the
	// re-armed debounce timer must deliver the document without any
	// further Enqueue, Flush, or Close.
	time.Sleep(50 * time.Millisecond)
	failing.Store(false)

	assert.Eventually(t, func() bool {
		return b.Pending() == 0
	}, 2*time.Second, 10*time.Millisecond, "rebuffered document never flushed")
	assert.Equal(t, []int{1}, rec.sizes())
}
