// Package batch decouples fetch throughput from storage write throughput.
// Documents accumulate in memory and flush to the datastore when the buffer
// reaches a size threshold or when a debounce timer, started at the first
// buffered item, elapses. Flush failures are retried at the storage
// boundary; a document is only lost if the process exits with it unflushed,
// and that loss is logged loudly.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SirWilliamIII/wanderer"
)

// Compile-time interface verification.
var _ wanderer.DocumentBatcher = (*Batcher)(nil)

// Defaults for flush triggers and storage retries.
const (
	DefaultSize     = 20
	DefaultDebounce = 5 * time.Second
)

// DefaultRetryDelays returns the backoff delays for flush retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Batcher implements wanderer.DocumentBatcher. It is safe for concurrent
// use by multiple workers.
type Batcher struct {
	documents   wanderer.DocumentService
	size        int
	debounce    time.Duration
	retryDelays []time.Duration
	logger      *slog.Logger

	mu     sync.Mutex
	buf    []*wanderer.Document
	timer  *time.Timer
	closed bool

	flushMu sync.Mutex // serializes flushes
}

// Option configures a Batcher.
type Option func(*Batcher)

// WithSize sets the buffer size that triggers an immediate flush.
func WithSize(n int) Option {
	return func(b *Batcher) { b.size = n }
}

// WithDebounce sets the delay from the first buffered item to a timed flush.
func WithDebounce(d time.Duration) Option {
	return func(b *Batcher) { b.debounce = d }
}

// WithRetryDelays overrides the storage retry backoff schedule.
// Useful for testing without waiting for real delays.
func WithRetryDelays(delays []time.Duration) Option {
	return func(b *Batcher) { b.retryDelays = delays }
}

// NewBatcher creates a Batcher flushing to the given document service.
func NewBatcher(documents wanderer.DocumentService, logger *slog.Logger, opts ...Option) *Batcher {
	b := &Batcher{
		documents:   documents,
		size:        DefaultSize,
		debounce:    DefaultDebounce,
		retryDelays: DefaultRetryDelays(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enqueue buffers a document. It never blocks the caller on storage:
// size-triggered flushes run on a background goroutine. Reaching the
// size threshold carves off exactly one batch; documents enqueued while
// that batch is being written accumulate toward their own trigger.
func (b *Batcher) Enqueue(doc *wanderer.Document) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Error("document enqueued after close, dropping", "url", doc.URL)
		return
	}

	b.buf = append(b.buf, doc)
	if len(b.buf) == 1 {
		b.timer = time.AfterFunc(b.debounce, b.timedFlush)
	}

	var docs []*wanderer.Document
	if len(b.buf) >= b.size {
		docs = b.takeLocked(b.size)
	}
	b.mu.Unlock()

	if docs != nil {
		go func() {
			if err := b.flushDocs(context.Background(), docs); err != nil {
				b.logger.Error("batch flush failed", "error", err)
			}
		}()
	}
}

// Pending returns the number of buffered documents.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// Flush writes everything currently buffered, retrying total storage
// failures with backoff. Documents from a failed flush are re-buffered,
// never dropped. Per-item failures within an otherwise successful bulk
// write are logged and counted; the batch is best-effort by contract.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	docs := b.takeLocked(len(b.buf))
	b.mu.Unlock()

	return b.flushDocs(ctx, docs)
}

// takeLocked carves the first n documents off the buffer, maintaining
// the invariant that a non-empty buffer always has a debounce timer
// running. Caller holds b.mu.
func (b *Batcher) takeLocked(n int) []*wanderer.Document {
	if n > len(b.buf) {
		n = len(b.buf)
	}
	docs := b.buf[:n:n]
	b.buf = b.buf[n:]
	if len(b.buf) == 0 {
		b.stopTimerLocked()
	} else if b.timer == nil {
		b.timer = time.AfterFunc(b.debounce, b.timedFlush)
	}
	return docs
}

// flushDocs writes one batch, re-buffering it ahead of newer documents
// on total failure. Flushes are serialized so batches reach the
// datastore in carve order.
func (b *Batcher) flushDocs(ctx context.Context, docs []*wanderer.Document) error {
	if len(docs) == 0 {
		return nil
	}

	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	result, err := b.write(ctx, docs)
	if err != nil {
		b.mu.Lock()
		b.buf = append(docs, b.buf...)
		if b.timer == nil && !b.closed {
			b.timer = time.AfterFunc(b.debounce, b.timedFlush)
		}
		b.mu.Unlock()
		return wanderer.Errorf(wanderer.EPERSIST, "flush of %d documents failed: %v", len(docs), err)
	}

	if result.Failed > 0 {
		b.logger.Warn("partial batch write",
			"written", result.Written,
			"failed", result.Failed,
		)
	} else {
		b.logger.Info("batch flushed", "written", result.Written)
	}
	return nil
}

// write attempts the bulk insert, retrying total failures with backoff.
func (b *Batcher) write(ctx context.Context, docs []*wanderer.Document) (*wanderer.BulkResult, error) {
	var lastErr error
	for attempt := 0; attempt <= len(b.retryDelays); attempt++ {
		result, err := b.documents.CreateDocuments(ctx, docs)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt >= len(b.retryDelays) {
			break
		}
		b.logger.Warn("bulk insert failed, retrying",
			"attempt", attempt+1,
			"delay", b.retryDelays[attempt],
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.retryDelays[attempt]):
		}
	}
	return nil, lastErr
}

// Close stops the debounce timer and performs the mandatory final flush.
// A failure here means data loss at shutdown, which is logged loudly.
func (b *Batcher) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.stopTimerLocked()
	pending := len(b.buf)
	b.mu.Unlock()

	if err := b.Flush(ctx); err != nil {
		b.logger.Error("LOSING DOCUMENTS: final flush failed at shutdown",
			"pending", pending,
			"error", err,
		)
		return err
	}
	return nil
}

func (b *Batcher) timedFlush() {
	if err := b.Flush(context.Background()); err != nil {
		b.logger.Error("debounce flush failed", "error", err)
	}
}

func (b *Batcher) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
