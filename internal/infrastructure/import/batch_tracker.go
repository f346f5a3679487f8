package csvimport

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBatchAlreadyTracked is returned when a batch id is registered twice.
	ErrBatchAlreadyTracked = errors.New("batch already tracked")

	// ErrBatchNotTracked is returned when reporting progress for an unknown batch.
	ErrBatchNotTracked = errors.New("batch not tracked")
)

const (
	defaultTrackerExpiry        = 30 * time.Minute
	defaultTrackerSweepInterval = 5 * time.Minute
)

// BatchCompletion summarizes a finished batch for the completion callback.
type BatchCompletion struct {
	BatchID uuid.UUID
	Total   int
	Done    int
	Failed  int
}

// CompletionFunc is invoked exactly once, when the last job of a batch
// reports in. It runs on the reporting goroutine, outside the tracker lock.
type CompletionFunc func(c BatchCompletion)

type batchEntry struct {
	total      int
	done       int
	failed     int
	onComplete CompletionFunc
	trackedAt  time.Time
}

// BatchTracker counts asynchronous row jobs per import batch and fires a
// completion callback when the last one finishes. Entries that never
// complete (a worker crashed mid-batch) are dropped by a background sweep
// after the expiry, so the summary mail is simply not sent for them.
type BatchTracker struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*batchEntry
	expiry  time.Duration

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewBatchTracker creates a tracker and starts its sweep loop.
func NewBatchTracker(expiry time.Duration) *BatchTracker {
	if expiry <= 0 {
		expiry = defaultTrackerExpiry
	}

	t := &BatchTracker{
		entries:  make(map[uuid.UUID]*batchEntry),
		expiry:   expiry,
		stopChan: make(chan struct{}),
	}

	sweepInterval := defaultTrackerSweepInterval
	if expiry < sweepInterval {
		sweepInterval = expiry
	}

	t.wg.Add(1)
	go t.sweepLoop(sweepInterval)

	return t
}

// Track registers a batch with its expected job count. A total of zero
// completes immediately since no jobs will ever report.
func (t *BatchTracker) Track(batchID uuid.UUID, total int, onComplete CompletionFunc) error {
	if total <= 0 {
		if onComplete != nil {
			onComplete(BatchCompletion{BatchID: batchID})
		}
		return nil
	}

	t.mu.Lock()
	if _, exists := t.entries[batchID]; exists {
		t.mu.Unlock()
		return ErrBatchAlreadyTracked
	}
	t.entries[batchID] = &batchEntry{
		total:      total,
		onComplete: onComplete,
		trackedAt:  time.Now(),
	}
	t.mu.Unlock()

	return nil
}

// JobDone records one finished job. The completion callback fires on the
// call that brings the batch to its total.
func (t *BatchTracker) JobDone(batchID uuid.UUID, failed bool) error {
	t.mu.Lock()
	entry, exists := t.entries[batchID]
	if !exists {
		t.mu.Unlock()
		return ErrBatchNotTracked
	}

	entry.done++
	if failed {
		entry.failed++
	}

	if entry.done < entry.total {
		t.mu.Unlock()
		return nil
	}

	delete(t.entries, batchID)
	t.mu.Unlock()

	if entry.onComplete != nil {
		entry.onComplete(BatchCompletion{
			BatchID: batchID,
			Total:   entry.total,
			Done:    entry.done,
			Failed:  entry.failed,
		})
	}

	return nil
}

// Pending returns the number of batches still awaiting jobs.
func (t *BatchTracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Close stops the sweep loop. Safe to call more than once.
func (t *BatchTracker) Close() {
	t.closeOnce.Do(func() {
		close(t.stopChan)
	})
	t.wg.Wait()
}

func (t *BatchTracker) sweepLoop(interval time.Duration) {
	defer t.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopChan:
			return
		case <-ticker.C:
			t.sweep()
		}
	}
}

func (t *BatchTracker) sweep() {
	cutoff := time.Now().Add(-t.expiry)

	t.mu.Lock()
	defer t.mu.Unlock()

	for id, entry := range t.entries {
		if entry.trackedAt.Before(cutoff) {
			delete(t.entries, id)
		}
	}
}
