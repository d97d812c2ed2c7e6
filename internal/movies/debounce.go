package movies

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reelviewapp/reelview-server/internal/metricstore"
)

// debounceInterval is how long a client's search term must settle before
// its metric is recorded. Each new term from the same client restarts the
// timer, so rapid keystrokes coalesce into one recording.
const debounceInterval = 300 * time.Millisecond

// recordTimeout bounds the detached write once a term settles.
const recordTimeout = 10 * time.Second

type searchHit struct {
	term     string
	movieID  int
	title    string
	coverURL string
}

// debouncedRecorder coalesces search hits per client key and records only
// the settled one. In-flight recordings are never canceled by a newer
// term; they complete on their own goroutine.
type debouncedRecorder struct {
	metrics  *metricstore.Client
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]searchHit
	closed  bool
}

func newDebouncedRecorder(metrics *metricstore.Client, logger *slog.Logger) *debouncedRecorder {
	return &debouncedRecorder{
		metrics:  metrics,
		logger:   logger,
		interval: debounceInterval,
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]searchHit),
	}
}

// Note registers the latest hit for clientKey and restarts its timer.
func (d *debouncedRecorder) Note(clientKey string, hit searchHit) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.pending[clientKey] = hit
	if timer, ok := d.timers[clientKey]; ok {
		timer.Reset(d.interval)
		return
	}
	d.timers[clientKey] = time.AfterFunc(d.interval, func() {
		d.fire(clientKey)
	})
}

func (d *debouncedRecorder) fire(clientKey string) {
	d.mu.Lock()
	hit, ok := d.pending[clientKey]
	delete(d.pending, clientKey)
	delete(d.timers, clientKey)
	d.mu.Unlock()
	if !ok {
		return
	}
	d.record(hit)
}

// Close stops all timers and flushes pending hits synchronously.
func (d *debouncedRecorder) Close() {
	d.mu.Lock()
	d.closed = true
	for _, timer := range d.timers {
		timer.Stop()
	}
	remaining := make([]searchHit, 0, len(d.pending))
	for _, hit := range d.pending {
		remaining = append(remaining, hit)
	}
	d.timers = map[string]*time.Timer{}
	d.pending = map[string]searchHit{}
	d.mu.Unlock()

	for _, hit := range remaining {
		d.record(hit)
	}
}

func (d *debouncedRecorder) record(hit searchHit) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	d.metrics.RecordSearchOccurrence(ctx, hit.term, hit.movieID, hit.title, hit.coverURL)
}
