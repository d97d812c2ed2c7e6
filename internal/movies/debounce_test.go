package movies

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncedRecorder_CoalescesToLatestHit(t *testing.T) {
	metrics, recorded := newFakeMetricsBackend(t)
	recorder := newDebouncedRecorder(metrics, slog.New(slog.DiscardHandler))
	recorder.interval = 20 * time.Millisecond

	recorder.Note("client1", searchHit{term: "d", movieID: 1, title: "D"})
	recorder.Note("client1", searchHit{term: "du", movieID: 2, title: "Du"})
	recorder.Note("client1", searchHit{term: "dune", movieID: 438631, title: "Dune"})

	require.Eventually(t, func() bool {
		return len(recorded.all()) == 1
	}, time.Second, 5*time.Millisecond)

	creates := recorded.all()
	assert.Equal(t, "dune", creates[0]["search_term"])
}

func TestDebouncedRecorder_TimerRestartsPerNote(t *testing.T) {
	metrics, recorded := newFakeMetricsBackend(t)
	recorder := newDebouncedRecorder(metrics, slog.New(slog.DiscardHandler))
	recorder.interval = 60 * time.Millisecond

	// Keep noting faster than the interval; nothing may record meanwhile.
	for range 4 {
		recorder.Note("client1", searchHit{term: "typing", movieID: 1, title: "T"})
		time.Sleep(20 * time.Millisecond)
	}
	assert.Empty(t, recorded.all())

	require.Eventually(t, func() bool {
		return len(recorded.all()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDebouncedRecorder_CloseFlushesPending(t *testing.T) {
	metrics, recorded := newFakeMetricsBackend(t)
	recorder := newDebouncedRecorder(metrics, slog.New(slog.DiscardHandler))
	recorder.interval = time.Hour // never fires on its own

	recorder.Note("client1", searchHit{term: "dune", movieID: 438631, title: "Dune"})
	recorder.Close()

	require.Len(t, recorded.all(), 1)

	// Notes after close are dropped.
	recorder.Note("client1", searchHit{term: "late", movieID: 1, title: "Late"})
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, recorded.all(), 1)
}
