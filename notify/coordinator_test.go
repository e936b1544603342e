package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPresenter captures every Present call.
type recordingPresenter struct {
	mu    sync.Mutex
	calls []presentedCall
	fail  bool
}

type presentedCall struct {
	title    string
	message  string
	severity Severity
	duration time.Duration
}

func (p *recordingPresenter) Present(title, message string, severity Severity, duration time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("render failed")
	}
	p.calls = append(p.calls, presentedCall{title, message, severity, duration})
	return nil
}

func (p *recordingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestDeliver_DedupsSameID(t *testing.T) {
	p := &recordingPresenter{}
	hist := NewMemoryHistory()
	c := NewCoordinator(p, hist, WithLogger(quietLogger()))

	ev := Event{ID: "n1", Title: "Tarea vencida", Type: "task_overdue", CreatedAt: time.Now()}
	c.Deliver(ev)
	c.Deliver(ev)

	require.Equal(t, 1, p.count(), "same id must be presented exactly once")

	records, err := hist.Load()
	require.NoError(t, err)
	count := 0
	for _, r := range records {
		if r.ID == "n1" {
			count++
		}
	}
	assert.Equal(t, 1, count, "history must hold exactly one entry for n1")
}

func TestDeliver_SeverityMapping(t *testing.T) {
	cases := []struct {
		eventType string
		want      Severity
	}{
		{"task_overdue", SeverityWarning},
		{"task_due_soon", SeverityWarning},
		{"task_completed", SeveritySuccess},
		{"project_completed", SeveritySuccess},
		{"lead_assigned", SeverityInfo},
	}
	for _, tc := range cases {
		t.Run(tc.eventType, func(t *testing.T) {
			p := &recordingPresenter{}
			c := NewCoordinator(p, NewMemoryHistory(), WithLogger(quietLogger()))
			c.Deliver(Event{ID: "x-" + tc.eventType, Type: tc.eventType})
			require.Equal(t, 1, p.count())
			assert.Equal(t, tc.want, p.calls[0].severity)
			assert.Equal(t, standardDuration, p.calls[0].duration)
		})
	}
}

func TestDeliver_ExplicitVariantWins(t *testing.T) {
	assert.Equal(t, SeverityError, ResolveSeverity("error", "task_overdue"))
	assert.Equal(t, SeverityWarning, ResolveSeverity("", "task_overdue"))
	assert.Equal(t, SeverityInfo, ResolveSeverity("shiny", "unknown_type"))
}

func TestDeliver_ExternalPath(t *testing.T) {
	p := &recordingPresenter{}
	c := NewCoordinator(p, NewMemoryHistory(), WithLogger(quietLogger()))

	c.Deliver(Event{ID: "ext1", Title: "Nuevo lead", Origin: OriginExternal})

	require.Equal(t, 1, p.count())
	assert.Equal(t, externalMarker+"Nuevo lead", p.calls[0].title)
	assert.Equal(t, externalDuration, p.calls[0].duration)
}

func TestDeliver_ExternalFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &recordingPresenter{fail: true}
	fallback := &recordingPresenter{}
	c := NewCoordinator(primary, NewMemoryHistory(),
		WithFallback(fallback), WithLogger(quietLogger()))

	c.Deliver(Event{ID: "ext2", Title: "Nuevo lead", Origin: OriginExternal})

	assert.Equal(t, 0, primary.count())
	assert.Equal(t, 1, fallback.count(), "fallback presenter must be attempted once")
}

func TestDeliver_PresentationFailureStillRecordsHistory(t *testing.T) {
	p := &recordingPresenter{fail: true}
	hist := NewMemoryHistory()
	c := NewCoordinator(p, hist, WithLogger(quietLogger()))

	c.Deliver(Event{ID: "n-fail", Title: "t"})

	records, err := hist.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "n-fail", records[0].ID)
}

func TestDeliver_HistoryBoundedToFive(t *testing.T) {
	p := &recordingPresenter{}
	hist := NewMemoryHistory()
	c := NewCoordinator(p, hist, WithLogger(quietLogger()))

	for i := 0; i < 8; i++ {
		c.Deliver(Event{ID: fmt.Sprintf("n%d", i), Title: fmt.Sprintf("t%d", i)})
	}

	records, err := hist.Load()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "n3", records[0].ID, "oldest surviving entry")
	assert.Equal(t, "n7", records[4].ID, "newest entry")
}

func TestDeliver_SynthesizesMissingID(t *testing.T) {
	p := &recordingPresenter{}
	c := NewCoordinator(p, NewMemoryHistory(), WithLogger(quietLogger()))

	c.Deliver(Event{Title: "sin id"})
	c.Deliver(Event{Title: "sin id"})

	// Each delivery without an id gets its own synthesized key.
	assert.Equal(t, 2, p.count())
}

func TestAnnounce_PresentsOnlyMostRecentUnread(t *testing.T) {
	p := &recordingPresenter{}
	c := NewCoordinator(p, NewMemoryHistory(), WithLogger(quietLogger()))

	base := time.Now()
	events := []Event{
		{ID: "e1", Title: "older", CreatedAt: base.Add(-2 * time.Minute)},
		{ID: "e2", Title: "newest unread", CreatedAt: base.Add(-1 * time.Minute)},
		{ID: "e3", Title: "already read", Read: true, CreatedAt: base},
	}

	got := c.Announce(events, true)

	require.Len(t, got, 3, "all events returned regardless of announce")
	require.Equal(t, 1, p.count())
	assert.Equal(t, "newest unread", p.calls[0].title)
}

func TestAnnounce_QuietWhenDisabled(t *testing.T) {
	p := &recordingPresenter{}
	c := NewCoordinator(p, NewMemoryHistory(), WithLogger(quietLogger()))

	got := c.Announce([]Event{{ID: "e1"}}, false)

	assert.Len(t, got, 1)
	assert.Equal(t, 0, p.count())
}

func TestAnnounce_AllRead(t *testing.T) {
	p := &recordingPresenter{}
	c := NewCoordinator(p, NewMemoryHistory(), WithLogger(quietLogger()))

	c.Announce([]Event{{ID: "e1", Read: true}, {ID: "e2", Read: true}}, true)

	assert.Equal(t, 0, p.count())
}

func TestDedupCache_Bounded(t *testing.T) {
	cache := newDedupCache(3)

	require.True(t, cache.checkAndSet("a"))
	require.True(t, cache.checkAndSet("b"))
	require.True(t, cache.checkAndSet("c"))
	require.False(t, cache.checkAndSet("a"))

	// "b" is now the oldest; inserting "d" evicts it.
	require.True(t, cache.checkAndSet("d"))
	assert.Equal(t, 3, cache.len())
	assert.True(t, cache.checkAndSet("b"), "evicted id is treated as new again")
}
