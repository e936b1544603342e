package notify

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nexocrm/nexo-go/internal/util"
)

const (
	defaultHistorySize   = 5
	defaultDedupCapacity = 200

	standardDuration = 5 * time.Second
	externalDuration = 8 * time.Second

	// externalMarker visually distinguishes integration-originated events.
	externalMarker = "⚡ "
)

// Coordinator presents each distinct notification exactly once, with the
// severity and channel appropriate to its classification, and keeps a short
// durable history of what was shown.
//
// Deliver may be called from the realtime channel goroutine and the poll
// path at the same time; the dedup cache serializes the at-most-once check.
type Coordinator struct {
	presenter Presenter
	fallback  Presenter
	history   HistoryStore
	dedup     *dedupCache
	logger    *slog.Logger

	mu          sync.Mutex
	recent      []Record
	historySize int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithFallback sets a secondary presenter tried when the primary fails on a
// high-priority (external) event.
func WithFallback(p Presenter) Option {
	return func(c *Coordinator) { c.fallback = p }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithDedupCapacity bounds the dedup cache.
func WithDedupCapacity(n int) Option {
	return func(c *Coordinator) { c.dedup = newDedupCache(n) }
}

// WithHistorySize bounds the persisted recent history.
func WithHistorySize(n int) Option {
	return func(c *Coordinator) { c.historySize = n }
}

// NewCoordinator creates a Coordinator presenting through presenter and
// persisting history through history.
func NewCoordinator(presenter Presenter, history HistoryStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		presenter:   presenter,
		history:     history,
		dedup:       newDedupCache(defaultDedupCapacity),
		historySize: defaultHistorySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return c
}

// Deliver presents ev unless an event with the same id was already
// presented. It never returns an error: presentation is best-effort and
// failures are logged, but the event is still recorded in history.
func (c *Coordinator) Deliver(ev Event) {
	if ev.ID == "" {
		ev.ID = util.TempID()
	}
	if !c.dedup.checkAndSet(ev.ID) {
		return
	}
	if ev.Severity == "" {
		ev.Severity = ResolveSeverity("", ev.Type)
	}

	if ev.Origin == OriginExternal {
		c.presentExternal(ev)
	} else {
		c.presentStandard(ev)
	}
	c.record(ev)
}

// presentExternal is the high-priority path: longer duration, a
// distinguishing marker, and a single fallback attempt.
func (c *Coordinator) presentExternal(ev Event) {
	title := externalMarker + ev.Title
	err := c.presenter.Present(title, ev.Message, ev.Severity, externalDuration)
	if err == nil {
		return
	}
	c.logger.Warn("primary presenter failed", "id", ev.ID, "error", err)
	if c.fallback == nil {
		return
	}
	if err := c.fallback.Present(title, ev.Message, ev.Severity, externalDuration); err != nil {
		c.logger.Warn("fallback presenter failed", "id", ev.ID, "error", err)
	}
}

func (c *Coordinator) presentStandard(ev Event) {
	if err := c.presenter.Present(ev.Title, ev.Message, ev.Severity, standardDuration); err != nil {
		c.logger.Warn("presenter failed", "id", ev.ID, "error", err)
	}
}

// record appends ev to the recent history, evicting the oldest entry past
// the bound, and persists the whole list.
func (c *Coordinator) record(ev Event) {
	c.mu.Lock()
	c.recent = append(c.recent, Record{
		ID:        ev.ID,
		Title:     ev.Title,
		Message:   ev.Message,
		Timestamp: ev.CreatedAt,
	})
	if len(c.recent) > c.historySize {
		c.recent = c.recent[len(c.recent)-c.historySize:]
	}
	snapshot := append([]Record(nil), c.recent...)
	c.mu.Unlock()

	if err := c.history.Save(snapshot); err != nil {
		c.logger.Warn("persisting notification history", "error", err)
	}
}

// Recent returns a copy of the in-memory recent history.
func (c *Coordinator) Recent() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Record(nil), c.recent...)
}

// Announce hands a polled batch through the coordinator. All events are
// returned for list rendering; when announce is set and at least one unread
// event exists, only the most recent unread one is delivered, so a poll tick
// never floods the user.
func (c *Coordinator) Announce(events []Event, announce bool) []Event {
	if announce {
		var latest *Event
		for i := range events {
			if events[i].Read {
				continue
			}
			if latest == nil || events[i].CreatedAt.After(latest.CreatedAt) {
				latest = &events[i]
			}
		}
		if latest != nil {
			c.Deliver(*latest)
		}
	}
	return events
}
