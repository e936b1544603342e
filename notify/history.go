package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nexocrm/nexo-go/store"
)

const (
	historyBucket = "notifications"
	historyKey    = "recent"
)

// Record is one entry of the persisted recent-notification history.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryStore persists the bounded recent-notification history. Save
// overwrites the whole list; entries are never merged across runs.
type HistoryStore interface {
	Save(records []Record) error
	Load() ([]Record, error)
}

// RepositoryHistory stores the history as a single JSON blob in a
// store.Repository.
type RepositoryHistory struct {
	repo store.Repository
}

var _ HistoryStore = (*RepositoryHistory)(nil)

// NewRepositoryHistory returns a HistoryStore backed by repo.
func NewRepositoryHistory(repo store.Repository) *RepositoryHistory {
	return &RepositoryHistory{repo: repo}
}

func (h *RepositoryHistory) Save(records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return h.repo.Put(historyBucket, historyKey, data)
}

func (h *RepositoryHistory) Load() ([]Record, error) {
	data, err := h.repo.Get(historyBucket, historyKey)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return records, nil
}

// MemoryHistory is an in-memory HistoryStore for tests.
type MemoryHistory struct {
	mu      sync.Mutex
	records []Record
}

var _ HistoryStore = (*MemoryHistory)(nil)

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) Save(records []Record) error {
	h.mu.Lock()
	h.records = append([]Record(nil), records...)
	h.mu.Unlock()
	return nil
}

func (h *MemoryHistory) Load() ([]Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Record(nil), h.records...), nil
}
