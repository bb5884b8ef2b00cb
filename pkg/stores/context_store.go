package stores

// ContextStore tracks which tasks belong to which conversation context.
// It is intentionally minimal: the client only ever appends task ids and
// reads them back in order, so the interface stays at that level. The
// built-in implementation is an in-memory map safe for concurrent use,
// sufficient for a single client process. Deployments that need durable
// conversation history swap in a persistent implementation behind the
// same interface.

import (
	"sort"
	"sync"
	"time"
)

type ContextStore interface {
	AppendTask(contextID string, taskID string)
	TaskIDs(contextID string) ([]string, bool)
	SetTitle(contextID string, title string)
	Contexts() []ContextRecord
	Remove(contextID string)
}

// ContextRecord is one conversation context as the store sees it. The
// identifier rides under both id and contextId; older readers key on the
// former, the protocol uses the latter.
type ContextRecord struct {
	ID        string    `json:"id"`
	ContextID string    `json:"contextId"`
	Title     string    `json:"title,omitempty"`
	TaskIDs   []string  `json:"taskIds"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InMemoryContextStore is the default implementation.
type InMemoryContextStore struct {
	mu      sync.RWMutex
	records map[string]*ContextRecord
}

func NewInMemoryContextStore() *InMemoryContextStore {
	return &InMemoryContextStore{
		records: make(map[string]*ContextRecord),
	}
}

// AppendTask adds a task to a context, creating the context on first
// sight. Appending an id the context already holds is a no-op, which is
// what happens when a paused task is continued rather than forked.
func (s *InMemoryContextStore) AppendTask(contextID string, taskID string) {
	if contextID == "" || taskID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[contextID]

	if !ok {
		record = &ContextRecord{ID: contextID, ContextID: contextID}
		s.records[contextID] = record
	}

	for _, known := range record.TaskIDs {
		if known == taskID {
			record.UpdatedAt = time.Now()
			return
		}
	}

	record.TaskIDs = append(record.TaskIDs, taskID)
	record.UpdatedAt = time.Now()
}

// TaskIDs returns the task ids of a context in append order.
func (s *InMemoryContextStore) TaskIDs(contextID string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[contextID]

	if !ok {
		return nil, false
	}

	ids := make([]string, len(record.TaskIDs))
	copy(ids, record.TaskIDs)

	return ids, true
}

// SetTitle stores a human readable title for a context.
func (s *InMemoryContextStore) SetTitle(contextID string, title string) {
	if contextID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[contextID]

	if !ok {
		record = &ContextRecord{ID: contextID, ContextID: contextID}
		s.records[contextID] = record
	}

	record.Title = title
}

// Contexts lists all known contexts, most recently touched first.
func (s *InMemoryContextStore) Contexts() []ContextRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]ContextRecord, 0, len(s.records))

	for _, record := range s.records {
		snapshot := *record
		snapshot.TaskIDs = make([]string, len(record.TaskIDs))
		copy(snapshot.TaskIDs, record.TaskIDs)
		records = append(records, snapshot)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	return records
}

// Remove forgets a context entirely.
func (s *InMemoryContextStore) Remove(contextID string) {
	s.mu.Lock()
	delete(s.records, contextID)
	s.mu.Unlock()
}
