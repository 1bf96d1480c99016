package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "immo/internal/app/outbox"
)

type outboxState int

const (
	outboxNew outboxState = iota
	outboxClaimed
	outboxSent
	outboxFailed
)

type outboxRecord struct {
	entry       appoutbox.Entry
	state       outboxState
	attempts    int
	nextAttempt time.Time
	lastError   string
}

// OutboxStore keeps appended entries in memory so the publishing worker
// can run without Mongo. Mostly useful in tests and local setups.
type OutboxStore struct {
	mu      sync.Mutex
	records map[string]*outboxRecord
	order   []string
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{records: make(map[string]*outboxRecord)}
}

func (s *OutboxStore) Append(ctx context.Context, entry appoutbox.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[entry.ID] = &outboxRecord{entry: entry, nextAttempt: time.Now().UTC()}
	s.order = append(s.order, entry.ID)
	return nil
}

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*appoutbox.Entry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range s.order {
		record := s.records[id]
		if record.state != outboxNew && record.state != outboxFailed {
			continue
		}
		if record.nextAttempt.After(now) {
			continue
		}
		record.state = outboxClaimed
		entry := record.entry
		return &entry, record.attempts, nil
	}
	return nil, 0, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[id]; ok {
		record.state = outboxSent
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[id]; ok {
		record.state = outboxFailed
		record.attempts++
		record.nextAttempt = next
		record.lastError = errMsg
	}
	return nil
}

// Pending reports how many entries still await publication.
func (s *OutboxStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, record := range s.records {
		if record.state != outboxSent {
			n++
		}
	}
	return n
}
