package history

import (
	"context"
	"sync"
	"time"

	"swaad-chat/internal/models"
)

type memoryEntry struct {
	messages  []models.TranscriptMessage
	updatedAt time.Time
}

// MemoryStore is the single-process store. Entries idle longer than ttl
// read as empty and are dropped by Sweep.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
	max      int
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(maxMessages int, ttl time.Duration) *MemoryStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		max:      maxMessages,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) ([]models.TranscriptMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[sessionID]
	if !ok || s.expired(entry) {
		return nil, nil
	}
	out := make([]models.TranscriptMessage, len(entry.messages))
	copy(out, entry.messages)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, msgs ...models.TranscriptMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok || s.expired(entry) {
		entry = &memoryEntry{}
		s.sessions[sessionID] = entry
	}

	combined := make([]models.TranscriptMessage, 0, len(entry.messages)+len(msgs))
	combined = append(combined, entry.messages...)
	combined = append(combined, msgs...)
	entry.messages = trimWindow(combined, s.max)
	entry.updatedAt = s.now()
	return nil
}

func (s *MemoryStore) Evict(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len is the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(entry *memoryEntry) bool {
	return s.ttl > 0 && s.now().Sub(entry.updatedAt) > s.ttl
}
