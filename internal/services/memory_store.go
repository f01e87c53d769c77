package services

import (
	"context"
	"sync"
	"time"

	"yourresumescanner/resume-scanner/internal/models"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore is a process-local ResultStore. Entries expire after the TTL;
// a zero TTL keeps them until restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put implements ResultStore.
func (s *MemoryStore) Put(_ context.Context, id string, data *models.AnalysisData) error {
	if err := validScanID(id); err != nil {
		return err
	}

	raw, err := encodeAnalysis(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[id]; ok && !s.expired(entry) {
		return ErrScanExists
	}

	entry := memoryEntry{raw: raw}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[id] = entry
	return nil
}

// Get implements ResultStore.
func (s *MemoryStore) Get(_ context.Context, id string) (*models.AnalysisData, error) {
	if err := validScanID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || s.expired(entry) {
		return nil, ErrNoDataFound
	}
	return decodeAnalysis(entry.raw)
}

// Purge drops expired entries and reports how many were removed.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}
