package store

import (
	"context"
	"sync"

	"github.com/ad/go-telegram-lessons/internal/models"
)

// MemoryStore is an in-process Store for tests and local runs. Records keep
// insertion order, like rows of a sheet.
type MemoryStore struct {
	mu      sync.Mutex
	order   []string
	records map[string]models.ProgressRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.ProgressRecord)}
}

func (s *MemoryStore) All(ctx context.Context) ([]models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]models.ProgressRecord, 0, len(s.order))
	for _, chatID := range s.order {
		records = append(records, s.records[chatID])
	}
	return records, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, record *models.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[record.ChatID]
	if !ok {
		s.order = append(s.order, record.ChatID)
		s.records[record.ChatID] = *record
		return nil
	}

	existing.Done = record.Done
	existing.Total = record.Total
	existing.LastUpdated = record.LastUpdated
	s.records[record.ChatID] = existing
	return nil
}
