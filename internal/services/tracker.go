package services

import (
	"context"
	"sync"
	"time"

	"github.com/ad/go-telegram-lessons/internal/models"
	"github.com/ad/go-telegram-lessons/internal/store"
)

// Tracker reconciles incoming progress reports against the store. Reports
// for the same chat are serialized through a per-chat mutex so that two
// near-simultaneous reports cannot lose an update between read and write.
type Tracker struct {
	store store.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTracker(st store.Store) *Tracker {
	return &Tracker{
		store: st,
		locks: make(map[string]*sync.Mutex),
	}
}

func (t *Tracker) chatLock(chatID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[chatID] = lock
	}
	return lock
}

// Record upserts the report and tells whether it landed exactly one lesson
// short of the course. The trigger is level-based, re-derived from the
// submitted values each time: a repeated identical report with one lesson
// remaining fires again, acting as a reminder until the course advances.
func (t *Tracker) Record(ctx context.Context, chatID, student string, done, total int) (crossed bool, err error) {
	lock := t.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	record := &models.ProgressRecord{
		ChatID:      chatID,
		Student:     student,
		Done:        done,
		Total:       total,
		LastUpdated: time.Now().UTC(),
	}
	if err := t.store.Upsert(ctx, record); err != nil {
		return false, err
	}

	return total-done == 1, nil
}
