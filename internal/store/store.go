package store

import (
	"context"

	"github.com/ad/go-telegram-lessons/internal/models"
)

// Store is the durable table of progress records, one row per chat id.
//
// Upsert keeps exactly one record per ChatID. On the update path the Student
// column is left as first written; only Done, Total and LastUpdated change.
// Implementations perform no retries and hold no cross-call cache: every
// operation round-trips to the backing table. Callers that need same-key
// serialization must provide it themselves (see services.Tracker).
type Store interface {
	All(ctx context.Context) ([]models.ProgressRecord, error)
	Upsert(ctx context.Context, record *models.ProgressRecord) error
}

// TimeLayout is how LastUpdated is rendered in text-backed tables.
const TimeLayout = "2006-01-02 15:04:05"
