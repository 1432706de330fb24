package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/ad/go-telegram-lessons/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS lesson_progress (
    chat_id TEXT PRIMARY KEY,
    student TEXT NOT NULL DEFAULT '',
    done INTEGER NOT NULL DEFAULT 0,
    total INTEGER NOT NULL DEFAULT 0,
    last_updated DATETIME
);
`

// SQLiteStore keeps records in an embedded sqlite table. All statements go
// through a serializing queue, the driver being single-writer.
type SQLiteStore struct {
	queue *dbQueue
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, err
	}
	return &SQLiteStore{queue: newDBQueue(db, 100*time.Millisecond)}, nil
}

// NewSQLiteStoreForTest uses a minimal retry delay.
func NewSQLiteStoreForTest(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, err
	}
	return &SQLiteStore{queue: newDBQueue(db, time.Millisecond)}, nil
}

func (s *SQLiteStore) Close() {
	s.queue.close()
}

func (s *SQLiteStore) All(ctx context.Context) ([]models.ProgressRecord, error) {
	result, err := s.queue.execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.QueryContext(ctx, `
			SELECT chat_id, student, done, total, last_updated
			FROM lesson_progress ORDER BY rowid
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var records []models.ProgressRecord
		for rows.Next() {
			var record models.ProgressRecord
			var updated sql.NullTime
			if err := rows.Scan(&record.ChatID, &record.Student, &record.Done, &record.Total, &updated); err != nil {
				return nil, err
			}
			if updated.Valid {
				record.LastUpdated = updated.Time
			}
			records = append(records, record)
		}
		return records, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.ProgressRecord), nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, record *models.ProgressRecord) error {
	_, err := s.queue.execute(func(db *sql.DB) (interface{}, error) {
		// The student column is deliberately absent from the update arm:
		// the label is only written on insert, as in the sheet driver.
		_, err := db.ExecContext(ctx, `
			INSERT INTO lesson_progress (chat_id, student, done, total, last_updated)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(chat_id) DO UPDATE SET
				done = excluded.done,
				total = excluded.total,
				last_updated = excluded.last_updated
		`, record.ChatID, record.Student, record.Done, record.Total, record.LastUpdated.UTC())
		return nil, err
	})
	return err
}
