package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ad/go-telegram-lessons/internal/models"

	_ "github.com/lib/pq"
)

const postgresOperationTimeout = 5 * time.Second

// PostgresStore keeps records in a Postgres table, creating it on first use.
type PostgresStore struct {
	dsn string

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}
	return &PostgresStore{dsn: dsn}, nil
}

func (s *PostgresStore) ensureReady() error {
	s.initOnce.Do(func() {
		db, err := sql.Open("postgres", s.dsn)
		if err != nil {
			s.initErr = err
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), postgresOperationTimeout)
		defer cancel()
		_, err = db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS lesson_progress (
				chat_id TEXT PRIMARY KEY,
				student TEXT NOT NULL DEFAULT '',
				done INTEGER NOT NULL DEFAULT 0,
				total INTEGER NOT NULL DEFAULT 0,
				last_updated TIMESTAMPTZ
			)
		`)
		if err != nil {
			db.Close()
			s.initErr = err
			return
		}
		s.db = db
	})
	return s.initErr
}

func (s *PostgresStore) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *PostgresStore) All(ctx context.Context) ([]models.ProgressRecord, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, postgresOperationTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT chat_id, student, done, total, last_updated
		FROM lesson_progress ORDER BY chat_id
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
}

func (s *PostgresStore) Upsert(ctx context.Context, record *models.ProgressRecord) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, postgresOperationTimeout)
	defer cancel()

	// Student stays as first written; only progress columns move on update.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lesson_progress (chat_id, student, done, total, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chat_id) DO UPDATE SET
			done = EXCLUDED.done,
			total = EXCLUDED.total,
			last_updated = EXCLUDED.last_updated
	`, record.ChatID, record.Student, record.Done, record.Total, record.LastUpdated.UTC())
	return err
}
