package store

import (
	"database/sql"
	"fmt"

	"github.com/ad/go-telegram-lessons/internal/sheets"

	_ "modernc.org/sqlite"
)

const (
	DriverSheets   = "sheets"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config selects and parameterizes a Store driver.
type Config struct {
	Driver      string
	SheetID     string
	CredsPath   string
	SQLitePath  string
	PostgresDSN string
}

// Open builds the configured Store. The returned func releases whatever the
// driver holds open.
func Open(cfg Config) (Store, func(), error) {
	switch cfg.Driver {
	case DriverSheets, "":
		client, err := sheets.NewClient(cfg.SheetID, cfg.CredsPath)
		if err != nil {
			return nil, nil, err
		}
		return NewSheetStore(client), func() {}, nil

	case DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "lessons.db"
		}
		db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
		if err != nil {
			return nil, nil, err
		}
		s, err := NewSQLiteStore(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, func() { s.Close(); db.Close() }, nil

	case DriverPostgres:
		s, err := NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case DriverMemory:
		return NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
