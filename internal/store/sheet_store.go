package store

import (
	"context"
	"strconv"
	"time"

	"github.com/ad/go-telegram-lessons/internal/models"
)

// TableAdapter is the raw row surface of a remote spreadsheet. Row indexes
// are 1-based and row 1 is the header, so data rows start at index 2.
type TableAdapter interface {
	FetchAll(ctx context.Context) ([][]string, error)
	UpdateRow(ctx context.Context, rowIndex int, cols ...string) error
	AppendRow(ctx context.Context, cols ...string) error
}

var headerRow = []string{"ChatID", "Student", "Done", "Total", "LastUpdated"}

// SheetStore keeps records in a spreadsheet, upserting by linear scan over
// the ChatID column.
type SheetStore struct {
	adapter TableAdapter
}

func NewSheetStore(adapter TableAdapter) *SheetStore {
	return &SheetStore{adapter: adapter}
}

func (s *SheetStore) All(ctx context.Context) ([]models.ProgressRecord, error) {
	rows, err := s.adapter.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	records := make([]models.ProgressRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(row))
	}
	return records, nil
}

func (s *SheetStore) Upsert(ctx context.Context, record *models.ProgressRecord) error {
	rows, err := s.adapter.FetchAll(ctx)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		if err := s.adapter.AppendRow(ctx, headerRow...); err != nil {
			return err
		}
		return s.adapter.AppendRow(ctx, rowFromRecord(record)...)
	}

	for i, row := range rows[1:] {
		if cell(row, 0) != record.ChatID {
			continue
		}
		// Found: rewrite the row in place keeping the stored label.
		// The student column is only ever written on insert.
		return s.adapter.UpdateRow(ctx, i+2,
			record.ChatID,
			cell(row, 1),
			strconv.Itoa(record.Done),
			strconv.Itoa(record.Total),
			record.LastUpdated.UTC().Format(TimeLayout),
		)
	}

	return s.adapter.AppendRow(ctx, rowFromRecord(record)...)
}

func rowFromRecord(r *models.ProgressRecord) []string {
	return []string{
		r.ChatID,
		r.Student,
		strconv.Itoa(r.Done),
		strconv.Itoa(r.Total),
		r.LastUpdated.UTC().Format(TimeLayout),
	}
}

func recordFromRow(row []string) models.ProgressRecord {
	done, _ := strconv.Atoi(cell(row, 2))
	total, _ := strconv.Atoi(cell(row, 3))
	updated, _ := time.Parse(TimeLayout, cell(row, 4))
	return models.ProgressRecord{
		ChatID:      cell(row, 0),
		Student:     cell(row, 1),
		Done:        done,
		Total:       total,
		LastUpdated: updated,
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
