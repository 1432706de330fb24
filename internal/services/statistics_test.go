package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ad/go-telegram-lessons/internal/models"
	"github.com/ad/go-telegram-lessons/internal/store"
)

func TestFormatProgressTable(t *testing.T) {
	records := []models.ProgressRecord{
		{Student: "Анна Иванова (@ann)", Done: 9, Total: 10},
		{Student: "Группа Б2", Done: 12, Total: 10},
	}

	table := FormatProgressTable(records)

	if !strings.Contains(table, "📊 Статистика по ученикам:") {
		t.Error("Expected the report title")
	}
	if !strings.Contains(table, "Ученик") || !strings.Contains(table, "Осталось") {
		t.Error("Expected the header columns")
	}

	lines := strings.Split(table, "\n")
	// title, blank, header, rule, two rows
	if len(lines) != 6 {
		t.Fatalf("Expected 6 lines, got %d: %q", len(lines), table)
	}

	header := lines[2]
	if lines[3] != strings.Repeat("-", runeLen(header)) {
		t.Errorf("Rule line should match header width: %q vs %q", lines[3], header)
	}
	for _, row := range lines[4:] {
		if runeLen(row) != runeLen(header) {
			t.Errorf("Row width %d differs from header width %d: %q", runeLen(row), runeLen(header), row)
		}
	}

	// Overshoot clamps remaining at zero.
	if !strings.Contains(lines[5], " 0 ") {
		t.Errorf("Expected clamped remaining 0 in %q", lines[5])
	}
	if strings.Contains(table, "-2") {
		t.Error("Remaining must never render negative")
	}
}

func TestFormatProgressTable_TruncatesLongLabels(t *testing.T) {
	long := strings.Repeat("и", 40)
	table := FormatProgressTable([]models.ProgressRecord{{Student: long, Done: 1, Total: 2}})

	if strings.Contains(table, long) {
		t.Error("Label longer than 25 runes must be truncated")
	}
	if !strings.Contains(table, strings.Repeat("и", 25)) {
		t.Error("Expected the first 25 runes of the label")
	}
}

func TestReport_EmptyStore(t *testing.T) {
	svc := NewStatisticsService(store.NewMemoryStore())

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if report != "" {
		t.Errorf("Expected empty report for empty store, got %q", report)
	}
}

func TestReport_StoreError(t *testing.T) {
	storeErr := errors.New("store unavailable")
	svc := NewStatisticsService(&failingStore{err: storeErr})

	if _, err := svc.Report(context.Background()); !errors.Is(err, storeErr) {
		t.Fatalf("Expected store error, got %v", err)
	}
}

func TestCenter(t *testing.T) {
	if got := center("9", 8); got != "   9    " {
		t.Errorf("center(9, 8) = %q", got)
	}
	if got := center("10", 5); got != " 10  " {
		t.Errorf("center(10, 5) = %q", got)
	}
	if got := center("123456", 5); got != "123456" {
		t.Errorf("center must not truncate, got %q", got)
	}
}
