package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ad/go-telegram-lessons/internal/models"
	"github.com/ad/go-telegram-lessons/internal/store"
)

const (
	studentColWidth = 25
	doneColWidth    = 8
	totalColWidth   = 5
	remainColWidth  = 8
)

// StatisticsService renders the teacher's progress overview.
type StatisticsService struct {
	store store.Store
}

func NewStatisticsService(st store.Store) *StatisticsService {
	return &StatisticsService{store: st}
}

// Report reads all records and renders the table. An empty store yields an
// empty string and no error.
func (s *StatisticsService) Report(ctx context.Context) (string, error) {
	records, err := s.store.All(ctx)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}
	return FormatProgressTable(records), nil
}

// FormatProgressTable builds the fixed-width table: labels truncated to 25
// runes and left-aligned, counters centered in their columns.
func FormatProgressTable(records []models.ProgressRecord) string {
	header := fmt.Sprintf("%s | %s | %s | %s",
		padRight("Ученик", studentColWidth),
		padRight("Пройдено", doneColWidth),
		padRight("Всего", totalColWidth),
		padRight("Осталось", remainColWidth),
	)
	lines := []string{header, strings.Repeat("-", runeLen(header))}

	for _, r := range records {
		lines = append(lines, fmt.Sprintf("%s | %s | %s | %s",
			padRight(truncate(r.Student, studentColWidth), studentColWidth),
			center(strconv.Itoa(r.Done), doneColWidth),
			center(strconv.Itoa(r.Total), totalColWidth),
			center(strconv.Itoa(r.Remaining()), remainColWidth),
		))
	}

	return "📊 Статистика по ученикам:\n\n" + strings.Join(lines, "\n")
}

// Padding is rune-based: student labels are mostly Cyrillic and byte-based
// widths would break the column alignment.

func runeLen(s string) int {
	return len([]rune(s))
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}

func padRight(s string, width int) string {
	if pad := width - runeLen(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

func center(s string, width int) string {
	pad := width - runeLen(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
