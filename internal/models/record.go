package models

import "time"

// ProgressRecord is one tracked chat's lesson progress. ChatID is stored as
// a string because the spreadsheet backend compares cell text.
type ProgressRecord struct {
	ChatID      string
	Student     string
	Done        int
	Total       int
	LastUpdated time.Time
}

// Remaining clamps at zero: overshoot (Done > Total) is tolerated.
func (r *ProgressRecord) Remaining() int {
	remain := r.Total - r.Done
	if remain < 0 {
		return 0
	}
	return remain
}
