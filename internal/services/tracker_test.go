package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ad/go-telegram-lessons/internal/models"
	"github.com/ad/go-telegram-lessons/internal/store"
	"pgregory.net/rapid"
)

type failingStore struct {
	err error
}

func (s *failingStore) All(ctx context.Context) ([]models.ProgressRecord, error) {
	return nil, s.err
}

func (s *failingStore) Upsert(ctx context.Context, record *models.ProgressRecord) error {
	return s.err
}

func TestRecord_AppendsOnceThenUpdatesInPlace(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := NewTracker(st)
	ctx := context.Background()

	if _, err := tracker.Record(ctx, "100", "Ann (@ann1)", 1, 5); err != nil {
		t.Fatalf("First record failed: %v", err)
	}
	if _, err := tracker.Record(ctx, "100", "Ann (@ann1)", 2, 5); err != nil {
		t.Fatalf("Second record failed: %v", err)
	}

	records, err := st.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected exactly one record for the chat, got %d", len(records))
	}
	if records[0].Done != 2 || records[0].Total != 5 {
		t.Errorf("Expected (2, 5), got (%d, %d)", records[0].Done, records[0].Total)
	}
	if records[0].LastUpdated.IsZero() {
		t.Error("Expected LastUpdated to be set")
	}
}

func TestRecord_ThresholdCrossing(t *testing.T) {
	tests := []struct {
		name    string
		done    int
		total   int
		crossed bool
	}{
		{"one remaining", 9, 10, true},
		{"finished", 10, 10, false},
		{"far from done", 1, 10, false},
		{"overshoot", 11, 10, false},
		{"one of two", 1, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(store.NewMemoryStore())
			crossed, err := tracker.Record(context.Background(), "1", "x", tt.done, tt.total)
			if err != nil {
				t.Fatalf("Record failed: %v", err)
			}
			if crossed != tt.crossed {
				t.Errorf("Record(%d, %d) crossed = %v, want %v", tt.done, tt.total, crossed, tt.crossed)
			}
		})
	}
}

func TestRecord_ThresholdRefiresOnRepeatedReport(t *testing.T) {
	tracker := NewTracker(store.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		crossed, err := tracker.Record(ctx, "5", "x", 8, 9)
		if err != nil {
			t.Fatalf("Record %d failed: %v", i+1, err)
		}
		if !crossed {
			t.Errorf("Repeated report %d with one remaining should cross again", i+1)
		}
	}
}

func TestRecord_StoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("store unavailable")
	tracker := NewTracker(&failingStore{err: storeErr})

	crossed, err := tracker.Record(context.Background(), "1", "x", 9, 10)
	if !errors.Is(err, storeErr) {
		t.Fatalf("Expected store error, got %v", err)
	}
	if crossed {
		t.Error("Failed record must not signal a threshold crossing")
	}
}

func TestRecord_ConcurrentSameChatKeepsOneRecord(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := NewTracker(st)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(done int) {
			defer wg.Done()
			if _, err := tracker.Record(ctx, "7", "x", done, 30); err != nil {
				t.Errorf("Record failed: %v", err)
			}
		}(i + 1)
	}
	wg.Wait()

	records, err := st.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected one record after concurrent reports, got %d", len(records))
	}
}

func TestProperty3_ThresholdOnlyAtExactlyOneRemaining(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		done := rapid.IntRange(0, 500).Draw(rt, "done")
		total := rapid.IntRange(0, 500).Draw(rt, "total")

		tracker := NewTracker(store.NewMemoryStore())
		crossed, err := tracker.Record(context.Background(), "1", "x", done, total)
		if err != nil {
			rt.Fatal(err)
		}

		want := total-done == 1
		if crossed != want {
			rt.Errorf("Record(%d, %d) crossed = %v, want %v", done, total, crossed, want)
		}
	})
}
