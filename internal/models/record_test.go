package models

import (
	"testing"

	"pgregory.net/rapid"
)

func TestRemaining(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{1, 5, 4},
		{9, 10, 1},
		{10, 10, 0},
		{12, 10, 0},
		{0, 0, 0},
	}

	for _, tt := range tests {
		r := ProgressRecord{Done: tt.done, Total: tt.total}
		if got := r.Remaining(); got != tt.want {
			t.Errorf("Remaining(done=%d, total=%d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestProperty1_RemainingNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := ProgressRecord{
			Done:  rapid.IntRange(0, 10000).Draw(rt, "done"),
			Total: rapid.IntRange(0, 10000).Draw(rt, "total"),
		}

		remain := r.Remaining()
		if remain < 0 {
			rt.Errorf("Remaining() = %d, must clamp at zero", remain)
		}
		if r.Done <= r.Total && remain != r.Total-r.Done {
			rt.Errorf("Remaining() = %d, want %d", remain, r.Total-r.Done)
		}
		if r.Done > r.Total && remain != 0 {
			rt.Errorf("Remaining() = %d for overshoot, want 0", remain)
		}
	})
}

func TestSenderFullName(t *testing.T) {
	s := Sender{FirstName: "Анна", LastName: "Иванова"}
	if got := s.FullName(); got != "Анна Иванова" {
		t.Errorf("FullName() = %q", got)
	}

	s = Sender{FirstName: "Ann"}
	if got := s.FullName(); got != "Ann" {
		t.Errorf("FullName() = %q", got)
	}
}
