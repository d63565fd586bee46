package spacedrep

import (
	"reflect"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		rs   *ReviewState
		want Status
	}{
		{"no progress", nil, StatusNew},
		{"failed last review", &ReviewState{Repetitions: 0, IntervalDays: 0}, StatusLearning},
		{"early success", &ReviewState{Repetitions: 2, IntervalDays: 6}, StatusReview},
		{"just below mastery", &ReviewState{Repetitions: 3, IntervalDays: 20}, StatusReview},
		{"mastered", &ReviewState{Repetitions: 4, IntervalDays: 21}, StatusMastered},
		{"long interval", &ReviewState{Repetitions: 9, IntervalDays: 200}, StatusMastered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.rs); got != tt.want {
				t.Errorf("StatusOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDueItems(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	progress := map[string]*ReviewState{
		"past":   {NextReviewAt: now.AddDate(0, 0, -2)},
		"today":  {NextReviewAt: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		"future": {NextReviewAt: now.AddDate(0, 0, 3)},
	}
	items := []string{"future", "new", "past", "today"}

	got := DueItems(items, progress, now)
	want := []string{"new", "past", "today"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DueItems() = %v, want %v", got, want)
	}
}

func TestDueItems_AllNew(t *testing.T) {
	got := DueItems([]string{"a", "b"}, nil, time.Now())
	if len(got) != 2 {
		t.Errorf("DueItems() = %v, want both items", got)
	}
}

func TestStatusCounts(t *testing.T) {
	progress := map[string]*ReviewState{
		"a": {Repetitions: 0},
		"b": {Repetitions: 5, IntervalDays: 40},
		"c": {Repetitions: 1, IntervalDays: 1},
	}
	got := StatusCounts([]string{"a", "b", "c", "d"}, progress)
	want := map[Status]int{StatusLearning: 1, StatusMastered: 1, StatusReview: 1, StatusNew: 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StatusCounts() = %v, want %v", got, want)
	}
}

func TestDaysUntilReview(t *testing.T) {
	now := time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)
	rs := &ReviewState{NextReviewAt: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)}
	if got := rs.DaysUntilReview(now); got != 5 {
		t.Errorf("DaysUntilReview() = %d, want 5", got)
	}
	rs.NextReviewAt = now.AddDate(0, 0, -1)
	if got := rs.DaysUntilReview(now); got != 0 {
		t.Errorf("DaysUntilReview() = %d, want 0 when due", got)
	}
}

func TestDaysUntilReviewAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// Clocks spring forward on 2025-03-09, so the span is 47 hours.
	now := time.Date(2025, 3, 8, 12, 0, 0, 0, ny)
	rs := &ReviewState{NextReviewAt: time.Date(2025, 3, 10, 0, 0, 0, 0, ny)}
	if got := rs.DaysUntilReview(now); got != 2 {
		t.Errorf("DaysUntilReview() = %d, want 2", got)
	}

	// Fall back on 2025-11-02 makes the span 25 hours.
	now = time.Date(2025, 11, 1, 23, 30, 0, 0, ny)
	rs.NextReviewAt = time.Date(2025, 11, 3, 0, 0, 0, 0, ny)
	if got := rs.DaysUntilReview(now); got != 2 {
		t.Errorf("DaysUntilReview() = %d, want 2", got)
	}
}
