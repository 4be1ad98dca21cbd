package model

import "testing"

func TestPriorityOf(t *testing.T) {
	tests := []struct {
		source string
		want   int
	}{
		{"knco", 1},
		{"library", 2},
		{"county", 3},
		{"craigslist", UnknownPriority},
		{"", UnknownPriority},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := PriorityOf(tt.source); got != tt.want {
				t.Errorf("PriorityOf(%q) = %d, want %d", tt.source, got, tt.want)
			}
		})
	}
}

func TestZeroValues(t *testing.T) {
	t.Run("zero value Event", func(t *testing.T) {
		var e Event
		if e.ID != 0 {
			t.Errorf("zero Event.ID = %d, want 0", e.ID)
		}
		if !e.ScrapedAt.IsZero() {
			t.Errorf("zero Event.ScrapedAt = %v, want zero time", e.ScrapedAt)
		}
		if e.IsFree {
			t.Error("zero Event.IsFree = true, want false")
		}
	})

	t.Run("zero value FetchOutcome", func(t *testing.T) {
		var o FetchOutcome
		if o.Events != nil {
			t.Errorf("zero FetchOutcome.Events = %v, want nil", o.Events)
		}
		if o.CacheHit {
			t.Error("zero FetchOutcome.CacheHit = true, want false")
		}
	})
}
