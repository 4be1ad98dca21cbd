package dedup

import (
	"testing"
	"time"

	"github.com/endersclarity/nevada-county-kids-events/internal/model"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func TestDeduplicate_ExactHashMatch(t *testing.T) {
	d := New(nil)

	events := []model.Event{
		{Title: "Story Time", EventDate: testDate, SourceName: "knco", ContentHash: "abc123"},
		{Title: "Story Time", EventDate: testDate, SourceName: "library", ContentHash: "abc123"},
	}

	out := d.Deduplicate(events)

	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].SourceName != "knco" {
		t.Errorf("SourceName = %q, want first occurrence %q", out[0].SourceName, "knco")
	}
}

func TestDeduplicate_FuzzyMergeRetainsVenue(t *testing.T) {
	d := New(nil)

	events := []model.Event{
		{Title: "Story Time at the Library", EventDate: testDate, SourceName: "knco", ContentHash: "h1"},
		{Title: "Story Time at Library", EventDate: testDate, SourceName: "library", ContentHash: "h2", Venue: "Main Library"},
	}

	out := d.Deduplicate(events)

	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Venue != "Main Library" {
		t.Errorf("Venue = %q, want %q", out[0].Venue, "Main Library")
	}
	// KNCO outranks Library, so the accepted record keeps its own title.
	if out[0].Title != "Story Time at the Library" {
		t.Errorf("Title = %q, want %q", out[0].Title, "Story Time at the Library")
	}
}

func TestDeduplicate_HigherPriorityOverwritesCoreFields(t *testing.T) {
	d := New(nil)

	events := []model.Event{
		{
			Title: "Pumpkin Patch Visit", EventDate: testDate, SourceName: "county",
			ContentHash: "h1", Description: "county desc", SourceURL: "https://county.example",
			Venue: "Fairgrounds",
		},
		{
			Title: "Pumpkin Patch Visits", EventDate: testDate, SourceName: "knco",
			ContentHash: "h2", Description: "knco desc", SourceURL: "https://knco.example",
		},
	}

	out := d.Deduplicate(events)

	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Title != "Pumpkin Patch Visits" {
		t.Errorf("Title = %q, want incoming knco title", out[0].Title)
	}
	if out[0].Description != "knco desc" {
		t.Errorf("Description = %q, want %q", out[0].Description, "knco desc")
	}
	if out[0].SourceURL != "https://knco.example" {
		t.Errorf("SourceURL = %q, want %q", out[0].SourceURL, "https://knco.example")
	}
	// Venue untouched: fill-if-empty only, and target already had one.
	if out[0].Venue != "Fairgrounds" {
		t.Errorf("Venue = %q, want %q", out[0].Venue, "Fairgrounds")
	}
	// Source identity of the accepted record is positional.
	if out[0].SourceName != "county" {
		t.Errorf("SourceName = %q, want %q", out[0].SourceName, "county")
	}
}

func TestDeduplicate_LowerPriorityDoesNotOverwrite(t *testing.T) {
	d := New(nil)

	events := []model.Event{
		{Title: "Harvest Festival", EventDate: testDate, SourceName: "knco", ContentHash: "h1", Description: "knco desc"},
		{Title: "Harvest Festivall", EventDate: testDate, SourceName: "county", ContentHash: "h2", Description: "county desc", Price: "$5"},
	}

	out := d.Deduplicate(events)

	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Description != "knco desc" {
		t.Errorf("Description = %q, want existing knco desc", out[0].Description)
	}
	// Price still filled from the lower-priority record.
	if out[0].Price != "$5" {
		t.Errorf("Price = %q, want %q", out[0].Price, "$5")
	}
}

func TestDeduplicate_DissimilarTitlesKept(t *testing.T) {
	d := New(nil)

	events := []model.Event{
		{Title: "Story Time at the Library", EventDate: testDate, SourceName: "knco", ContentHash: "h1"},
		{Title: "Pumpkin Carving Contest", EventDate: testDate, SourceName: "library", ContentHash: "h2"},
	}

	out := d.Deduplicate(events)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestDeduplicate_SameTitleDifferentDateKept(t *testing.T) {
	d := New(nil)

	events := []model.Event{
		{Title: "Story Time", EventDate: testDate, SourceName: "knco", ContentHash: "h1"},
		{Title: "Story Time", EventDate: testDate.AddDate(0, 0, 7), SourceName: "knco", ContentHash: "h2"},
	}

	out := d.Deduplicate(events)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestDeduplicate_MissingDateSkipsFuzzyButKept(t *testing.T) {
	d := New(nil)

	events := []model.Event{
		{Title: "Mystery Event", SourceName: "knco", ContentHash: "h1"},
		{Title: "Mystery Event", SourceName: "library", ContentHash: "h2"},
		{Title: "Mystery Event", SourceName: "county", ContentHash: "h1"}, // exact dup of first
	}

	out := d.Deduplicate(events)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 (no fuzzy tracking without a date)", len(out))
	}
}

func TestDeduplicate_PreservesInputOrder(t *testing.T) {
	d := New(nil)

	events := []model.Event{
		{Title: "Alpha", EventDate: testDate, SourceName: "knco", ContentHash: "h1"},
		{Title: "Beta", EventDate: testDate, SourceName: "knco", ContentHash: "h2"},
		{Title: "Alpha", EventDate: testDate, SourceName: "library", ContentHash: "h1"}, // exact dup
		{Title: "Gamma", EventDate: testDate, SourceName: "knco", ContentHash: "h3"},
	}

	out := d.Deduplicate(events)

	want := []string{"Alpha", "Beta", "Gamma"}
	if len(out) != len(want) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(want))
	}
	for i, title := range want {
		if out[i].Title != title {
			t.Errorf("out[%d].Title = %q, want %q", i, out[i].Title, title)
		}
	}
}

func TestDeduplicate_FirstAcceptedCandidateWins(t *testing.T) {
	d := New(nil)

	// Both accepted records are similar to the incoming one; the merge must
	// land on the first accepted match, in acceptance order.
	events := []model.Event{
		{Title: "Kids Craft Morning", EventDate: testDate, SourceName: "county", ContentHash: "h1"},
		{Title: "Kids Craft Mornings", EventDate: testDate, SourceName: "county", ContentHash: "h2", Venue: "Annex"},
		{Title: "Kids Craft Morning!", EventDate: testDate, SourceName: "library", ContentHash: "h3", Venue: "Main Hall"},
	}

	out := d.Deduplicate(events)

	// Second record is itself a fuzzy duplicate of the first, so only one
	// record survives and it got the first non-empty venue.
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Venue != "Annex" {
		t.Errorf("Venue = %q, want %q from first merge", out[0].Venue, "Annex")
	}
}

func TestDeduplicate_EmptyInput(t *testing.T) {
	d := New(nil)
	if out := d.Deduplicate(nil); len(out) != 0 {
		t.Errorf("len(out) = %d, want 0", len(out))
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"story time at the library", "story time at library", 0.85, 1.0},
		{"story time", "story time", 1.0, 1.0},
		{"", "", 1.0, 1.0},
		{"abc", "", 0.0, 0.0},
		{"story time", "pumpkin patch", 0.0, 0.5},
	}

	for _, tt := range tests {
		got := Ratio(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("Ratio(%q, %q) = %.3f, want in [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}
