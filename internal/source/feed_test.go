package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFeedFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q, want application/json", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"title": "Story Time", "event_date": "2025-10-15", "venue": "Main Library"},
			{"title": "Craft Fair", "event_date": "2025-10-16", "is_free": true}
		]`))
	}))
	defer server.Close()

	f := NewFeed("knco", server.URL)
	events, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Title != "Story Time" {
		t.Errorf("Title = %q, want %q", events[0].Title, "Story Time")
	}
	if events[0].Venue != "Main Library" {
		t.Errorf("Venue = %q, want %q", events[0].Venue, "Main Library")
	}
	if !events[1].IsFree {
		t.Error("IsFree = false, want true")
	}
}

func TestFeedFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewFeed("knco", server.URL)
	_, err := f.Fetch(context.Background())

	var feedErr *FeedError
	if !errors.As(err, &feedErr) {
		t.Fatalf("err = %v, want *FeedError", err)
	}
	if feedErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want %d", feedErr.StatusCode, http.StatusBadGateway)
	}
}

func TestFeedFetch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer server.Close()

	f := NewFeed("knco", server.URL)
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Error("Fetch returned nil error for malformed body")
	}
}

func TestFeedFetch_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	f := NewFeed("knco", server.URL)
	if _, err := f.Fetch(ctx); err == nil {
		t.Error("Fetch returned nil error for cancelled context")
	}
}

func TestFeedName(t *testing.T) {
	f := NewFeed("library", "https://feeds.example.com/library")
	if f.Name() != "library" {
		t.Errorf("Name() = %q, want %q", f.Name(), "library")
	}
}
