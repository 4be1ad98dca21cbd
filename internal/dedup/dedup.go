package dedup

import (
	"log/slog"
	"strings"
	"time"

	"github.com/endersclarity/nevada-county-kids-events/internal/model"
)

// SimilarityThreshold is the minimum title similarity for a same-date pair
// to count as a fuzzy duplicate.
const SimilarityThreshold = 0.85

// Deduplicator removes exact and fuzzy duplicates from a normalized event
// list, merging metadata by source priority. Pure, no I/O; each call is
// independent.
type Deduplicator struct {
	logger    *slog.Logger
	threshold float64
}

// New creates a Deduplicator with the default similarity threshold.
func New(logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{logger: logger, threshold: SimilarityThreshold}
}

// Deduplicate returns the accepted events in input order.
//
// Two strategies run in a single pass:
//  1. Exact: a content hash already accepted drops the record outright.
//  2. Fuzzy: a title ≥ 85% similar to an already-accepted title on the same
//     date merges into that first matching record instead of being added.
//
// Records without a usable date or title skip fuzzy tracking but still go
// through the exact-hash check.
func (d *Deduplicator) Deduplicate(events []model.Event) []model.Event {
	if len(events) == 0 {
		return nil
	}

	seenHashes := make(map[string]struct{}, len(events))
	seenByDate := make(map[string][]*model.Event)
	duplicates := 0

	// Accepted count never exceeds len(events), so out never reallocates
	// and pointers into it stay valid for in-place merging.
	out := make([]model.Event, 0, len(events))

	for _, ev := range events {
		if ev.ContentHash != "" {
			if _, dup := seenHashes[ev.ContentHash]; dup {
				d.logger.Debug("exact duplicate dropped", "title", ev.Title)
				duplicates++
				continue
			}
		}

		dateKey := fuzzyDateKey(ev.EventDate)
		trackFuzzy := dateKey != "" && ev.Title != ""

		if trackFuzzy {
			if match := d.findFuzzyDuplicate(ev, seenByDate[dateKey]); match != nil {
				merge(match, ev)
				d.logger.Debug("fuzzy duplicate merged",
					"title", ev.Title,
					"into", match.Title,
				)
				duplicates++
				continue
			}
		}

		out = append(out, ev)
		accepted := &out[len(out)-1]

		if trackFuzzy {
			seenByDate[dateKey] = append(seenByDate[dateKey], accepted)
		}
		if ev.ContentHash != "" {
			seenHashes[ev.ContentHash] = struct{}{}
		}
	}

	d.logger.Info("deduplication complete",
		"input", len(events),
		"output", len(out),
		"duplicates", duplicates,
	)

	return out
}

// findFuzzyDuplicate scans candidates in acceptance order and returns the
// first whose lowercased title is similar enough, or nil.
func (d *Deduplicator) findFuzzyDuplicate(ev model.Event, candidates []*model.Event) *model.Event {
	title := strings.ToLower(ev.Title)
	for _, cand := range candidates {
		if Ratio(title, strings.ToLower(cand.Title)) >= d.threshold {
			return cand
		}
	}
	return nil
}

// merge folds src into the already-accepted target.
//
// Core fields (title, description, source URL) are overwritten only when the
// incoming source outranks the target's source. Optional fields are filled
// first-non-empty-wins regardless of rank. The asymmetry is intentional:
// positional precedence decides which record survives, priority decides only
// the identity fields.
func merge(target *model.Event, src model.Event) {
	if model.PriorityOf(src.SourceName) < model.PriorityOf(target.SourceName) {
		if src.Title != "" {
			target.Title = src.Title
		}
		if src.Description != "" {
			target.Description = src.Description
		}
		if src.SourceURL != "" {
			target.SourceURL = src.SourceURL
		}
	}

	if target.Venue == "" && src.Venue != "" {
		target.Venue = src.Venue
	}
	if target.AgeRange == "" && src.AgeRange != "" {
		target.AgeRange = src.AgeRange
	}
	if target.Price == "" && src.Price != "" {
		target.Price = src.Price
	}
	if target.TimeRange == "" && src.TimeRange != "" {
		target.TimeRange = src.TimeRange
	}
	if len(target.Categories) == 0 && len(src.Categories) > 0 {
		target.Categories = src.Categories
	}
}

// fuzzyDateKey reduces an event date to the literal value fuzzy matching
// groups on. A zero date yields "" and is excluded from fuzzy tracking.
func fuzzyDateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
