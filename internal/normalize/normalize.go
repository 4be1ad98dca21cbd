package normalize

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/endersclarity/nevada-county-kids-events/internal/metrics"
	"github.com/endersclarity/nevada-county-kids-events/internal/model"
)

// Maximum stored lengths for optional string fields (in runes).
// Titles are unbounded; everything else is truncated before storage.
const (
	MaxDescription   = 2000
	MaxVenue         = 200
	MaxCityArea      = 100
	MaxSourceURL     = 500
	MaxSourceEventID = 100
	MaxAgeRange      = 50
	MaxPrice         = 100

	// hashPrefixLen is how much of the description participates in the
	// content hash.
	hashPrefixLen = 200
)

// Quality tier boundaries (inclusive lower bounds).
const (
	highQualityScore   = 80
	mediumQualityScore = 50
)

var (
	errMissingTitle = errors.New("missing required field: title")
	errBadDate      = errors.New("missing or unparseable event_date")
)

// Stats summarizes one Normalize pass. It is observability output only and
// never affects the returned records.
type Stats struct {
	Normalized       int // records returned
	ValidationErrors int // dropped: missing title or unparseable date
	QualityFiltered  int // dropped: below the minimum quality score

	// Quality tier counts over the returned records.
	HighQuality   int // score >= 80
	MediumQuality int // 50 <= score < 80
	LowQuality    int // score < 50
	AvgScore      float64
}

// Normalizer converts raw records from one source into Events.
type Normalizer struct {
	source string
	logger *slog.Logger
}

// New creates a Normalizer for the named source.
func New(source string, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{source: source, logger: logger}
}

// Normalize validates and converts raw events. Records missing a title or a
// parseable date are dropped and counted; records scoring below minQuality
// are dropped and counted separately. Normalize never fails as a whole.
func (n *Normalizer) Normalize(raw []model.RawEvent, minQuality int) ([]model.Event, Stats) {
	events := make([]model.Event, 0, len(raw))
	var stats Stats

	for _, r := range raw {
		ev, err := n.normalizeOne(r)
		if err != nil {
			stats.ValidationErrors++
			n.logger.Warn("dropping invalid event",
				"source", n.source,
				"title", r.Title,
				"error", err,
			)
			continue
		}

		if minQuality > 0 && ev.QualityScore < minQuality {
			stats.QualityFiltered++
			n.logger.Debug("event filtered by quality",
				"source", n.source,
				"title", ev.Title,
				"score", ev.QualityScore,
			)
			continue
		}

		events = append(events, ev)
	}

	stats.Normalized = len(events)
	n.tallyQuality(events, &stats)

	metrics.EventsNormalized.WithLabelValues(n.source).Add(float64(stats.Normalized))
	metrics.ValidationErrors.WithLabelValues(n.source).Add(float64(stats.ValidationErrors))
	metrics.EventsQualityFiltered.WithLabelValues(n.source).Add(float64(stats.QualityFiltered))

	n.logger.Info("normalized events",
		"source", n.source,
		"normalized", stats.Normalized,
		"validation_errors", stats.ValidationErrors,
		"quality_filtered", stats.QualityFiltered,
	)

	return events, stats
}

// normalizeOne validates a single raw record.
func (n *Normalizer) normalizeOne(r model.RawEvent) (model.Event, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return model.Event{}, errMissingTitle
	}

	date, err := ParseDate(r.EventDate)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %q", errBadDate, r.EventDate)
	}

	description := truncate(r.Description, MaxDescription)

	ev := model.Event{
		Title:         title,
		EventDate:     date,
		SourceName:    n.source,
		Description:   description,
		Venue:         truncate(r.Venue, MaxVenue),
		CityArea:      truncate(r.CityArea, MaxCityArea),
		SourceURL:     truncate(r.SourceURL, MaxSourceURL),
		SourceEventID: truncate(r.SourceEventID, MaxSourceEventID),
		AgeRange:      truncate(r.AgeRange, MaxAgeRange),
		Price:         truncate(r.Price, MaxPrice),
		IsFree:        r.IsFree,
		TimeRange:     r.TimeRange,
		Categories:    r.Categories,
	}

	ev.ContentHash = ContentHash(title, date, description)
	ev.QualityScore = QualityScore(ev)

	return ev, nil
}

// tallyQuality fills the tier breakdown and logs it.
func (n *Normalizer) tallyQuality(events []model.Event, stats *Stats) {
	if len(events) == 0 {
		return
	}

	var sum int
	for _, ev := range events {
		sum += ev.QualityScore
		switch {
		case ev.QualityScore >= highQualityScore:
			stats.HighQuality++
		case ev.QualityScore >= mediumQualityScore:
			stats.MediumQuality++
		default:
			stats.LowQuality++
		}
	}
	stats.AvgScore = float64(sum) / float64(len(events))

	n.logger.Info("quality stats",
		"source", n.source,
		"avg", fmt.Sprintf("%.0f", stats.AvgScore),
		"high", stats.HighQuality,
		"medium", stats.MediumQuality,
		"low", stats.LowQuality,
	)
	if stats.LowQuality > 0 {
		n.logger.Warn("events below quality threshold",
			"source", n.source,
			"count", stats.LowQuality,
		)
	}
}

// ContentHash computes the exact-duplicate fingerprint: MD5 over the title,
// the event date, and the first 200 characters of the description. Stable
// across runs and processes.
func ContentHash(title string, date time.Time, description string) string {
	content := title + "|" + date.Format(time.RFC3339) + "|" + truncate(description, hashPrefixLen)
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// QualityScore computes the 0-100 completeness score from final field values.
//
// Scoring:
//   - title: 20, event date: 20 (always present on a valid Event)
//   - description: 20, plus 10 if longer than 50 characters
//   - venue, age range, price: 10 each
func QualityScore(ev model.Event) int {
	score := 0

	if ev.Title != "" {
		score += 20
	}
	if !ev.EventDate.IsZero() {
		score += 20
	}
	if ev.Description != "" {
		score += 20
		if len([]rune(ev.Description)) > 50 {
			score += 10
		}
	}
	if ev.Venue != "" {
		score += 10
	}
	if ev.AgeRange != "" {
		score += 10
	}
	if ev.Price != "" {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// truncate bounds s to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
