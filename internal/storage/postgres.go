package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/endersclarity/nevada-county-kids-events/internal/model"
)

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres creates a Postgres store.
func NewPostgres(db *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{db: db, logger: logger}
}

const upsertEventSQL = `
	INSERT INTO events (
		title, description, event_date, venue, city_area,
		source_name, source_url, source_event_id, content_hash,
		age_range, price, is_free, quality_score, scraped_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
	ON CONFLICT (source_name, source_event_id)
	DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		event_date = EXCLUDED.event_date,
		venue = EXCLUDED.venue,
		city_area = EXCLUDED.city_area,
		source_url = EXCLUDED.source_url,
		content_hash = EXCLUDED.content_hash,
		age_range = EXCLUDED.age_range,
		price = EXCLUDED.price,
		is_free = EXCLUDED.is_free,
		quality_score = EXCLUDED.quality_score,
		scraped_at = NOW()`

// UpsertEvents writes events with pgx.Batch in a single round trip.
func (p *Postgres) UpsertEvents(ctx context.Context, events []model.Event) (int, error) {
	if len(events) == 0 {
		p.logger.Warn("no events to upsert")
		return 0, nil
	}

	start := time.Now()

	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(upsertEventSQL,
			ev.Title,
			nullable(ev.Description),
			ev.EventDate,
			nullable(ev.Venue),
			nullable(ev.CityArea),
			ev.SourceName,
			nullable(ev.SourceURL),
			nullable(ev.SourceEventID),
			ev.ContentHash,
			nullable(ev.AgeRange),
			nullable(ev.Price),
			ev.IsFree,
			ev.QualityScore,
		)
	}

	br := p.db.SendBatch(ctx, batch)
	defer br.Close()

	written := 0
	for range events {
		ct, err := br.Exec()
		if err != nil {
			return written, fmt.Errorf("upsert event: %w", err)
		}
		written += int(ct.RowsAffected())
	}

	p.logger.Info("upserted events",
		"count", written,
		"duration", time.Since(start),
	)
	return written, nil
}

const recentEventsSQL = `
	SELECT
		id, title, description, event_date, venue, city_area,
		source_name, source_url, source_event_id, content_hash,
		age_range, price, is_free, quality_score, scraped_at
	FROM events
	WHERE source_name = $1
	  AND scraped_at > $2
	ORDER BY event_date ASC`

// RecentEvents returns stored records within the freshness window.
func (p *Postgres) RecentEvents(ctx context.Context, source string, ttl time.Duration) ([]model.Event, error) {
	cutoff := time.Now().Add(-ttl)

	rows, err := p.db.Query(ctx, recentEventsSQL, source, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	p.logger.Debug("retrieved cached events", "source", source, "count", len(events))
	return events, nil
}

// DeleteSource removes every record for a source.
func (p *Postgres) DeleteSource(ctx context.Context, source string) (int64, error) {
	ct, err := p.db.Exec(ctx, `DELETE FROM events WHERE source_name = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("delete source events: %w", err)
	}

	p.logger.Info("deleted source events", "source", source, "count", ct.RowsAffected())
	return ct.RowsAffected(), nil
}

// scanEvent maps one result row onto a model.Event, folding NULLs back to
// empty strings.
func scanEvent(rows pgx.Rows) (model.Event, error) {
	var ev model.Event
	var description, venue, cityArea, sourceURL, sourceEventID *string
	var ageRange, price *string

	err := rows.Scan(
		&ev.ID,
		&ev.Title,
		&description,
		&ev.EventDate,
		&venue,
		&cityArea,
		&ev.SourceName,
		&sourceURL,
		&sourceEventID,
		&ev.ContentHash,
		&ageRange,
		&price,
		&ev.IsFree,
		&ev.QualityScore,
		&ev.ScrapedAt,
	)
	if err != nil {
		return model.Event{}, err
	}

	ev.Description = deref(description)
	ev.Venue = deref(venue)
	ev.CityArea = deref(cityArea)
	ev.SourceURL = deref(sourceURL)
	ev.SourceEventID = deref(sourceEventID)
	ev.AgeRange = deref(ageRange)
	ev.Price = deref(price)

	return ev, nil
}

// nullable maps empty strings to NULL so optional columns stay NULL-clean.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
