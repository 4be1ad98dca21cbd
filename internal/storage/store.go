package storage

import (
	"context"
	"time"

	"github.com/endersclarity/nevada-county-kids-events/internal/model"
)

// Store is the persistence contract the pipeline needs. Upserts are
// idempotent on (source_name, source_event_id): concurrent writes to the
// same key resolve to last-write-wins, writes to different keys never
// conflict.
type Store interface {
	// UpsertEvents writes a batch of normalized events, inserting new rows
	// and replacing existing rows matched by (source_name, source_event_id).
	// Each written row gets a fresh scraped_at. Returns the number of rows
	// written.
	UpsertEvents(ctx context.Context, events []model.Event) (int, error)

	// RecentEvents returns the source's records with scraped_at newer than
	// now minus ttl, ordered by event date ascending.
	RecentEvents(ctx context.Context, source string, ttl time.Duration) ([]model.Event, error)

	// DeleteSource removes all records for a source. Returns rows removed.
	DeleteSource(ctx context.Context, source string) (int64, error)
}
