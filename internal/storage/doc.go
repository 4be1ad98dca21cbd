// Package storage persists normalized events in Postgres.
//
// The events table is keyed by a unique (source_name, source_event_id)
// index; writes are batched upserts against that key and reads are
// freshness-window queries per source. The Store interface exists so the
// cache and orchestrator can be tested against in-memory fakes.
package storage
