// Package model defines shared data types used across the event aggregation
// pipeline.
//
// Conventions:
//   - Event mirrors the events table schema (see internal/database/migrations)
//   - Raw input stays stringly-typed; parsing/validation lives in normalize
//   - Timestamps: time.Time, stored as timestamptz
package model
