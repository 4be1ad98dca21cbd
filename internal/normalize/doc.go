// Package normalize converts raw source records into validated Events.
//
// Normalization is pure: no I/O beyond logging and metrics. A raw record
// survives only if it has a non-empty title and a parseable event date;
// everything else is optional and defensively truncated. Each surviving
// record gets a deterministic content hash (exact-duplicate fingerprint)
// and a 0-100 quality score (data completeness).
package normalize
