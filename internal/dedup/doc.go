// Package dedup detects and merges duplicate events across sources.
//
// Strategies:
//  1. Exact match on content hash
//  2. Fuzzy match: 85%+ title similarity on the same date
//
// Merge priority: KNCO > Library > County.
package dedup
