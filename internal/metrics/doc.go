// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Normalization throughput and drop counts per source
//   - Cache hit/miss rates
//   - Per-source failures and timeouts
//   - Orchestration round durations
package metrics
