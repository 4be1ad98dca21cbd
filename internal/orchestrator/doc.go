// Package orchestrator coordinates event retrieval across sources. Each
// requested source runs as an independent unit of work (cache lookup or
// direct fetch, normalization, persistence); units run concurrently by
// default, each with its own timeout, and one source failing or timing out
// never affects the others. The round's aggregate is reported as a Result.
package orchestrator
