// Package source adapts external event feeds to the pipeline's fetcher
// capability: produce a list of raw events given no arguments, fail or
// succeed as a whole.
package source
