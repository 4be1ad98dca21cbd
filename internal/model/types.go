package model

import "time"

// -----------------------------------------------------------------------------
// Raw Input
// -----------------------------------------------------------------------------

// RawEvent is the loosely-typed record a source fetcher produces. Fields are
// whatever the source could extract; any of them may be empty or malformed.
// Validation happens in the normalizer, not here.
type RawEvent struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EventDate     string   `json:"event_date"` // format varies by source
	Venue         string   `json:"venue"`
	CityArea      string   `json:"city_area"`
	AgeRange      string   `json:"age_range"`
	Price         string   `json:"price"`
	IsFree        bool     `json:"is_free"`
	SourceURL     string   `json:"source_url"`
	SourceEventID string   `json:"source_event_id"`
	TimeRange     string   `json:"time_range"`
	Categories    []string `json:"categories"`
}

// -----------------------------------------------------------------------------
// Normalized Record
// -----------------------------------------------------------------------------

// Event is the canonical unit of the pipeline: a validated, typed event record.
//
// Invariant: Title is non-empty and EventDate is a successfully parsed
// timestamp. Records that cannot satisfy both never become Events.
//
// ID and ScrapedAt are storage-assigned; they are zero on records that have
// not been through the store yet.
type Event struct {
	// Required fields
	Title      string    // Event title
	EventDate  time.Time // Parsed event date
	SourceName string    // Producing source (e.g., "knco")

	// Generated fields
	ContentHash  string // MD5 of title + date + description prefix
	QualityScore int    // Data completeness, 0-100

	// Optional fields (defensively truncated, see normalize package)
	Description   string
	Venue         string
	CityArea      string
	SourceURL     string
	SourceEventID string
	AgeRange      string
	Price         string
	IsFree        bool

	// Carried through for cross-source merging; not stored columns.
	TimeRange  string
	Categories []string

	// Storage identity
	ID        int64     // Database row id (0 until stored)
	ScrapedAt time.Time // Set by the store on upsert (zero until stored)
}

// -----------------------------------------------------------------------------
// Orchestration Results
// -----------------------------------------------------------------------------

// FetchStatus is the terminal state of one source's unit of work.
type FetchStatus string

const (
	FetchSuccess  FetchStatus = "success"
	FetchFailed   FetchStatus = "failed"
	FetchTimedOut FetchStatus = "timed_out"
)

// FetchOutcome is the per-source result of one orchestration round.
// It exists only for the duration of that round.
type FetchOutcome struct {
	Source   string        // Source name
	Events   []Event       // Events contributed (nil on failure/timeout)
	CacheHit bool          // Whether the cache satisfied the request
	Elapsed  time.Duration // Wall-clock time for this source's unit
	Status   FetchStatus   // Terminal status
	Err      error         // Cause when Status == FetchFailed
}

// -----------------------------------------------------------------------------
// Source Priority
// -----------------------------------------------------------------------------

// UnknownPriority ranks sources absent from SourcePriority last.
const UnknownPriority = 999

// SourcePriority ranks sources for duplicate merging. Lower is better:
// when two records describe the same event, the higher-priority source's
// core fields (title, description, source_url) win.
var SourcePriority = map[string]int{
	"knco":    1,
	"library": 2,
	"county":  3,
}

// PriorityOf returns the merge rank for a source name.
func PriorityOf(source string) int {
	if p, ok := SourcePriority[source]; ok {
		return p
	}
	return UnknownPriority
}
