package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/endersclarity/nevada-county-kids-events/internal/cache"
	"github.com/endersclarity/nevada-county-kids-events/internal/metrics"
	"github.com/endersclarity/nevada-county-kids-events/internal/model"
	"github.com/endersclarity/nevada-county-kids-events/internal/normalize"
	"github.com/endersclarity/nevada-county-kids-events/internal/storage"
)

// Fetcher is the capability a registered source provides: produce raw
// events given no input, fail or succeed as a whole. Implementations should
// honor ctx cancellation where their transport allows it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.RawEvent, error)
}

// FetcherFunc is a function adapter for Fetcher.
type FetcherFunc func(ctx context.Context) ([]model.RawEvent, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]model.RawEvent, error) {
	return f(ctx)
}

// ErrUnknownSource marks a requested source with no registered fetcher.
var ErrUnknownSource = errors.New("unknown source")

// CollectGrace bounds the collection phase beyond the per-source timeout so
// a misbehaving wait can never block a round indefinitely.
const CollectGrace = 5 * time.Second

// Config holds orchestration settings.
type Config struct {
	CacheTTL         time.Duration // freshness window for stored events
	TimeoutPerSource time.Duration // per-source budget in parallel mode
}

// Options selects behavior for one orchestration round.
type Options struct {
	Sources    []string // source names to fetch
	UseCache   bool     // read through the cache instead of fetching directly
	Sequential bool     // force one-at-a-time execution
	MinQuality int      // drop events scoring below this (0 disables)
}

// Result is the aggregate of one orchestration round.
type Result struct {
	RunID    uuid.UUID             // correlates logs for this round
	Events   []model.Event         // union of successful sources' events
	Outcomes []model.FetchOutcome  // per-source detail, in completion order
	Duration time.Duration         // total wall-clock time

	Attempted int      // sources requested
	Succeeded int      // sources that contributed a result
	CacheHits int      // sources answered from cache
	Failed    []string // sources whose unit errored
	TimedOut  []string // sources abandoned at a deadline
}

// Orchestrator drives per-source fetch units and aggregates their results.
// Deduplication across sources is deliberately not applied here; callers
// wanting a merged view run the deduplicator on Result.Events.
type Orchestrator struct {
	cfg      Config
	cache    *cache.Cache
	store    storage.Store
	fetchers map[string]Fetcher
	logger   *slog.Logger
}

// New creates an Orchestrator with an explicit fetcher registry.
func New(cfg Config, store storage.Store, fetchers map[string]Fetcher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		cache:    cache.New(store, logger),
		store:    store,
		fetchers: fetchers,
		logger:   logger,
	}
}

// Run executes one orchestration round. Per-source failures and timeouts
// are contained and reported in the Result; Run itself never fails. An
// empty Result.Events is a valid outcome when every source failed.
func (o *Orchestrator) Run(ctx context.Context, opts Options) *Result {
	start := time.Now()
	res := &Result{
		RunID:     uuid.New(),
		Attempted: len(opts.Sources),
	}

	o.logger.Info("fetching events",
		"run_id", res.RunID,
		"sources", opts.Sources,
		"use_cache", opts.UseCache,
	)

	var outcomes []model.FetchOutcome
	if opts.Sequential || len(opts.Sources) < 2 {
		outcomes = o.runSequential(ctx, opts)
	} else {
		outcomes = o.runParallel(ctx, opts)
	}

	for _, out := range outcomes {
		res.Outcomes = append(res.Outcomes, out)
		switch out.Status {
		case model.FetchSuccess:
			res.Succeeded++
			res.Events = append(res.Events, out.Events...)
			if out.CacheHit {
				res.CacheHits++
			}
		case model.FetchFailed:
			res.Failed = append(res.Failed, out.Source)
			metrics.SourceFailures.WithLabelValues(out.Source).Inc()
			o.logger.Error("source failed",
				"run_id", res.RunID,
				"source", out.Source,
				"error", out.Err,
			)
		case model.FetchTimedOut:
			res.TimedOut = append(res.TimedOut, out.Source)
			metrics.SourceTimeouts.WithLabelValues(out.Source).Inc()
			o.logger.Warn("source timed out",
				"run_id", res.RunID,
				"source", out.Source,
				"elapsed", out.Elapsed,
			)
		}
	}

	res.Duration = time.Since(start)
	metrics.RunDuration.Observe(res.Duration.Seconds())

	o.logger.Info("fetch round complete",
		"run_id", res.RunID,
		"events", len(res.Events),
		"attempted", res.Attempted,
		"succeeded", res.Succeeded,
		"cache_hits", res.CacheHits,
		"failed", res.Failed,
		"timed_out", res.TimedOut,
		"duration", res.Duration,
	)

	return res
}

// runSequential executes units one after another. No per-source deadline is
// enforced beyond what the fetch itself respects.
func (o *Orchestrator) runSequential(ctx context.Context, opts Options) []model.FetchOutcome {
	outcomes := make([]model.FetchOutcome, 0, len(opts.Sources))
	for _, name := range opts.Sources {
		outcomes = append(outcomes, o.runSource(ctx, name, opts))
	}
	return outcomes
}

// runParallel starts every unit at once, each bounded by the per-source
// timeout, and collects results until done or the outer deadline
// (timeout + grace). Any result arriving before the outer deadline is
// accepted, even if its unit overran the inner timeout; units still pending
// at the outer deadline are reported timed out and their late results are
// discarded.
func (o *Orchestrator) runParallel(ctx context.Context, opts Options) []model.FetchOutcome {
	// Buffered so abandoned workers never block on send.
	results := make(chan model.FetchOutcome, len(opts.Sources))

	var g errgroup.Group
	for _, name := range opts.Sources {
		name := name
		g.Go(func() error {
			unitCtx, cancel := context.WithTimeout(ctx, o.cfg.TimeoutPerSource)
			defer cancel()
			results <- o.runSource(unitCtx, name, opts)
			return nil
		})
	}
	go func() {
		g.Wait()
		close(results)
	}()

	deadline := time.NewTimer(o.cfg.TimeoutPerSource + CollectGrace)
	defer deadline.Stop()

	outcomes := make([]model.FetchOutcome, 0, len(opts.Sources))
	reported := make(map[string]bool, len(opts.Sources))

collect:
	for len(outcomes) < len(opts.Sources) {
		select {
		case out := <-results:
			outcomes = append(outcomes, out)
			reported[out.Source] = true
		case <-deadline.C:
			break collect
		}
	}

	// Whatever never reported is abandoned as timed out.
	for _, name := range opts.Sources {
		if !reported[name] {
			outcomes = append(outcomes, model.FetchOutcome{
				Source:  name,
				Status:  model.FetchTimedOut,
				Elapsed: o.cfg.TimeoutPerSource + CollectGrace,
			})
		}
	}

	return outcomes
}

// runSource executes one source's unit of work: cache-or-fetch (or direct
// fetch-normalize-persist), then quality filtering.
func (o *Orchestrator) runSource(ctx context.Context, name string, opts Options) model.FetchOutcome {
	start := time.Now()
	out := model.FetchOutcome{Source: name}

	fetcher, ok := o.fetchers[name]
	if !ok {
		out.Status = model.FetchFailed
		out.Err = fmt.Errorf("%w: %s", ErrUnknownSource, name)
		out.Elapsed = time.Since(start)
		return out
	}

	var events []model.Event
	var err error

	if opts.UseCache {
		var hit bool
		events, hit, err = o.cache.GetOrFetch(ctx, name, fetcher.Fetch, o.cfg.CacheTTL)
		out.CacheHit = hit
		if err == nil {
			events = filterQuality(events, opts.MinQuality)
		}
	} else {
		events, err = o.fetchDirect(ctx, name, fetcher, opts.MinQuality)
	}

	out.Elapsed = time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			out.Status = model.FetchTimedOut
		} else {
			out.Status = model.FetchFailed
			out.Err = err
		}
		return out
	}

	out.Status = model.FetchSuccess
	out.Events = events
	o.logger.Info("retrieved events",
		"source", name,
		"events", len(events),
		"cache_hit", out.CacheHit,
	)
	return out
}

// fetchDirect bypasses the cache: fetch, normalize with quality filtering,
// persist, and return the normalized records.
func (o *Orchestrator) fetchDirect(ctx context.Context, name string, fetcher Fetcher, minQuality int) ([]model.Event, error) {
	o.logger.Info("bypassing cache", "source", name)

	raw, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}

	normalizer := normalize.New(name, o.logger)
	events, _ := normalizer.Normalize(raw, minQuality)
	if len(events) == 0 {
		return nil, nil
	}

	if _, err := o.store.UpsertEvents(ctx, events); err != nil {
		return nil, fmt.Errorf("store %s events: %w", name, err)
	}

	return events, nil
}

// filterQuality drops events scoring below min. Cached records were stored
// before any threshold was known, so the filter re-applies on the way out.
func filterQuality(events []model.Event, min int) []model.Event {
	if min <= 0 {
		return events
	}
	kept := events[:0:0]
	for _, ev := range events {
		if ev.QualityScore >= min {
			kept = append(kept, ev)
		}
	}
	return kept
}
