package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsNormalized counts records that survived normalization, by source.
	EventsNormalized = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "events",
		Name:      "normalized_total",
		Help:      "Raw records successfully normalized",
	}, []string{"source"})

	// ValidationErrors counts records dropped for missing title or bad date.
	ValidationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "events",
		Name:      "validation_errors_total",
		Help:      "Raw records dropped during normalization",
	}, []string{"source"})

	// EventsQualityFiltered counts valid records dropped below the quality threshold.
	EventsQualityFiltered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "events",
		Name:      "quality_filtered_total",
		Help:      "Valid records excluded by the minimum quality score",
	}, []string{"source"})

	// CacheHits counts cache reads satisfied from fresh stored records.
	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "events",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cache lookups answered from the store",
	}, []string{"source"})

	// CacheMisses counts cache reads that triggered a fetch.
	CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "events",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cache lookups that fell through to a fetch",
	}, []string{"source"})

	// SourceFailures counts per-source units that ended in an error.
	SourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "events",
		Subsystem: "orchestrator",
		Name:      "source_failures_total",
		Help:      "Source units that failed during an orchestration round",
	}, []string{"source"})

	// SourceTimeouts counts per-source units abandoned at their deadline.
	SourceTimeouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "events",
		Subsystem: "orchestrator",
		Name:      "source_timeouts_total",
		Help:      "Source units abandoned after exceeding their timeout",
	}, []string{"source"})

	// RunDuration observes wall-clock time of whole orchestration rounds.
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "events",
		Subsystem: "orchestrator",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of orchestration rounds",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(
		EventsNormalized,
		ValidationErrors,
		EventsQualityFiltered,
		CacheHits,
		CacheMisses,
		SourceFailures,
		SourceTimeouts,
		RunDuration,
	)
}

// Serve exposes the metrics endpoint until ctx is cancelled.
func Serve(ctx context.Context, port int, path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", "port", port, "path", path)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
