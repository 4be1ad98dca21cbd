package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/endersclarity/nevada-county-kids-events/internal/config"
	"github.com/endersclarity/nevada-county-kids-events/internal/database"
	"github.com/endersclarity/nevada-county-kids-events/internal/dedup"
	"github.com/endersclarity/nevada-county-kids-events/internal/metrics"
	"github.com/endersclarity/nevada-county-kids-events/internal/model"
	"github.com/endersclarity/nevada-county-kids-events/internal/orchestrator"
	"github.com/endersclarity/nevada-county-kids-events/internal/source"
	"github.com/endersclarity/nevada-county-kids-events/internal/storage"
	"github.com/endersclarity/nevada-county-kids-events/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/aggregator.local.yaml", "path to config file")
	sourcesFlag := flag.String("sources", "", "comma-separated source names (default: all configured)")
	noCache := flag.Bool("no-cache", false, "bypass the cache and fetch fresh")
	sequential := flag.Bool("sequential", false, "fetch sources one at a time")
	dedupe := flag.Bool("dedupe", false, "deduplicate events across sources")
	minQuality := flag.Int("min-quality", -1, "minimum quality score 0-100 (default: from config)")
	jsonOut := flag.Bool("json", false, "print events as JSON to stdout")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting aggregator",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"sources", len(cfg.Sources),
		"cache_ttl", cfg.Cache.TTL(),
		"timeout_per_source", cfg.Fetch.TimeoutPerSource(),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Run migrations, then connect
	if err := database.Migrate(cfg.Database, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Expose Prometheus metrics
	go func() {
		if err := metrics.Serve(ctx, cfg.Metrics.Port, cfg.Metrics.Path, logger); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Register a fetcher per configured source
	fetchers := make(map[string]orchestrator.Fetcher, len(cfg.Sources))
	for _, src := range cfg.Sources {
		fetchers[src.Name] = source.NewFeed(src.Name, src.URL,
			source.WithLogger(logger),
			source.WithTimeout(cfg.Fetch.TimeoutPerSource()),
		)
	}

	store := storage.NewPostgres(pool, logger)
	orch := orchestrator.New(orchestrator.Config{
		CacheTTL:         cfg.Cache.TTL(),
		TimeoutPerSource: cfg.Fetch.TimeoutPerSource(),
	}, store, fetchers, logger)

	opts := orchestrator.Options{
		Sources:    selectSources(*sourcesFlag, cfg.Sources),
		UseCache:   !*noCache,
		Sequential: *sequential,
		MinQuality: cfg.Quality.MinScore,
	}
	if *minQuality >= 0 {
		opts.MinQuality = *minQuality
	}

	res := orch.Run(ctx, opts)

	events := res.Events
	if *dedupe {
		before := len(events)
		events = dedup.New(logger).Deduplicate(events)
		logger.Info("deduplicated events",
			"before", before,
			"after", len(events),
		)
	}

	if *jsonOut {
		if err := writeJSON(os.Stdout, events); err != nil {
			logger.Error("failed to write events", "error", err)
			os.Exit(1)
		}
	} else {
		for _, ev := range events {
			logger.Info("event",
				"title", ev.Title,
				"date", ev.EventDate.Format("2006-01-02"),
				"source", ev.SourceName,
				"quality", ev.QualityScore,
			)
		}
	}

	logger.Info("aggregator finished",
		"run_id", res.RunID,
		"events", len(events),
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"timed_out", res.TimedOut,
		"duration", res.Duration,
	)

	if len(events) == 0 {
		os.Exit(1)
	}
}

// selectSources resolves the --sources flag against the configured set. An
// empty flag means every configured source.
func selectSources(flagValue string, configured []config.SourceConfig) []string {
	if flagValue == "" {
		names := make([]string, 0, len(configured))
		for _, src := range configured {
			names = append(names, src.Name)
		}
		return names
	}
	var names []string
	for _, name := range strings.Split(flagValue, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func writeJSON(w *os.File, events []model.Event) error {
	type eventOut struct {
		Title        string   `json:"title"`
		EventDate    string   `json:"event_date"`
		SourceName   string   `json:"source_name"`
		QualityScore int      `json:"quality_score"`
		Description  string   `json:"description,omitempty"`
		Venue        string   `json:"venue,omitempty"`
		CityArea     string   `json:"city_area,omitempty"`
		AgeRange     string   `json:"age_range,omitempty"`
		Price        string   `json:"price,omitempty"`
		IsFree       bool     `json:"is_free,omitempty"`
		SourceURL    string   `json:"source_url,omitempty"`
		TimeRange    string   `json:"time_range,omitempty"`
		Categories   []string `json:"categories,omitempty"`
	}

	out := make([]eventOut, 0, len(events))
	for _, ev := range events {
		out = append(out, eventOut{
			Title:        ev.Title,
			EventDate:    ev.EventDate.Format(time.RFC3339),
			SourceName:   ev.SourceName,
			QualityScore: ev.QualityScore,
			Description:  ev.Description,
			Venue:        ev.Venue,
			CityArea:     ev.CityArea,
			AgeRange:     ev.AgeRange,
			Price:        ev.Price,
			IsFree:       ev.IsFree,
			SourceURL:    ev.SourceURL,
			TimeRange:    ev.TimeRange,
			Categories:   ev.Categories,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
