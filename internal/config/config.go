package config

import "time"

// Config is the root configuration for the aggregator.
type Config struct {
	Database DBConfig       `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Quality  QualityConfig  `yaml:"quality"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Sources  []SourceConfig `yaml:"sources"`
}

// DBConfig holds the Postgres connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CacheConfig holds freshness settings for stored events.
type CacheConfig struct {
	TTLHours int `yaml:"ttl_hours"` // how long a scrape stays fresh
}

// TTL returns the cache freshness window as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// FetchConfig holds per-source fetch settings.
type FetchConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"` // budget for one source's unit of work
}

// TimeoutPerSource returns the per-source budget as a duration.
func (f FetchConfig) TimeoutPerSource() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// QualityConfig holds the completeness threshold for returned events.
type QualityConfig struct {
	MinScore int `yaml:"min_score"` // 0-100; 0 disables filtering
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// SourceConfig declares one external event feed. The URL must serve a JSON
// array of raw event records.
type SourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}
