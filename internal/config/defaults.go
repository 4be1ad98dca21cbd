package config

// Default values for optional configuration fields.
const (
	DefaultCacheTTLHours  = 6
	DefaultTimeoutSeconds = 30
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMaxConns       = 10
	DefaultMinConns       = 2
	DefaultMetricsPort    = 9090
	DefaultMetricsPath    = "/metrics"
)

func (c *Config) applyDefaults() {
	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Cache defaults
	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = DefaultCacheTTLHours
	}

	// Fetch defaults
	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = DefaultTimeoutSeconds
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
