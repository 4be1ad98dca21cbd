package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Cache.TTLHours <= 0 {
		return errors.New("cache.ttl_hours must be positive")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return errors.New("fetch.timeout_seconds must be positive")
	}

	if c.Quality.MinScore < 0 || c.Quality.MinScore > 100 {
		return fmt.Errorf("quality.min_score must be between 0 and 100, got %d", c.Quality.MinScore)
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d].name is required", i)
		}
		if src.URL == "" {
			return fmt.Errorf("sources[%d].url is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name: %s", src.Name)
		}
		seen[src.Name] = true
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
