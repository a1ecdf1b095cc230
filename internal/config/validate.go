package config

import "fmt"

const maxInboxPageSize = 100

// Validate checks the loaded configuration. LoadConfig calls it.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0 (got %s)", c.Auth.TokenTTL)
	}

	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("database.driver must be postgres or memory (got %q)", c.Database.Driver)
	}

	if c.Activity.Interval <= 0 {
		return fmt.Errorf("activity.interval must be > 0 (got %s)", c.Activity.Interval)
	}

	if c.Inbox.PageSize < 1 || c.Inbox.PageSize > maxInboxPageSize {
		return fmt.Errorf("inbox.page_size must be between 1 and %d (got %d)", maxInboxPageSize, c.Inbox.PageSize)
	}

	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
