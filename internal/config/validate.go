package config

import (
	"fmt"
	"strings"
	"time"
)

// minInterval keeps the refresh from hammering the server
const minInterval = time.Minute

var validLogLevels = map[string]bool{
	"DEBUG":   true,
	"INFO":    true,
	"WARN":    true,
	"WARNING": true,
	"ERROR":   true,
}

var validLogFormats = map[string]bool{
	"":     true,
	"json": true,
	"text": true,
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() []string {
	var errs []string

	// Jellyfin
	if c.Jellyfin.Host == "" {
		errs = append(errs, "jellyfin.host: required")
	}
	if c.Jellyfin.Port < 1 || c.Jellyfin.Port > 65535 {
		errs = append(errs, fmt.Sprintf("jellyfin.port: must be between 1 and 65535, got %d", c.Jellyfin.Port))
	}
	if c.Jellyfin.APIKey == "" {
		errs = append(errs, "jellyfin.api_key: required")
	}
	if c.Jellyfin.UserID == "" {
		errs = append(errs, "jellyfin.user_id: required")
	}

	// Sensor
	if c.Sensor.Max < 1 {
		errs = append(errs, fmt.Sprintf("sensor.max: must be at least 1, got %d", c.Sensor.Max))
	}

	// Storage
	if c.Storage.ConfigDir == "" {
		errs = append(errs, "storage.config_dir: required")
	}

	// Schedule
	if c.Schedule.Interval < minInterval {
		errs = append(errs, fmt.Sprintf("schedule.interval: must be at least %s, got %s", minInterval, c.Schedule.Interval))
	}

	// HTTP
	if c.HTTP.Listen == "" {
		errs = append(errs, "http.listen: required")
	}

	// Logging
	if !validLogLevels[strings.ToUpper(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level: must be one of DEBUG, INFO, WARN, ERROR; got %q", c.Logging.Level))
	}
	if !validLogFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format: must be json or text; got %q", c.Logging.Format))
	}

	return errs
}
