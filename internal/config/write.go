package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Write saves cfg as YAML to path, creating the parent directory.
// An existing file is never overwritten.
func Write(cfg *Config, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to keep snake_case key names
	v.Set("jellyfin.host", cfg.Jellyfin.Host)
	v.Set("jellyfin.port", cfg.Jellyfin.Port)
	v.Set("jellyfin.ssl", cfg.Jellyfin.SSL)
	v.Set("jellyfin.api_key", cfg.Jellyfin.APIKey)
	v.Set("jellyfin.user_id", cfg.Jellyfin.UserID)

	v.Set("sensor.max", cfg.Sensor.Max)
	v.Set("sensor.include", cfg.Sensor.Include)
	v.Set("sensor.use_backdrop", cfg.Sensor.UseBackdrop)
	v.Set("sensor.group_libraries", cfg.Sensor.GroupLibraries)
	v.Set("sensor.episodes", cfg.Sensor.Episodes)

	v.Set("storage.config_dir", cfg.Storage.ConfigDir)
	v.Set("storage.state_db", cfg.Storage.StateDB)

	v.Set("schedule.interval", cfg.Schedule.Interval.String())
	v.Set("http.listen", cfg.HTTP.Listen)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)

	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
