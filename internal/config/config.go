package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName = "jellyfin-upcoming-media"

	// EnvPrefix prefixes every environment override (JUM_JELLYFIN_API_KEY, ...)
	EnvPrefix = "JUM"

	domainName = "jellyfin_upcoming_media"
)

// Config holds all application configuration
type Config struct {
	Jellyfin JellyfinConfig `mapstructure:"jellyfin"`
	Sensor   SensorConfig   `mapstructure:"sensor"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// JellyfinConfig holds media server connection settings
type JellyfinConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	SSL    bool   `mapstructure:"ssl"`
	APIKey string `mapstructure:"api_key"`
	UserID string `mapstructure:"user_id"`
}

// SensorConfig controls which sensors are built and what they show
type SensorConfig struct {
	Max            int      `mapstructure:"max"`             // items per library
	Include        []string `mapstructure:"include"`         // library names; empty means all
	UseBackdrop    bool     `mapstructure:"use_backdrop"`    // show fanart in the poster slot
	GroupLibraries bool     `mapstructure:"group_libraries"` // one sensor per collection type
	Episodes       bool     `mapstructure:"episodes"`        // list episodes instead of grouped series
}

// StorageConfig holds on-disk locations
type StorageConfig struct {
	ConfigDir string `mapstructure:"config_dir"` // artwork lives under <config_dir>/www
	StateDB   string `mapstructure:"state_db"`   // defaults to <config_dir>/.storage/jellyfin_upcoming_media.db
}

// ScheduleConfig controls the refresh cadence
type ScheduleConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// HTTPConfig holds the state API listener
type HTTPConfig struct {
	Listen string `mapstructure:"listen"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File   string `mapstructure:"file"`   // empty logs to stderr
	Level  string `mapstructure:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `mapstructure:"format"` // "json", "text" or "" (auto)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Jellyfin: JellyfinConfig{
			Host: "localhost",
			Port: 8096,
		},
		Sensor: SensorConfig{
			Max:      5,
			Include:  []string{},
			Episodes: true,
		},
		Storage: StorageConfig{
			ConfigDir: ".",
		},
		Schedule: ScheduleConfig{
			Interval: time.Hour,
		},
		HTTP: HTTPConfig{
			Listen: ":8123",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// newViper returns a viper instance seeded with every default so that
// environment overrides apply to keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("jellyfin.host", d.Jellyfin.Host)
	v.SetDefault("jellyfin.port", d.Jellyfin.Port)
	v.SetDefault("jellyfin.ssl", d.Jellyfin.SSL)
	v.SetDefault("jellyfin.api_key", d.Jellyfin.APIKey)
	v.SetDefault("jellyfin.user_id", d.Jellyfin.UserID)

	v.SetDefault("sensor.max", d.Sensor.Max)
	v.SetDefault("sensor.include", d.Sensor.Include)
	v.SetDefault("sensor.use_backdrop", d.Sensor.UseBackdrop)
	v.SetDefault("sensor.group_libraries", d.Sensor.GroupLibraries)
	v.SetDefault("sensor.episodes", d.Sensor.Episodes)

	v.SetDefault("storage.config_dir", d.Storage.ConfigDir)
	v.SetDefault("storage.state_db", d.Storage.StateDB)

	v.SetDefault("schedule.interval", d.Schedule.Interval)
	v.SetDefault("http.listen", d.HTTP.Listen)

	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path (or config.yaml in the default
// locations when path is empty), applies environment overrides and validates
// the result. Validation problems are returned as a *ValidationError.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults and environment
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Storage.ConfigDir = expandHome(cfg.Storage.ConfigDir)
	cfg.Storage.StateDB = expandHome(cfg.Storage.StateDB)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if problems := cfg.Validate(); len(problems) > 0 {
		return cfg, &ValidationError{Path: v.ConfigFileUsed(), Problems: problems}
	}
	return cfg, nil
}

// WWWDir returns the directory served under /local/
func (c *Config) WWWDir() string {
	return filepath.Join(c.Storage.ConfigDir, "www")
}

// ArtworkDir returns the directory persisted artwork is written to
func (c *Config) ArtworkDir() string {
	return filepath.Join(c.WWWDir(), "community", domainName)
}

// StateDBPath returns the snapshot database path
func (c *Config) StateDBPath() string {
	if c.Storage.StateDB != "" {
		return c.Storage.StateDB
	}
	return filepath.Join(c.Storage.ConfigDir, ".storage", domainName+".db")
}

// LockPath returns the lock file guarding the config directory
func (c *Config) LockPath() string {
	return filepath.Join(c.Storage.ConfigDir, ".storage", domainName+".lock")
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
