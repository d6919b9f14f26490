package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/artwork"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/card"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/config"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/log"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/mediaserver/jellyfin"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/sensor"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/store"
)

// app holds the wired components shared by the commands
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *jellyfin.Client
	store    *store.SnapshotStore
	platform *sensor.Platform

	closers []io.Closer
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			printValidationErrors(verr)
			return nil, fmt.Errorf("configuration invalid")
		}
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// newApp wires the client, artwork resolver, formatter, snapshot store and
// platform from the configuration.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := log.SetupLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	a.client = jellyfin.NewClient(jellyfin.Options{
		Host:         cfg.Jellyfin.Host,
		Port:         cfg.Jellyfin.Port,
		SSL:          cfg.Jellyfin.SSL,
		APIKey:       cfg.Jellyfin.APIKey,
		UserID:       cfg.Jellyfin.UserID,
		MaxItems:     cfg.Sensor.Max,
		ShowEpisodes: cfg.Sensor.Episodes,
	}, jellyfin.WithLogger(logger))

	a.store, err = store.NewSnapshotStore(cfg.StateDBPath())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	a.closers = append(a.closers, a.store)

	resolver := artwork.NewResolver(cfg.Storage.ConfigDir, a.client, logger)
	formatter := card.NewFormatter(resolver, a.client, card.WithBackdrop(cfg.Sensor.UseBackdrop))

	a.platform = sensor.NewPlatform(a.client, formatter, a.store, sensor.Options{
		Include:        cfg.Sensor.Include,
		GroupLibraries: cfg.Sensor.GroupLibraries,
	}, logger)

	return a, nil
}

// Close releases the store and log file, newest first
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close: %v\n", err)
		}
	}
	a.closers = nil
}

func printValidationErrors(e *config.ValidationError) {
	if e.Path != "" {
		fmt.Fprintf(os.Stderr, "Config file: %s\n", e.Path)
	}
	fmt.Fprintln(os.Stderr, "Validation errors:")
	for _, p := range e.Problems {
		fmt.Fprintf(os.Stderr, "  - %s\n", p)
	}
	fmt.Fprintln(os.Stderr)
}
