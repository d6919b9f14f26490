package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/config"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/log"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/mediaserver/jellyfin"
)

var (
	initHost   string
	initPort   int
	initAPIKey string
	initUserID string
	initDir    string

	checkPing bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config file",
	RunE:  runConfigCheck,
}

func init() {
	configInitCmd.Flags().StringVar(&initHost, "host", "localhost", "Jellyfin host")
	configInitCmd.Flags().IntVar(&initPort, "port", 8096, "Jellyfin port")
	configInitCmd.Flags().StringVar(&initAPIKey, "api-key", "", "Jellyfin API key")
	configInitCmd.Flags().StringVar(&initUserID, "user-id", "", "Jellyfin user id")
	configInitCmd.Flags().StringVar(&initDir, "config-dir", ".", "Directory holding www/ and .storage/")

	configCheckCmd.Flags().BoolVar(&checkPing, "ping", false, "Also confirm the server answers as Jellyfin")

	configCmd.AddCommand(configInitCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(config.DefaultConfigDir(), "config.yaml")
	if len(args) > 0 {
		path = args[0]
	}

	cfg := config.DefaultConfig()
	cfg.Jellyfin.Host = initHost
	cfg.Jellyfin.Port = initPort
	cfg.Jellyfin.APIKey = initAPIKey
	cfg.Jellyfin.UserID = initUserID
	cfg.Storage.ConfigDir = initDir

	if err := config.Write(cfg, path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)

	if problems := cfg.Validate(); len(problems) > 0 {
		printValidationErrors(&config.ValidationError{Path: path, Problems: problems})
		fmt.Println("Edit the file before running 'serve'.")
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			printValidationErrors(verr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("Configuration Summary:")
	fmt.Printf("  Jellyfin:   %s:%d (ssl: %t, user: %s)\n", cfg.Jellyfin.Host, cfg.Jellyfin.Port, cfg.Jellyfin.SSL, cfg.Jellyfin.UserID)
	fmt.Printf("  Sensors:    max %d, episodes %t, grouped %t, backdrop %t\n",
		cfg.Sensor.Max, cfg.Sensor.Episodes, cfg.Sensor.GroupLibraries, cfg.Sensor.UseBackdrop)
	if len(cfg.Sensor.Include) > 0 {
		fmt.Printf("  Include:    %v\n", cfg.Sensor.Include)
	}
	fmt.Printf("  Artwork:    %s\n", cfg.ArtworkDir())
	fmt.Printf("  State DB:   %s\n", cfg.StateDBPath())
	fmt.Printf("  Schedule:   every %s\n", cfg.Schedule.Interval)
	fmt.Printf("  HTTP:       %s\n", cfg.HTTP.Listen)

	if checkPing {
		client := jellyfin.NewClient(jellyfin.Options{
			Host:   cfg.Jellyfin.Host,
			Port:   cfg.Jellyfin.Port,
			SSL:    cfg.Jellyfin.SSL,
			APIKey: cfg.Jellyfin.APIKey,
			UserID: cfg.Jellyfin.UserID,
		}, jellyfin.WithLogger(log.NullLogger()))

		info, err := client.SystemInfo(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", client.Host(), err)
		}
		fmt.Printf("  Server:     %s (%s %s)\n", info.ServerName, info.ProductName, info.Version)
	}

	fmt.Println("\nConfiguration valid!")
	return nil
}
