package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "jellyfin-upcoming",
	Short: "Latest Jellyfin media as upcoming-media-card sensors",
	Long: `jellyfin-upcoming - latest Jellyfin media for the upcoming-media card

Polls a Jellyfin server for recently added items per library, stores
artwork under <config_dir>/www/community/jellyfin_upcoming_media and
serves sensor state and card attributes over HTTP.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jellyfin-upcoming %s\n", version)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: config.yaml in the config dir or working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("jellyfin-upcoming {{.Version}}\n")

	rootCmd.AddCommand(versionCmd)
}
