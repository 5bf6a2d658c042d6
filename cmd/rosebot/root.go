package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rosebot",
	Short: "rosebot is a Telegram group admin and AI assistant bot",
	Long: `rosebot is a Telegram bot combining group moderation (mute, warn,
ban, kick, message deletion) with a private AI assistant for an
allow-list of users. It runs on long polling and ships a small web
service for hosting platform health probes.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}
