// Package main is the entry point for the study resource bot.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title Study Resource Bot API
// @version 1.0.0
// @description WhatsApp webhook and catalog search for study resources
// @BasePath /
// @schemes http

var rootCmd = &cobra.Command{
	Use:   "resource-bot",
	Short: "WhatsApp bot that finds study resources and answers questions about them",
	Long: `resource-bot serves a WhatsApp webhook that turns free-text requests into
catalog searches, then lets the user ask questions grounded in the notes it found.

Configuration comes from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
