package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "anonymous-chat",
	Short: "Ephemeral anonymous chat room server",
	Long: `anonymous-chat runs the room/presence coordinator for link-shared,
ephemeral chat rooms. All state is in-memory and lost on restart.

Available commands:
  serve    Start the HTTP/WebSocket server

Use "anonymous-chat [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
