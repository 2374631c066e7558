package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	daemonAddr string
	plainOut   bool
)

var rootCmd = &cobra.Command{
	Use:   "zahlenpirat",
	Short: "Zahlenpirat - Rechentraining mit dem Piratenbot",
	Long: `Zahlenpirat is a German arithmetic practice chatbot for primary school children.

The CLI manages the zahlenpiratd daemon, chats with it, and inspects
standards and score history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "zahlenpirat %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&daemonAddr, "addr", "", "Daemon address (default: from config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&plainOut, "plain", false, "Strip emoji and umlauts from bot output")

	rootCmd.AddCommand(initCmd, configCmd)
	rootCmd.AddCommand(startCmd, stopCmd, statusCmd, logsCmd)
	rootCmd.AddCommand(chatCmd, settingsCmd, historyCmd, leaderboardCmd, tasksCmd)
	rootCmd.AddCommand(mcpCmd, eventsCmd, versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
