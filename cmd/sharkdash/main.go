// sharkdash is the authoritative session server and local-simulation tooling
// for a two-player obstacle-dodging minigame.
//
// Usage:
//
//	sharkdash serve              - Start the WebSocket session server
//	sharkdash simulate           - Run a headless local simulation
//	sharkdash scores [player]    - Show the leaderboard or one player's best
//	sharkdash matches <room>     - Show recent match results for a room
//
// Global flags:
//
//	--config <path>  - Path to a YAML config file (embedded defaults otherwise)
//	--db <path>      - Set database path (default: ~/.sharkdash/scores.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sharkdash",
	Short: "Sharkdash - authoritative multiplayer minigame sessions",
	Long: `Sharkdash hosts two-player obstacle-dodging sessions over WebSockets.
The server owns all session state; clients simulate locally and report
positions, scores and losses.

Available commands:
  serve     - Start the WebSocket session server
  simulate  - Run a headless local simulation
  scores    - View the best-score leaderboard
  matches   - View recent match results for a room

Examples:
  sharkdash serve --addr :8080
  sharkdash simulate --seed 42
  sharkdash scores
  sharkdash matches reef`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (embedded defaults if empty)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.sharkdash/scores.db", "Path to scores database")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(matchesCmd)
}
