package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidepool-arcade/sharkdash/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [player]",
	Short: "Show the best-score leaderboard",
	Long: `Display the top 10 personal bests, or one player's record.

Examples:
  sharkdash scores
  sharkdash scores alice`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func runScores(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if len(args) == 1 {
		best, ok, err := store.BestScoreFor(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving score: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Printf("No score recorded for %s yet.\n", args[0])
			return
		}
		fmt.Printf("%s: %d (set %s)\n", best.PlayerID, best.Score, best.UpdatedAt.Format("2006-01-02 15:04"))
		return
	}

	scores, err := store.TopScores(10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("High Scores")
	fmt.Println()
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		return
	}

	fmt.Printf("  %-4s  %-20s  %-10s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-20s  %-10s  %s\n", "----", "------", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-20s  %-10d  %s\n", i+1, entry.PlayerID, entry.Score, entry.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

var matchesCmd = &cobra.Command{
	Use:   "matches <room>",
	Short: "Show recent match results for a room",
	Long: `Display the 10 most recent finished matches in the given room.

Examples:
  sharkdash matches reef`,
	Args: cobra.ExactArgs(1),
	Run:  runMatches,
}

func runMatches(_ *cobra.Command, args []string) {
	roomID := args[0]

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	matches, err := store.RecentMatches(roomID, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving matches: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Recent Matches - %s\n", roomID)
	fmt.Println()
	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		return
	}

	for _, m := range matches {
		winner := m.Winner
		if winner == "" {
			winner = "(undecided)"
		}
		fmt.Printf("  %s  %s (%d) vs %s (%d)  winner: %s  [%s]\n",
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.Player1, m.Score1, m.Player2, m.Score2, winner, m.EndReason)
	}
}
