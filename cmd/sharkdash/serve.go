package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tidepool-arcade/sharkdash/internal/arena"
	"github.com/tidepool-arcade/sharkdash/internal/config"
	"github.com/tidepool-arcade/sharkdash/internal/server"
	"github.com/tidepool-arcade/sharkdash/internal/storage"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebSocket session server",
	Long: `Start the server that hosts game sessions over WebSockets.

Clients connect to /ws?room=<id>&player=<id> and exchange JSON frames:
commands in, state snapshots out. One game instance is live per room.

Scores and match results are stored in SQLite; if the database cannot be
opened the server still runs, without persistence.

Examples:
  sharkdash serve                    # Listen on :8080
  sharkdash serve --addr :9000       # Listen on port 9000
  sharkdash serve --db ./scores.db   # Use specific database`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "Server address (host:port)")
}

// matchSink adapts score storage to the host's match-history hook.
type matchSink struct {
	store *storage.Store
}

func (m matchSink) RecordMatch(rec arena.MatchRecord) error {
	return m.store.SaveMatchResult(storage.MatchResult{
		InstanceID: rec.InstanceID,
		RoomID:     rec.RoomID,
		Player1:    rec.Player1,
		Player2:    rec.Player2,
		Score1:     rec.Score1,
		Score2:     rec.Score2,
		Winner:     rec.Winner,
		EndReason:  rec.EndReason,
	})
}

func runServe(_ *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sharkdash",
	})

	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	hostCfg := arena.Config{
		CanvasHeight: cfg.Canvas.Height,
		Logger:       logger.WithPrefix("arena"),
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		// Continue without persistence
	} else {
		defer store.Close()
		hostCfg.Scores = store
		hostCfg.Matches = matchSink{store: store}
	}

	srv := server.New(server.Config{
		Address: flagAddr,
		Host:    arena.NewHost(hostCfg),
		Logger:  logger,
	})

	fmt.Printf("Starting sharkdash server on %s\n", flagAddr)
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
