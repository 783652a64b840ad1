// Package storage provides SQLite-based persistence for best scores and
// finished-match results. Uses the pure-Go modernc.org/sqlite driver to
// avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// BestScore is a participant's personal record.
type BestScore struct {
	PlayerID  string
	Score     int
	UpdatedAt time.Time
}

// MatchResult records the outcome of one finished session.
type MatchResult struct {
	ID         int64
	InstanceID string
	RoomID     string
	Player1    string
	Player2    string
	Score1     int
	Score2     int
	Winner     string // Empty for undecided or tie
	EndReason  string // "reported", "forfeit"
	CreatedAt  time.Time
}

// Open creates or opens the database at the given path, creating parent
// directories and running migrations as needed.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS best_scores (
			player_id TEXT PRIMARY KEY,
			score INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS match_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			instance_id TEXT NOT NULL UNIQUE,
			room_id TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner TEXT,
			end_reason TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_match_results_room ON match_results(room_id);
		CREATE INDEX IF NOT EXISTS idx_match_results_player1 ON match_results(player1);
		CREATE INDEX IF NOT EXISTS idx_match_results_player2 ON match_results(player2);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ReportFinalScore keeps the participant's personal best: a lower or equal
// score leaves the stored record untouched. Implements the arena's score
// hook.
func (s *Store) ReportFinalScore(playerID string, score int) error {
	_, err := s.db.Exec(`
		INSERT INTO best_scores (player_id, score, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(player_id) DO UPDATE
		SET score = excluded.score, updated_at = CURRENT_TIMESTAMP
		WHERE excluded.score > best_scores.score`,
		playerID, score,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save score: %w", err)
	}
	return nil
}

// BestScoreFor returns the participant's personal best. The second result
// is false when no score was ever recorded.
func (s *Store) BestScoreFor(playerID string) (BestScore, bool, error) {
	var best BestScore
	err := s.db.QueryRow(
		"SELECT player_id, score, updated_at FROM best_scores WHERE player_id = ?",
		playerID,
	).Scan(&best.PlayerID, &best.Score, &best.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return BestScore{}, false, nil
	}
	if err != nil {
		return BestScore{}, false, fmt.Errorf("storage: cannot read score: %w", err)
	}
	return best, true, nil
}

// TopScores retrieves the highest personal bests, ordered descending.
func (s *Store) TopScores(limit int) ([]BestScore, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		"SELECT player_id, score, updated_at FROM best_scores ORDER BY score DESC, player_id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var scores []BestScore
	for rows.Next() {
		var best BestScore
		if err := rows.Scan(&best.PlayerID, &best.Score, &best.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan score: %w", err)
		}
		scores = append(scores, best)
	}
	return scores, rows.Err()
}

// SaveMatchResult records one finished session. Saving the same instance
// twice is an error by the UNIQUE constraint; the host reports each
// outcome once.
func (s *Store) SaveMatchResult(result MatchResult) error {
	_, err := s.db.Exec(`
		INSERT INTO match_results (instance_id, room_id, player1, player2, score1, score2, winner, end_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.InstanceID, result.RoomID, result.Player1, result.Player2,
		result.Score1, result.Score2, result.Winner, result.EndReason,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save match result: %w", err)
	}
	return nil
}

// RecentMatches returns the latest finished sessions for a room, newest
// first.
func (s *Store) RecentMatches(roomID string, limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, instance_id, room_id, player1, player2, score1, score2, winner, end_reason, created_at
		FROM match_results WHERE room_id = ? ORDER BY id DESC LIMIT ?`,
		roomID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match results: %w", err)
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		var r MatchResult
		if err := rows.Scan(&r.ID, &r.InstanceID, &r.RoomID, &r.Player1, &r.Player2,
			&r.Score1, &r.Score2, &r.Winner, &r.EndReason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan match result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
