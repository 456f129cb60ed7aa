package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/wordle/apps/arena-server/internal/game"
	"github.com/robalobadob/wordle/apps/arena-server/internal/room"
)

// Store records finished games and room rounds.
type Store struct{ db *sql.DB }

// Open connects to dsn and applies migrations.
func Open(dsn string) (*Store, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// RecordGame stores a terminal session. Recording the same game twice is ignored.
func (s *Store) RecordGame(ctx context.Context, g game.SessionSnapshot, at time.Time) error {
	if !g.GameOver {
		return fmt.Errorf("record game %s: still active", g.ID)
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO game_results
            (game_id, won, rounds_used, max_rounds, target, finished_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Won, g.RoundsUsed, g.MaxRounds, g.Target, at.UTC().Format(time.RFC3339),
	)
	return err
}

// RecordRound stores a finished room round and every player's placement.
func (s *Store) RecordRound(ctx context.Context, r room.Snapshot, at time.Time) error {
	if r.Status != room.StatusFinished {
		return fmt.Errorf("record room %s: status %s", r.ID, r.Status)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var winner any
	if r.FirstWinnerID != "" {
		winner = r.FirstWinnerID
	}
	res, err := tx.ExecContext(ctx, `
        INSERT INTO room_rounds (room_id, room_name, target, winner_id, finished_at)
        VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Target, winner, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	roundID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, p := range r.Players {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO room_placements
                (round_id, player_id, username, rank, points, rounds_used, won)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			roundID, p.ID, p.Name, p.Rank, p.Points, p.RoundsUsed, p.Won,
		); err != nil {
			return fmt.Errorf("insert placement %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// GameStats summarizes finished single-player games.
type GameStats struct {
	Played       int         `json:"gamesPlayed"`
	Wins         int         `json:"wins"`
	Distribution map[int]int `json:"distribution"` // rounds used → wins
}

// Stats aggregates all recorded single-player games.
func (s *Store) Stats(ctx context.Context) (GameStats, error) {
	st := GameStats{Distribution: map[int]int{}}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(won), 0) FROM game_results`,
	).Scan(&st.Played, &st.Wins); err != nil {
		return GameStats{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT rounds_used, COUNT(1) FROM game_results
        WHERE won = 1 GROUP BY rounds_used`)
	if err != nil {
		return GameStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var rounds, n int
		if err := rows.Scan(&rounds, &n); err != nil {
			return GameStats{}, err
		}
		st.Distribution[rounds] = n
	}
	return st, rows.Err()
}

// LBRow is one leaderboard line.
type LBRow struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	Rounds   int    `json:"rounds"`
	Wins     int    `json:"wins"`
}

// Leaderboard returns players ordered by total room points.
// Default limit is 20 if not specified.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT player_id, MAX(username), SUM(points), COUNT(1), SUM(won)
        FROM room_placements
        GROUP BY player_id
        ORDER BY SUM(points) DESC, SUM(won) DESC, player_id ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Username, &r.Points, &r.Rounds, &r.Wins); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
