// Package history keeps a SQLite ledger of finished matches.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cardbattle/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	won INTEGER NOT NULL,
	lost INTEGER NOT NULL,
	timed_out INTEGER NOT NULL,
	rounds INTEGER NOT NULL,
	coins INTEGER NOT NULL,
	round_times TEXT NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS matches_finished_at ON matches (finished_at);
`

// Match is one recorded match.
type Match struct {
	ID         int64     `json:"id"`
	GameID     string    `json:"game_id"`
	Won        bool      `json:"won"`
	Lost       bool      `json:"lost"`
	TimedOut   bool      `json:"timed_out"`
	Rounds     int       `json:"rounds"`
	Coins      int       `json:"coins"`
	RoundTimes []int     `json:"round_times"`
	FinishedAt time.Time `json:"finished_at"`
}

// Store provides SQLite-backed match history.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the history database at path and creates its schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record persists a finished match.
func (s *Store) Record(ctx context.Context, res game.MatchResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(res.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if res.FinishedAt.IsZero() {
		res.FinishedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO matches (
	game_id,
	won,
	lost,
	timed_out,
	rounds,
	coins,
	round_times,
	finished_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		res.GameID,
		res.Won,
		res.Lost,
		res.TimedOut,
		res.Rounds,
		res.Coins,
		joinTimes(res.RoundTimes),
		res.FinishedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record match: %w", err)
	}
	return nil
}

// Recent lists newest-first matches.
func (s *Store) Recent(ctx context.Context, limit int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	game_id,
	won,
	lost,
	timed_out,
	rounds,
	coins,
	round_times,
	finished_at
FROM matches
ORDER BY finished_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]Match, 0, limit)
	for rows.Next() {
		var m Match
		var times string
		var finishedAt int64
		if err := rows.Scan(
			&m.ID,
			&m.GameID,
			&m.Won,
			&m.Lost,
			&m.TimedOut,
			&m.Rounds,
			&m.Coins,
			&times,
			&finishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.RoundTimes, err = splitTimes(times)
		if err != nil {
			return nil, fmt.Errorf("decode round times for match %d: %w", m.ID, err)
		}
		m.FinishedAt = time.UnixMilli(finishedAt).UTC()
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

func joinTimes(times []int) string {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ",")
}

func splitTimes(s string) ([]int, error) {
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

var _ game.Recorder = (*Store)(nil)
