// Package storage keeps a record of finished games in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Record is one finished game.
type Record struct {
	ID        string
	Key       string // routing key the game ran under
	Channel   string // transport name
	Code      string // terminal event code
	Text      string // final announcement text
	StartedAt time.Time
	EndedAt   time.Time
}

// History is the game-history store. Safe for concurrent use; database/sql
// serializes access to the single SQLite connection pool.
type History struct {
	db *sql.DB
}

func Open(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		key TEXT NOT NULL,
		channel TEXT NOT NULL,
		code TEXT NOT NULL,
		text TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create games table: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Close() error { return h.db.Close() }

// Record inserts one finished game. The ID is generated here.
func (h *History) Record(rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := h.db.Exec(
		`INSERT INTO games (id, key, channel, code, text, started_at, ended_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Key, rec.Channel, rec.Code, rec.Text, rec.StartedAt, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("record game: %w", err)
	}
	return nil
}

// Recent returns the most recently finished games, newest first.
func (h *History) Recent(limit int) ([]Record, error) {
	rows, err := h.db.Query(
		`SELECT id, key, channel, code, text, started_at, ended_at FROM games ORDER BY ended_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Key, &rec.Channel, &rec.Code, &rec.Text, &rec.StartedAt, &rec.EndedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
