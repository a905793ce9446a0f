package emotionlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps entries in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS emotion_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		emotion TEXT NOT NULL,
		response TEXT NOT NULL,
		transcript TEXT NOT NULL,
		flagged INTEGER NOT NULL DEFAULT 0,
		keywords TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_emotion_logs_user ON emotion_logs(user_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Store(ctx context.Context, e Entry) error {
	keywords, err := json.Marshal(e.Keywords)
	if err != nil {
		return err
	}

	flagged := 0
	if e.Flagged {
		flagged = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO emotion_logs (id, user_id, emotion, response, transcript, flagged, keywords, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Emotion, e.Response, e.Transcript, flagged, string(keywords), e.Timestamp.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, emotion, response, transcript, flagged, keywords, created_at
		FROM emotion_logs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var keywords string
		var createdAt int64

		if err := rows.Scan(&e.ID, &e.UserID, &e.Emotion, &e.Response, &e.Transcript, &e.Flagged, &keywords, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(keywords), &e.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords: %w", err)
		}
		e.Timestamp = time.Unix(0, createdAt).UTC()

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
