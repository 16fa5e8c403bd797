package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const createSessionsTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT NOT NULL PRIMARY KEY,
	username TEXT NOT NULL,
	started_at_utc TEXT NOT NULL,
	ended_at_utc TEXT NOT NULL,
	engagement_score INTEGER NOT NULL,
	sentiment_positivity REAL NOT NULL,
	conversion_potential REAL NOT NULL,
	summary TEXT NOT NULL
)`

const createUtterancesTableSQL = `
CREATE TABLE IF NOT EXISTS utterances (
	session_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	speaker TEXT NOT NULL,
	text TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	intent TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
)`

var createSessionIndexesSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_sessions_username ON sessions(username)`,
	`CREATE INDEX IF NOT EXISTS idx_utterances_session ON utterances(session_id)`,
}

const insertSessionSQL = `
INSERT INTO sessions (
	session_id,
	username,
	started_at_utc,
	ended_at_utc,
	engagement_score,
	sentiment_positivity,
	conversion_potential,
	summary
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

const insertUtteranceSQL = `
INSERT INTO utterances (
	session_id,
	seq,
	timestamp,
	speaker,
	text,
	sentiment,
	intent
) VALUES (?, ?, ?, ?, ?, ?, ?)`

const selectSessionsByUserSQL = `
SELECT session_id, username, started_at_utc, ended_at_utc,
	engagement_score, sentiment_positivity, conversion_potential, summary
FROM sessions WHERE username = ? ORDER BY started_at_utc`

const selectRecentSessionsSQL = `
SELECT session_id, username, started_at_utc, ended_at_utc,
	engagement_score, sentiment_positivity, conversion_potential, summary
FROM sessions ORDER BY ended_at_utc DESC LIMIT ?`

const selectUtterancesSQL = `
SELECT timestamp, speaker, text, sentiment, intent
FROM utterances WHERE session_id = ? ORDER BY seq`

// SessionRecord - итог одной сессии для архива.
type SessionRecord struct {
	SessionID    string
	Username     string
	StartedAtUTC string
	EndedAtUTC   string
	Metrics      MetricsRow
	Summary      string
	Utterances   []TranscriptRow
}

// SQLiteStore archives finished sessions with their utterances.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSession writes the session row and its utterances in one
// transaction, so partial archives never appear.
func (s *SQLiteStore) SaveSession(record SessionRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store is not initialized")
	}
	if strings.TrimSpace(record.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(record.EndedAtUTC) == "" {
		record.EndedAtUTC = time.Now().UTC().Format(time.RFC3339)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		insertSessionSQL,
		record.SessionID,
		record.Username,
		record.StartedAtUTC,
		record.EndedAtUTC,
		record.Metrics.EngagementScore,
		record.Metrics.SentimentPositivity,
		record.Metrics.ConversionPotential,
		record.Summary,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	for seq, u := range record.Utterances {
		if _, err := tx.Exec(
			insertUtteranceSQL,
			record.SessionID,
			seq,
			u.Timestamp,
			u.Speaker,
			u.Text,
			u.Sentiment,
			u.Intent,
		); err != nil {
			return fmt.Errorf("insert utterance %d: %w", seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// SessionsByUser returns archived sessions for one user in start order.
func (s *SQLiteStore) SessionsByUser(username string) ([]SessionRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store is not initialized")
	}
	rows, err := s.db.Query(selectSessionsByUserSQL, username)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// RecentSessions returns the latest finished sessions across users.
func (s *SQLiteStore) RecentSessions(limit int) ([]SessionRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store is not initialized")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(selectRecentSessionsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// SessionUtterances loads the archived transcript of one session.
func (s *SQLiteStore) SessionUtterances(sessionID string) ([]TranscriptRow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store is not initialized")
	}
	rows, err := s.db.Query(selectUtterancesSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query utterances: %w", err)
	}
	defer rows.Close()

	var result []TranscriptRow
	for rows.Next() {
		var row TranscriptRow
		if err := rows.Scan(&row.Timestamp, &row.Speaker, &row.Text, &row.Sentiment, &row.Intent); err != nil {
			return nil, fmt.Errorf("scan utterance: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate utterances: %w", err)
	}
	return result, nil
}

func scanSessions(rows *sql.Rows) ([]SessionRecord, error) {
	var result []SessionRecord
	for rows.Next() {
		var record SessionRecord
		if err := rows.Scan(
			&record.SessionID,
			&record.Username,
			&record.StartedAtUTC,
			&record.EndedAtUTC,
			&record.Metrics.EngagementScore,
			&record.Metrics.SentimentPositivity,
			&record.Metrics.ConversionPotential,
			&record.Summary,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return result, nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(createSessionsTableSQL); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	if _, err := db.Exec(createUtterancesTableSQL); err != nil {
		return fmt.Errorf("create utterances table: %w", err)
	}
	for _, stmt := range createSessionIndexesSQL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
