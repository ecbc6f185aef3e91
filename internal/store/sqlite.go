package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/projectdesk/memory/internal/model"
	"github.com/projectdesk/memory/internal/redact"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// newID returns a fresh ULID. ulid.Make is safe for concurrent callers,
// which matters because summarization workers insert in parallel.
func (s *SQLiteStore) newID() string {
	return ulid.Make().String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id         TEXT PRIMARY KEY,
		thread_id  TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id, created_at);

	CREATE TABLE IF NOT EXISTS session_summaries (
		id               TEXT PRIMARY KEY,
		thread_id        TEXT NOT NULL,
		content          TEXT NOT NULL,
		message_count    INTEGER NOT NULL,
		first_message_at TEXT NOT NULL,
		last_message_at  TEXT NOT NULL,
		last_message_id  TEXT NOT NULL,
		created_at       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_thread ON session_summaries(thread_id, last_message_at DESC);

	CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
		content,
		content=messages,
		content_rowid=rowid
	);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return err
	}

	// FTS5 triggers for automatic sync (messages are immutable, so insert
	// is the only path that matters; delete kept for manual cleanup).
	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
		INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
	END`)
	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
		INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
	END`)

	return nil
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, p AppendParams) (*model.Message, error) {
	if p.ThreadID == "" {
		return nil, fmt.Errorf("thread id is empty")
	}
	if !model.ValidRoles[p.Role] {
		return nil, fmt.Errorf("invalid role %q", p.Role)
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	createdAt = createdAt.UTC()

	msg := &model.Message{
		ID:        s.newID(),
		ThreadID:  p.ThreadID,
		Role:      p.Role,
		Content:   redact.Redact(p.Content),
		CreatedAt: createdAt,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, thread_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ThreadID, msg.Role, msg.Content, createdAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func (s *SQLiteStore) Messages(ctx context.Context, threadID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, thread_id, role, content, created_at
		 FROM messages WHERE thread_id = ?
		 ORDER BY created_at, id`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) InsertSummary(ctx context.Context, p SummaryParams) (*model.SessionSummary, error) {
	if p.ThreadID == "" {
		return nil, fmt.Errorf("thread id is empty")
	}
	if p.Content == "" {
		return nil, fmt.Errorf("summary content is empty")
	}

	now := time.Now().UTC()
	sum := &model.SessionSummary{
		ID:             s.newID(),
		ThreadID:       p.ThreadID,
		Content:        p.Content,
		MessageCount:   p.MessageCount,
		FirstMessageAt: p.FirstMessageAt.UTC(),
		LastMessageAt:  p.LastMessageAt.UTC(),
		LastMessageID:  p.LastMessageID,
		CreatedAt:      now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_summaries
			(id, thread_id, content, message_count, first_message_at, last_message_at, last_message_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.ThreadID, sum.Content, sum.MessageCount,
		sum.FirstMessageAt.Format(time.RFC3339), sum.LastMessageAt.Format(time.RFC3339),
		sum.LastMessageID, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert summary: %w", err)
	}
	return sum, nil
}

func (s *SQLiteStore) LatestSummary(ctx context.Context, threadID string) (*model.SessionSummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, thread_id, content, message_count, first_message_at, last_message_at, last_message_id, created_at
		 FROM session_summaries WHERE thread_id = ?
		 ORDER BY last_message_at DESC, id DESC LIMIT 1`, threadID)
	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func (s *SQLiteStore) ListSummaries(ctx context.Context, threadID string, limit int) ([]model.SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, thread_id, content, message_count, first_message_at, last_message_at, last_message_id, created_at
		 FROM session_summaries WHERE thread_id = ?
		 ORDER BY last_message_at DESC, id DESC LIMIT ?`, threadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.SessionSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row scanner) (model.Message, error) {
	var m model.Message
	var createdAt string
	if err := row.Scan(&m.ID, &m.ThreadID, &m.Role, &m.Content, &createdAt); err != nil {
		return m, err
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return m, nil
}

func scanSummary(row scanner) (model.SessionSummary, error) {
	var s model.SessionSummary
	var first, last, created string
	err := row.Scan(&s.ID, &s.ThreadID, &s.Content, &s.MessageCount, &first, &last, &s.LastMessageID, &created)
	if err != nil {
		return s, err
	}
	s.FirstMessageAt, _ = time.Parse(time.RFC3339, first)
	s.LastMessageAt, _ = time.Parse(time.RFC3339, last)
	s.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return s, nil
}
