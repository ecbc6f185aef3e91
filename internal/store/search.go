package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/projectdesk/memory/internal/model"
)

// SearchMessages finds messages whose content matches the query, newest
// first. FTS5 handles tokenized queries; a LIKE scan covers stores created
// before the FTS table existed or queries FTS rejects.
func (s *SQLiteStore) SearchMessages(ctx context.Context, p SearchParams) ([]model.Message, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	msgs, err := s.searchFTS(ctx, p.ThreadID, query, limit)
	if err == nil {
		return msgs, nil
	}

	// FTS rejects some inputs (unbalanced quotes, bare operators); fall
	// back to a substring scan rather than failing the search.
	return s.searchLike(ctx, p.ThreadID, query, limit)
}

func (s *SQLiteStore) searchFTS(ctx context.Context, threadID, query string, limit int) ([]model.Message, error) {
	where := "messages_fts MATCH ?"
	args := []interface{}{ftsQuote(query)}
	if threadID != "" {
		where += " AND m.thread_id = ?"
		args = append(args, threadID)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT m.id, m.thread_id, m.role, m.content, m.created_at
		FROM messages_fts
		INNER JOIN messages m ON m.rowid = messages_fts.rowid
		WHERE %s
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (s *SQLiteStore) searchLike(ctx context.Context, threadID, query string, limit int) ([]model.Message, error) {
	where := "content LIKE ?"
	args := []interface{}{"%" + query + "%"}
	if threadID != "" {
		where += " AND thread_id = ?"
		args = append(args, threadID)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, thread_id, role, content, created_at
		FROM messages
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]model.Message, error) {
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

// ftsQuote wraps each whitespace-separated term in double quotes so user
// input cannot be misread as FTS5 syntax.
func ftsQuote(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, ``) + `"`
	}
	return strings.Join(terms, " ")
}
