package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string        `json:"db_path"`
	DBSizeBytes    int64         `json:"db_size_bytes"`
	TotalMessages  int           `json:"total_messages"`
	TotalSummaries int           `json:"total_summaries"`
	Threads        []ThreadStats `json:"threads"`
}

// ThreadStats holds per-thread counts.
type ThreadStats struct {
	ThreadID  string `json:"thread_id"`
	Messages  int    `json:"messages"`
	Summaries int    `json:"summaries"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.TotalMessages)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_summaries`).Scan(&st.TotalSummaries)

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.thread_id, COUNT(*) AS msgs,
		       (SELECT COUNT(*) FROM session_summaries ss WHERE ss.thread_id = m.thread_id) AS sums
		FROM messages m
		GROUP BY m.thread_id ORDER BY msgs DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts ThreadStats
		rows.Scan(&ts.ThreadID, &ts.Messages, &ts.Summaries)
		st.Threads = append(st.Threads, ts)
	}

	return st, nil
}
