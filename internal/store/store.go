// Package store provides the conversation record store interface and its
// SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/projectdesk/memory/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// AppendParams holds parameters for storing a message.
type AppendParams struct {
	ThreadID  string
	Role      string
	Content   string
	CreatedAt time.Time // zero means now
}

// SummaryParams holds parameters for persisting a session summary.
type SummaryParams struct {
	ThreadID       string
	Content        string
	MessageCount   int
	FirstMessageAt time.Time
	LastMessageAt  time.Time
	LastMessageID  string
}

// SearchParams holds parameters for full-text message search.
type SearchParams struct {
	ThreadID string
	Query    string
	Limit    int
}

// Store defines the conversation record store.
type Store interface {
	// AppendMessage stores one message. Content is redacted before it
	// touches disk.
	AppendMessage(ctx context.Context, p AppendParams) (*model.Message, error)

	// Messages returns a thread's messages in chronological order.
	Messages(ctx context.Context, threadID string) ([]model.Message, error)

	// InsertSummary persists a write-once session summary.
	InsertSummary(ctx context.Context, p SummaryParams) (*model.SessionSummary, error)

	// LatestSummary returns the most recent summary for a thread, or
	// ErrNotFound when the thread has none.
	LatestSummary(ctx context.Context, threadID string) (*model.SessionSummary, error)

	// ListSummaries returns up to limit summaries, most recent first.
	ListSummaries(ctx context.Context, threadID string, limit int) ([]model.SessionSummary, error)

	// SearchMessages finds messages matching the query.
	SearchMessages(ctx context.Context, p SearchParams) ([]model.Message, error)

	// Close closes the store.
	Close() error
}
