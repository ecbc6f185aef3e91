// Package session closes conversation sessions on inactivity and compresses
// them into durable summaries.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/projectdesk/memory/internal/model"
	"github.com/projectdesk/memory/internal/store"
)

const (
	// InactivityGap is the idle time between two messages that closes a
	// session.
	InactivityGap = 2 * time.Hour

	// MinSpanMessages is the smallest unsummarized span worth compressing.
	MinSpanMessages = 4

	// MaxSpanMessages caps one summarization. Overflow messages older than
	// the cap stay stored but are never summarized; only the newest window
	// is compressed.
	MaxSpanMessages = 60
)

// DetectSpan reports the unsummarized span that a just-closed session left
// behind, or nil when no boundary exists or the span is too small.
//
// A boundary exists when the gap between the two newest messages exceeds
// InactivityGap. The span runs strictly after the last stored summary's end
// (or from the thread's first message) and strictly before the newest
// message, which already belongs to the new session.
func DetectSpan(ctx context.Context, s store.Store, threadID string) ([]model.Message, error) {
	msgs, err := s.Messages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	if len(msgs) < 2 {
		return nil, nil
	}

	newest := msgs[len(msgs)-1]
	previous := msgs[len(msgs)-2]
	if newest.CreatedAt.Sub(previous.CreatedAt) <= InactivityGap {
		return nil, nil
	}

	var summarizedUntil time.Time
	last, err := s.LatestSummary(ctx, threadID)
	switch {
	case err == nil:
		summarizedUntil = last.LastMessageAt
	case errors.Is(err, store.ErrNotFound):
		// First summary for this thread; span starts at the beginning.
	default:
		return nil, fmt.Errorf("load latest summary: %w", err)
	}

	span := make([]model.Message, 0, len(msgs)-1)
	for _, m := range msgs[:len(msgs)-1] {
		if !summarizedUntil.IsZero() && !m.CreatedAt.After(summarizedUntil) {
			continue
		}
		span = append(span, m)
	}

	if len(span) < MinSpanMessages {
		return nil, nil
	}
	if len(span) > MaxSpanMessages {
		span = span[len(span)-MaxSpanMessages:]
	}
	return span, nil
}
