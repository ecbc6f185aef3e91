package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/projectdesk/memory/internal/store"
)

// DefaultSummaryLimit is how many recent summaries RenderSummaries loads
// when the caller passes no limit.
const DefaultSummaryLimit = 10

// RenderSummaries loads a thread's most recent summaries and renders them
// chronologically under one heading, ready for prompt inclusion. It returns
// the empty string when the thread has no summaries.
func RenderSummaries(ctx context.Context, s store.Store, threadID string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}
	summaries, err := s.ListSummaries(ctx, threadID, limit)
	if err != nil {
		return "", fmt.Errorf("load summaries: %w", err)
	}
	if len(summaries) == 0 {
		return "", nil
	}

	// Listed newest first; render oldest first.
	var b strings.Builder
	b.WriteString("## Previous Sessions\n")
	for i := len(summaries) - 1; i >= 0; i-- {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(summaries[i].Content))
		b.WriteString("\n")
	}
	return b.String(), nil
}
