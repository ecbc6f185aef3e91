package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/projectdesk/memory/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func appendAt(t *testing.T, s *store.SQLiteStore, thread string, at time.Time, content string) {
	t.Helper()
	_, err := s.AppendMessage(context.Background(), store.AppendParams{
		ThreadID: thread, Role: "user", Content: content, CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestDetectSpan_GapThreshold(t *testing.T) {
	cases := []struct {
		name string
		gap  time.Duration
		want bool
	}{
		{"just under", InactivityGap - time.Second, false},
		{"just over", InactivityGap + time.Second, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t)
			// Enough messages before the gap to clear the minimum gate.
			for i := 0; i < 5; i++ {
				appendAt(t, s, "t1", base.Add(time.Duration(i)*time.Minute), "msg")
			}
			appendAt(t, s, "t1", base.Add(4*time.Minute).Add(tc.gap), "new session")

			span, err := DetectSpan(context.Background(), s, "t1")
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if got := len(span) > 0; got != tc.want {
				t.Errorf("gap %v: expected boundary=%v, got span of %d", tc.gap, tc.want, len(span))
			}
		})
	}
}

func TestDetectSpan_StartsAfterPriorSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Old, already-summarized messages.
	for i := 0; i < 4; i++ {
		appendAt(t, s, "t1", base.Add(time.Duration(i)*time.Minute), "old")
	}
	summaryEnd := base.Add(3 * time.Minute)
	_, err := s.InsertSummary(ctx, store.SummaryParams{
		ThreadID: "t1", Content: "prior", MessageCount: 4,
		FirstMessageAt: base, LastMessageAt: summaryEnd, LastMessageID: "x",
	})
	if err != nil {
		t.Fatalf("insert summary: %v", err)
	}

	// 5 new messages, then a gap.
	newStart := summaryEnd.Add(10 * time.Minute)
	for i := 0; i < 5; i++ {
		appendAt(t, s, "t1", newStart.Add(time.Duration(i)*time.Minute), "new")
	}
	appendAt(t, s, "t1", newStart.Add(4*time.Minute).Add(3*time.Hour), "after gap")

	span, err := DetectSpan(ctx, s, "t1")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(span) != 5 {
		t.Fatalf("expected span of exactly 5 new messages, got %d", len(span))
	}
	for _, m := range span {
		if m.Content != "new" {
			t.Errorf("span includes wrong message: %+v", m)
		}
	}
}

func TestDetectSpan_MinimumGate(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		appendAt(t, s, "t1", base.Add(time.Duration(i)*time.Minute), "msg")
	}
	appendAt(t, s, "t1", base.Add(2*time.Minute).Add(3*time.Hour), "new session")

	span, err := DetectSpan(context.Background(), s, "t1")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if span != nil {
		t.Errorf("3 unsummarized messages should not summarize, got %d", len(span))
	}
}

func TestDetectSpan_CapsAtMax(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < MaxSpanMessages+10; i++ {
		appendAt(t, s, "t1", base.Add(time.Duration(i)*time.Minute), "msg")
	}
	appendAt(t, s, "t1", base.Add(time.Duration(MaxSpanMessages+9)*time.Minute).Add(3*time.Hour), "new")

	span, err := DetectSpan(context.Background(), s, "t1")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(span) != MaxSpanMessages {
		t.Fatalf("expected span capped at %d, got %d", MaxSpanMessages, len(span))
	}
	// The cap keeps the newest messages of the closed session.
	wantLast := base.Add(time.Duration(MaxSpanMessages+9) * time.Minute)
	if !span[len(span)-1].CreatedAt.Equal(wantLast) {
		t.Errorf("expected newest span message at %v, got %v", wantLast, span[len(span)-1].CreatedAt)
	}
}

func TestDetectSpan_TooFewMessages(t *testing.T) {
	s := newTestStore(t)
	appendAt(t, s, "t1", base, "only one")

	span, err := DetectSpan(context.Background(), s, "t1")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if span != nil {
		t.Errorf("expected nil span for single-message thread")
	}
}
