package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/projectdesk/memory/internal/generate"
	"github.com/projectdesk/memory/internal/store"
)

// fakeGenerator returns a canned response, optionally blocking until
// released so tests can hold a thread in flight.
type fakeGenerator struct {
	response string
	err      error
	calls    atomic.Int32
	block    chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, msgs []generate.Message, sessionKey string) (string, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func seedClosedSession(t *testing.T, s *store.SQLiteStore, thread string) {
	t.Helper()
	for i := 0; i < 5; i++ {
		appendAt(t, s, thread, base.Add(time.Duration(i)*time.Minute), "working on the board")
	}
	appendAt(t, s, thread, base.Add(4*time.Minute).Add(3*time.Hour), "back again")
}

func TestRun_PersistsSummaryWithHeader(t *testing.T) {
	s := newTestStore(t)
	seedClosedSession(t, s, "t1")

	gen := &fakeGenerator{response: "- decided to use sqlite\n- fixed the board render bug"}
	sm := NewSummarizer(s, gen, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer sm.Close()

	if err := sm.Run(context.Background(), "t1"); err != nil {
		t.Fatalf("run: %v", err)
	}

	sum, err := s.LatestSummary(context.Background(), "t1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !strings.HasPrefix(sum.Content, "Session 2025-06-01 (5 messages):") {
		t.Errorf("missing header: %q", sum.Content)
	}
	if !strings.Contains(sum.Content, "sqlite") {
		t.Errorf("missing generated text: %q", sum.Content)
	}
	if sum.MessageCount != 5 {
		t.Errorf("expected message count 5, got %d", sum.MessageCount)
	}
}

func TestRun_FailurePersistsNothing(t *testing.T) {
	cases := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"call error", &fakeGenerator{err: errors.New("backend down")}},
		{"short output", &fakeGenerator{response: "ok"}},
		{"empty output", &fakeGenerator{response: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t)
			seedClosedSession(t, s, "t1")

			sm := NewSummarizer(s, tc.gen, slog.New(slog.NewTextHandler(io.Discard, nil)))
			defer sm.Close()

			if err := sm.Run(context.Background(), "t1"); err == nil {
				t.Fatal("expected error")
			}
			if _, err := s.LatestSummary(context.Background(), "t1"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected no summary persisted, got %v", err)
			}
		})
	}
}

func TestRun_ThreadStaysEligibleAfterFailure(t *testing.T) {
	s := newTestStore(t)
	seedClosedSession(t, s, "t1")

	failing := &fakeGenerator{err: errors.New("backend down")}
	sm := NewSummarizer(s, failing, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sm.Run(context.Background(), "t1")
	sm.Close()

	working := &fakeGenerator{response: "- recovered and summarized the whole span"}
	sm2 := NewSummarizer(s, working, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer sm2.Close()
	if err := sm2.Run(context.Background(), "t1"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if _, err := s.LatestSummary(context.Background(), "t1"); err != nil {
		t.Errorf("expected summary after retry, got %v", err)
	}
}

func TestTriggerIfNeeded_DropsDuplicateForInflightThread(t *testing.T) {
	s := newTestStore(t)
	seedClosedSession(t, s, "t1")

	gen := &fakeGenerator{
		response: "- a perfectly reasonable summary",
		block:    make(chan struct{}),
	}
	sm := NewSummarizer(s, gen, slog.New(slog.NewTextHandler(io.Discard, nil)))

	sm.TriggerIfNeeded("t1")
	// Wait for the worker to pick it up and park inside the generator.
	waitFor(t, func() bool { return gen.calls.Load() == 1 })

	// Duplicate trigger while in flight must be dropped.
	sm.TriggerIfNeeded("t1")
	close(gen.block)
	sm.Close()

	if got := gen.calls.Load(); got != 1 {
		t.Errorf("expected 1 generation call, got %d", got)
	}
}

func TestTriggerIfNeeded_NoGeneratorIsNoop(t *testing.T) {
	s := newTestStore(t)
	sm := NewSummarizer(s, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer sm.Close()
	sm.TriggerIfNeeded("t1") // must not panic or enqueue
}

func TestTranscript_TruncatesLongMessages(t *testing.T) {
	s := newTestStore(t)
	long := strings.Repeat("x", 5000)
	appendAt(t, s, "t1", base, long)
	msgs, _ := s.Messages(context.Background(), "t1")

	text := Transcript(msgs)
	if len(text) > 2200 {
		t.Errorf("transcript not truncated, %d chars", len(text))
	}
	if !strings.Contains(text, "user:") {
		t.Errorf("expected role tag in transcript: %q", text[:80])
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
