package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/projectdesk/memory/internal/generate"
	"github.com/projectdesk/memory/internal/model"
	"github.com/projectdesk/memory/internal/store"
)

const (
	// maxMessageChars truncates any single message in the transcript.
	maxMessageChars = 2000

	// minSummaryChars rejects generation output too short to be a real
	// summary.
	minSummaryChars = 20

	defaultWorkers   = 2
	defaultQueueSize = 16
)

const summaryInstruction = `Summarize this conversation session as 2-5 concise bullets (300 words max total).
Cover: decisions made, problems encountered and their solutions, tasks completed or started, current state of the work, and open questions.
Write only the bullets, nothing else.`

// Summarizer compresses closed sessions in the background. Work runs on a
// bounded pool so a burst of turns cannot fan out into unbounded goroutines,
// and a per-thread in-flight set drops duplicate triggers.
type Summarizer struct {
	store store.Store
	gen   generate.Generator
	log   *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}

	jobs chan string
	wg   sync.WaitGroup
}

// NewSummarizer creates a Summarizer and starts its worker pool.
func NewSummarizer(s store.Store, gen generate.Generator, log *slog.Logger) *Summarizer {
	if log == nil {
		log = slog.Default()
	}
	sm := &Summarizer{
		store:    s,
		gen:      gen,
		log:      log,
		inflight: make(map[string]struct{}),
		jobs:     make(chan string, defaultQueueSize),
	}
	sm.wg.Add(defaultWorkers)
	for i := 0; i < defaultWorkers; i++ {
		go sm.worker()
	}
	return sm
}

// TriggerIfNeeded schedules a summarization check for a thread. It never
// blocks the calling turn: duplicate triggers for an in-flight thread are
// dropped, and so is work that would overflow the queue.
func (sm *Summarizer) TriggerIfNeeded(threadID string) {
	if threadID == "" || sm.gen == nil {
		return
	}

	sm.mu.Lock()
	if _, busy := sm.inflight[threadID]; busy {
		sm.mu.Unlock()
		return
	}
	sm.inflight[threadID] = struct{}{}
	sm.mu.Unlock()

	select {
	case sm.jobs <- threadID:
	default:
		sm.release(threadID)
		sm.log.Warn("summarization queue full, dropping trigger", "thread", threadID)
	}
}

// Close stops accepting triggers and waits for in-flight work to finish.
func (sm *Summarizer) Close() {
	close(sm.jobs)
	sm.wg.Wait()
}

func (sm *Summarizer) worker() {
	defer sm.wg.Done()
	for threadID := range sm.jobs {
		// Detached from the originating turn on purpose; failures are
		// logged and the span stays eligible for the next boundary.
		if err := sm.Run(context.Background(), threadID); err != nil {
			sm.log.Warn("session summarization skipped", "thread", threadID, "error", err)
		}
		sm.release(threadID)
	}
}

func (sm *Summarizer) release(threadID string) {
	sm.mu.Lock()
	delete(sm.inflight, threadID)
	sm.mu.Unlock()
}

// Run performs one boundary check and, when a span qualifies, summarizes and
// persists it. Exposed for synchronous callers; background work goes through
// TriggerIfNeeded.
func (sm *Summarizer) Run(ctx context.Context, threadID string) error {
	if sm.gen == nil {
		return fmt.Errorf("no generator configured")
	}

	span, err := DetectSpan(ctx, sm.store, threadID)
	if err != nil {
		return err
	}
	if len(span) == 0 {
		return nil
	}

	out, err := sm.gen.Generate(ctx, []generate.Message{
		{Role: "system", Content: summaryInstruction},
		{Role: "user", Content: Transcript(span)},
	}, threadID)
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}
	out = strings.TrimSpace(out)
	if len(out) < minSummaryChars {
		return fmt.Errorf("summary too short (%d chars)", len(out))
	}

	last := span[len(span)-1]
	header := fmt.Sprintf("Session %s (%d messages):", last.CreatedAt.Format("2006-01-02"), len(span))
	_, err = sm.store.InsertSummary(ctx, store.SummaryParams{
		ThreadID:       threadID,
		Content:        header + "\n" + out,
		MessageCount:   len(span),
		FirstMessageAt: span[0].CreatedAt,
		LastMessageAt:  last.CreatedAt,
		LastMessageID:  last.ID,
	})
	if err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}
	sm.log.Info("session summarized", "thread", threadID, "messages", len(span))
	return nil
}

// Transcript renders a span as timestamped lines for the generation call,
// truncating oversized messages.
func Transcript(span []model.Message) string {
	var b strings.Builder
	for _, m := range span {
		content := m.Content
		if len(content) > maxMessageChars {
			content = content[:maxMessageChars] + "..."
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.CreatedAt.Format(time.RFC3339), m.Role, content)
	}
	return b.String()
}
