package tagger

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestTags_ShortContent(t *testing.T) {
	if tags := Tags("too short to tag"); tags != nil {
		t.Errorf("expected nil for short content, got %v", tags)
	}
}

func TestTags_Deterministic(t *testing.T) {
	content := strings.Repeat("The scheduler retries failed deployments. Scheduler state lives in sqlite. Deployments roll back on error.\n", 3)
	first := Tags(content)
	for i := 0; i < 5; i++ {
		if got := Tags(content); !reflect.DeepEqual(got, first) {
			t.Fatalf("non-deterministic: %v vs %v", got, first)
		}
	}
	if len(first) == 0 || len(first) > 3 {
		t.Fatalf("expected 1-3 tags, got %v", first)
	}
}

func TestTags_FrequentTermsWin(t *testing.T) {
	content := "kanban kanban kanban board board webhook webhook incidental words appear once here today"
	tags := Tags(content)
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %v", tags)
	}
	if tags[0] != "kanban" {
		t.Errorf("expected kanban first, got %v", tags)
	}
	for _, tag := range tags {
		if tag == "incidental" || tag == "words" {
			t.Errorf("single-occurrence term should not beat repeated ones: %v", tags)
		}
	}
}

func TestTags_StripsStructure(t *testing.T) {
	content := "# Heading\n\nSee [the guide](https://example.com/guide) and https://example.com.\n\n```\npassword hunter2 secretcode secretcode secretcode\n```\n\nMigration notes: migration steps cover migration batches and rollout, rollout pacing."
	tags := Tags(content)
	for _, tag := range tags {
		if tag == "secretcode" {
			t.Errorf("code fence content leaked into tags: %v", tags)
		}
		if strings.Contains(tag, "http") || strings.Contains(tag, "example") {
			t.Errorf("url leaked into tags: %v", tags)
		}
	}
	found := false
	for _, tag := range tags {
		if tag == "migration" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected migration tag, got %v", tags)
	}
}

func TestTags_StopwordsAndNumbers(t *testing.T) {
	content := "the the the and and 1234 1234 1234 payments payments ledger ledger reconciliation reconciliation extra filler sentences pad this document out"
	tags := Tags(content)
	for _, tag := range tags {
		if tag == "the" || tag == "and" || tag == "1234" {
			t.Errorf("stopword or numeric token in tags: %v", tags)
		}
	}
}

func TestTags_FallbackToRawFrequency(t *testing.T) {
	// Long enough, but almost nothing repeats: the floor falls away.
	content := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo"
	tags := Tags(content)
	if len(tags) != 3 {
		t.Fatalf("expected 3 fallback tags, got %v", tags)
	}
}

func TestGetOrGenerate_CachesResult(t *testing.T) {
	dir := t.TempDir()
	rel := "notes.md"
	content := "deploy deploy deploy pipeline pipeline rollback rollback plus prose to clear the length floor"
	if err := os.WriteFile(filepath.Join(dir, rel), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := GetOrGenerate(dir, rel)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected tags")
	}

	// Rewrite the file; the non-empty cached result must survive.
	if err := os.WriteFile(filepath.Join(dir, rel), []byte("totally different different different content content now now padded padded"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := GetOrGenerate(dir, rel)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cache was recomputed: %v vs %v", first, second)
	}

	// Regenerate ignores the cache and reads the current content.
	third, err := Regenerate(dir, rel)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if reflect.DeepEqual(first, third) {
		t.Errorf("regenerate returned stale tags: %v", third)
	}
	fourth, err := GetOrGenerate(dir, rel)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(third, fourth) {
		t.Errorf("regenerated tags not cached: %v vs %v", third, fourth)
	}
}
