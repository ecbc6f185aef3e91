package manifest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/projectdesk/memory/internal/tracker"
)

func writeFiles(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("file%03d.go", i))
		if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestBuild_FullListingUnder30(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 29)

	out := Build(dir, discard())
	if !strings.Contains(out, "### All Files") {
		t.Errorf("expected full listing, got:\n%s", out)
	}
	if strings.Contains(out, "### Recently Modified") {
		t.Errorf("full listing tier should not have recency section:\n%s", out)
	}
	if got := strings.Count(out, "- file"); got != 29 {
		t.Errorf("expected 29 entries, got %d", got)
	}
}

func TestBuild_RecencyTierAt30(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 30)

	out := Build(dir, discard())
	if strings.Contains(out, "### All Files") {
		t.Errorf("30 files should leave full-listing tier:\n%s", out)
	}
	if !strings.Contains(out, "### Recently Modified") || !strings.Contains(out, "### Directories") {
		t.Errorf("expected recency + rollup sections:\n%s", out)
	}
	// Fresh files are all recent; cap at 15.
	if got := strings.Count(out, "- file"); got > 15 {
		t.Errorf("recency list over cap: %d entries", got)
	}
	if strings.Contains(out, "full-text search") {
		t.Errorf("search pointer belongs to overview tier only:\n%s", out)
	}
}

func TestBuild_OverviewTierAt100(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 99)
	out := Build(dir, discard())
	if strings.Contains(out, "full-text search") {
		t.Errorf("99 files should not cross into overview tier:\n%s", out)
	}

	writeFiles(t, dir, 100)
	out = Build(dir, discard())
	if !strings.Contains(out, "full-text search") {
		t.Errorf("100 files should include search pointer:\n%s", out)
	}
	if got := strings.Count(out, "(modified "); got > 10 {
		t.Errorf("recency list over large-tier cap: %d entries", got)
	}
}

func TestBuild_HotFilePromotion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 5)
	hotPath := filepath.Join(dir, "hotdoc.md")
	if err := os.WriteFile(hotPath, []byte("# Runbook\n\nRestart the worker first.\nThen check the queue.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := tracker.Increment(dir, "hotdoc.md"); err != nil {
			t.Fatal(err)
		}
	}

	out := Build(dir, discard())
	if !strings.Contains(out, "### Frequently Accessed") {
		t.Fatalf("expected hot section:\n%s", out)
	}
	if !strings.Contains(out, "hotdoc.md (3 reads)") {
		t.Errorf("hot file missing from hot section:\n%s", out)
	}
	if !strings.Contains(out, "Restart the worker first.") {
		t.Errorf("expected preview lines:\n%s", out)
	}

	// Hot file must not reappear in the tier body.
	body := out[strings.Index(out, "### All Files"):]
	if strings.Contains(body, "hotdoc.md") {
		t.Errorf("hot file duplicated in listing:\n%s", out)
	}
}

func TestBuild_SkipsHiddenAndExcluded(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 3)
	for _, sub := range []string{".git", "node_modules"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, sub, "inner.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := Build(dir, discard())
	if strings.Contains(out, "inner.txt") || strings.Contains(out, "node_modules") {
		t.Errorf("hidden/excluded entries leaked:\n%s", out)
	}
}

func TestBuild_MissingDirYieldsEmpty(t *testing.T) {
	out := Build(filepath.Join(t.TempDir(), "does-not-exist"), discard())
	if out != "" {
		t.Errorf("expected empty manifest, got %q", out)
	}
}
