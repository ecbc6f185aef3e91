package memdoc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/projectdesk/memory/internal/generate"
)

const refreshInstruction = `You maintain a project memory document. Rewrite it so Current State, Active Work, and Session History reflect the recent session notes below, while preserving all other sections and any content still accurate.
Keep the exact section headings. Keep the document under 8KB. Do not invent work that is not in the notes.
Return only the updated document body, without the marker comment.`

// Refresh regenerates the memory document from recent session summaries via
// the generation call, preserving prior content the model does not need to
// change. The prior version is backed up before the overwrite.
func Refresh(ctx context.Context, projectDir string, gen generate.Generator, recentSummaries string) (string, error) {
	if gen == nil {
		return "", fmt.Errorf("no generator configured")
	}

	current, _, err := Ensure(projectDir)
	if err != nil {
		return "", fmt.Errorf("load memory document: %w", err)
	}

	prompt := "Current document:\n\n" + stripMarker(current)
	if strings.TrimSpace(recentSummaries) != "" {
		prompt += "\n\nRecent session notes:\n\n" + recentSummaries
	} else {
		prompt += "\n\nRecent session notes: none recorded."
	}

	out, err := gen.Generate(ctx, []generate.Message{
		{Role: "system", Content: refreshInstruction},
		{Role: "user", Content: prompt},
	}, projectDir)
	if err != nil {
		return "", fmt.Errorf("generate refresh: %w", err)
	}
	out = strings.TrimSpace(stripMarker(out))
	if len(out) < 50 {
		return "", fmt.Errorf("refresh output too short (%d chars)", len(out))
	}
	for _, section := range Sections {
		if !strings.Contains(out, "## "+section) {
			return "", fmt.Errorf("refresh output dropped section %q", section)
		}
	}

	updated := insertMarker(out, Marker(time.Now(), "active"))
	if err := Write(projectDir, updated); err != nil {
		return "", err
	}
	return updated, nil
}

func stripMarker(content string) string {
	return strings.TrimSpace(markerRe.ReplaceAllString(content, ""))
}

// insertMarker places the marker right after the document title, or at the
// top when there is no title line.
func insertMarker(content, marker string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "# ") {
		head := lines[0]
		rest := strings.TrimLeft(strings.Join(lines[1:], "\n"), "\n")
		return head + "\n\n" + marker + "\n" + rest + "\n"
	}
	return marker + "\n" + content + "\n"
}
