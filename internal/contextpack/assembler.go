package contextpack

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/projectdesk/memory/internal/manifest"
	"github.com/projectdesk/memory/internal/memdoc"
	"github.com/projectdesk/memory/internal/model"
	"github.com/projectdesk/memory/internal/session"
	"github.com/projectdesk/memory/internal/sidecar"
	"github.com/projectdesk/memory/internal/store"
)

const (
	// readmeSizeCap bounds verbatim README inclusion; larger files are
	// mentioned, not inlined.
	readmeSizeCap = 4096

	// maxSiblingExcerpts caps the one-line Current State excerpts pulled
	// from sibling projects.
	maxSiblingExcerpts = 5

	credentialsFile = "credentials.json"
)

const operatingInstructions = `## Maintaining This Context

Update CONTEXT.md whenever you make a decision, hit a blocker, or finish a piece of work. Prefer small incremental edits over wholesale rewrites.
Keep the document under 8KB: fold resolved items into Key Decisions or Session History and drop detail that no longer earns its space.
Record the current state of the work before ending a session so the next session can resume without replaying history.`

// Builder assembles per-project context. A nil Store disables the session
// summary block; everything else degrades per step.
type Builder struct {
	Resolver Resolver
	Store    store.Store
	Log      *slog.Logger
}

func (b *Builder) log() *slog.Logger {
	if b.Log != nil {
		return b.Log
	}
	return slog.Default()
}

// Build assembles the context string for a project. It never fails: any
// step whose input is unreadable contributes nothing, and at minimum the
// operating instructions come back.
func (b *Builder) Build(ctx context.Context, projectID string) string {
	return b.BuildForThread(ctx, projectID, "")
}

// BuildForThread is Build plus the thread's recent session summaries, for
// callers that know which conversation the context feeds.
func (b *Builder) BuildForThread(ctx context.Context, projectID, threadID string) string {
	p, err := b.Resolver.Project(projectID)
	if err != nil {
		b.log().Warn("project resolution failed", "project", projectID, "error", err)
		return operatingInstructions + "\n"
	}

	if p.General {
		return b.buildRoster(p)
	}

	var parts []string

	if doc := b.memoryDocument(p); doc != "" {
		parts = append(parts, doc)
	}
	if readme := b.readme(p.Dir); readme != "" {
		parts = append(parts, readme)
	}
	if m := manifest.Build(p.Dir, b.log()); m != "" {
		parts = append(parts, m)
	}
	if threadID != "" && b.Store != nil {
		if summaries := b.summaries(ctx, threadID); summaries != "" {
			parts = append(parts, summaries)
		}
	}
	if p.ParentID != "" {
		if inherited := b.inherited(p); inherited != "" {
			parts = append(parts, inherited)
		}
	}
	parts = append(parts, operatingInstructions)

	return strings.Join(parts, "\n\n") + "\n"
}

// memoryDocument ensures the document exists and renders it with size and
// staleness advisories.
func (b *Builder) memoryDocument(p model.Project) string {
	content, created, err := memdoc.Ensure(p.Dir)
	if err != nil {
		// Persistence failure is non-fatal: synthesized content still
		// feeds the prompt.
		b.log().Warn("memory document persistence failed", "project", p.ID, "error", err)
	}
	if content == "" {
		return ""
	}
	if created {
		b.log().Info("memory document synthesized", "project", p.ID)
	}

	out := content
	if len(content) > memdoc.HardWarnSize {
		out += fmt.Sprintf("\n\n> NOTE: this memory document is %d bytes, past the %d-byte ceiling. Compress it: fold stale sections into Session History.", len(content), memdoc.HardWarnSize)
	}
	if memdoc.IsStale(p.Dir, content, time.Now()) {
		out += "\n\n> WARNING: this memory document has not been updated in over 7 days while project files changed. Review it against the current state before relying on it."
	}
	return out
}

func (b *Builder) readme(dir string) string {
	for _, name := range []string{"README.md", "README"} {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() > readmeSizeCap {
			return fmt.Sprintf("## Reference\n\nA %s exists (%d bytes); read it directly when needed.", name, info.Size())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return "## Reference: " + name + "\n\n" + strings.TrimSpace(string(data))
	}
	return ""
}

func (b *Builder) summaries(ctx context.Context, threadID string) string {
	out, err := session.RenderSummaries(ctx, b.Store, threadID, 0)
	if err != nil {
		b.log().Warn("summary retrieval failed", "thread", threadID, "error", err)
		return ""
	}
	return out
}

// inherited pulls the named sections from the parent's memory document and
// one-line excerpts from sibling projects.
func (b *Builder) inherited(p model.Project) string {
	projects, err := b.Resolver.Projects()
	if err != nil {
		b.log().Warn("roster load failed", "project", p.ID, "error", err)
		return ""
	}

	var parent *model.Project
	var siblings []model.Project
	for i := range projects {
		other := projects[i]
		if other.ID == p.ParentID {
			parent = &projects[i]
		}
		if other.ParentID == p.ParentID && other.ID != p.ID {
			siblings = append(siblings, other)
		}
	}
	if parent == nil {
		return ""
	}

	var bld strings.Builder
	bld.WriteString("## Inherited From " + parent.Name + "\n")

	if content, err := memdoc.Load(parent.Dir); err == nil {
		for _, name := range []string{"Key Decisions", "Architecture"} {
			if body := memdoc.Section(content, name); body != "" {
				bld.WriteString("\n### " + name + "\n" + body + "\n")
			}
		}
	}

	if len(siblings) > maxSiblingExcerpts {
		siblings = siblings[:maxSiblingExcerpts]
	}
	var lines []string
	for _, sib := range siblings {
		content, err := memdoc.Load(sib.Dir)
		if err != nil {
			continue
		}
		if line := memdoc.FirstLine(memdoc.Section(content, "Current State")); line != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", sib.Name, line))
		}
	}
	if len(lines) > 0 {
		bld.WriteString("\n### Sibling Projects\n" + strings.Join(lines, "\n") + "\n")
	}

	return strings.TrimSpace(bld.String())
}

// buildRoster renders the command-center context: every other project, the
// shared credential key names, and what the agent can do about them.
func (b *Builder) buildRoster(general model.Project) string {
	var bld strings.Builder
	bld.WriteString("## Command Center\n\nThis is the general project. It oversees every other project instead of carrying its own workspace context.\n")

	projects, err := b.Resolver.Projects()
	if err != nil {
		b.log().Warn("roster load failed", "error", err)
		projects = nil
	}

	var lines []string
	for _, p := range projects {
		if p.ID == general.ID {
			continue
		}
		line := "- " + p.Name
		if content, err := memdoc.Load(p.Dir); err == nil {
			if excerpt := memdoc.FirstLine(memdoc.Section(content, "Current State")); excerpt != "" {
				line += ": " + excerpt
			}
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		bld.WriteString("\n### Projects\n" + strings.Join(lines, "\n") + "\n")
	}

	if keys := b.credentialKeys(general.Dir); len(keys) > 0 {
		bld.WriteString("\n### Shared Credentials\nKey names available to projects (values are never shown here):\n")
		for _, k := range keys {
			bld.WriteString("- " + k + "\n")
		}
	}

	bld.WriteString("\n### Management\nYou can create projects, file tasks against any project above, and rotate shared credentials through the management API. Ask for the project by name.\n")
	return bld.String()
}

// credentialKeys lists the names in the shared credential sidecar. Values
// stay on disk; only key names ever enter a prompt.
func (b *Builder) credentialKeys(dir string) []string {
	creds := map[string]string{}
	if err := sidecar.Load(dir, credentialsFile, &creds); err != nil {
		b.log().Warn("credential sidecar unreadable", "error", err)
		return nil
	}
	keys := make([]string, 0, len(creds))
	for k := range creds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
