// Package memdoc manages the per-project durable memory document
// (CONTEXT.md): template synthesis, backup-on-overwrite, the embedded
// last-updated marker, and staleness detection.
package memdoc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	// FileName is the memory document's name inside a project directory.
	FileName = "CONTEXT.md"

	backupName = "CONTEXT.md.bak"

	// SoftSizeTarget is advisory; agents are asked to stay under it.
	SoftSizeTarget = 8 * 1024

	// HardWarnSize triggers an explicit compress advisory during context
	// assembly. The document is never truncated.
	HardWarnSize = 10 * 1024

	// StaleAfter is how old the marker may get before sibling activity
	// makes the document count as stale.
	StaleAfter = 7 * 24 * time.Hour
)

// Sections every memory document carries, in order.
var Sections = []string{
	"Current State",
	"Active Work",
	"Key Decisions",
	"Architecture",
	"Blockers & Open Questions",
	"Session History",
	"Reference Documents",
}

var markerRe = regexp.MustCompile(`<!-- projectdesk:memory last-updated=([0-9TZ:.+-]+) status=([A-Za-z-]+) -->`)

// Path returns the document path for a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Load reads the document. fs.ErrNotExist passes through for callers that
// synthesize on absence.
func Load(projectDir string) (string, error) {
	data, err := os.ReadFile(Path(projectDir))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Ensure returns the document content, synthesizing and persisting the
// template on first access. When persistence fails the synthesized content
// is still returned so assembly can proceed; created reports whether a new
// document was written.
func Ensure(projectDir string) (content string, created bool, err error) {
	content, err = Load(projectDir)
	if err == nil {
		return content, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", false, err
	}

	content = Template(projectDir)
	if werr := Write(projectDir, content); werr != nil {
		return content, false, werr
	}
	return content, true, nil
}

// Write persists the document, copying any prior version to the backup file
// first.
func Write(projectDir, content string) error {
	path := Path(projectDir)
	if prior, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(filepath.Join(projectDir, backupName), prior, 0o644); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write memory document: %w", err)
	}
	return nil
}

// Marker renders the machine-readable last-updated line.
func Marker(at time.Time, status string) string {
	if status == "" {
		status = "active"
	}
	return fmt.Sprintf("<!-- projectdesk:memory last-updated=%s status=%s -->", at.UTC().Format(time.RFC3339), status)
}

// LastUpdated parses the embedded marker. ok is false when the document has
// no parseable marker.
func LastUpdated(content string) (at time.Time, status string, ok bool) {
	m := markerRe.FindStringSubmatch(content)
	if m == nil {
		return time.Time{}, "", false
	}
	t, err := time.Parse(time.RFC3339, m[1])
	if err != nil {
		return time.Time{}, "", false
	}
	return t, m[2], true
}

// IsStale reports whether the document's marker is older than StaleAfter
// while some sibling file in the project directory has been modified since
// the marker. Both conditions must hold: an old marker over a dormant
// project is merely quiet, not stale.
func IsStale(projectDir, content string, now time.Time) bool {
	at, _, ok := LastUpdated(content)
	if !ok {
		return false
	}
	if now.Sub(at) <= StaleAfter {
		return false
	}

	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if name == FileName || name == backupName || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(at) {
			return true
		}
	}
	return false
}

// Template synthesizes a fresh document, seeding the Reference Documents
// section with headings scraped from existing documentation files in the
// project directory.
func Template(projectDir string) string {
	var b strings.Builder
	b.WriteString("# Project Context\n\n")
	b.WriteString(Marker(time.Now(), "new") + "\n")

	refs := scrapeDocHeadings(projectDir)
	for _, section := range Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", section)
		if section == "Reference Documents" && len(refs) > 0 {
			for _, r := range refs {
				fmt.Fprintf(&b, "- %s\n", r)
			}
			continue
		}
		b.WriteString("(not yet recorded)\n")
	}
	return b.String()
}

// scrapeDocHeadings lists "file: first heading" lines for markdown files
// already in the project directory.
func scrapeDocHeadings(projectDir string) []string {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil
	}
	var refs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == FileName || !strings.HasSuffix(strings.ToLower(name), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(projectDir, name))
		if err != nil {
			continue
		}
		heading := ""
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "#") {
				heading = strings.TrimSpace(strings.TrimLeft(line, "# "))
				break
			}
		}
		if heading != "" {
			refs = append(refs, fmt.Sprintf("%s: %s", name, heading))
		} else {
			refs = append(refs, name)
		}
	}
	sort.Strings(refs)
	return refs
}

// Section extracts the body of one named section, trimmed. Empty string
// when the section is missing.
func Section(content, name string) string {
	lines := strings.Split(content, "\n")
	var body []string
	in := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			if in {
				break
			}
			in = strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")), name)
			continue
		}
		if in {
			body = append(body, line)
		}
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}

// FirstLine returns the first non-empty, non-placeholder line of a section
// body, for one-line excerpts.
func FirstLine(sectionBody string) string {
	for _, line := range strings.Split(sectionBody, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "(not yet recorded)" {
			continue
		}
		return line
	}
	return ""
}
