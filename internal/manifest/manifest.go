// Package manifest turns a project's file tree, tags, and access counts
// into a size-adaptive text summary for prompt inclusion.
package manifest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/projectdesk/memory/internal/model"
	"github.com/projectdesk/memory/internal/tagger"
	"github.com/projectdesk/memory/internal/tracker"
)

const (
	// Tier boundaries by non-directory file count.
	fullListingMax = 30
	overviewMin    = 100

	recentWindow    = 7 * 24 * time.Hour
	recentCapMedium = 15
	recentCapLarge  = 10

	previewLines    = 3
	previewLineMax  = 100
	excludedDirName = "node_modules"
)

// Build renders the manifest for one project directory. Unreadable files
// and directories are skipped; a project that cannot be enumerated at all
// yields an empty manifest rather than an error.
func Build(projectDir string, log *slog.Logger) string {
	if log == nil {
		log = slog.Default()
	}

	files, err := enumerate(projectDir)
	if err != nil {
		log.Warn("manifest enumeration failed", "dir", projectDir, "error", err)
		return ""
	}

	var b strings.Builder
	b.WriteString("## Project Files\n")

	hot := hotSection(&b, projectDir, log)

	var regular []model.FileInfo
	total := 0
	for _, f := range files {
		if f.IsDir {
			continue
		}
		total++
		if !hot[f.RelPath] {
			regular = append(regular, f)
		}
	}

	switch {
	case total < fullListingMax:
		fullListing(&b, projectDir, regular)
	case total < overviewMin:
		recencyListing(&b, regular, recentCapMedium)
		directoryRollup(&b, regular, false)
	default:
		recencyListing(&b, regular, recentCapLarge)
		directoryRollup(&b, regular, true)
		fmt.Fprintf(&b, "\n%d files total. Use full-text search to locate content instead of this manifest.\n", total)
	}

	return b.String()
}

// enumerate walks the project tree, skipping hidden entries and the
// excluded dependency directory. Unreadable subtrees are skipped silently.
func enumerate(projectDir string) ([]model.FileInfo, error) {
	var files []model.FileInfo
	err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == projectDir {
				return err
			}
			return fs.SkipDir
		}
		if path == projectDir {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || name == excludedDirName {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(projectDir, path)
		if err != nil {
			return nil
		}
		files = append(files, model.FileInfo{
			Name:    name,
			RelPath: filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   d.IsDir(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// hotSection renders the frequently-accessed files and returns their paths
// so the tier body can exclude them.
func hotSection(b *strings.Builder, projectDir string, log *slog.Logger) map[string]bool {
	hotFiles, err := tracker.Hot(projectDir)
	if err != nil {
		log.Warn("hot file lookup failed", "dir", projectDir, "error", err)
		return nil
	}
	if len(hotFiles) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(hotFiles))
	b.WriteString("\n### Frequently Accessed\n")
	for _, fc := range hotFiles {
		if _, err := os.Stat(filepath.Join(projectDir, fc.RelPath)); err != nil {
			continue
		}
		seen[fc.RelPath] = true
		fmt.Fprintf(b, "- %s (%d reads)\n", fc.RelPath, fc.Count)
		for _, line := range preview(filepath.Join(projectDir, fc.RelPath)) {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}
	return seen
}

// preview returns the first few non-empty lines of a file.
func preview(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > previewLineMax {
			line = line[:previewLineMax] + "..."
		}
		out = append(out, line)
		if len(out) == previewLines {
			break
		}
	}
	return out
}

func fullListing(b *strings.Builder, projectDir string, files []model.FileInfo) {
	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].RelPath < files[j].RelPath
	})

	b.WriteString("\n### All Files\n")
	for _, f := range files {
		fmt.Fprintf(b, "- %s (%s, modified %s)", f.RelPath, humanize.Bytes(uint64(f.Size)), f.ModTime.Format("2006-01-02"))
		if isDoc(f.Name) {
			if h := firstHeading(filepath.Join(projectDir, f.RelPath)); h != "" {
				fmt.Fprintf(b, ": %s", h)
			}
			if tags := tagger.Cached(projectDir, f.RelPath); len(tags) > 0 {
				fmt.Fprintf(b, " [%s]", strings.Join(tags, ", "))
			}
		}
		b.WriteString("\n")
	}
}

func recencyListing(b *strings.Builder, files []model.FileInfo, limit int) {
	cutoff := time.Now().Add(-recentWindow)
	var recent []model.FileInfo
	for _, f := range files {
		if f.ModTime.After(cutoff) {
			recent = append(recent, f)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].ModTime.After(recent[j].ModTime)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}

	b.WriteString("\n### Recently Modified\n")
	if len(recent) == 0 {
		b.WriteString("(nothing in the last 7 days)\n")
		return
	}
	for _, f := range recent {
		fmt.Fprintf(b, "- %s (modified %s)\n", f.RelPath, f.ModTime.Format("2006-01-02"))
	}
}

func directoryRollup(b *strings.Builder, files []model.FileInfo, byCount bool) {
	type dirAgg struct {
		count int
		bytes int64
	}
	dirs := map[string]*dirAgg{}
	for _, f := range files {
		dir := filepath.ToSlash(filepath.Dir(f.RelPath))
		if dir == "." {
			dir = "(root)"
		}
		agg := dirs[dir]
		if agg == nil {
			agg = &dirAgg{}
			dirs[dir] = agg
		}
		agg.count++
		agg.bytes += f.Size
	}

	names := make([]string, 0, len(dirs))
	for d := range dirs {
		names = append(names, d)
	}
	if byCount {
		sort.Slice(names, func(i, j int) bool {
			if dirs[names[i]].count != dirs[names[j]].count {
				return dirs[names[i]].count > dirs[names[j]].count
			}
			return names[i] < names[j]
		})
	} else {
		sort.Strings(names)
	}

	b.WriteString("\n### Directories\n")
	for _, d := range names {
		agg := dirs[d]
		fmt.Fprintf(b, "- %s/ (%d files, %s)\n", d, agg.count, humanize.Bytes(uint64(agg.bytes)))
	}
}

func isDoc(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".txt", ".rst":
		return true
	}
	return false
}

func firstHeading(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "# "))
		}
	}
	return ""
}
