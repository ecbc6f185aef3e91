package tagger

import (
	"os"
	"path/filepath"

	"github.com/projectdesk/memory/internal/sidecar"
)

const cacheFile = "tag-cache.json"

// GetOrGenerate returns the cached tags for a file, computing and caching
// them on first request. A non-empty cached result is never recomputed, even
// if the file changes afterwards. Use Regenerate to force a recompute.
func GetOrGenerate(projectDir, relPath string) ([]string, error) {
	cache := map[string][]string{}
	if err := sidecar.Load(projectDir, cacheFile, &cache); err != nil {
		return nil, err
	}
	if tags, ok := cache[relPath]; ok && len(tags) > 0 {
		return tags, nil
	}
	return Regenerate(projectDir, relPath)
}

// Regenerate computes tags from the file's current content and overwrites
// any cached entry.
func Regenerate(projectDir, relPath string) ([]string, error) {
	cache := map[string][]string{}
	if err := sidecar.Load(projectDir, cacheFile, &cache); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(projectDir, relPath))
	if err != nil {
		return nil, err
	}
	tags := Tags(string(data))
	cache[relPath] = tags
	if err := sidecar.Save(projectDir, cacheFile, cache); err != nil {
		return nil, err
	}
	return tags, nil
}

// Cached returns the cached tags for a file without computing anything.
func Cached(projectDir, relPath string) []string {
	cache := map[string][]string{}
	if err := sidecar.Load(projectDir, cacheFile, &cache); err != nil {
		return nil
	}
	return cache[relPath]
}
