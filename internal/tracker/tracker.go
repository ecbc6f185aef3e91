// Package tracker keeps persistent per-project counters of file reads,
// used to promote frequently accessed files in manifests.
package tracker

import (
	"fmt"
	"sort"

	"github.com/projectdesk/memory/internal/sidecar"
)

const (
	// HotThreshold is the access count at which a file counts as hot.
	HotThreshold = 3

	countsFile = "access-counts.json"
)

// FileCount pairs a relative path with its access count.
type FileCount struct {
	RelPath string `json:"rel_path"`
	Count   int    `json:"count"`
}

// Increment bumps the counter for one file. Counts only ever grow; the whole
// per-project map is rewritten on each call.
func Increment(projectDir, relPath string) error {
	if relPath == "" {
		return fmt.Errorf("empty relative path")
	}
	counts := map[string]int{}
	if err := sidecar.Load(projectDir, countsFile, &counts); err != nil {
		return err
	}
	counts[relPath]++
	return sidecar.Save(projectDir, countsFile, counts)
}

// Counts returns the raw per-file counter map for a project.
func Counts(projectDir string) (map[string]int, error) {
	counts := map[string]int{}
	if err := sidecar.Load(projectDir, countsFile, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// Top returns the n most accessed files, highest count first. Ties are
// broken by path so output is stable.
func Top(projectDir string, n int) ([]FileCount, error) {
	counts, err := Counts(projectDir)
	if err != nil {
		return nil, err
	}
	out := make([]FileCount, 0, len(counts))
	for rel, c := range counts {
		out = append(out, FileCount{RelPath: rel, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].RelPath < out[j].RelPath
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Hot returns the files at or above HotThreshold, highest count first.
func Hot(projectDir string) ([]FileCount, error) {
	top, err := Top(projectDir, 0)
	if err != nil {
		return nil, err
	}
	hot := top[:0]
	for _, fc := range top {
		if fc.Count >= HotThreshold {
			hot = append(hot, fc)
		}
	}
	return hot, nil
}
