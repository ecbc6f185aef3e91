// Package sidecar reads and writes the flat JSON documents kept alongside a
// project's workspace files (access counts, tag cache, credentials).
package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir is the per-project sidecar directory name.
const Dir = ".projectdesk"

// Path returns the absolute path of a sidecar document.
func Path(projectDir, name string) string {
	return filepath.Join(projectDir, Dir, name)
}

// Load decodes the named sidecar document into v. A missing document is not
// an error; v is left untouched.
func Load(projectDir, name string, v any) error {
	data, err := os.ReadFile(Path(projectDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read sidecar %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse sidecar %s: %w", name, err)
	}
	return nil
}

// Save rewrites the named sidecar document wholesale. Concurrent writers to
// the same document can race and lose an update; per-project write
// concurrency is expected to stay low enough for that to be tolerable.
func Save(projectDir, name string, v any) error {
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sidecar dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sidecar %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write sidecar %s: %w", name, err)
	}
	return nil
}
