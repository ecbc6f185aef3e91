// Package contextpack assembles the bounded context string handed to the
// generation backend before every conversation turn.
package contextpack

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/projectdesk/memory/internal/model"
)

// Resolver maps project ids to workspace directories and exposes the full
// roster for the command-center context and sibling inheritance.
type Resolver interface {
	Project(id string) (model.Project, error)
	Projects() ([]model.Project, error)
}

// ErrUnknownProject is returned for ids the resolver has never seen.
var ErrUnknownProject = errors.New("unknown project")

// FileResolver is a Resolver backed by a flat JSON registry file, the same
// shape the dashboard process maintains.
type FileResolver struct {
	path string
}

// NewFileResolver creates a resolver reading the given registry file.
func NewFileResolver(path string) *FileResolver {
	return &FileResolver{path: path}
}

func (r *FileResolver) Projects() ([]model.Project, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read project registry: %w", err)
	}
	var projects []model.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("parse project registry: %w", err)
	}
	return projects, nil
}

func (r *FileResolver) Project(id string) (model.Project, error) {
	projects, err := r.Projects()
	if err != nil {
		return model.Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("%w: %s", ErrUnknownProject, id)
}

// Add registers a project, replacing any prior entry with the same id.
func (r *FileResolver) Add(p model.Project) error {
	if p.ID == "" || p.Dir == "" {
		return fmt.Errorf("project id and dir are required")
	}
	projects, err := r.Projects()
	if err != nil {
		return err
	}
	out := projects[:0]
	for _, existing := range projects {
		if existing.ID != p.ID {
			out = append(out, existing)
		}
	}
	out = append(out, p)

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write project registry: %w", err)
	}
	return nil
}
