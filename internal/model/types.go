// Package model defines the core conversation and project data types.
package model

import "time"

// Message is one stored conversation message. Messages are immutable and
// ordered by CreatedAt within a thread.
type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionSummary is a durable, write-once compression of one closed session.
// Summaries within a thread are chronological and non-overlapping: each new
// summary starts where the previous one's LastMessageAt ended.
type SessionSummary struct {
	ID             string    `json:"id"`
	ThreadID       string    `json:"thread_id"`
	Content        string    `json:"content"`
	MessageCount   int       `json:"message_count"`
	FirstMessageAt time.Time `json:"first_message_at"`
	LastMessageAt  time.Time `json:"last_message_at"`
	LastMessageID  string    `json:"last_message_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Project identifies a workspace directory that context is assembled for.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Dir      string `json:"dir"`
	ParentID string `json:"parent_id,omitempty"`
	// General marks the command-center project, which gets a roster
	// context instead of the normal per-project assembly.
	General bool `json:"general,omitempty"`
}

// FileInfo describes one enumerated workspace file.
type FileInfo struct {
	Name    string    `json:"name"`
	RelPath string    `json:"rel_path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	IsDir   bool      `json:"is_dir"`
}

// ValidRoles are the allowed message roles.
var ValidRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}
