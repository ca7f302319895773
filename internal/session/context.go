// Package session tracks what a working session touches (files, modules,
// directories) and matches queued tasks against that activity. The context
// is fed by tool-use hooks or by the filesystem watcher, persisted as a
// single JSON document, and consumed once at session end.
package session

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Context accumulates the files, modules, and directories a session has
// worked on. It is not safe for concurrent use; Watcher serializes access
// when it feeds a Context from filesystem events.
type Context struct {
	SessionID   string
	Files       map[string]struct{}
	Modules     map[string]struct{}
	Directories map[string]struct{}
	StartedAt   time.Time
	LastUpdated time.Time
}

// NewContext creates an empty context. If id is empty a fresh
// "session-" id is generated.
func NewContext(id string) *Context {
	if id == "" {
		id = "session-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	now := time.Now()
	return &Context{
		SessionID:   id,
		Files:       make(map[string]struct{}),
		Modules:     make(map[string]struct{}),
		Directories: make(map[string]struct{}),
		StartedAt:   now,
		LastUpdated: now,
	}
}

// AddFile records a touched file and derives module and directory context
// from its path: the filename stem and the parent directory name become
// modules, the parent directory path (with a trailing slash) becomes a
// tracked directory.
func (c *Context) AddFile(path string) {
	if path == "" {
		return
	}
	c.Files[path] = struct{}{}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if len([]rune(stem)) > 1 {
		c.Modules[stem] = struct{}{}
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." && dir != string(filepath.Separator) {
		parent := filepath.Base(dir)
		if len([]rune(parent)) > 1 && parent != "." && parent != ".." {
			c.Modules[parent] = struct{}{}
		}
		if !strings.HasSuffix(dir, "/") {
			dir += "/"
		}
		c.Directories[dir] = struct{}{}
	}

	c.touch()
}

// AddModule records a module name directly.
func (c *Context) AddModule(name string) {
	if len([]rune(name)) > 1 {
		c.Modules[name] = struct{}{}
		c.touch()
	}
}

// AddDirectory records a directory, normalized to end with a slash.
func (c *Context) AddDirectory(dir string) {
	if dir == "" {
		return
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	c.Directories[dir] = struct{}{}
	c.touch()
}

// HasWork reports whether anything has been tracked.
func (c *Context) HasWork() bool {
	return len(c.Files) > 0 || len(c.Modules) > 0 || len(c.Directories) > 0
}

// FileList returns the tracked files in sorted order.
func (c *Context) FileList() []string { return sortedSet(c.Files) }

// ModuleList returns the tracked modules in sorted order.
func (c *Context) ModuleList() []string { return sortedSet(c.Modules) }

// DirectoryList returns the tracked directories in sorted order.
func (c *Context) DirectoryList() []string { return sortedSet(c.Directories) }

func (c *Context) touch() {
	c.LastUpdated = time.Now()
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
