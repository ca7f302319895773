package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/smkim/qflow/internal/errors"
)

// contextFile is the on-disk shape of a session context.
type contextFile struct {
	SessionID   string    `json:"session_id"`
	Files       []string  `json:"files"`
	Modules     []string  `json:"modules"`
	Directories []string  `json:"directories"`
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// ContextStore persists a single session context as a JSON file.
type ContextStore struct {
	path string
	log  *slog.Logger
}

// NewContextStore creates a store backed by the given file path.
func NewContextStore(path string, log *slog.Logger) *ContextStore {
	if log == nil {
		log = slog.Default()
	}
	return &ContextStore{path: path, log: log}
}

// Path returns the backing file path.
func (s *ContextStore) Path() string { return s.path }

// Save writes the context to disk, creating parent directories as needed.
func (s *ContextStore) Save(ctx *Context) error {
	doc := contextFile{
		SessionID:   ctx.SessionID,
		Files:       ctx.FileList(),
		Modules:     ctx.ModuleList(),
		Directories: ctx.DirectoryList(),
		StartedAt:   ctx.StartedAt,
		LastUpdated: ctx.LastUpdated,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.NewStoreError("marshal", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.NewStoreError("mkdir", s.path, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.NewStoreError("write", s.path, err)
	}
	return nil
}

// Load reads the stored context. A missing file yields (nil, nil). A file
// that fails to parse is deleted and also yields (nil, nil) so a stale
// corrupt context never wedges the hook pipeline.
func (s *ContextStore) Load() (*Context, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStoreError("read", s.path, err)
	}

	var doc contextFile
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("session context corrupted, discarding", "path", s.path, "error", err)
		_ = os.Remove(s.path)
		return nil, nil
	}

	ctx := NewContext(doc.SessionID)
	ctx.Files = toSet(doc.Files)
	ctx.Modules = toSet(doc.Modules)
	ctx.Directories = toSet(doc.Directories)
	if !doc.StartedAt.IsZero() {
		ctx.StartedAt = doc.StartedAt
	}
	if !doc.LastUpdated.IsZero() {
		ctx.LastUpdated = doc.LastUpdated
	}
	return ctx, nil
}

// Cleanup deletes the context file if present.
func (s *ContextStore) Cleanup() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.NewStoreError("remove", s.path, err)
	}
	return nil
}
