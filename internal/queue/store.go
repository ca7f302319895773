// Package queue owns the durable task list and history log and exposes
// the Manager, which coordinates every queue operation (add, list,
// cancel, start, complete, move, planning) over the file-backed store.
//
// Persistence is a full read-modify-write of a single JSON file per
// operation, with atomic temp-file-and-rename writes. There is no
// cross-process locking: two concurrent invocations against the same
// store can race (last writer wins). That is an accepted limitation of
// the file-backed design; the analysis layers on top are pure functions
// of the loaded snapshot.
package queue

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/smkim/qflow/internal/errors"
	"github.com/smkim/qflow/internal/task"
)

const storeVersion = 1

// tasksFile is the serialized shape of the active task list.
type tasksFile struct {
	Version     int          `json:"version"`
	Tasks       []*task.Task `json:"tasks"`
	LastUpdated time.Time    `json:"last_updated"`
}

// History holds full task-record snapshots at the moment of transition
// out of the active queue.
type History struct {
	Version   int          `json:"version"`
	Completed []*task.Task `json:"completed"`
	Cancelled []*task.Task `json:"cancelled"`
	Failed    []*task.Task `json:"failed"`
}

func newHistory() *History {
	return &History{
		Version:   storeVersion,
		Completed: []*task.Task{},
		Cancelled: []*task.Task{},
		Failed:    []*task.Task{},
	}
}

// Store reads and writes the task list and history files. Paths are
// explicit constructor arguments; nothing here consults process-wide
// defaults.
type Store struct {
	tasksPath   string
	historyPath string
	log         *slog.Logger
}

// NewStore creates a store over the given file paths.
func NewStore(tasksPath, historyPath string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{tasksPath: tasksPath, historyPath: historyPath, log: log}
}

// LoadTasks reads the active task list. A missing or corrupted file
// degrades to an empty list; corruption is logged, never fatal.
func (s *Store) LoadTasks() ([]*task.Task, error) {
	data, err := os.ReadFile(s.tasksPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*task.Task{}, nil
		}
		return nil, errors.NewStoreError("read", s.tasksPath, err)
	}

	var file tasksFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.log.Warn("task file corrupted, treating as empty",
			"path", s.tasksPath, "error", err)
		return []*task.Task{}, nil
	}
	if file.Tasks == nil {
		file.Tasks = []*task.Task{}
	}
	return file.Tasks, nil
}

// SaveTasks writes the active task list atomically: data goes to a
// temporary file first, then renames into place.
func (s *Store) SaveTasks(tasks []*task.Task) error {
	if tasks == nil {
		tasks = []*task.Task{}
	}
	file := tasksFile{
		Version:     storeVersion,
		Tasks:       tasks,
		LastUpdated: time.Now(),
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.NewStoreError("marshal", s.tasksPath, err)
	}
	return atomicWrite(s.tasksPath, data)
}

// LoadHistory reads the history log, degrading to empty on absence or
// corruption.
func (s *Store) LoadHistory() (*History, error) {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return newHistory(), nil
		}
		return nil, errors.NewStoreError("read", s.historyPath, err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		s.log.Warn("history file corrupted, treating as empty",
			"path", s.historyPath, "error", err)
		return newHistory(), nil
	}
	if h.Completed == nil {
		h.Completed = []*task.Task{}
	}
	if h.Cancelled == nil {
		h.Cancelled = []*task.Task{}
	}
	if h.Failed == nil {
		h.Failed = []*task.Task{}
	}
	return &h, nil
}

// SaveHistory writes the history log atomically.
func (s *Store) SaveHistory(h *History) error {
	h.Version = storeVersion
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return errors.NewStoreError("marshal", s.historyPath, err)
	}
	return atomicWrite(s.historyPath, data)
}

// atomicWrite writes data to path via a temporary file and rename.
func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStoreError("mkdir", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.NewStoreError("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return errors.NewStoreError("rename", path, err)
	}
	return nil
}
