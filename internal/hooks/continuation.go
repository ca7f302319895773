package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultContinuationTTL bounds how long a continuation flag stays valid.
// A stale flag from an abandoned session must not hijack a fresh prompt.
const DefaultContinuationTTL = 5 * time.Minute

// ContinuationInfo describes the next task to pick up after a completion.
type ContinuationInfo struct {
	TaskID    string    `json:"task_id"`
	Command   string    `json:"command"`
	Priority  string    `json:"priority"`
	Remaining int       `json:"remaining"`
	CreatedAt time.Time `json:"created_at"`
}

// ContinuationManager persists the auto-continuation flag file. The flag
// bridges two hook events: Stop writes it when queued work remains, and
// the next UserPromptSubmit consumes it.
type ContinuationManager struct {
	flagPath string
	ttl      time.Duration
}

// NewContinuationManager creates a manager for the given flag file path.
// A non-positive ttl falls back to DefaultContinuationTTL.
func NewContinuationManager(flagPath string, ttl time.Duration) *ContinuationManager {
	if ttl <= 0 {
		ttl = DefaultContinuationTTL
	}
	return &ContinuationManager{flagPath: flagPath, ttl: ttl}
}

// Set writes the continuation flag, stamping CreatedAt.
func (m *ContinuationManager) Set(info ContinuationInfo) error {
	info.CreatedAt = time.Now()
	if info.Priority == "" {
		info.Priority = "normal"
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.flagPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.flagPath, data, 0o644)
}

// Get returns the pending continuation, or nil when the flag is absent,
// corrupt, or older than the TTL. Corrupt and expired flags are removed.
func (m *ContinuationManager) Get() *ContinuationInfo {
	data, err := os.ReadFile(m.flagPath)
	if err != nil {
		return nil
	}

	var info ContinuationInfo
	if err := json.Unmarshal(data, &info); err != nil {
		m.Clear()
		return nil
	}

	if !info.CreatedAt.IsZero() && time.Since(info.CreatedAt) > m.ttl {
		m.Clear()
		return nil
	}
	return &info
}

// Clear removes the flag file if present.
func (m *ContinuationManager) Clear() {
	_ = os.Remove(m.flagPath)
}

// FormatReminder renders the continuation as a system reminder block for
// injection into the next prompt. Returns "" for a nil info.
func FormatReminder(info *ContinuationInfo) string {
	if info == nil {
		return ""
	}

	taskID := info.TaskID
	if taskID == "" {
		taskID = "unknown"
	}
	command := info.Command
	if command == "" {
		command = "next task"
	}
	priority := info.Priority
	if priority == "" {
		priority = "normal"
	}

	return fmt.Sprintf(`<system-reminder>
QUEUE AUTO-CONTINUATION: A queued task is ready for execution.

Next Task:
  ID: %s
  Command: %s
  Priority: %s
  Remaining: %d more task(s) in queue

ACTION REQUIRED: Execute /queue:next immediately to continue the queue.
This is an automated continuation from a previous task completion.
</system-reminder>`, taskID, command, priority, info.Remaining)
}
