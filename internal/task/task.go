// Package task defines the queue's task entity and its priority and
// status enums. Tasks are pure data: all analysis over them lives in the
// scope, conflict, and plan packages.
package task

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smkim/qflow/internal/scope"
)

// Priority orders tasks within the same dependency frontier.
// Lower values are scheduled first.
type Priority string

const (
	// PriorityCritical is the highest priority.
	PriorityCritical Priority = "critical"

	// PriorityHigh is above-normal priority.
	PriorityHigh Priority = "high"

	// PriorityNormal is the default priority.
	PriorityNormal Priority = "normal"

	// PriorityLow is the lowest priority.
	PriorityLow Priority = "low"
)

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// Value returns the numeric ordering value: critical=0 through low=3.
// Unrecognized priorities sort after low.
func (p Priority) Value() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// IsValid returns true if this is a recognized priority value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	default:
		return false
	}
}

// ParsePriority normalizes a user-supplied priority string, falling back
// to PriorityNormal for unrecognized input.
func ParsePriority(s string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return PriorityNormal
	}
	return p
}

// Status represents the current state of a queued task.
type Status string

const (
	// StatusQueued indicates the task is waiting to be executed.
	StatusQueued Status = "queued"

	// StatusRunning indicates the task is actively being executed.
	StatusRunning Status = "running"

	// StatusCompleted indicates the task finished successfully.
	StatusCompleted Status = "completed"

	// StatusFailed indicates the task failed.
	StatusFailed Status = "failed"

	// StatusCancelled indicates the task was cancelled before execution.
	StatusCancelled Status = "cancelled"

	// StatusBlocked indicates the task is waiting on unsatisfied dependencies.
	StatusBlocked Status = "blocked"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
// Terminal tasks leave the active queue and are retained only in history.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// IsActive returns true for tasks the conflict detector must consider:
// queued and running work can still collide with new tasks.
func (s Status) IsActive() bool {
	return s == StatusQueued || s == StatusRunning
}

// Task is a single queued unit of work described by a free-text command.
//
// DependsOn may reference ids that are no longer in the store; absent ids
// are treated as already satisfied, never as an error.
type Task struct {
	// ID uniquely identifies the task, e.g. "task-a1b2c3d4".
	ID string `json:"id"`

	// Command is the raw free-text command to execute.
	Command string `json:"command"`

	// Priority orders the task against peers in the same frontier.
	Priority Priority `json:"priority"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Scope is the derived (or caller-supplied) modification scope.
	Scope scope.Info `json:"scope"`

	// DependsOn lists task ids that must complete before this task.
	DependsOn []string `json:"depends_on"`

	// OnSuccess optionally names a follow-up command to run on success.
	OnSuccess string `json:"on_success,omitempty"`

	// OnFail optionally names a follow-up command to run on failure.
	OnFail string `json:"on_fail,omitempty"`

	// CreatedAt is when the task entered the queue.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when execution began, if it has.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the task reached a terminal state, if it has.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Note is an optional free-text annotation.
	Note string `json:"note,omitempty"`

	// ErrorMessage holds the failure reason for failed tasks.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Options configures task creation.
type Options struct {
	Priority  Priority
	DependsOn []string
	OnSuccess string
	OnFail    string
	Note      string

	// Scope overrides derivation when non-nil. When nil the caller is
	// expected to derive a scope with scope.Extractor before enqueueing.
	Scope *scope.Info
}

// New creates a queued task with a fresh id.
func New(command string, opts Options) *Task {
	priority := opts.Priority
	if !priority.IsValid() {
		priority = PriorityNormal
	}
	deps := opts.DependsOn
	if deps == nil {
		deps = []string{}
	}
	sc := scope.Empty()
	if opts.Scope != nil {
		sc = *opts.Scope
	}
	return &Task{
		ID:        NewID(),
		Command:   command,
		Priority:  priority,
		Status:    StatusQueued,
		Scope:     sc,
		DependsOn: deps,
		OnSuccess: opts.OnSuccess,
		OnFail:    opts.OnFail,
		Note:      opts.Note,
		CreatedAt: time.Now(),
	}
}

// NewID generates a task id of the form "task-" plus eight hex characters.
func NewID() string {
	return "task-" + uuid.NewString()[:8]
}

// HasDependencies returns true if this task depends on other tasks.
func (t *Task) HasDependencies() bool {
	return len(t.DependsOn) > 0
}

// DependsOnTask returns true if id appears in this task's dependency list.
func (t *Task) DependsOnTask(id string) bool {
	for _, dep := range t.DependsOn {
		if dep == id {
			return true
		}
	}
	return false
}
