package queue

import (
	"github.com/smkim/qflow/internal/conflict"
	"github.com/smkim/qflow/internal/plan"
	"github.com/smkim/qflow/internal/scope"
	"github.com/smkim/qflow/internal/task"
)

// Manager operations return structured results rather than raising for
// domain conditions: an unknown task id sets the Error field, it does not
// produce a Go error. Go errors are reserved for store failures.

// Messages surfaced in AddResult.Message.
const (
	MessageTaskAdded        = "TASK_ADDED"
	MessageConflictDetected = "CONFLICT_DETECTED"
)

// Resolution choices offered when Add detects conflicts.
const (
	ResolutionParallel = "parallel"
	ResolutionDepend   = "depend"
	ResolutionCancel   = "cancel"
)

// resolutionOptions is the advisory option list shown to the caller.
var resolutionOptions = []string{
	"parallel - Run in parallel (ignore conflicts)",
	"depend - Add dependency (run after conflicting tasks)",
	"cancel - Cancel this task",
}

// AddResult reports the outcome of adding a task.
type AddResult struct {
	Task              *task.Task        `json:"task"`
	Conflicts         []conflict.Report `json:"conflicts"`
	ScopeAnalysis     scope.Info        `json:"scope_analysis"`
	ActionRequired    bool              `json:"action_required"`
	Message           string            `json:"message"`
	Options           []string          `json:"options,omitempty"`
	Position          int               `json:"position,omitempty"`
	ResolutionApplied string            `json:"resolution_applied,omitempty"`
}

// ListResult is a queue listing with the computed execution order.
type ListResult struct {
	Total          int          `json:"total"`
	Queued         int          `json:"queued"`
	Tasks          []*task.Task `json:"tasks"`
	ExecutionOrder []string     `json:"execution_order"`
}

// CancelResult reports which tasks were cancelled.
type CancelResult struct {
	Cancelled []string `json:"cancelled"`
	Remaining int      `json:"remaining"`
}

// NextResult reports the next executable task, if any. Reason
// distinguishes an empty queue from an all-blocked one.
type NextResult struct {
	HasNext   bool            `json:"has_next"`
	Task      *task.Task      `json:"task,omitempty"`
	Remaining int             `json:"remaining,omitempty"`
	Reason    plan.NextReason `json:"reason,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// StartResult reports a task transition to running.
type StartResult struct {
	Started string `json:"started,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CompleteResult reports a task completion or failure along with the
// follow-up work the caller should consider.
type CompleteResult struct {
	TaskID       string     `json:"task_id"`
	Status       string     `json:"status"`
	ChainTask    string     `json:"chain_task,omitempty"`
	NextTask     *task.Task `json:"next_task,omitempty"`
	AutoExecute  bool       `json:"auto_execute,omitempty"`
	QueueEmpty   bool       `json:"queue_empty,omitempty"`
	BlockedCount int        `json:"blocked_count,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// MoveResult reports a priority change.
type MoveResult struct {
	Moved       string        `json:"moved,omitempty"`
	NewPriority task.Priority `json:"new_priority,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// StatusResult is the aggregate queue snapshot.
type StatusResult struct {
	Queued         int `json:"queued"`
	Running        int `json:"running"`
	CompletedToday int `json:"completed_today"`
	FailedToday    int `json:"failed_today"`
}

// GroupInfo is the serializable summary of one parallel group.
type GroupInfo struct {
	GroupID           int             `json:"group_id"`
	TaskCount         int             `json:"task_count"`
	TaskIDs           []string        `json:"task_ids"`
	TaskCommands      []string        `json:"task_commands"`
	CanParallel       bool            `json:"can_parallel"`
	HasSoftConflicts  bool            `json:"has_soft_conflicts"`
	SoftConflictPairs []plan.SoftPair `json:"soft_conflict_pairs,omitempty"`
}

// PlanSummary holds the aggregate metrics of a parallel plan.
type PlanSummary struct {
	TotalTasks         int      `json:"total_tasks"`
	TotalGroups        int      `json:"total_groups"`
	MaxParallelism     int      `json:"max_parallelism"`
	SequentialUnits    int      `json:"sequential_time_units"`
	ParallelUnits      int      `json:"parallel_time_units"`
	TimeSavingsPercent float64  `json:"time_savings_percent"`
	SessionsNeeded     int      `json:"sessions_needed"`
	UngroupedTaskIDs   []string `json:"ungrouped_task_ids,omitempty"`
	CycleWarning       bool     `json:"cycle_warning,omitempty"`
}

// PlanResult is the full parallel execution plan report.
type PlanResult struct {
	ParallelPlan PlanSummary `json:"parallel_plan"`
	Groups       []GroupInfo `json:"groups"`
	Error        string      `json:"error,omitempty"`
}

// GroupResult reports the tasks in a single parallel group.
type GroupResult struct {
	Group             int             `json:"group,omitempty"`
	TotalGroups       int             `json:"total_groups,omitempty"`
	Tasks             []*task.Task    `json:"tasks,omitempty"`
	CanParallel       bool            `json:"can_parallel,omitempty"`
	HasSoftConflicts  bool            `json:"has_soft_conflicts,omitempty"`
	SoftConflictPairs []plan.SoftPair `json:"soft_conflict_pairs,omitempty"`
	Error             string          `json:"error,omitempty"`
}

// AnalyzeResult reports the conflict level between two tasks.
type AnalyzeResult struct {
	TaskA         string `json:"task_a,omitempty"`
	TaskB         string `json:"task_b,omitempty"`
	ConflictLevel string `json:"conflict_level,omitempty"`
	ConflictValue int    `json:"conflict_value"`
	Description   string `json:"description,omitempty"`
	CanParallel   bool   `json:"can_parallel"`
	Error         string `json:"error,omitempty"`
}
