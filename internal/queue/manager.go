package queue

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/smkim/qflow/internal/conflict"
	"github.com/smkim/qflow/internal/plan"
	"github.com/smkim/qflow/internal/scope"
	"github.com/smkim/qflow/internal/task"
)

// Manager coordinates all queue operations over a Store. It is the single
// writer of the task and history files; every operation is a full
// load-modify-save cycle over the current snapshot.
type Manager struct {
	store     *Store
	extractor *scope.Extractor
	log       *slog.Logger
}

// NewManager creates a manager over the given store. A nil extractor
// falls back to the default bilingual vocabulary.
func NewManager(store *Store, extractor *scope.Extractor, log *slog.Logger) *Manager {
	if extractor == nil {
		extractor = scope.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{store: store, extractor: extractor, log: log}
}

// Add derives the command's scope, checks it against all active tasks,
// and enqueues it only when no conflicts exist. On conflict the task is
// returned un-enqueued with the resolution options; the caller decides
// and retries through AddResolved.
func (m *Manager) Add(command string, opts task.Options) (AddResult, error) {
	sc := m.deriveScope(command, opts)
	opts.Scope = &sc
	t := task.New(command, opts)

	tasks, err := m.store.LoadTasks()
	if err != nil {
		return AddResult{}, err
	}

	conflicts := conflict.Detect(t, tasks)
	result := AddResult{
		Task:           t,
		Conflicts:      conflicts,
		ScopeAnalysis:  sc,
		ActionRequired: len(conflicts) > 0,
	}

	if len(conflicts) > 0 {
		result.Message = MessageConflictDetected
		result.Options = resolutionOptions
		m.log.Info("conflicts detected on add", "task", t.ID, "conflicts", len(conflicts))
		return result, nil
	}

	tasks = append(tasks, t)
	if err := m.store.SaveTasks(tasks); err != nil {
		return AddResult{}, err
	}

	result.Message = MessageTaskAdded
	result.Position = countStatus(tasks, task.StatusQueued)
	return result, nil
}

// AddResolved enqueues a task whose conflict resolution has already been
// decided. The "depend" resolution unions the conflicting ids into the
// task's dependency list; "cancel" drops the task without enqueueing.
func (m *Manager) AddResolved(command, resolution string, conflictIDs []string, opts task.Options) (AddResult, error) {
	sc := m.deriveScope(command, opts)
	opts.Scope = &sc

	if resolution == ResolutionDepend && len(conflictIDs) > 0 {
		opts.DependsOn = unionIDs(opts.DependsOn, conflictIDs)
	}

	t := task.New(command, opts)
	result := AddResult{
		Task:              t,
		ScopeAnalysis:     sc,
		ResolutionApplied: resolution,
	}

	if resolution == ResolutionCancel {
		result.Message = "TASK_CANCELLED"
		return result, nil
	}

	tasks, err := m.store.LoadTasks()
	if err != nil {
		return AddResult{}, err
	}
	tasks = append(tasks, t)
	if err := m.store.SaveTasks(tasks); err != nil {
		return AddResult{}, err
	}

	result.Message = MessageTaskAdded
	result.Position = countStatus(tasks, task.StatusQueued)
	return result, nil
}

// List returns the queue contents. Queued tasks are listed first in
// execution order; a dependency cycle falls back to raw order so listing
// never fails.
func (m *Manager) List(statusFilter string) (ListResult, error) {
	tasks, err := m.store.LoadTasks()
	if err != nil {
		return ListResult{}, err
	}

	if statusFilter != "" {
		filtered := tasks[:0:0]
		for _, t := range tasks {
			if t.Status == task.Status(statusFilter) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	var queued, other []*task.Task
	for _, t := range tasks {
		if t.Status == task.StatusQueued {
			queued = append(queued, t)
		} else {
			other = append(other, t)
		}
	}

	sorted, err := plan.TopologicalSort(queued)
	if err != nil {
		m.log.Warn("cycle in queued tasks, listing in insertion order", "error", err)
		sorted = queued
	}

	order := make([]string, len(sorted))
	for i, t := range sorted {
		order[i] = t.ID
	}

	return ListResult{
		Total:          len(tasks),
		Queued:         len(queued),
		Tasks:          append(append([]*task.Task{}, sorted...), other...),
		ExecutionOrder: order,
	}, nil
}

// Cancel cancels a single queued task by id. Unknown or non-queued ids
// cancel nothing; the result lists what was actually cancelled.
func (m *Manager) Cancel(taskID string) (CancelResult, error) {
	return m.cancel(taskID, false)
}

// CancelAll cancels every queued task.
func (m *Manager) CancelAll() (CancelResult, error) {
	return m.cancel("", true)
}

// Clear is an alias for CancelAll.
func (m *Manager) Clear() (CancelResult, error) {
	return m.CancelAll()
}

func (m *Manager) cancel(taskID string, all bool) (CancelResult, error) {
	tasks, err := m.store.LoadTasks()
	if err != nil {
		return CancelResult{}, err
	}
	history, err := m.store.LoadHistory()
	if err != nil {
		return CancelResult{}, err
	}

	now := time.Now()
	var cancelled []string
	var remaining []*task.Task

	for _, t := range tasks {
		match := t.Status == task.StatusQueued && (all || t.ID == taskID)
		if match && (all || len(cancelled) == 0) {
			t.Status = task.StatusCancelled
			t.CompletedAt = &now
			history.Cancelled = append(history.Cancelled, t)
			cancelled = append(cancelled, t.ID)
			continue
		}
		remaining = append(remaining, t)
	}

	if err := m.store.SaveTasks(remaining); err != nil {
		return CancelResult{}, err
	}
	if err := m.store.SaveHistory(history); err != nil {
		return CancelResult{}, err
	}

	if cancelled == nil {
		cancelled = []string{}
	}
	return CancelResult{
		Cancelled: cancelled,
		Remaining: countStatus(remaining, task.StatusQueued),
	}, nil
}

// Next returns the next executable task without mutating the queue.
func (m *Manager) Next() (NextResult, error) {
	tasks, err := m.store.LoadTasks()
	if err != nil {
		return NextResult{}, err
	}

	next, reason := plan.NextExecutable(tasks)
	if next == nil {
		return NextResult{
			HasNext: false,
			Reason:  reason,
			Message: "No executable tasks (dependencies not met or queue empty)",
		}, nil
	}

	return NextResult{
		HasNext:   true,
		Task:      next,
		Reason:    reason,
		Remaining: countStatus(tasks, task.StatusQueued) - 1,
	}, nil
}

// Start marks a task as running. An unknown id is a data result, not an
// error.
func (m *Manager) Start(taskID string) (StartResult, error) {
	tasks, err := m.store.LoadTasks()
	if err != nil {
		return StartResult{}, err
	}

	for _, t := range tasks {
		if t.ID == taskID {
			now := time.Now()
			t.Status = task.StatusRunning
			t.StartedAt = &now
			if err := m.store.SaveTasks(tasks); err != nil {
				return StartResult{}, err
			}
			return StartResult{Started: taskID}, nil
		}
	}

	return StartResult{Error: fmt.Sprintf("Task %s not found", taskID)}, nil
}

// Complete marks a task completed or failed, snapshots it into history,
// removes it from the active queue, and reports the follow-up work: the
// task's success/failure chain command and the next executable task. On
// failure, only tasks independent of the failed one are considered.
func (m *Manager) Complete(taskID string, success bool, errorMessage string) (CompleteResult, error) {
	tasks, err := m.store.LoadTasks()
	if err != nil {
		return CompleteResult{}, err
	}
	history, err := m.store.LoadHistory()
	if err != nil {
		return CompleteResult{}, err
	}

	var target *task.Task
	for _, t := range tasks {
		if t.ID == taskID {
			target = t
			break
		}
	}
	if target == nil {
		return CompleteResult{
			TaskID: taskID,
			Error:  fmt.Sprintf("Task %s not found", taskID),
		}, nil
	}

	now := time.Now()
	target.CompletedAt = &now

	var chain string
	if success {
		target.Status = task.StatusCompleted
		history.Completed = append(history.Completed, target)
		chain = target.OnSuccess
	} else {
		target.Status = task.StatusFailed
		target.ErrorMessage = errorMessage
		history.Failed = append(history.Failed, target)
		chain = target.OnFail
	}

	var active []*task.Task
	for _, t := range tasks {
		if !t.Status.IsTerminal() {
			active = append(active, t)
		}
	}

	if err := m.store.SaveTasks(active); err != nil {
		return CompleteResult{}, err
	}
	if err := m.store.SaveHistory(history); err != nil {
		return CompleteResult{}, err
	}

	result := CompleteResult{
		TaskID:    taskID,
		Status:    target.Status.String(),
		ChainTask: chain,
	}

	var next *task.Task
	if success {
		next, _ = plan.NextExecutable(active)
	} else {
		if independent := plan.IndependentOf(active, taskID); len(independent) > 0 {
			next = independent[0]
		}
	}

	if next != nil {
		result.NextTask = next
		result.AutoExecute = true
	} else {
		result.QueueEmpty = len(active) == 0
		result.BlockedCount = countStatus(active, task.StatusQueued)
	}

	return result, nil
}

// Move changes a task's priority. "first" maps to critical and "last" to
// low; explicit priority names are applied directly.
func (m *Manager) Move(taskID, position string) (MoveResult, error) {
	tasks, err := m.store.LoadTasks()
	if err != nil {
		return MoveResult{}, err
	}

	for _, t := range tasks {
		if t.ID != taskID {
			continue
		}
		switch position {
		case "first":
			t.Priority = task.PriorityCritical
		case "last":
			t.Priority = task.PriorityLow
		default:
			p := task.Priority(position)
			if !p.IsValid() {
				return MoveResult{Error: fmt.Sprintf("Invalid position %q", position)}, nil
			}
			t.Priority = p
		}
		if err := m.store.SaveTasks(tasks); err != nil {
			return MoveResult{}, err
		}
		return MoveResult{Moved: taskID, NewPriority: t.Priority}, nil
	}

	return MoveResult{Error: fmt.Sprintf("Task %s not found", taskID)}, nil
}

// Status returns the aggregate queue snapshot. "Today" counts use the
// local calendar date of each task's completion timestamp.
func (m *Manager) Status() (StatusResult, error) {
	tasks, err := m.store.LoadTasks()
	if err != nil {
		return StatusResult{}, err
	}
	history, err := m.store.LoadHistory()
	if err != nil {
		return StatusResult{}, err
	}

	return StatusResult{
		Queued:         countStatus(tasks, task.StatusQueued),
		Running:        countStatus(tasks, task.StatusRunning),
		CompletedToday: countToday(history.Completed),
		FailedToday:    countToday(history.Failed),
	}, nil
}

// ParallelPlan computes the advisory execution plan over all queued tasks.
func (m *Manager) ParallelPlan() (PlanResult, error) {
	queued, err := m.loadQueued()
	if err != nil {
		return PlanResult{}, err
	}
	if len(queued) == 0 {
		return PlanResult{Error: "No queued tasks"}, nil
	}

	p := plan.BuildPlan(queued)

	groups := make([]GroupInfo, len(p.Groups))
	for i, g := range p.Groups {
		info := GroupInfo{
			GroupID:           i + 1,
			TaskCount:         len(g.Tasks),
			TaskIDs:           g.TaskIDs(),
			CanParallel:       g.CanParallel,
			HasSoftConflicts:  g.HasSoftConflicts,
			SoftConflictPairs: g.SoftConflictPairs,
		}
		for _, t := range g.Tasks {
			info.TaskCommands = append(info.TaskCommands, truncate(t.Command, 50))
		}
		groups[i] = info
	}

	return PlanResult{
		ParallelPlan: PlanSummary{
			TotalTasks:         len(queued),
			TotalGroups:        p.TotalGroups,
			MaxParallelism:     p.MaxParallelism,
			SequentialUnits:    p.SequentialUnits,
			ParallelUnits:      p.ParallelUnits,
			TimeSavingsPercent: round1(p.SavingsPercent),
			SessionsNeeded:     p.SessionsNeeded,
			UngroupedTaskIDs:   p.Ungrouped,
			CycleWarning:       p.CycleWarning,
		},
		Groups: groups,
	}, nil
}

// ParallelGroup returns the tasks in one parallel group, 1-based.
func (m *Manager) ParallelGroup(groupNum int) (GroupResult, error) {
	queued, err := m.loadQueued()
	if err != nil {
		return GroupResult{}, err
	}
	if len(queued) == 0 {
		return GroupResult{Error: "No queued tasks"}, nil
	}

	groups, _ := plan.BuildGroups(queued)
	if groupNum < 1 || groupNum > len(groups) {
		return GroupResult{
			Error: fmt.Sprintf("Invalid group number. Available: 1-%d", len(groups)),
		}, nil
	}

	g := groups[groupNum-1]
	return GroupResult{
		Group:             groupNum,
		TotalGroups:       len(groups),
		Tasks:             g.Tasks,
		CanParallel:       g.CanParallel,
		HasSoftConflicts:  g.HasSoftConflicts,
		SoftConflictPairs: g.SoftConflictPairs,
	}, nil
}

// AnalyzeConflict classifies the conflict level between two stored tasks.
func (m *Manager) AnalyzeConflict(taskIDA, taskIDB string) (AnalyzeResult, error) {
	tasks, err := m.store.LoadTasks()
	if err != nil {
		return AnalyzeResult{}, err
	}

	var a, b *task.Task
	for _, t := range tasks {
		switch t.ID {
		case taskIDA:
			a = t
		case taskIDB:
			b = t
		}
	}
	if a == nil {
		return AnalyzeResult{Error: fmt.Sprintf("Task %s not found", taskIDA)}, nil
	}
	if b == nil {
		return AnalyzeResult{Error: fmt.Sprintf("Task %s not found", taskIDB)}, nil
	}

	level := conflict.Classify(a, b)
	return AnalyzeResult{
		TaskA:         a.ID,
		TaskB:         b.ID,
		ConflictLevel: level.String(),
		ConflictValue: int(level),
		Description:   level.Description(),
		CanParallel:   level.CanParallel(),
	}, nil
}

// QueuedTasks returns the current queued tasks in store order.
func (m *Manager) QueuedTasks() ([]*task.Task, error) {
	return m.loadQueued()
}

// AllTasks returns the full active task list in store order.
func (m *Manager) AllTasks() ([]*task.Task, error) {
	return m.store.LoadTasks()
}

func (m *Manager) loadQueued() ([]*task.Task, error) {
	tasks, err := m.store.LoadTasks()
	if err != nil {
		return nil, err
	}
	var queued []*task.Task
	for _, t := range tasks {
		if t.Status == task.StatusQueued {
			queued = append(queued, t)
		}
	}
	return queued, nil
}

// deriveScope uses the caller-supplied scope when present, otherwise
// extracts one from the command text.
func (m *Manager) deriveScope(command string, opts task.Options) scope.Info {
	if opts.Scope != nil {
		return *opts.Scope
	}
	return m.extractor.Extract(command)
}

func countStatus(tasks []*task.Task, status task.Status) int {
	n := 0
	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

func countToday(tasks []*task.Task) int {
	today := time.Now().Format("2006-01-02")
	n := 0
	for _, t := range tasks {
		if t.CompletedAt != nil && t.CompletedAt.Format("2006-01-02") == today {
			n++
		}
	}
	return n
}

// truncate clips s to max runes, so multibyte commands never get split
// mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

func unionIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, id := range append(append([]string{}, a...), b...) {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
