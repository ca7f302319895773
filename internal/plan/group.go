package plan

import (
	"github.com/smkim/qflow/internal/conflict"
	"github.com/smkim/qflow/internal/task"
)

// SoftPair records two tasks in the same group with a SOFT conflict.
type SoftPair struct {
	TaskA string `json:"task_a"`
	TaskB string `json:"task_b"`
}

// Group is an ordered set of tasks that may execute concurrently. No two
// tasks in a group have a HARD conflict; SOFT conflicts are allowed but
// carried as warnings.
type Group struct {
	// Tasks are the members in topological scan order.
	Tasks []*task.Task

	// CanParallel is false for single-task groups, which are trivially
	// sequential.
	CanParallel bool

	// HasSoftConflicts is true when any member pair conflicts softly.
	HasSoftConflicts bool

	// SoftConflictPairs lists the softly conflicting member pairs.
	SoftConflictPairs []SoftPair
}

// TaskIDs returns the member ids in group order.
func (g *Group) TaskIDs() []string {
	ids := make([]string, len(g.Tasks))
	for i, t := range g.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// ExecutionPlan is the full advisory plan: an ordered partition into
// groups plus coarse cost metrics measured in task-count units.
type ExecutionPlan struct {
	Groups []Group

	// TotalGroups is len(Groups).
	TotalGroups int

	// MaxParallelism is the largest group size.
	MaxParallelism int

	// SequentialUnits is the task count: the cost of running everything
	// one at a time at one unit per task.
	SequentialUnits int

	// ParallelUnits is the group count: one unit per group, assuming
	// unlimited within-group concurrency.
	ParallelUnits int

	// SavingsPercent is (sequential-parallel)/sequential*100, floored at 0.
	SavingsPercent float64

	// SessionsNeeded is the number of concurrent execution contexts
	// required to realize the plan: the maximum group size.
	SessionsNeeded int

	// Ungrouped lists ids that could not be scheduled because the task
	// set contains an unresolvable cycle. Always reported, never dropped.
	Ungrouped []string

	// CycleWarning is true when Ungrouped is non-empty.
	CycleWarning bool
}

// BuildGroups greedily partitions tasks into parallel-eligible groups.
//
// Each pass collects the available set (unscheduled tasks whose every
// ordering predecessor is scheduled), then fills one group by scanning in
// topological order and adding a task unless it HARD-conflicts with a
// member already placed. SOFT conflicts do not block inclusion and are
// recorded as warning pairs. Tasks left over when no progress is possible
// belong to a cycle and are returned as the second value.
func BuildGroups(tasks []*task.Task) ([]Group, []string) {
	if len(tasks) == 0 {
		return nil, nil
	}

	g := BuildGraph(tasks)
	byID := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	order := graphOrder(g, tasks, byID)
	scheduled := make(map[string]struct{}, len(tasks))
	var groups []Group

	for len(scheduled) < len(tasks) {
		var available []string
		for _, id := range order {
			if _, done := scheduled[id]; done {
				continue
			}
			ready := true
			for pred := range g.Predecessors(id) {
				if _, done := scheduled[pred]; !done {
					ready = false
					break
				}
			}
			if ready {
				available = append(available, id)
			}
		}

		if len(available) == 0 {
			break
		}

		var group Group
		for _, id := range available {
			candidate := byID[id]
			var softPairs []SoftPair
			blocked := false
			for _, member := range group.Tasks {
				switch conflict.Classify(member, candidate) {
				case conflict.Hard:
					blocked = true
				case conflict.Soft:
					softPairs = append(softPairs, SoftPair{TaskA: member.ID, TaskB: id})
				}
				if blocked {
					break
				}
			}
			if blocked {
				continue // stays available for a later group
			}
			group.Tasks = append(group.Tasks, candidate)
			if len(softPairs) > 0 {
				group.HasSoftConflicts = true
				group.SoftConflictPairs = append(group.SoftConflictPairs, softPairs...)
			}
			scheduled[id] = struct{}{}
		}

		if len(group.Tasks) > 0 {
			group.CanParallel = len(group.Tasks) > 1
			groups = append(groups, group)
		}
	}

	var ungrouped []string
	for _, t := range tasks {
		if _, done := scheduled[t.ID]; !done {
			ungrouped = append(ungrouped, t.ID)
		}
	}

	return groups, ungrouped
}

// BuildPlan computes the full execution plan with cost metrics.
func BuildPlan(tasks []*task.Task) ExecutionPlan {
	groups, ungrouped := BuildGroups(tasks)

	p := ExecutionPlan{
		Groups:          groups,
		TotalGroups:     len(groups),
		SequentialUnits: len(tasks),
		ParallelUnits:   len(groups),
		Ungrouped:       ungrouped,
		CycleWarning:    len(ungrouped) > 0,
	}

	for _, g := range groups {
		if len(g.Tasks) > p.MaxParallelism {
			p.MaxParallelism = len(g.Tasks)
		}
	}
	p.SessionsNeeded = p.MaxParallelism

	if p.SequentialUnits > 0 {
		savings := float64(p.SequentialUnits-p.ParallelUnits) / float64(p.SequentialUnits) * 100
		if savings > 0 {
			p.SavingsPercent = savings
		}
	}

	return p
}

// SessionsNeeded returns the number of concurrent execution contexts a set
// of groups requires: the maximum single-group size.
func SessionsNeeded(groups []Group) int {
	max := 0
	for _, g := range groups {
		if len(g.Tasks) > max {
			max = len(g.Tasks)
		}
	}
	return max
}

// graphOrder runs Kahn's algorithm over the full ordering graph (both edge
// kinds) and returns the ids it could order. Cycle members are absent from
// the result; the grouper reports them as ungrouped.
func graphOrder(g *Graph, tasks []*task.Task, byID map[string]*task.Task) []string {
	inDegree := make(map[string]int, len(tasks))
	for _, t := range tasks {
		inDegree[t.ID] = len(g.Predecessors(t.ID))
	}

	var frontier []string
	for _, t := range tasks {
		if inDegree[t.ID] == 0 {
			frontier = append(frontier, t.ID)
		}
	}

	var order []string
	for len(frontier) > 0 {
		sortFrontier(frontier, byID)
		current := frontier[0]
		frontier = frontier[1:]
		order = append(order, current)

		for succ := range g.Successors(current) {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				frontier = append(frontier, succ)
			}
		}
	}

	return order
}
