// Package plan builds dependency graphs over queued tasks and produces
// execution orderings and advisory parallel-execution plans.
//
// The "parallel execution" produced here is a planning artifact for an
// external actor (a human or an agent running multiple sessions); nothing
// in this package spawns or supervises work.
package plan

import (
	"sort"

	"github.com/smkim/qflow/internal/conflict"
	"github.com/smkim/qflow/internal/errors"
	"github.com/smkim/qflow/internal/task"
)

// EdgeKind distinguishes why an ordering constraint exists between tasks.
type EdgeKind string

const (
	// EdgeDependency is an explicit depends_on declaration.
	EdgeDependency EdgeKind = "dependency"

	// EdgeHardConflict is inferred from a HARD scope conflict.
	EdgeHardConflict EdgeKind = "hard_conflict"
)

// Graph is a directed graph over task ids. Every edge, regardless of kind,
// means "from must complete before to". Soft conflicts never become edges;
// the grouper tracks them out of band as warning pairs.
type Graph struct {
	nodes map[string]struct{}
	edges map[string]map[string]EdgeKind // from -> to -> kind
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[string]map[string]EdgeKind),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = struct{}{}
}

// AddEdge adds a directed ordering constraint from one node to another.
func (g *Graph) AddEdge(from, to string, kind EdgeKind) {
	g.AddNode(from)
	g.AddNode(to)
	if g.edges[from] == nil {
		g.edges[from] = make(map[string]EdgeKind)
	}
	g.edges[from][to] = kind
}

// HasEdge reports whether an edge exists in the given direction.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edges[from][to]
	return ok
}

// Predecessors returns the set of nodes that must complete before id.
func (g *Graph) Predecessors(id string) map[string]struct{} {
	preds := make(map[string]struct{})
	for from, targets := range g.edges {
		if _, ok := targets[id]; ok {
			preds[from] = struct{}{}
		}
	}
	return preds
}

// Successors returns the set of nodes ordered after id.
func (g *Graph) Successors(id string) map[string]struct{} {
	succs := make(map[string]struct{})
	for to := range g.edges[id] {
		succs[to] = struct{}{}
	}
	return succs
}

// BuildGraph constructs the ordering graph for a task set: one edge per
// explicit dependency (dependency before dependent) and one edge per
// inferred HARD conflict pair, directed from whichever task appears
// earlier in the input to the later one.
//
// Dependency ids absent from the input are treated as already satisfied
// and produce no edge. When a pair is both explicitly dependent and
// HARD-conflicting, only the dependency edge is kept: the declared
// direction wins over the input-order tie-break.
func BuildGraph(tasks []*task.Task) *Graph {
	g := NewGraph()
	present := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		g.AddNode(t.ID)
		present[t.ID] = struct{}{}
	}

	for _, t := range tasks {
		for _, depID := range t.DependsOn {
			if _, ok := present[depID]; ok {
				g.AddEdge(depID, t.ID, EdgeDependency)
			}
		}
	}

	for i, a := range tasks {
		for _, b := range tasks[i+1:] {
			if g.HasEdge(a.ID, b.ID) || g.HasEdge(b.ID, a.ID) {
				continue
			}
			if conflict.Classify(a, b) == conflict.Hard {
				g.AddEdge(a.ID, b.ID, EdgeHardConflict)
			}
		}
	}

	return g
}

// TopologicalSort orders tasks so every explicit dependency precedes its
// dependent, using Kahn's algorithm. Within a frontier, ties break by
// ascending priority value (critical first) then creation time. Returns a
// CycleError when the graph cannot be fully ordered; the partial order is
// never returned silently.
func TopologicalSort(tasks []*task.Task) ([]*task.Task, error) {
	if len(tasks) == 0 {
		return []*task.Task{}, nil
	}

	byID := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	inDegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		inDegree[t.ID] = 0
	}
	for _, t := range tasks {
		for _, depID := range t.DependsOn {
			if _, ok := byID[depID]; ok {
				inDegree[t.ID]++
				dependents[depID] = append(dependents[depID], t.ID)
			}
		}
	}

	var frontier []string
	for _, t := range tasks {
		if inDegree[t.ID] == 0 {
			frontier = append(frontier, t.ID)
		}
	}

	result := make([]*task.Task, 0, len(tasks))
	for len(frontier) > 0 {
		sortFrontier(frontier, byID)
		current := frontier[0]
		frontier = frontier[1:]
		result = append(result, byID[current])

		for _, depID := range dependents[current] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				frontier = append(frontier, depID)
			}
		}
	}

	if len(result) != len(tasks) {
		ordered := make(map[string]struct{}, len(result))
		for _, t := range result {
			ordered[t.ID] = struct{}{}
		}
		var remaining []string
		for _, t := range tasks {
			if _, ok := ordered[t.ID]; !ok {
				remaining = append(remaining, t.ID)
			}
		}
		sort.Strings(remaining)
		return nil, errors.NewCycleError(remaining)
	}

	return result, nil
}

// sortFrontier orders a ready frontier by priority value, then creation
// time, then id for full determinism.
func sortFrontier(ids []string, byID map[string]*task.Task) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := byID[ids[i]], byID[ids[j]]
		if a.Priority.Value() != b.Priority.Value() {
			return a.Priority.Value() < b.Priority.Value()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// NextReason explains why NextExecutable returned no task.
type NextReason string

const (
	// NextFound means an executable task was returned.
	NextFound NextReason = "found"

	// NextQueueEmpty means no queued tasks exist at all.
	NextQueueEmpty NextReason = "queue_empty"

	// NextAllBlocked means queued tasks exist but every one is waiting on
	// an incomplete dependency (or the queue contains a cycle).
	NextAllBlocked NextReason = "all_blocked"
)

// NextExecutable returns the first queued task, in priority-tie-broken
// topological order, whose every dependency is completed or absent from
// the task set. Absent dependency ids are treated as already satisfied.
func NextExecutable(tasks []*task.Task) (*task.Task, NextReason) {
	present := make(map[string]struct{}, len(tasks))
	completed := make(map[string]struct{})
	var queued []*task.Task
	for _, t := range tasks {
		present[t.ID] = struct{}{}
		if t.Status == task.StatusCompleted {
			completed[t.ID] = struct{}{}
		}
		if t.Status == task.StatusQueued {
			queued = append(queued, t)
		}
	}

	if len(queued) == 0 {
		return nil, NextQueueEmpty
	}

	ordered, err := TopologicalSort(queued)
	if err != nil {
		// A cycle in the queued set blocks the cycle members but the
		// sorted prefix is unavailable here; fall back to scanning raw
		// order so independent tasks still execute.
		ordered = queued
	}

	for _, t := range ordered {
		satisfied := true
		for _, depID := range t.DependsOn {
			if _, exists := present[depID]; !exists {
				continue // absent dependency: treated as satisfied
			}
			if _, done := completed[depID]; !done {
				satisfied = false
				break
			}
		}
		if satisfied {
			return t, NextFound
		}
	}

	return nil, NextAllBlocked
}

// IndependentOf returns the queued tasks that do not depend, directly or
// transitively, on the failed task. Input order is preserved.
func IndependentOf(tasks []*task.Task, failedID string) []*task.Task {
	blocked := map[string]struct{}{failedID: {}}

	for changed := true; changed; {
		changed = false
		for _, t := range tasks {
			if _, already := blocked[t.ID]; already {
				continue
			}
			for _, depID := range t.DependsOn {
				if _, dep := blocked[depID]; dep {
					blocked[t.ID] = struct{}{}
					changed = true
					break
				}
			}
		}
	}

	var independent []*task.Task
	for _, t := range tasks {
		if _, isBlocked := blocked[t.ID]; isBlocked {
			continue
		}
		if t.Status == task.StatusQueued {
			independent = append(independent, t)
		}
	}
	return independent
}
