package plan

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/smkim/qflow/internal/conflict"
	"github.com/smkim/qflow/internal/scope"
	"github.com/smkim/qflow/internal/task"
)

func dirScope(dirs ...string) *scope.Info {
	sc := scope.Empty()
	sc.Directories = dirs
	sc.EstimatedScope = scope.EstimateDirectory
	return &sc
}

func TestBuildGroupsHardConflictSplits(t *testing.T) {
	a := newTask("task-a", 0, task.Options{Scope: fileScope("auth.ts")})
	b := newTask("task-b", 1, task.Options{Scope: fileScope("auth.ts")})
	c := newTask("task-c", 2, task.Options{Scope: fileScope("readme.md")})

	groups, ungrouped := BuildGroups([]*task.Task{a, b, c})
	if len(ungrouped) != 0 {
		t.Fatalf("ungrouped = %v, want none", ungrouped)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	first := groups[0].TaskIDs()
	if len(first) != 2 || first[0] != "task-a" || first[1] != "task-c" {
		t.Errorf("first group = %v, want [task-a task-c]", first)
	}
	if !groups[0].CanParallel {
		t.Error("two-task group should report CanParallel")
	}
	second := groups[1].TaskIDs()
	if len(second) != 1 || second[0] != "task-b" {
		t.Errorf("second group = %v, want [task-b]", second)
	}
	if groups[1].CanParallel {
		t.Error("single-task group must not report CanParallel")
	}
}

func TestBuildGroupsSoftConflictShares(t *testing.T) {
	a := newTask("task-a", 0, task.Options{Scope: dirScope("src/auth/")})
	b := newTask("task-b", 1, task.Options{Scope: dirScope("src/auth/")})

	groups, ungrouped := BuildGroups([]*task.Task{a, b})
	if len(ungrouped) != 0 {
		t.Fatalf("ungrouped = %v, want none", ungrouped)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1 shared group", len(groups))
	}
	g := groups[0]
	if !g.HasSoftConflicts {
		t.Error("group should flag its soft conflicts")
	}
	if len(g.SoftConflictPairs) != 1 {
		t.Fatalf("SoftConflictPairs = %v, want one pair", g.SoftConflictPairs)
	}
	pair := g.SoftConflictPairs[0]
	if pair.TaskA != "task-a" || pair.TaskB != "task-b" {
		t.Errorf("pair = %+v, want task-a/task-b", pair)
	}
}

func TestBuildGroupsDependencyLayers(t *testing.T) {
	a := newTask("task-a", 0, task.Options{})
	b := newTask("task-b", 1, task.Options{DependsOn: []string{"task-a"}})
	c := newTask("task-c", 2, task.Options{DependsOn: []string{"task-a"}})

	groups, _ := BuildGroups([]*task.Task{a, b, c})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 layers", len(groups))
	}
	if got := groups[0].TaskIDs(); len(got) != 1 || got[0] != "task-a" {
		t.Errorf("layer 1 = %v, want [task-a]", got)
	}
	if got := groups[1].TaskIDs(); len(got) != 2 {
		t.Errorf("layer 2 = %v, want both dependents", got)
	}
}

func TestBuildGroupsCyclePartialPlan(t *testing.T) {
	a := newTask("task-a", 0, task.Options{DependsOn: []string{"task-c"}})
	b := newTask("task-b", 1, task.Options{DependsOn: []string{"task-a"}})
	c := newTask("task-c", 2, task.Options{DependsOn: []string{"task-b"}})
	free := newTask("task-free", 3, task.Options{})

	groups, ungrouped := BuildGroups([]*task.Task{a, b, c, free})
	if len(groups) != 1 || groups[0].TaskIDs()[0] != "task-free" {
		t.Fatalf("groups = %v, want only task-free grouped", groups)
	}
	if len(ungrouped) != 3 {
		t.Fatalf("ungrouped = %v, want the three cycle members", ungrouped)
	}
}

func TestBuildPlanMetrics(t *testing.T) {
	a := newTask("task-a", 0, task.Options{Scope: fileScope("x.go")})
	b := newTask("task-b", 1, task.Options{Scope: fileScope("y.go")})
	c := newTask("task-c", 2, task.Options{Scope: fileScope("x.go")})

	p := BuildPlan([]*task.Task{a, b, c})
	if p.SequentialUnits != 3 {
		t.Errorf("SequentialUnits = %d, want 3", p.SequentialUnits)
	}
	if p.ParallelUnits != 2 || p.TotalGroups != 2 {
		t.Errorf("ParallelUnits = %d, TotalGroups = %d, want 2, 2", p.ParallelUnits, p.TotalGroups)
	}
	if p.MaxParallelism != 2 || p.SessionsNeeded != 2 {
		t.Errorf("MaxParallelism = %d, SessionsNeeded = %d, want 2, 2", p.MaxParallelism, p.SessionsNeeded)
	}
	wantSavings := float64(3-2) / 3 * 100
	if p.SavingsPercent != wantSavings {
		t.Errorf("SavingsPercent = %v, want %v", p.SavingsPercent, wantSavings)
	}
	if p.CycleWarning {
		t.Error("no cycle expected")
	}
}

func TestBuildPlanSavingsFlooredAtZero(t *testing.T) {
	// Every task conflicts with every other: groups == tasks, savings 0.
	a := newTask("task-a", 0, task.Options{Scope: fileScope("x.go")})
	b := newTask("task-b", 1, task.Options{Scope: fileScope("x.go")})

	p := BuildPlan([]*task.Task{a, b})
	if p.SavingsPercent != 0 {
		t.Errorf("SavingsPercent = %v, want 0", p.SavingsPercent)
	}
}

func TestBuildPlanEmpty(t *testing.T) {
	p := BuildPlan(nil)
	if p.TotalGroups != 0 || p.SequentialUnits != 0 || p.SavingsPercent != 0 {
		t.Errorf("empty plan = %+v, want zeros", p)
	}
}

// genTaskSet draws a random acyclic task set: dependencies only point at
// earlier tasks, files come from a small pool to force hard conflicts.
func genTaskSet(t *rapid.T) []*task.Task {
	n := rapid.IntRange(1, 12).Draw(t, "n")
	pool := []string{"a.go", "b.go", "c.go", "d.go"}

	tasks := make([]*task.Task, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("task-%02d", i)

		var deps []string
		if i > 0 {
			depCount := rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("deps%d", i))
			for d := 0; d < depCount; d++ {
				dep := rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("dep%d_%d", i, d))
				deps = append(deps, fmt.Sprintf("task-%02d", dep))
			}
		}

		var files []string
		fileCount := rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("files%d", i))
		for f := 0; f < fileCount; f++ {
			idx := rapid.IntRange(0, len(pool)-1).Draw(t, fmt.Sprintf("file%d_%d", i, f))
			files = append(files, pool[idx])
		}

		sc := scope.Empty()
		sc.Files = files
		tasks[i] = newTask(id, i, task.Options{DependsOn: deps, Scope: &sc})
	}
	return tasks
}

func TestBuildGroupsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genTaskSet(t)
		byID := make(map[string]*task.Task)
		for _, tk := range tasks {
			byID[tk.ID] = tk
		}

		groups, ungrouped := BuildGroups(tasks)

		// Partition: every task appears exactly once.
		seen := make(map[string]int)
		for _, g := range groups {
			for _, tk := range g.Tasks {
				seen[tk.ID]++
			}
		}
		for _, id := range ungrouped {
			seen[id]++
		}
		if len(seen) != len(tasks) {
			t.Fatalf("partition covers %d of %d tasks", len(seen), len(tasks))
		}
		for id, count := range seen {
			if count != 1 {
				t.Fatalf("task %s appears %d times", id, count)
			}
		}

		// Acyclic input: nothing may be left ungrouped.
		if len(ungrouped) != 0 {
			t.Fatalf("acyclic input produced ungrouped tasks: %v", ungrouped)
		}

		// No HARD pair shares a group.
		for _, g := range groups {
			for i, a := range g.Tasks {
				for _, b := range g.Tasks[i+1:] {
					if conflict.Classify(a, b) == conflict.Hard {
						t.Fatalf("hard-conflicting pair %s/%s share a group", a.ID, b.ID)
					}
				}
			}
		}

		// Dependencies resolve to a strictly earlier group.
		groupOf := make(map[string]int)
		for gi, g := range groups {
			for _, tk := range g.Tasks {
				groupOf[tk.ID] = gi
			}
		}
		for _, tk := range tasks {
			for _, dep := range tk.DependsOn {
				if _, present := byID[dep]; !present {
					continue
				}
				if groupOf[dep] >= groupOf[tk.ID] {
					t.Fatalf("dependency %s of %s not in an earlier group", dep, tk.ID)
				}
			}
		}
	})
}

func TestTopologicalSortProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genTaskSet(t)

		ordered, err := TopologicalSort(tasks)
		if err != nil {
			t.Fatalf("acyclic input errored: %v", err)
		}
		if len(ordered) != len(tasks) {
			t.Fatalf("ordering lost tasks: %d of %d", len(ordered), len(tasks))
		}

		position := make(map[string]int, len(ordered))
		for i, tk := range ordered {
			position[tk.ID] = i
		}
		for _, tk := range tasks {
			for _, dep := range tk.DependsOn {
				depPos, present := position[dep]
				if !present {
					continue
				}
				if depPos >= position[tk.ID] {
					t.Fatalf("dependency %s ordered after %s", dep, tk.ID)
				}
			}
		}
	})
}
