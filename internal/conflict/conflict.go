// Package conflict classifies the relationship between pairs of tasks.
//
// Classification is three-valued: None (safe to run concurrently), Soft
// (concurrent execution risks subtle interference and is surfaced as a
// warning), and Hard (must be sequenced). The package offers two entry
// points with deliberately different sensitivity:
//
//   - Classify is the binary scheduler-facing check. Module-name overlap
//     does not influence it.
//   - Detect is the human-facing report produced when a task is added.
//     It surfaces module overlap as a reason alongside file and directory
//     overlaps, but that reason never raises the Classify level.
//
// The asymmetry is a deliberate tiering: module names are too coarse a
// signal to force sequencing, but worth telling a human about.
package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/smkim/qflow/internal/task"
)

// Level is the three-value conflict classification.
type Level int

const (
	// None means the tasks can run concurrently.
	None Level = iota

	// Soft means the tasks can run concurrently but risk subtle
	// interference; surfaced as a warning, never a blocker.
	Soft

	// Hard means the tasks must be sequenced.
	Hard
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case None:
		return "NONE"
	case Soft:
		return "SOFT"
	case Hard:
		return "HARD"
	default:
		return "UNKNOWN"
	}
}

// Description returns a one-line human summary of the level.
func (l Level) Description() string {
	switch l {
	case None:
		return "NONE - Can run in parallel"
	case Soft:
		return "SOFT - Can parallel with warning"
	case Hard:
		return "HARD - Must run sequentially"
	default:
		return "UNKNOWN"
	}
}

// CanParallel returns true unless the level requires sequencing.
func (l Level) CanParallel() bool {
	return l != Hard
}

// Classify returns the conflict level between two tasks. Checks run in
// priority order and the first match wins:
//
//  1. explicit dependency in either direction: Hard
//  2. file-set intersection: Hard
//  3. directory intersection or path-prefix relation: Soft
//  4. one task's exports intersect the other's imports: Soft
//  5. a glob pattern of one task matches a file of the other: Soft
//
// Tasks with empty scopes carry no signal and classify as None.
func Classify(a, b *task.Task) Level {
	if a.DependsOnTask(b.ID) || b.DependsOnTask(a.ID) {
		return Hard
	}
	if len(intersect(a.Scope.Files, b.Scope.Files)) > 0 {
		return Hard
	}
	if directoriesOverlap(a.Scope.Directories, b.Scope.Directories) {
		return Soft
	}
	if len(intersect(a.Scope.Exports, b.Scope.Imports)) > 0 ||
		len(intersect(b.Scope.Exports, a.Scope.Imports)) > 0 {
		return Soft
	}
	if patternsOverlap(a, b) {
		return Soft
	}
	return None
}

// Report describes why a candidate task collides with one existing task.
type Report struct {
	// TaskID identifies the conflicting existing task.
	TaskID string `json:"task_id"`

	// TaskCommand is the existing task's command, for display.
	TaskCommand string `json:"task_command"`

	// Reasons are human-readable overlap descriptions.
	Reasons []string `json:"reasons"`
}

// Detect reports conflicts between a candidate task and every existing
// queued or running task. Module overlap is reported as a reason here even
// though it never affects Classify.
func Detect(candidate *task.Task, existing []*task.Task) []Report {
	var reports []Report

	for _, other := range existing {
		if !other.Status.IsActive() {
			continue
		}

		var reasons []string

		if files := intersect(candidate.Scope.Files, other.Scope.Files); len(files) > 0 {
			reasons = append(reasons, "files: "+strings.Join(files, ", "))
		}
		if modules := intersect(candidate.Scope.Modules, other.Scope.Modules); len(modules) > 0 {
			reasons = append(reasons, "modules: "+strings.Join(modules, ", "))
		}
		for _, cd := range candidate.Scope.Directories {
			for _, od := range other.Scope.Directories {
				if strings.HasPrefix(cd, od) || strings.HasPrefix(od, cd) {
					reasons = append(reasons, fmt.Sprintf("directories: %s ↔ %s", cd, od))
				}
			}
		}

		if len(reasons) > 0 {
			reports = append(reports, Report{
				TaskID:      other.ID,
				TaskCommand: other.Command,
				Reasons:     reasons,
			})
		}
	}

	return reports
}

// intersect returns the sorted intersection of two string slices.
func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, s := range b {
		if _, ok := set[s]; ok {
			if _, dup := seen[s]; !dup {
				out = append(out, s)
				seen[s] = struct{}{}
			}
		}
	}
	sort.Strings(out)
	return out
}

// directoriesOverlap reports exact intersection or a path-prefix relation.
// Prefix checks are plain string prefixes, so "src/auth" also matches
// "src/authorization".
func directoriesOverlap(a, b []string) bool {
	for _, da := range a {
		for _, db := range b {
			if da == db || strings.HasPrefix(da, db) || strings.HasPrefix(db, da) {
				return true
			}
		}
	}
	return false
}

// patternsOverlap reports whether a glob pattern declared by one task
// matches a file declared by the other. Malformed patterns are skipped.
func patternsOverlap(a, b *task.Task) bool {
	return globMatchesAny(a.Scope.Patterns, b.Scope.Files) ||
		globMatchesAny(b.Scope.Patterns, a.Scope.Files)
}

func globMatchesAny(patterns, files []string) bool {
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			continue
		}
		for _, f := range files {
			if g.Match(f) {
				return true
			}
		}
	}
	return false
}
