package session

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/smkim/qflow/internal/task"
)

// DefaultMatchThreshold is the minimum score for a task to count as
// matching the session context.
const DefaultMatchThreshold = 0.3

// Matcher scores queued tasks against a session context. Files are the
// most specific signal, then modules, then directories.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher { return &Matcher{} }

// MatchScore returns a score in [0, 1] for how well a task's scope lines
// up with what the session worked on. A context with no tracked work, or
// a task without scope, scores 0. The weighted blend is boosted so that a
// single strong dimension (an exact file hit, say) cannot be diluted below
// 0.8 of its own strength by the other two dimensions.
func (m *Matcher) MatchScore(t *task.Task, ctx *Context) float64 {
	if ctx == nil || !ctx.HasWork() {
		return 0
	}
	if !t.Scope.HasSignal() {
		return 0
	}

	fileOverlap := m.fileOverlap(t.Scope.Files, ctx)
	moduleOverlap := m.moduleOverlap(t.Scope.Modules, ctx)
	dirOverlap := m.directoryOverlap(t.Scope.Directories, ctx)

	weighted := fileOverlap*0.5 + moduleOverlap*0.35 + dirOverlap*0.15

	maxSingle := fileOverlap
	if moduleOverlap > maxSingle {
		maxSingle = moduleOverlap
	}
	if dirOverlap > maxSingle {
		maxSingle = dirOverlap
	}
	if boosted := maxSingle * 0.8; boosted > weighted {
		weighted = boosted
	}
	if weighted > 1 {
		weighted = 1
	}
	return weighted
}

// FindMatching returns the tasks scoring at or above threshold, sorted by
// score descending. Ties keep their input order.
func (m *Matcher) FindMatching(tasks []*task.Task, ctx *Context, threshold float64) []*task.Task {
	type scored struct {
		score float64
		t     *task.Task
	}
	var matches []scored
	for _, t := range tasks {
		if score := m.MatchScore(t, ctx); score >= threshold {
			matches = append(matches, scored{score, t})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]*task.Task, len(matches))
	for i, mt := range matches {
		out[i] = mt.t
	}
	return out
}

// fileOverlap prefers exact path matches; failing that, matches on bare
// filenames at a 0.8 discount since the same name in a different tree is
// a weaker signal.
func (m *Matcher) fileOverlap(taskFiles []string, ctx *Context) float64 {
	if len(taskFiles) == 0 {
		return 0
	}

	exact := 0
	for _, f := range taskFiles {
		if _, ok := ctx.Files[f]; ok {
			exact++
		}
	}
	if exact > 0 {
		return float64(exact) / float64(len(taskFiles))
	}

	ctxNames := make(map[string]struct{}, len(ctx.Files))
	for f := range ctx.Files {
		ctxNames[filepath.Base(f)] = struct{}{}
	}
	nameHits := make(map[string]struct{})
	for _, f := range taskFiles {
		if _, ok := ctxNames[filepath.Base(f)]; ok {
			nameHits[filepath.Base(f)] = struct{}{}
		}
	}
	if len(nameHits) > 0 {
		return float64(len(nameHits)) / float64(len(taskFiles)) * 0.8
	}
	return 0
}

// moduleOverlap compares module names case-insensitively. Exact hits score
// proportionally; otherwise substring containment in either direction earns
// half credit per task module.
func (m *Matcher) moduleOverlap(taskModules []string, ctx *Context) float64 {
	if len(taskModules) == 0 {
		return 0
	}

	ctxLower := make(map[string]struct{}, len(ctx.Modules))
	for mod := range ctx.Modules {
		ctxLower[strings.ToLower(mod)] = struct{}{}
	}
	taskLower := make([]string, 0, len(taskModules))
	seen := make(map[string]struct{}, len(taskModules))
	for _, mod := range taskModules {
		lower := strings.ToLower(mod)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		taskLower = append(taskLower, lower)
	}

	exact := 0
	for _, tm := range taskLower {
		if _, ok := ctxLower[tm]; ok {
			exact++
		}
	}
	if exact > 0 {
		return float64(exact) / float64(len(taskLower))
	}

	partial := 0.0
	for _, tm := range taskLower {
		for cm := range ctxLower {
			if strings.Contains(cm, tm) || strings.Contains(tm, cm) {
				partial += 0.5 / float64(len(taskLower))
			}
		}
	}
	if partial > 1 {
		partial = 1
	}
	return partial
}

// directoryOverlap counts task directories that match a context directory
// exactly or through a parent/child prefix relationship.
func (m *Matcher) directoryOverlap(taskDirs []string, ctx *Context) float64 {
	if len(taskDirs) == 0 {
		return 0
	}

	normalized := make(map[string]struct{}, len(taskDirs))
	for _, d := range taskDirs {
		if !strings.HasSuffix(d, "/") {
			d += "/"
		}
		normalized[d] = struct{}{}
	}

	overlap := 0
	for td := range normalized {
		for cd := range ctx.Directories {
			if td == cd || strings.HasPrefix(td, cd) || strings.HasPrefix(cd, td) {
				overlap++
				break
			}
		}
	}
	if overlap == 0 {
		return 0
	}
	return float64(overlap) / float64(len(normalized))
}
