package conflict

import (
	"strings"
	"testing"

	"github.com/smkim/qflow/internal/scope"
	"github.com/smkim/qflow/internal/task"
)

func newTask(id, command string, sc scope.Info) *task.Task {
	return &task.Task{
		ID:        id,
		Command:   command,
		Priority:  task.PriorityNormal,
		Status:    task.StatusQueued,
		Scope:     sc,
		DependsOn: []string{},
	}
}

func scopeWith(mutate func(*scope.Info)) scope.Info {
	sc := scope.Empty()
	mutate(&sc)
	return sc
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		a, b *task.Task
		want Level
	}{
		{
			name: "shared file is hard",
			a: newTask("task-a", "edit auth.ts", scopeWith(func(s *scope.Info) {
				s.Files = []string{"auth.ts"}
			})),
			b: newTask("task-b", "refactor auth.ts", scopeWith(func(s *scope.Info) {
				s.Files = []string{"auth.ts", "session.ts"}
			})),
			want: Hard,
		},
		{
			name: "explicit dependency is hard even without scope overlap",
			a: func() *task.Task {
				tk := newTask("task-a", "run migrations", scope.Empty())
				tk.DependsOn = []string{"task-b"}
				return tk
			}(),
			b:    newTask("task-b", "write schema", scope.Empty()),
			want: Hard,
		},
		{
			name: "same directory is soft",
			a: newTask("task-a", "work in src/auth/", scopeWith(func(s *scope.Info) {
				s.Directories = []string{"src/auth/"}
			})),
			b: newTask("task-b", "work in src/auth/", scopeWith(func(s *scope.Info) {
				s.Directories = []string{"src/auth/"}
			})),
			want: Soft,
		},
		{
			name: "nested directory is soft",
			a: newTask("task-a", "work in src/", scopeWith(func(s *scope.Info) {
				s.Directories = []string{"src/"}
			})),
			b: newTask("task-b", "work in src/components/", scopeWith(func(s *scope.Info) {
				s.Directories = []string{"src/components/"}
			})),
			want: Soft,
		},
		{
			name: "export feeding an import is soft",
			a: newTask("task-a", "change the auth api", scopeWith(func(s *scope.Info) {
				s.Exports = []string{"validateToken"}
			})),
			b: newTask("task-b", "use the auth api", scopeWith(func(s *scope.Info) {
				s.Imports = []string{"validateToken"}
			})),
			want: Soft,
		},
		{
			name: "glob pattern matching a file is soft",
			a: newTask("task-a", "update all test files", scopeWith(func(s *scope.Info) {
				s.Patterns = []string{"*.test.ts"}
			})),
			b: newTask("task-b", "edit auth.test.ts", scopeWith(func(s *scope.Info) {
				s.Files = []string{"auth.test.ts"}
			})),
			want: Soft,
		},
		{
			name: "module overlap alone is none",
			a: newTask("task-a", "fix the profile bug", scopeWith(func(s *scope.Info) {
				s.Modules = []string{"profile"}
			})),
			b: newTask("task-b", "improve profile", scopeWith(func(s *scope.Info) {
				s.Modules = []string{"profile"}
			})),
			want: None,
		},
		{
			name: "empty scopes are none",
			a:    newTask("task-a", "do something", scope.Empty()),
			b:    newTask("task-b", "do something else", scope.Empty()),
			want: None,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.a, tt.b); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
			// Classification is symmetric.
			if got := Classify(tt.b, tt.a); got != tt.want {
				t.Errorf("Classify() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// File overlap and directory overlap at once: the file check wins.
	a := newTask("task-a", "edit src/auth/token.ts", scopeWith(func(s *scope.Info) {
		s.Files = []string{"src/auth/token.ts"}
		s.Directories = []string{"src/auth/"}
	}))
	b := newTask("task-b", "edit src/auth/token.ts", scopeWith(func(s *scope.Info) {
		s.Files = []string{"src/auth/token.ts"}
		s.Directories = []string{"src/auth/"}
	}))
	if got := Classify(a, b); got != Hard {
		t.Errorf("Classify() = %v, want %v", got, Hard)
	}
}

func TestClassifyMalformedGlob(t *testing.T) {
	a := newTask("task-a", "broken pattern", scopeWith(func(s *scope.Info) {
		s.Patterns = []string{"[unclosed"}
	}))
	b := newTask("task-b", "edit auth.ts", scopeWith(func(s *scope.Info) {
		s.Files = []string{"auth.ts"}
	}))
	if got := Classify(a, b); got != None {
		t.Errorf("Classify() with malformed glob = %v, want %v", got, None)
	}
}

func TestLevel(t *testing.T) {
	if None.String() != "NONE" || Soft.String() != "SOFT" || Hard.String() != "HARD" {
		t.Errorf("unexpected level strings: %v %v %v", None, Soft, Hard)
	}
	if !None.CanParallel() || !Soft.CanParallel() {
		t.Error("NONE and SOFT should allow parallel execution")
	}
	if Hard.CanParallel() {
		t.Error("HARD should not allow parallel execution")
	}
}

func TestDetect(t *testing.T) {
	candidate := newTask("task-new", "fix the profile page", scopeWith(func(s *scope.Info) {
		s.Files = []string{"profile.ts"}
		s.Modules = []string{"profile"}
		s.Directories = []string{"src/views/"}
	}))

	existing := []*task.Task{
		newTask("task-1", "refactor profile.ts", scopeWith(func(s *scope.Info) {
			s.Files = []string{"profile.ts"}
		})),
		newTask("task-2", "improve profile rendering", scopeWith(func(s *scope.Info) {
			s.Modules = []string{"profile"}
		})),
		newTask("task-3", "tidy src/views/widgets/", scopeWith(func(s *scope.Info) {
			s.Directories = []string{"src/views/widgets/"}
		})),
		newTask("task-4", "unrelated work", scopeWith(func(s *scope.Info) {
			s.Files = []string{"billing.go"}
		})),
	}

	reports := Detect(candidate, existing)
	if len(reports) != 3 {
		t.Fatalf("Detect() returned %d reports, want 3", len(reports))
	}

	byID := make(map[string]Report, len(reports))
	for _, r := range reports {
		byID[r.TaskID] = r
	}

	if r, ok := byID["task-1"]; !ok || len(r.Reasons) == 0 || !strings.HasPrefix(r.Reasons[0], "files: ") {
		t.Errorf("task-1 report = %+v, want a files reason", r)
	}
	if r, ok := byID["task-2"]; !ok || len(r.Reasons) == 0 || r.Reasons[0] != "modules: profile" {
		t.Errorf("task-2 report = %+v, want modules reason", r)
	}
	if r, ok := byID["task-3"]; !ok || len(r.Reasons) == 0 || !strings.HasPrefix(r.Reasons[0], "directories: ") {
		t.Errorf("task-3 report = %+v, want directories reason", r)
	}
	if _, ok := byID["task-4"]; ok {
		t.Error("task-4 should not be reported")
	}
}

func TestDetectSkipsTerminalTasks(t *testing.T) {
	candidate := newTask("task-new", "edit auth.ts", scopeWith(func(s *scope.Info) {
		s.Files = []string{"auth.ts"}
	}))
	done := newTask("task-done", "edit auth.ts", scopeWith(func(s *scope.Info) {
		s.Files = []string{"auth.ts"}
	}))
	done.Status = task.StatusCompleted

	if reports := Detect(candidate, []*task.Task{done}); len(reports) != 0 {
		t.Errorf("Detect() = %v, want no reports for terminal tasks", reports)
	}
}

// Module overlap shows up in Detect but never raises Classify above None.
func TestModuleOverlapTiering(t *testing.T) {
	a := newTask("task-a", "fix profile", scopeWith(func(s *scope.Info) {
		s.Modules = []string{"profile"}
	}))
	b := newTask("task-b", "improve profile", scopeWith(func(s *scope.Info) {
		s.Modules = []string{"profile"}
	}))

	if got := Classify(a, b); got != None {
		t.Fatalf("Classify() = %v, want NONE", got)
	}
	reports := Detect(a, []*task.Task{b})
	if len(reports) != 1 || reports[0].Reasons[0] != "modules: profile" {
		t.Fatalf("Detect() = %+v, want a modules reason", reports)
	}
}
