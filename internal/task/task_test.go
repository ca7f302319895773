package task

import (
	"strings"
	"testing"

	"github.com/smkim/qflow/internal/scope"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"critical", PriorityCritical},
		{"HIGH", PriorityHigh},
		{"  normal ", PriorityNormal},
		{"low", PriorityLow},
		{"urgent", PriorityNormal},
		{"", PriorityNormal},
	}
	for _, tt := range tests {
		if got := ParsePriority(tt.in); got != tt.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPriorityValueOrdering(t *testing.T) {
	order := []Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow}
	for i := 1; i < len(order); i++ {
		if order[i-1].Value() >= order[i].Value() {
			t.Errorf("%v.Value() = %d not below %v.Value() = %d",
				order[i-1], order[i-1].Value(), order[i], order[i].Value())
		}
	}
	if Priority("bogus").Value() <= PriorityLow.Value() {
		t.Error("unknown priority should sort after low")
	}
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
		active   bool
	}{
		{StatusQueued, false, true},
		{StatusRunning, false, true},
		{StatusCompleted, true, false},
		{StatusFailed, true, false},
		{StatusCancelled, true, false},
		{StatusBlocked, false, false},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%v.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
		if got := tt.status.IsActive(); got != tt.active {
			t.Errorf("%v.IsActive() = %v, want %v", tt.status, got, tt.active)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	tk := New("fix the login bug", Options{})

	if !strings.HasPrefix(tk.ID, "task-") || len(tk.ID) != len("task-")+8 {
		t.Errorf("ID = %q, want task- plus 8 hex chars", tk.ID)
	}
	if tk.Priority != PriorityNormal {
		t.Errorf("Priority = %v, want normal", tk.Priority)
	}
	if tk.Status != StatusQueued {
		t.Errorf("Status = %v, want queued", tk.Status)
	}
	if tk.DependsOn == nil || len(tk.DependsOn) != 0 {
		t.Errorf("DependsOn = %v, want empty non-nil slice", tk.DependsOn)
	}
	if tk.Scope.HasSignal() {
		t.Errorf("Scope = %+v, want empty without an override", tk.Scope)
	}
	if tk.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestNewWithOptions(t *testing.T) {
	sc := scope.Info{Files: []string{"auth.ts"}}
	tk := New("edit auth.ts", Options{
		Priority:  Priority("invalid"),
		DependsOn: []string{"task-aaaa1111"},
		OnSuccess: "run the tests",
		Note:      "from review",
		Scope:     &sc,
	})

	if tk.Priority != PriorityNormal {
		t.Errorf("Priority = %v, want invalid input normalized", tk.Priority)
	}
	if !tk.DependsOnTask("task-aaaa1111") {
		t.Errorf("DependsOn = %v", tk.DependsOn)
	}
	if tk.DependsOnTask("task-bbbb2222") {
		t.Error("DependsOnTask matched an absent id")
	}
	if tk.OnSuccess != "run the tests" || tk.Note != "from review" {
		t.Errorf("task = %+v, want options carried over", tk)
	}
	if len(tk.Scope.Files) != 1 || tk.Scope.Files[0] != "auth.ts" {
		t.Errorf("Scope.Files = %v, want the override", tk.Scope.Files)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
