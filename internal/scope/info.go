// Package scope derives structured modification scopes from free-text task
// commands. A scope captures the files, directories, and modules a command
// is expected to touch, and feeds conflict classification, parallel
// planning, and session matching.
package scope

// Estimate classifies how broad an extracted scope is.
//
// Precedence is fixed: a file-level signal dominates a directory-level one,
// which dominates a module-level one. File references are the most specific
// signal available, so they win even when a module name also matched.
type Estimate string

const (
	// EstimateFile indicates the command references specific files.
	EstimateFile Estimate = "file"

	// EstimateDirectory indicates the command references directories
	// but no specific files.
	EstimateDirectory Estimate = "directory"

	// EstimateModule indicates the command references modules or
	// components but no files or directories.
	EstimateModule Estimate = "module"

	// EstimateProject indicates a broad-scope command ("all", "project",
	// "everything") with no narrower signal.
	EstimateProject Estimate = "project"

	// EstimateUnknown indicates no usable signal was found. Unknown scopes
	// are compatible with everything and never produce conflicts.
	EstimateUnknown Estimate = "unknown"
)

// String returns the string representation of the estimate.
func (e Estimate) String() string {
	return string(e)
}

// IsValid returns true if this is a recognized estimate value.
func (e Estimate) IsValid() bool {
	switch e {
	case EstimateFile, EstimateDirectory, EstimateModule, EstimateProject, EstimateUnknown:
		return true
	default:
		return false
	}
}

// Info is the structured modification scope of a single task command.
//
// All slices are deduplicated and sorted so that extraction is
// deterministic and serialized forms are stable. An Info is never mutated
// after creation; replace it wholesale instead.
type Info struct {
	// Files lists referenced file names or paths.
	Files []string `json:"files"`

	// Directories lists referenced directory paths.
	Directories []string `json:"directories"`

	// Modules lists referenced module or component names.
	Modules []string `json:"modules"`

	// Patterns lists free-text glob patterns, e.g. "*.test.ts".
	Patterns []string `json:"patterns"`

	// Imports lists symbols or modules this task's code consumes.
	// Populated only when the caller supplies them explicitly.
	Imports []string `json:"imports,omitempty"`

	// Exports lists symbols or modules this task's code provides.
	Exports []string `json:"exports,omitempty"`

	// EstimatedScope is the coarse breadth classification.
	EstimatedScope Estimate `json:"estimated_scope"`
}

// Empty returns an Info with no signal and an unknown estimate.
func Empty() Info {
	return Info{
		Files:          []string{},
		Directories:    []string{},
		Modules:        []string{},
		Patterns:       []string{},
		EstimatedScope: EstimateUnknown,
	}
}

// HasSignal returns true if any scope category is non-empty.
func (s Info) HasSignal() bool {
	return len(s.Files) > 0 || len(s.Directories) > 0 ||
		len(s.Modules) > 0 || len(s.Patterns) > 0 ||
		len(s.Imports) > 0 || len(s.Exports) > 0
}
