// Package hooks implements the Claude Code hook handlers that tie the
// queue to a live session: PostToolUse feeds the session context, Stop
// matches queued tasks against it, and UserPromptSubmit replays a pending
// auto-continuation as a system reminder. Hook failures must never break
// the host session, so handlers log and degrade rather than erroring out.
package hooks

import (
	"encoding/json"
	"io"
)

// PostToolUseInput is the JSON payload delivered on the PostToolUse event.
type PostToolUseInput struct {
	SessionID string         `json:"session_id"`
	ToolName  string         `json:"tool_name"`
	ToolInput map[string]any `json:"tool_input"`
}

// FilePath returns the file_path tool parameter, if present.
func (in *PostToolUseInput) FilePath() string {
	if in.ToolInput == nil {
		return ""
	}
	if fp, ok := in.ToolInput["file_path"].(string); ok {
		return fp
	}
	return ""
}

// StopInput is the JSON payload delivered on the Stop event.
type StopInput struct {
	SessionID      string `json:"session_id"`
	StopHookActive bool   `json:"stop_hook_active"`
}

// UserPromptInput is the JSON payload delivered on UserPromptSubmit.
type UserPromptInput struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
}

// ParseInput decodes a hook payload from r. An empty stream yields a zero
// value rather than an error, since hook events are not guaranteed to
// carry a body.
func ParseInput[T any](r io.Reader) (T, error) {
	var in T
	data, err := io.ReadAll(r)
	if err != nil {
		return in, err
	}
	if len(data) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, err
	}
	return in, nil
}
