// Package transcript serializes finished society runs to JSON and
// Markdown files. Serialization is a caller concern; the engine
// itself persists nothing.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/harun/tandem/pkg/society"
)

// Record is the serialized form of a completed run.
type Record struct {
	ID         string             `json:"id"`
	TaskPrompt string             `json:"task_prompt"`
	Answer     string             `json:"answer"`
	Rounds     []society.Round    `json:"chat_history"`
	Usage      society.TokenUsage `json:"token_usage"`
	CreatedAt  time.Time          `json:"created_at"`
}

// New builds a Record for a finished run with a fresh run ID.
func New(taskPrompt, answer string, rounds []society.Round, usage society.TokenUsage) (*Record, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run ID: %w", err)
	}

	return &Record{
		ID:         id,
		TaskPrompt: taskPrompt,
		Answer:     answer,
		Rounds:     rounds,
		Usage:      usage,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// WriteJSON writes the record as indented JSON below dir and returns
// the file path.
func (r *Record) WriteJSON(dir string) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcript: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run-%s.json", r.ID))
	if err := atomicWrite(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteMarkdown writes a human-readable conversation log below dir
// and returns the file path.
func (r *Record) WriteMarkdown(dir string) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Run %s\n\n", r.ID)
	fmt.Fprintf(&b, "**Task:** %s\n\n", r.TaskPrompt)
	fmt.Fprintf(&b, "**Created:** %s\n\n", r.CreatedAt.Format(time.RFC3339))

	for _, round := range r.Rounds {
		fmt.Fprintf(&b, "## Round %d\n\n", round.Index)
		fmt.Fprintf(&b, "### Driver\n\n%s\n\n", round.DriverText)
		fmt.Fprintf(&b, "### Worker\n\n%s\n\n", round.WorkerText)
		if len(round.ToolCalls) > 0 {
			b.WriteString("### Tool calls\n\n")
			for _, tc := range round.ToolCalls {
				args, err := json.Marshal(tc.Arguments)
				if err != nil {
					args = []byte("{}")
				}
				fmt.Fprintf(&b, "- `%s` %s\n", tc.Name, args)
			}
			b.WriteString("\n")
		}
		if round.Truncated {
			b.WriteString("*(truncated by round limit)*\n\n")
		}
	}

	fmt.Fprintf(&b, "## Answer\n\n%s\n\n", r.Answer)
	fmt.Fprintf(&b, "---\n\nTokens: %d prompt, %d completion\n",
		r.Usage.PromptTokenCount, r.Usage.CompletionTokenCount)

	path := filepath.Join(dir, fmt.Sprintf("run-%s.md", r.ID))
	if err := atomicWrite(path, []byte(b.String())); err != nil {
		return "", err
	}
	return path, nil
}

// atomicWrite writes to a temp file and renames over the target so a
// crash never leaves a half-written transcript.
func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize transcript: %w", err)
	}
	return nil
}
