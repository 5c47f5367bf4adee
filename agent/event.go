package agent

import (
	"strings"

	"github.com/smallnest/dinerec/store"
	"github.com/smallnest/dinerec/tool"
)

// Pipeline stages, in order.
const (
	StagePlanning  = "planning"
	StageExecution = "execution"
	StageSummary   = "summary"
	StageCompleted = "completed"
)

// Event statuses.
const (
	StatusStarted    = "started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Event is one progress update from a pipeline run. Which optional
// fields are set depends on the stage: Tools on planning completion,
// Tool/Query/Progress/ResultsCount on execution updates, SummaryLength
// on summary completion, and Artifact only on the terminal event.
type Event struct {
	Stage       string `json:"stage"`
	StageNumber int    `json:"stage_number"`
	Status      string `json:"status"`
	Message     string `json:"message"`

	Tool         string   `json:"tool,omitempty"`
	Query        string   `json:"query,omitempty"`
	Progress     string   `json:"progress,omitempty"`
	ResultsCount int      `json:"results_count,omitempty"`
	Success      bool     `json:"success,omitempty"`
	Tools        []string `json:"tools,omitempty"`

	SummaryLength int `json:"summary_length,omitempty"`

	Artifact *store.Artifact `json:"-"`
}

// Terminal reports whether no further events will follow.
func (e Event) Terminal() bool {
	return e.Stage == StageCompleted || e.Status == StatusError
}

// displayName maps wire tool names to human-readable ones for messages.
func displayName(name string) string {
	switch name {
	case tool.NameMapsSearch:
		return "Google Maps"
	case tool.NameNotesSearch:
		return "Xiaohongshu"
	}
	return name
}

func displayNames(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = displayName(n)
	}
	return strings.Join(out, ", ")
}
