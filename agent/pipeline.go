package agent

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/dinerec/log"
	"github.com/smallnest/dinerec/store"
	"github.com/smallnest/dinerec/tool"
)

// Pipeline runs the three-stage recommendation flow: plan tool calls,
// execute them in order, then summarize. Progress streams as Events on
// a channel; the terminal event carries the run Artifact.
//
// In offline mode the pipeline replays a previously recorded Artifact
// instead of calling any model or tool, emitting the same event shape
// with simulated latency.
type Pipeline struct {
	planner    *Planner
	summarizer *Summarizer
	registry   *tool.Registry
	artifacts  store.ArtifactStore

	offline   bool
	stepDelay time.Duration
	logger    log.Logger
	rng       *rand.Rand
}

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithOffline switches the pipeline to replaying recorded artifacts.
func WithOffline(offline bool) PipelineOption {
	return func(p *Pipeline) {
		p.offline = offline
	}
}

// WithStepDelay sets the simulated latency unit for offline replay.
func WithStepDelay(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.stepDelay = d
	}
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(logger log.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRandSource sets the random source used to pick a fallback cached
// artifact. Useful for deterministic tests.
func WithRandSource(rng *rand.Rand) PipelineOption {
	return func(p *Pipeline) {
		p.rng = rng
	}
}

// NewPipeline wires the stages together. In offline mode planner,
// summarizer and registry may be nil.
func NewPipeline(planner *Planner, summarizer *Summarizer, registry *tool.Registry, artifacts store.ArtifactStore, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		planner:    planner,
		summarizer: summarizer,
		registry:   registry,
		artifacts:  artifacts,
		logger:     log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts the pipeline and returns the event stream. The channel is
// closed after the terminal event. Cancelling the context stops the
// run.
func (p *Pipeline) Run(ctx context.Context, userInput string) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		if p.offline {
			p.runOffline(ctx, userInput, events)
		} else {
			p.runOnline(ctx, userInput, events)
		}
	}()
	return events
}

func (p *Pipeline) emit(ctx context.Context, events chan<- Event, e Event) bool {
	select {
	case events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (p *Pipeline) runOnline(ctx context.Context, userInput string, events chan<- Event) {
	p.emit(ctx, events, Event{
		Stage: StagePlanning, StageNumber: 1, Status: StatusStarted,
		Message: "Planning tools...",
	})

	calls, err := p.planner.Plan(ctx, userInput)
	if err != nil {
		p.logger.Error("planning stage failed: %v", err)
		p.emit(ctx, events, Event{
			Stage: StagePlanning, StageNumber: 1, Status: StatusError,
			Message: fmt.Sprintf("Planning failed: %v", err),
		})
		return
	}

	toolNames := make([]string, len(calls))
	for i, call := range calls {
		toolNames[i] = call.Name
	}
	p.emit(ctx, events, Event{
		Stage: StagePlanning, StageNumber: 1, Status: StatusCompleted,
		Message: "Selected tools: " + displayNames(toolNames),
		Tools:   toolNames,
	})

	p.emit(ctx, events, Event{
		Stage: StageExecution, StageNumber: 2, Status: StatusStarted,
		Message: "Executing tools...",
	})

	executions := make([]tool.Execution, 0, len(calls))
	for i, call := range calls {
		progress := fmt.Sprintf("%d/%d", i+1, len(calls))
		p.emit(ctx, events, Event{
			Stage: StageExecution, StageNumber: 2, Status: StatusInProgress,
			Message:  "Executing: " + displayName(call.Name),
			Tool:     call.Name,
			Progress: progress,
			Query:    call.Query(),
		})

		// Failures are recorded on the execution and the run continues.
		exec := p.registry.Dispatch(ctx, call.Name, call.Parameters)
		executions = append(executions, exec)

		p.emit(ctx, events, Event{
			Stage: StageExecution, StageNumber: 2, Status: StatusInProgress,
			Message:      "Completed: " + displayName(call.Name),
			Tool:         call.Name,
			Progress:     progress,
			Query:        call.Query(),
			ResultsCount: exec.ResultsCount(),
			Success:      exec.Success,
		})
	}

	p.emit(ctx, events, Event{
		Stage: StageExecution, StageNumber: 2, Status: StatusCompleted,
		Message: "Tool execution completed",
	})

	p.emit(ctx, events, Event{
		Stage: StageSummary, StageNumber: 3, Status: StatusStarted,
		Message: "Generating recommendations summary...",
	})

	summary, err := p.summarizer.Summarize(ctx, userInput, executions)
	if err != nil {
		p.logger.Error("summary stage failed: %v", err)
		p.emit(ctx, events, Event{
			Stage: StageSummary, StageNumber: 3, Status: StatusError,
			Message: fmt.Sprintf("Summary generation failed: %v", err),
		})
		return
	}

	p.emit(ctx, events, Event{
		Stage: StageSummary, StageNumber: 3, Status: StatusCompleted,
		Message:       "Recommendations summary completed",
		SummaryLength: len(summary),
	})

	artifact := &store.Artifact{
		ID:         uuid.NewString(),
		UserInput:  userInput,
		PlanCalls:  calls,
		Executions: executions,
		Summary:    summary,
		CreatedAt:  time.Now(),
	}
	if p.artifacts != nil {
		if err := p.artifacts.Save(ctx, artifact); err != nil {
			p.logger.Warn("failed to save run artifact: %v", err)
		}
	}

	p.emit(ctx, events, Event{
		Stage: StageCompleted, StageNumber: 3, Status: StatusCompleted,
		Message:  "All stages completed",
		Artifact: artifact,
	})
}

func (p *Pipeline) runOffline(ctx context.Context, userInput string, events chan<- Event) {
	artifact := p.loadReplayArtifact(ctx)
	if artifact == nil {
		artifact = &store.Artifact{}
		p.logger.Warn("offline mode: no cached runs found, replaying empty run")
	}
	if artifact.UserInput != "" {
		userInput = artifact.UserInput
	}
	p.logger.Info("offline mode: loaded %d plan calls and %d executions",
		len(artifact.PlanCalls), len(artifact.Executions))

	p.emit(ctx, events, Event{
		Stage: StagePlanning, StageNumber: 1, Status: StatusStarted,
		Message: "Planning tools...",
	})
	p.sleep(ctx, 3*p.stepDelay)

	toolNames := make([]string, len(artifact.PlanCalls))
	for i, call := range artifact.PlanCalls {
		toolNames[i] = call.Name
	}
	p.emit(ctx, events, Event{
		Stage: StagePlanning, StageNumber: 1, Status: StatusCompleted,
		Message: "Selected tools: " + displayNames(toolNames),
		Tools:   toolNames,
	})

	p.emit(ctx, events, Event{
		Stage: StageExecution, StageNumber: 2, Status: StatusStarted,
		Message: "Executing tools...",
	})
	p.sleep(ctx, p.stepDelay)

	for i, exec := range artifact.Executions {
		query, _ := exec.Input["query"].(string)
		p.emit(ctx, events, Event{
			Stage: StageExecution, StageNumber: 2, Status: StatusInProgress,
			Message:      "Executing: " + displayName(exec.Tool),
			Tool:         exec.Tool,
			Progress:     fmt.Sprintf("%d/%d", i+1, len(artifact.Executions)),
			Query:        query,
			ResultsCount: exec.ResultsCount(),
		})
		p.sleep(ctx, 4*p.stepDelay)
	}

	p.emit(ctx, events, Event{
		Stage: StageExecution, StageNumber: 2, Status: StatusCompleted,
		Message: "Tool execution completed",
	})

	p.emit(ctx, events, Event{
		Stage: StageSummary, StageNumber: 3, Status: StatusStarted,
		Message: "Generating recommendations summary...",
	})

	summary := artifact.Summary
	if summary == "" && p.summarizer != nil {
		// The cached run stopped before stage 3: fuse its recorded tool
		// outputs live.
		s, err := p.summarizer.Summarize(ctx, userInput, artifact.Executions)
		if err != nil {
			p.logger.Error("summary stage failed: %v", err)
			p.emit(ctx, events, Event{
				Stage: StageSummary, StageNumber: 3, Status: StatusError,
				Message: fmt.Sprintf("Summary generation failed: %v", err),
			})
			return
		}
		summary = s
	} else {
		p.sleep(ctx, 5*p.stepDelay)
	}

	p.emit(ctx, events, Event{
		Stage: StageSummary, StageNumber: 3, Status: StatusCompleted,
		Message:       "Recommendations summary completed",
		SummaryLength: len(summary),
	})

	replayed := *artifact
	replayed.UserInput = userInput
	replayed.Summary = summary
	p.emit(ctx, events, Event{
		Stage: StageCompleted, StageNumber: 3, Status: StatusCompleted,
		Message:  "All stages completed",
		Artifact: &replayed,
	})
}

// loadReplayArtifact prefers the latest recorded run. When that run is
// missing or incomplete it falls back to a random other cached run.
func (p *Pipeline) loadReplayArtifact(ctx context.Context) *store.Artifact {
	if p.artifacts == nil {
		return nil
	}

	latest, err := p.artifacts.Latest(ctx)
	if err == nil && latest.Valid() {
		return latest
	}
	if err != nil {
		p.logger.Warn("offline mode: no latest run: %v", err)
	}

	ids, err := p.artifacts.List(ctx)
	if err != nil || len(ids) == 0 {
		return latest
	}

	rng := p.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	for _, i := range rng.Perm(len(ids)) {
		a, err := p.artifacts.Load(ctx, ids[i])
		if err != nil {
			continue
		}
		if a.Valid() {
			p.logger.Info("offline mode: latest run incomplete, using cached run %s", a.ID)
			return a
		}
	}
	return latest
}
