package conversation

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/dinerec/agent"
	"github.com/smallnest/dinerec/log"
	"github.com/smallnest/dinerec/recommend"
)

// Task statuses.
const (
	TaskPending    = "pending"
	TaskProcessing = "processing"
	TaskCompleted  = "completed"
	TaskError      = "error"
)

// ThinkingStep is one entry of the simulated reasoning trace attached
// to a recommendation result.
type ThinkingStep struct {
	Step        string `json:"step"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Details     string `json:"details,omitempty"`
}

// Result is the payload of a completed recommendation task.
type Result struct {
	Restaurants   []recommend.Restaurant `json:"restaurants"`
	ThinkingSteps []ThinkingStep         `json:"thinking_steps,omitempty"`
	Confidence    float64                `json:"confidence_score"`
	Summary       string                 `json:"summary,omitempty"`
	Metadata      map[string]any         `json:"metadata,omitempty"`
}

// Task is one asynchronous recommendation job, polled by ID.
type Task struct {
	ID       string  `json:"task_id"`
	Status   string  `json:"status"`
	Progress int     `json:"progress"`
	Message  string  `json:"message"`
	Result   *Result `json:"result,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// checkpoint labels walked during background processing.
var taskCheckpoints = []struct {
	progress int
	message  string
}{
	{10, "Analyzing your requirements..."},
	{30, "Extracting preferences..."},
	{50, "Searching restaurant database..."},
	{70, "Applying filters..."},
	{90, "Generating recommendations..."},
}

// TaskManager runs recommendation jobs in the background and serves
// status polls. Completed and errored tasks are immutable; records are
// kept for the process lifetime.
type TaskManager struct {
	mu    sync.RWMutex
	tasks map[string]*Task

	restaurants []recommend.Restaurant
	stepDelay   time.Duration
	pipeline    *agent.Pipeline
	logger      log.Logger
	rng         *rand.Rand
}

// TaskManagerOption configures the TaskManager.
type TaskManagerOption func(*TaskManager)

// WithTaskStepDelay sets the pause between progress checkpoints.
func WithTaskStepDelay(d time.Duration) TaskManagerOption {
	return func(m *TaskManager) {
		m.stepDelay = d
	}
}

// WithRestaurants replaces the built-in restaurant dataset.
func WithRestaurants(restaurants []recommend.Restaurant) TaskManagerOption {
	return func(m *TaskManager) {
		m.restaurants = restaurants
	}
}

// WithPipeline attaches an agent pipeline: tasks then stream its
// stages for progress and attach the fused summary to the result.
func WithPipeline(p *agent.Pipeline) TaskManagerOption {
	return func(m *TaskManager) {
		m.pipeline = p
	}
}

// WithTaskLogger sets the logger.
func WithTaskLogger(logger log.Logger) TaskManagerOption {
	return func(m *TaskManager) {
		m.logger = logger
	}
}

// WithTaskRandSource makes result diversity sampling deterministic.
func WithTaskRandSource(rng *rand.Rand) TaskManagerOption {
	return func(m *TaskManager) {
		m.rng = rng
	}
}

// NewTaskManager creates a task manager over the default dataset.
func NewTaskManager(opts ...TaskManagerOption) *TaskManager {
	m := &TaskManager{
		tasks:       make(map[string]*Task),
		restaurants: recommend.DefaultRestaurants(),
		stepDelay:   time.Second,
		logger:      log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create registers a task and schedules it in the background. It never
// blocks on the work itself.
func (m *TaskManager) Create(query string, prefs recommend.Preferences, userID string) string {
	id := uuid.NewString()

	m.mu.Lock()
	m.tasks[id] = &Task{
		ID:      id,
		Status:  TaskPending,
		Message: "Task created",
	}
	m.mu.Unlock()

	go m.process(id, query, prefs, userID)
	return id
}

// Get returns an isolated copy of the task, or false when unknown.
func (m *TaskManager) Get(taskID string) (*Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return nil, false
	}
	return copyTask(t), true
}

func copyTask(t *Task) *Task {
	cp := *t
	if t.Result != nil {
		res := *t.Result
		res.Restaurants = append([]recommend.Restaurant(nil), t.Result.Restaurants...)
		res.ThinkingSteps = append([]ThinkingStep(nil), t.Result.ThinkingSteps...)
		if t.Result.Metadata != nil {
			res.Metadata = make(map[string]any, len(t.Result.Metadata))
			for k, v := range t.Result.Metadata {
				res.Metadata[k] = v
			}
		}
		cp.Result = &res
	}
	return &cp
}

// update mutates a live task. Terminal tasks are left untouched.
func (m *TaskManager) update(id string, fn func(*Task)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.Status == TaskCompleted || t.Status == TaskError {
		return
	}
	fn(t)
}

func (m *TaskManager) fail(id string, err error) {
	m.logger.Error("task %s failed: %v", id, err)
	m.update(id, func(t *Task) {
		t.Status = TaskError
		t.Error = err.Error()
		t.Message = "Error: " + err.Error()
	})
}

func (m *TaskManager) process(id, query string, prefs recommend.Preferences, userID string) {
	defer func() {
		if r := recover(); r != nil {
			m.fail(id, fmt.Errorf("task panicked: %v", r))
		}
	}()

	ctx := context.Background()

	for _, cp := range taskCheckpoints {
		m.update(id, func(t *Task) {
			t.Status = TaskProcessing
			t.Progress = cp.progress
			t.Message = cp.message
		})
		time.Sleep(m.stepDelay)
	}

	result, err := m.recommendResult(ctx, id, query, prefs, userID)
	if err != nil {
		m.fail(id, err)
		return
	}

	m.update(id, func(t *Task) {
		t.Status = TaskCompleted
		t.Progress = 100
		t.Message = "Recommendations ready!"
		t.Result = result
	})
}

func (m *TaskManager) recommendResult(ctx context.Context, id, query string, prefs recommend.Preferences, userID string) (*Result, error) {
	steps := m.thinkingTrace(query, prefs)

	var filterOpts []recommend.FilterOption
	if m.rng != nil {
		filterOpts = append(filterOpts, recommend.WithRandSource(m.rng))
	}
	restaurants := recommend.Filter(query, prefs, m.restaurants, filterOpts...)

	result := &Result{
		Restaurants:   restaurants,
		ThinkingSteps: steps,
		Confidence:    recommend.Confidence(prefs, restaurants),
		Metadata: map[string]any{
			"query":       query,
			"user_id":     userID,
			"timestamp":   time.Now().Format(time.RFC3339),
			"preferences": prefs,
		},
	}

	if m.pipeline != nil {
		summary, err := m.runPipeline(ctx, id, query)
		if err != nil {
			return nil, err
		}
		result.Summary = summary
	}
	return result, nil
}

// runPipeline drives the staged agent pipeline, mirroring its stage
// progress onto the task, and returns the fused summary.
func (m *TaskManager) runPipeline(ctx context.Context, id, query string) (string, error) {
	var summary string
	for event := range m.pipeline.Run(ctx, query) {
		if event.Status == agent.StatusError {
			return "", fmt.Errorf("pipeline %s stage: %s", event.Stage, event.Message)
		}
		e := event
		m.update(id, func(t *Task) {
			t.Message = e.Message
		})
		if event.Stage == agent.StageCompleted && event.Artifact != nil {
			summary = event.Artifact.Summary
		}
	}
	return summary, nil
}

// thinkingTrace simulates the reasoning steps shown to the user while
// a task runs.
func (m *TaskManager) thinkingTrace(query string, prefs recommend.Preferences) []ThinkingStep {
	stepDelay := func(tenths int) {
		time.Sleep(m.stepDelay / 10 * time.Duration(tenths))
	}

	var keywords []string
	for _, word := range strings.Fields(query) {
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}

	var prefsText []string
	if prefs.HasTypes() {
		prefsText = append(prefsText, fmt.Sprintf("Restaurant Types: %v", prefs.RestaurantTypes))
	}
	if prefs.HasFlavors() {
		prefsText = append(prefsText, fmt.Sprintf("Flavor Profiles: %v", prefs.FlavorProfiles))
	}
	if prefs.HasPurpose() {
		prefsText = append(prefsText, "Dining Purpose: "+prefs.DiningPurpose)
	}
	prefsDetails := strings.Join(prefsText, "; ")
	if prefsDetails == "" {
		prefsDetails = "Using default preferences"
	}

	steps := make([]ThinkingStep, 0, 5)
	step := func(name, description, details string, tenths int) {
		stepDelay(tenths)
		steps = append(steps, ThinkingStep{
			Step:        name,
			Description: description,
			Status:      "completed",
			Details:     details,
		})
	}

	step("analyze_query", "Analyzing your requirements...",
		"Identified keywords: "+strings.Join(keywords, ", "), 5)
	step("extract_preferences", "Extracting your preferences...", prefsDetails, 8)
	step("search_database", "Searching restaurant database...",
		fmt.Sprintf("Screening %d restaurants for matches", len(m.restaurants)), 10)
	step("apply_filters", "Applying filter conditions...",
		"Filtering by location, budget, taste preferences, etc.", 6)
	step("rank_results", "Ranking and scoring recommendations...",
		"Sorting by rating and match score, selecting best recommendations", 7)
	return steps
}
