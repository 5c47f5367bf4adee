package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smallnest/dinerec/intent"
	"github.com/smallnest/dinerec/log"
	"github.com/smallnest/dinerec/recommend"
	"github.com/smallnest/dinerec/store"
	"github.com/smallnest/dinerec/store/memory"
)

// Outcome kinds returned by ProcessMessage.
type OutcomeType string

const (
	// OutcomeReply is a plain conversational answer.
	OutcomeReply OutcomeType = "reply"
	// OutcomeConfirmation asks the user to confirm extracted
	// preferences before a search is launched.
	OutcomeConfirmation OutcomeType = "confirmation_required"
	// OutcomeTaskCreated reports a launched recommendation task.
	OutcomeTaskCreated OutcomeType = "task_created"
)

// Outcome is the result of handling one user message.
type Outcome struct {
	Type        OutcomeType            `json:"type"`
	Reply       string                 `json:"reply"`
	Intent      string                 `json:"intent"`
	Confidence  float64                `json:"confidence"`
	TaskID      string                 `json:"task_id,omitempty"`
	Preferences *recommend.Preferences `json:"preferences,omitempty"`
}

// Service drives the conversation: it classifies each message, runs the
// confirmation round, and launches recommendation tasks. A user is
// either idle or awaiting confirmation; the presence of a stored
// context is the single source of truth for that state.
type Service struct {
	classifier intent.Classifier
	confirm    *ConfirmationGenerator
	tasks      *TaskManager

	prefs    store.PreferenceStore
	contexts store.ContextStore
	history  store.HistoryStore
	profiles store.ProfileStore

	logger log.Logger

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithPreferenceStore replaces the in-memory preference store.
func WithPreferenceStore(s store.PreferenceStore) ServiceOption {
	return func(svc *Service) { svc.prefs = s }
}

// WithContextStore replaces the in-memory confirmation context store.
func WithContextStore(s store.ContextStore) ServiceOption {
	return func(svc *Service) { svc.contexts = s }
}

// WithHistoryStore replaces the in-memory conversation history store.
func WithHistoryStore(s store.HistoryStore) ServiceOption {
	return func(svc *Service) { svc.history = s }
}

// WithProfileStore replaces the in-memory profile store.
func WithProfileStore(s store.ProfileStore) ServiceOption {
	return func(svc *Service) { svc.profiles = s }
}

// WithTaskManager replaces the default task manager.
func WithTaskManager(m *TaskManager) ServiceOption {
	return func(svc *Service) { svc.tasks = m }
}

// WithConfirmationGenerator replaces the default template generator.
func WithConfirmationGenerator(g *ConfirmationGenerator) ServiceOption {
	return func(svc *Service) { svc.confirm = g }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(logger log.Logger) ServiceOption {
	return func(svc *Service) { svc.logger = logger }
}

// NewService creates a conversation service backed by in-memory stores
// unless options say otherwise.
func NewService(classifier intent.Classifier, opts ...ServiceOption) *Service {
	svc := &Service{
		classifier: classifier,
		confirm:    NewConfirmationGenerator(),
		tasks:      NewTaskManager(),
		prefs:      memory.NewPreferenceStore(),
		contexts:   memory.NewContextStore(),
		history:    memory.NewHistoryStore(),
		profiles:   memory.NewProfileStore(),
		logger:     log.GetDefaultLogger(),
		userLocks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Tasks exposes the task manager for status polling.
func (s *Service) Tasks() *TaskManager {
	return s.tasks
}

// userLock serializes message handling per user so two concurrent
// messages cannot race on the single confirmation context.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	return l
}

// ProcessMessage handles one user message and returns what to show the
// user: a plain reply, a confirmation request, or a created task ID.
func (s *Service) ProcessMessage(ctx context.Context, userID, message string) (*Outcome, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		profile = store.DefaultProfile(userID)
	} else if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	convCtx, err := s.contexts.Get(ctx, userID)
	inConfirmation := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load context: %w", err)
	}

	history, err := s.history.Recent(ctx, userID, 2*intent.MaxHistoryTurns)
	if err != nil {
		s.logger.Warn("load history for %s: %v", userID, err)
	}

	req := intent.Request{
		Message:        message,
		History:        classifierHistory(history, convCtx),
		Profile:        profile,
		InConfirmation: inConfirmation,
	}
	if inConfirmation {
		pending := convCtx.PendingPreferences.Clone()
		req.PendingPreferences = &pending
	}

	resp, err := s.classifier.Classify(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("classify message: %w", err)
	}

	if resp.ProfileUpdates.Apply(profile) {
		profile.UpdatedAt = time.Now()
		if err := s.profiles.Set(ctx, userID, profile); err != nil {
			s.logger.Warn("save profile for %s: %v", userID, err)
		}
	}

	language := intent.ConversationLanguage(message, history)

	var out *Outcome
	switch resp.Intent {
	case intent.Query:
		// A query while awaiting confirmation replaces the pending
		// round; the context is overwritten either way.
		out, err = s.newConfirmation(ctx, userID, message, resp, language)
	case intent.ConfirmYes:
		if convCtx == nil {
			// No round to confirm: read the message as a fresh query.
			out, err = s.newConfirmation(ctx, userID, message, resp, language)
			break
		}
		out, err = s.launchTask(ctx, userID, convCtx, resp, language)
	case intent.ConfirmNo:
		if convCtx == nil {
			out, err = s.newConfirmation(ctx, userID, message, resp, language)
			break
		}
		if resp.Preferences != nil {
			// Rejected with replacement preferences attached: overwrite
			// the pending round, keep the original query.
			out, err = s.newConfirmation(ctx, userID, convCtx.OriginalQuery, resp, language)
		} else {
			out, err = s.abandonConfirmation(ctx, userID, resp, modifyPrompt(language))
		}
	default:
		if inConfirmation {
			out, err = s.abandonConfirmation(ctx, userID, resp, resp.Reply)
		} else {
			out = &Outcome{
				Type:       OutcomeReply,
				Reply:      resp.Reply,
				Intent:     resp.Intent,
				Confidence: resp.Confidence,
			}
		}
	}
	if err != nil {
		return nil, err
	}

	s.appendTurn(ctx, userID, message, out.Reply)
	return out, nil
}

// newConfirmation extracts and persists preferences from a query and
// opens (or overwrites) the user's confirmation round.
func (s *Service) newConfirmation(ctx context.Context, userID, query string, resp *intent.Response, language string) (*Outcome, error) {
	prefs := recommend.DefaultPreferences()
	if resp.Preferences != nil {
		prefs = resp.Preferences.Clone()
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err == nil {
		mergeProfileDefaults(&prefs, profile)
	}
	prefs.Normalize()

	if err := s.prefs.Set(ctx, userID, prefs); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}

	confirmMsg := s.confirm.Generate(ctx, query, prefs, language)
	if err := s.contexts.Set(ctx, userID, &store.Context{
		PendingPreferences:  prefs,
		OriginalQuery:       query,
		ConfirmationMessage: confirmMsg,
		CreatedAt:           time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("save context: %w", err)
	}

	out := prefs.Clone()
	return &Outcome{
		Type:        OutcomeConfirmation,
		Reply:       confirmMsg,
		Intent:      resp.Intent,
		Confidence:  resp.Confidence,
		Preferences: &out,
	}, nil
}

// launchTask consumes the pending confirmation context and starts the
// recommendation task.
func (s *Service) launchTask(ctx context.Context, userID string, convCtx *store.Context, resp *intent.Response, language string) (*Outcome, error) {
	pending := convCtx.PendingPreferences.Clone()
	query := convCtx.OriginalQuery

	if err := s.contexts.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete context: %w", err)
	}

	taskID := s.tasks.Create(query, pending, userID)
	return &Outcome{
		Type:        OutcomeTaskCreated,
		Reply:       searchingReply(language),
		Intent:      resp.Intent,
		Confidence:  resp.Confidence,
		TaskID:      taskID,
		Preferences: &pending,
	}, nil
}

// abandonConfirmation drops the pending round and answers with a plain
// reply.
func (s *Service) abandonConfirmation(ctx context.Context, userID string, resp *intent.Response, reply string) (*Outcome, error) {
	if err := s.contexts.Delete(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("delete context: %w", err)
	}
	return &Outcome{
		Type:       OutcomeReply,
		Reply:      reply,
		Intent:     resp.Intent,
		Confidence: resp.Confidence,
	}, nil
}

func (s *Service) appendTurn(ctx context.Context, userID, userMsg, reply string) {
	now := time.Now()
	if err := s.history.Append(ctx, userID, store.Message{
		Role: store.RoleUser, Content: userMsg, CreatedAt: now,
	}); err != nil {
		s.logger.Warn("append history for %s: %v", userID, err)
		return
	}
	if reply == "" {
		return
	}
	if err := s.history.Append(ctx, userID, store.Message{
		Role: store.RoleAssistant, Content: reply, CreatedAt: now,
	}); err != nil {
		s.logger.Warn("append history for %s: %v", userID, err)
	}
}

// classifierHistory drops the stored confirmation message from the
// transcript so the classifier does not read the bot's own question as
// conversation content.
func classifierHistory(history []store.Message, convCtx *store.Context) []store.Message {
	if convCtx == nil || convCtx.ConfirmationMessage == "" {
		return history
	}
	out := make([]store.Message, 0, len(history))
	for _, m := range history {
		if m.Role == store.RoleAssistant && m.Content == convCtx.ConfirmationMessage {
			continue
		}
		out = append(out, m)
	}
	return out
}

// mergeProfileDefaults fills preference dimensions the user left unset
// from the durable profile.
func mergeProfileDefaults(prefs *recommend.Preferences, profile *store.Profile) {
	if prefs.IsDefaultBudget() {
		if lo, hi, ok := parseBudget(profile.DiningHabits.TypicalBudget); ok {
			prefs.BudgetRange = recommend.BudgetRange{Min: lo, Max: hi}
		}
	}
	if !prefs.HasLocation() && profile.Demographics.Location != "" {
		prefs.Location = profile.Demographics.Location
	}
}

// parseBudget reads a "20-50" style habitual budget.
func parseBudget(s string) (int, int, bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

func searchingReply(language string) string {
	if language == intent.LangZH {
		return "好的！我正在为您搜索最合适的餐厅..."
	}
	return "Great! I'm now searching for the perfect restaurants for you..."
}

func modifyPrompt(language string) string {
	if language == intent.LangZH {
		return "没问题！请告诉我您想要怎样调整，我会重新为您推荐。"
	}
	return "No problem! Please tell me what you'd like to change, and I'll adjust the recommendations."
}
