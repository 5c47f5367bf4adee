package store

import (
	"context"
	"errors"
	"time"

	"github.com/smallnest/dinerec/recommend"
	"github.com/smallnest/dinerec/tool"
)

// ErrNotFound is returned when a record does not exist in a store.
var ErrNotFound = errors.New("not found")

// Context holds the pending state of a confirmation round: the
// preferences extracted from the user's query, waiting for a yes/no.
type Context struct {
	PendingPreferences  recommend.Preferences `json:"pending_preferences"`
	OriginalQuery       string                `json:"original_query"`
	ConfirmationMessage string                `json:"confirmation_message,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
}

// Demographics describes who the user is, as inferred from conversation.
// Unknown fields stay empty.
type Demographics struct {
	AgeRange    string `json:"age_range"`
	Gender      string `json:"gender"`
	Occupation  string `json:"occupation"`
	Location    string `json:"location"`
	Nationality string `json:"nationality"`
}

// DiningHabits describes long-term eating habits, distinct from the
// per-query preferences in recommend.Preferences.
type DiningHabits struct {
	TypicalBudget       string `json:"typical_budget"`
	DietaryRestrictions string `json:"dietary_restrictions"`
	SpiceTolerance      string `json:"spice_tolerance"`
	Description         string `json:"description"`
}

// Profile is the durable per-user portrait built up across sessions.
type Profile struct {
	UserID       string       `json:"user_id"`
	Demographics Demographics `json:"demographics"`
	DiningHabits DiningHabits `json:"dining_habits"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// DefaultProfile returns an empty profile for a new user.
func DefaultProfile(userID string) *Profile {
	now := time.Now()
	return &Profile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Message is one turn of conversation history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Artifact is the recorded trace of one agent pipeline run. Saved runs
// can be replayed offline with the same stage and tool sequence.
type Artifact struct {
	ID         string           `json:"id,omitempty"`
	UserInput  string           `json:"user_input"`
	PlanCalls  []tool.Call      `json:"plan_calls"`
	Executions []tool.Execution `json:"executions"`
	Summary    string           `json:"summary"`
	CreatedAt  time.Time        `json:"created_at,omitempty"`
}

// Valid reports whether the artifact carries enough of a trace to replay.
func (a *Artifact) Valid() bool {
	return a != nil && len(a.PlanCalls) > 0 && len(a.Executions) > 0
}

// PreferenceStore persists the per-user dining preferences.
// Get returns defaults for users never seen before.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (recommend.Preferences, error)
	Set(ctx context.Context, userID string, prefs recommend.Preferences) error
}

// ContextStore persists pending confirmation contexts.
// Get returns ErrNotFound when the user has no pending context.
type ContextStore interface {
	Get(ctx context.Context, userID string) (*Context, error)
	Set(ctx context.Context, userID string, c *Context) error
	Delete(ctx context.Context, userID string) error
}

// HistoryStore records the conversation transcript per user.
type HistoryStore interface {
	Append(ctx context.Context, userID string, msg Message) error
	// Recent returns up to n of the latest messages, oldest first.
	Recent(ctx context.Context, userID string, n int) ([]Message, error)
}

// ProfileStore persists user portraits.
// Get returns ErrNotFound when no profile has been written yet.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Set(ctx context.Context, userID string, p *Profile) error
}

// ArtifactStore persists pipeline run traces for offline replay.
type ArtifactStore interface {
	Save(ctx context.Context, a *Artifact) error
	Load(ctx context.Context, id string) (*Artifact, error)
	// Latest returns the most recently saved artifact, or ErrNotFound
	// when the store is empty.
	Latest(ctx context.Context) (*Artifact, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}
