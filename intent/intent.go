package intent

import (
	"context"
	"strings"

	"github.com/smallnest/dinerec/recommend"
	"github.com/smallnest/dinerec/store"
)

// Recognized intents. ConfirmYes and ConfirmNo are only legal while a
// confirmation is pending.
const (
	Query      = "query"
	Chat       = "chat"
	ConfirmYes = "confirmation_yes"
	ConfirmNo  = "confirmation_no"
)

// MaxHistoryTurns is how many recent messages the classifier sees.
const MaxHistoryTurns = 5

// Request carries one user message plus the conversation state the
// classifier needs to interpret it.
type Request struct {
	Message string
	History []store.Message
	Profile *store.Profile

	// InConfirmation is true while a confirmation is pending, which
	// widens the legal intent set to include ConfirmYes/ConfirmNo.
	InConfirmation     bool
	PendingPreferences *recommend.Preferences
}

// ProfileUpdates holds partial profile changes inferred from a message.
// Only whitelisted keys are applied.
type ProfileUpdates struct {
	Demographics map[string]string `json:"demographics,omitempty"`
	DiningHabits map[string]string `json:"dining_habits,omitempty"`
}

// Empty reports whether there is nothing to apply.
func (u *ProfileUpdates) Empty() bool {
	return u == nil || (len(u.Demographics) == 0 && len(u.DiningHabits) == 0)
}

// Apply merges the updates into the profile. Unknown keys are ignored,
// empty values leave the existing field untouched, and description
// replaces rather than appends.
func (u *ProfileUpdates) Apply(p *store.Profile) bool {
	if u.Empty() || p == nil {
		return false
	}

	changed := false
	set := func(dst *string, v string) {
		v = strings.TrimSpace(v)
		if v != "" && v != *dst {
			*dst = v
			changed = true
		}
	}

	for k, v := range u.Demographics {
		switch k {
		case "age_range":
			set(&p.Demographics.AgeRange, v)
		case "gender":
			set(&p.Demographics.Gender, v)
		case "occupation":
			set(&p.Demographics.Occupation, v)
		case "location":
			set(&p.Demographics.Location, v)
		case "nationality":
			set(&p.Demographics.Nationality, v)
		}
	}
	for k, v := range u.DiningHabits {
		switch k {
		case "typical_budget":
			set(&p.DiningHabits.TypicalBudget, v)
		case "dietary_restrictions":
			set(&p.DiningHabits.DietaryRestrictions, v)
		case "spice_tolerance":
			set(&p.DiningHabits.SpiceTolerance, v)
		case "description":
			set(&p.DiningHabits.Description, v)
		}
	}
	return changed
}

// Response is the classifier's verdict on one message.
type Response struct {
	Intent     string
	Reply      string
	Confidence float64

	// Preferences is set only for Query, or for ConfirmNo when the
	// user rejected with replacement preferences attached.
	Preferences *recommend.Preferences

	ProfileUpdates *ProfileUpdates
}

// Classifier decides what a user message means given the conversation
// state.
type Classifier interface {
	Classify(ctx context.Context, req Request) (*Response, error)
}

// CoerceIntent maps an out-of-state intent onto the legal set. A
// confirmation answer arriving with no confirmation pending (a stale or
// duplicate client request) is re-read as a fresh query, and anything
// unrecognized degrades to Chat.
func CoerceIntent(intent string, inConfirmation bool) string {
	switch intent {
	case Query, Chat:
		return intent
	case ConfirmYes, ConfirmNo:
		if inConfirmation {
			return intent
		}
		return Query
	}
	return Chat
}
