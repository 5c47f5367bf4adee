package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/dinerec/store"
)

func TestCoerceIntent(t *testing.T) {
	tests := []struct {
		name           string
		intent         string
		inConfirmation bool
		want           string
	}{
		{"query passes anywhere", Query, false, Query},
		{"chat passes anywhere", Chat, true, Chat},
		{"yes allowed during confirmation", ConfirmYes, true, ConfirmYes},
		{"no allowed during confirmation", ConfirmNo, true, ConfirmNo},
		{"stale yes becomes fresh query", ConfirmYes, false, Query},
		{"stale no becomes fresh query", ConfirmNo, false, Query},
		{"unknown degrades", "summon", true, Chat},
		{"empty degrades", "", false, Chat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceIntent(tt.intent, tt.inConfirmation))
		})
	}
}

func TestProfileUpdatesApply(t *testing.T) {
	p := store.DefaultProfile("u1")
	p.DiningHabits.Description = "loves noodles"

	updates := &ProfileUpdates{
		Demographics: map[string]string{
			"occupation":  "student",
			"shoe_size":   "42", // not a profile field
			"nationality": "",
		},
		DiningHabits: map[string]string{
			"spice_tolerance": "high",
			"description":     "prefers hawker stalls",
		},
	}

	assert.True(t, updates.Apply(p))
	assert.Equal(t, "student", p.Demographics.Occupation)
	assert.Empty(t, p.Demographics.Nationality)
	assert.Equal(t, "high", p.DiningHabits.SpiceTolerance)
	assert.Equal(t, "prefers hawker stalls", p.DiningHabits.Description)
}

func TestProfileUpdatesApplyNoChange(t *testing.T) {
	p := store.DefaultProfile("u1")
	p.Demographics.Location = "Singapore"

	updates := &ProfileUpdates{
		Demographics: map[string]string{"location": "Singapore"},
	}
	assert.False(t, updates.Apply(p))
}

func TestProfileUpdatesEmpty(t *testing.T) {
	var nilUpdates *ProfileUpdates
	assert.True(t, nilUpdates.Empty())
	assert.True(t, (&ProfileUpdates{}).Empty())
	assert.False(t, (&ProfileUpdates{DiningHabits: map[string]string{"spice_tolerance": "low"}}).Empty())
}
