package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPreferencesFullyPopulated(t *testing.T) {
	p := DefaultPreferences()

	assert.Equal(t, []string{Any}, p.RestaurantTypes)
	assert.Equal(t, []string{Any}, p.FlavorProfiles)
	assert.Equal(t, Any, p.DiningPurpose)
	assert.Equal(t, Any, p.Location)
	assert.Equal(t, 20, p.BudgetRange.Min)
	assert.Equal(t, 60, p.BudgetRange.Max)
	assert.Equal(t, "SGD", p.BudgetRange.Currency)
	assert.Equal(t, "person", p.BudgetRange.Per)
	assert.True(t, p.IsDefaultBudget())
}

func TestNormalizeFillsEmptyFields(t *testing.T) {
	p := Preferences{}
	p.Normalize()

	assert.Equal(t, []string{Any}, p.RestaurantTypes)
	assert.Equal(t, []string{Any}, p.FlavorProfiles)
	assert.Equal(t, Any, p.DiningPurpose)
	assert.Equal(t, Any, p.Location)
	assert.Equal(t, 20, p.BudgetRange.Min)
	assert.Equal(t, 60, p.BudgetRange.Max)
}

func TestNormalizeRepairsInvertedBudget(t *testing.T) {
	p := Preferences{BudgetRange: BudgetRange{Min: 80, Max: 30}}
	p.Normalize()

	assert.LessOrEqual(t, p.BudgetRange.Min, p.BudgetRange.Max)
	assert.Equal(t, 30, p.BudgetRange.Min)
	assert.Equal(t, 80, p.BudgetRange.Max)
}

func TestMergeDefaultsOnlyFillsUnsetDimensions(t *testing.T) {
	extracted := DefaultPreferences()
	extracted.FlavorProfiles = []string{"spicy"}
	extracted.Location = "Chinatown"

	stored := DefaultPreferences()
	stored.RestaurantTypes = []string{"casual"}
	stored.FlavorProfiles = []string{"sweet"}
	stored.BudgetRange = BudgetRange{Min: 30, Max: 100, Currency: "SGD", Per: "person"}
	stored.Location = "Orchard"

	extracted.MergeDefaults(stored)

	// Unset dimensions inherit the stored values.
	assert.Equal(t, []string{"casual"}, extracted.RestaurantTypes)
	assert.Equal(t, BudgetRange{Min: 30, Max: 100, Currency: "SGD", Per: "person"}, extracted.BudgetRange)
	// Explicit dimensions win over stored ones.
	assert.Equal(t, []string{"spicy"}, extracted.FlavorProfiles)
	assert.Equal(t, "Chinatown", extracted.Location)
}

func TestCloneIsIndependent(t *testing.T) {
	p := DefaultPreferences()
	c := p.Clone()
	c.RestaurantTypes[0] = "cafe"
	c.Location = "Bugis"

	assert.Equal(t, Any, p.RestaurantTypes[0])
	assert.Equal(t, Any, p.Location)
}

func TestFilterAny(t *testing.T) {
	assert.Empty(t, FilterAny([]string{Any, ""}))
	assert.Equal(t, []string{"spicy", "sweet"}, FilterAny([]string{"spicy", Any, "sweet"}))
}
