package recommend

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterByLocation(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.Location = "Tanjong Pagar"

	results := Filter("dinner", prefs, DefaultRestaurants())

	assert.NotEmpty(t, results)
	for _, r := range results {
		assert.Contains(t, r.Location, "Tanjong Pagar")
	}
}

func TestFilterByBudget(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.BudgetRange = BudgetRange{Min: 20, Max: 60, Currency: "SGD", Per: "person"}

	results := Filter("dinner", prefs, DefaultRestaurants())

	assert.NotEmpty(t, results)
	for _, r := range results {
		est := PriceEstimate(r.Price)
		assert.GreaterOrEqual(t, est, 20)
		assert.LessOrEqual(t, est, 60)
	}
}

func TestFilterSpicyMapsToCuisines(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.FlavorProfiles = []string{"spicy"}
	prefs.BudgetRange = BudgetRange{} // unconstrained so the flavor mapping decides

	results := Filter("spicy sichuan food", prefs, DefaultRestaurants())

	assert.NotEmpty(t, results)
	for _, r := range results {
		assert.Contains(t, []string{"Chinese", "Peranakan"}, r.Cuisine)
	}
}

func TestFilterDateNightRequiresRomanticHighTier(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.DiningPurpose = "date-night"
	prefs.BudgetRange = BudgetRange{} // unconstrained so the purpose filter decides

	results := Filter("anniversary dinner", prefs, DefaultRestaurants())

	assert.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, isHighTier(r.Price), "expected high price tier, got %q", r.Price)
		assert.True(t, hasHighlight(r, "romantic"))
	}
}

func TestFilterBusinessRequiresRating(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.DiningPurpose = "business"
	prefs.BudgetRange = BudgetRange{}

	results := Filter("client meeting", prefs, DefaultRestaurants())

	for _, r := range results {
		assert.True(t, isHighTier(r.Price))
		assert.GreaterOrEqual(t, r.Rating, 4.0)
	}
}

func TestFilterFallsBackWhenEverythingEliminated(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.Location = "Atlantis" // matches nothing

	results := Filter("dinner", prefs, DefaultRestaurants())

	// The location step is skipped rather than emptying the set.
	assert.NotEmpty(t, results)
}

func TestFilterSkipsEveryEliminatingStep(t *testing.T) {
	data := []Restaurant{
		{ID: "1", Name: "A", Location: "X", Price: "$$$$", Rating: 4.0},
		{ID: "2", Name: "B", Location: "X", Price: "$$$$", Rating: 3.0},
		{ID: "3", Name: "C", Location: "X", Price: "$$$$", Rating: 5.0},
		{ID: "4", Name: "D", Location: "X", Price: "$$$$", Rating: 2.0},
	}
	prefs := DefaultPreferences()
	prefs.DiningPurpose = "date-night" // nothing is tagged romantic
	prefs.BudgetRange = BudgetRange{Min: 1, Max: 2}

	results := Filter("dinner", prefs, data)

	assert.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 4)
}

func TestFilterSortsByRatingDescending(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.BudgetRange = BudgetRange{}

	results := Filter("dinner", prefs, DefaultRestaurants())

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Rating, results[i].Rating)
	}
}

func TestFilterDiversitySamplingIsSeedable(t *testing.T) {
	// Build a dataset big enough to trigger the top-3 + sample-3 path.
	var data []Restaurant
	for i := 0; i < 12; i++ {
		data = append(data, Restaurant{
			ID:     string(rune('a' + i)),
			Name:   string(rune('A' + i)),
			Rating: 3.0 + float64(i)*0.1,
			Price:  "$$",
		})
	}
	prefs := DefaultPreferences()
	prefs.BudgetRange = BudgetRange{}

	first := Filter("dinner", prefs, data, WithRandSource(rand.New(rand.NewSource(7))))
	second := Filter("dinner", prefs, data, WithRandSource(rand.New(rand.NewSource(7))))

	assert.Len(t, first, 6)
	assert.Equal(t, first, second)

	// Top three by rating always survive.
	assert.Equal(t, first[0].Rating, 4.1)
	assert.Equal(t, first[1].Rating, 4.0)
}

func TestConfidence(t *testing.T) {
	prefs := DefaultPreferences()
	assert.InDelta(t, 0.5, Confidence(prefs, nil), 1e-9)

	prefs.FlavorProfiles = []string{"spicy"}
	prefs.DiningPurpose = "friends"
	prefs.Location = "Chinatown"
	results := []Restaurant{{ID: "1"}}
	assert.InDelta(t, 0.9, Confidence(prefs, results), 1e-9)

	prefs.RestaurantTypes = []string{"casual"}
	assert.InDelta(t, 1.0, Confidence(prefs, results), 1e-9)
}
