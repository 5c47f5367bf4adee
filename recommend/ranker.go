package recommend

import (
	"math/rand"
	"sort"
	"strings"
)

// rankerOptions configures Filter.
type rankerOptions struct {
	rng *rand.Rand
}

// FilterOption configures the filter/ranker.
type FilterOption func(*rankerOptions)

// WithRandSource sets the random source used for diversity sampling.
// Tests pass a seeded source to make the sampled tail deterministic.
func WithRandSource(rng *rand.Rand) FilterOption {
	return func(o *rankerOptions) {
		o.rng = rng
	}
}

// Filter narrows candidates by the query and preferences and ranks the
// survivors. Every filter is non-destructive: a step that would eliminate
// all remaining candidates is skipped, and if nothing survives at all the
// first three unfiltered entries are returned so the user always gets
// something to react to.
//
// Final ordering is rating-descending. When more than six candidates remain,
// the top three are kept and three more are sampled at random from the rest
// for diversity.
func Filter(query string, prefs Preferences, restaurants []Restaurant, opts ...FilterOption) []Restaurant {
	options := &rankerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	all := append([]Restaurant(nil), restaurants...)
	filtered := append([]Restaurant(nil), all...)

	filtered = applyFilter(filtered, locationFilter(prefs))
	filtered = applyFilter(filtered, budgetFilter(prefs))
	filtered = applyFilter(filtered, spicyFilter(query, prefs))
	filtered = applyFilter(filtered, purposeFilter(prefs))

	if len(filtered) == 0 {
		if len(all) > 3 {
			filtered = all[:3]
		} else {
			filtered = all
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Rating > filtered[j].Rating
	})

	if len(filtered) > 6 {
		top := filtered[:3]
		rest := append([]Restaurant(nil), filtered[3:]...)
		shuffle(rest, options.rng)
		filtered = append(top, rest[:3]...)
	}

	return filtered
}

// applyFilter runs one predicate over the candidates, keeping the input set
// untouched when the predicate would empty it.
func applyFilter(in []Restaurant, keep func(Restaurant) bool) []Restaurant {
	if keep == nil {
		return in
	}
	out := make([]Restaurant, 0, len(in))
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return in
	}
	return out
}

func locationFilter(prefs Preferences) func(Restaurant) bool {
	if !prefs.HasLocation() {
		return nil
	}
	loc := strings.ToLower(prefs.Location)
	return func(r Restaurant) bool {
		return r.Location != "" && strings.Contains(strings.ToLower(r.Location), loc)
	}
}

func budgetFilter(prefs Preferences) func(Restaurant) bool {
	min, max := prefs.BudgetRange.Min, prefs.BudgetRange.Max
	if min == 0 && max == 0 {
		return nil
	}
	return func(r Restaurant) bool {
		est := PriceEstimate(r.Price)
		if est == 0 {
			// Unknown price tier: keep rather than reject.
			return true
		}
		if est < min {
			return false
		}
		if max > 0 && est > max {
			return false
		}
		return true
	}
}

// spicyCuisines maps the "spicy" flavor request to cuisines likely to satisfy it.
var spicyCuisines = []string{"chinese", "korean", "thai", "indian", "peranakan"}

func spicyFilter(query string, prefs Preferences) func(Restaurant) bool {
	wantsSpicy := false
	for _, f := range prefs.FlavorProfiles {
		if f == "spicy" {
			wantsSpicy = true
		}
	}
	q := strings.ToLower(query)
	if strings.Contains(q, "spicy") || strings.Contains(q, "hot") {
		wantsSpicy = true
	}
	if !wantsSpicy {
		return nil
	}
	return func(r Restaurant) bool {
		cuisine := strings.ToLower(r.Cuisine)
		for _, c := range spicyCuisines {
			if strings.Contains(cuisine, c) {
				return true
			}
		}
		return false
	}
}

func purposeFilter(prefs Preferences) func(Restaurant) bool {
	switch prefs.DiningPurpose {
	case "date-night":
		return func(r Restaurant) bool {
			return isHighTier(r.Price) && hasHighlight(r, "romantic")
		}
	case "family":
		return func(r Restaurant) bool {
			return hasHighlight(r, "family") || r.Price == "$" || r.Price == "$$"
		}
	case "business":
		return func(r Restaurant) bool {
			return isHighTier(r.Price) && r.Rating >= 4.0
		}
	default:
		return nil
	}
}

func isHighTier(price string) bool {
	return price == "$$$" || price == "$$$$"
}

func hasHighlight(r Restaurant, substr string) bool {
	for _, h := range r.Highlights {
		if strings.Contains(strings.ToLower(h), substr) {
			return true
		}
	}
	return false
}

func shuffle(rs []Restaurant, rng *rand.Rand) {
	swap := func(i, j int) { rs[i], rs[j] = rs[j], rs[i] }
	if rng != nil {
		rng.Shuffle(len(rs), swap)
	} else {
		rand.Shuffle(len(rs), swap)
	}
}

// Confidence scores how well-grounded a recommendation set is, 0..1.
// An explicit value on each preference dimension and a non-empty result each
// raise the base confidence.
func Confidence(prefs Preferences, results []Restaurant) float64 {
	confidence := 0.5
	if prefs.HasTypes() {
		confidence += 0.1
	}
	if prefs.HasFlavors() {
		confidence += 0.1
	}
	if prefs.HasPurpose() {
		confidence += 0.1
	}
	if prefs.HasLocation() {
		confidence += 0.1
	}
	if len(results) > 0 {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
