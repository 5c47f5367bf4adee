package recommend

// Sentinel value for preference fields the user has not constrained.
const Any = "any"

// Default budget bounds in SGD per person.
const (
	DefaultBudgetMin = 20
	DefaultBudgetMax = 60
)

// BudgetRange describes a per-person spending range.
type BudgetRange struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
	Per      string `json:"per"`
}

// Preferences is the structured filter criteria derived from a dining query.
// A Preferences value is always fully populated: every field has a defined
// default, so callers never see a partially nil record.
type Preferences struct {
	RestaurantTypes []string    `json:"restaurant_types"`
	FlavorProfiles  []string    `json:"flavor_profiles"`
	DiningPurpose   string      `json:"dining_purpose"`
	BudgetRange     BudgetRange `json:"budget_range"`
	Location        string      `json:"location"`
}

// DefaultPreferences returns a fully populated preference set with every
// dimension unconstrained and the standard budget window.
func DefaultPreferences() Preferences {
	return Preferences{
		RestaurantTypes: []string{Any},
		FlavorProfiles:  []string{Any},
		DiningPurpose:   Any,
		BudgetRange: BudgetRange{
			Min:      DefaultBudgetMin,
			Max:      DefaultBudgetMax,
			Currency: "SGD",
			Per:      "person",
		},
		Location: Any,
	}
}

// Normalize fills any empty field with its default so the invariant
// "every field is populated" holds regardless of where the value came from.
// It also repairs an inverted budget range.
func (p *Preferences) Normalize() {
	if len(p.RestaurantTypes) == 0 {
		p.RestaurantTypes = []string{Any}
	}
	if len(p.FlavorProfiles) == 0 {
		p.FlavorProfiles = []string{Any}
	}
	if p.DiningPurpose == "" {
		p.DiningPurpose = Any
	}
	if p.BudgetRange.Currency == "" {
		p.BudgetRange.Currency = "SGD"
	}
	if p.BudgetRange.Per == "" {
		p.BudgetRange.Per = "person"
	}
	if p.BudgetRange.Min == 0 && p.BudgetRange.Max == 0 {
		p.BudgetRange.Min = DefaultBudgetMin
		p.BudgetRange.Max = DefaultBudgetMax
	}
	if p.BudgetRange.Max != 0 && p.BudgetRange.Min > p.BudgetRange.Max {
		p.BudgetRange.Min, p.BudgetRange.Max = p.BudgetRange.Max, p.BudgetRange.Min
	}
	if p.Location == "" {
		p.Location = Any
	}
}

// IsDefaultBudget reports whether the budget window is still the untouched
// default. Used to decide whether a stored profile budget should take over.
func (p Preferences) IsDefaultBudget() bool {
	b := p.BudgetRange
	return (b.Min == DefaultBudgetMin && b.Max == DefaultBudgetMax) ||
		(b.Min == 0 && b.Max == 0)
}

// HasTypes reports whether the user constrained restaurant types.
func (p Preferences) HasTypes() bool { return !isAnyList(p.RestaurantTypes) }

// HasFlavors reports whether the user constrained flavor profiles.
func (p Preferences) HasFlavors() bool { return !isAnyList(p.FlavorProfiles) }

// HasPurpose reports whether the user constrained the dining purpose.
func (p Preferences) HasPurpose() bool { return p.DiningPurpose != "" && p.DiningPurpose != Any }

// HasLocation reports whether the user constrained the location.
func (p Preferences) HasLocation() bool { return p.Location != "" && p.Location != Any }

// MergeDefaults fills dimensions the user left at their defaults from the
// stored fallback (typically the user's last persisted preferences or
// profile-derived defaults). Explicitly stated dimensions win.
func (p *Preferences) MergeDefaults(stored Preferences) {
	if !p.HasTypes() && stored.HasTypes() {
		p.RestaurantTypes = append([]string(nil), stored.RestaurantTypes...)
	}
	if !p.HasFlavors() && stored.HasFlavors() {
		p.FlavorProfiles = append([]string(nil), stored.FlavorProfiles...)
	}
	if !p.HasPurpose() && stored.HasPurpose() {
		p.DiningPurpose = stored.DiningPurpose
	}
	if p.IsDefaultBudget() && !stored.IsDefaultBudget() {
		p.BudgetRange = stored.BudgetRange
	}
	if !p.HasLocation() && stored.HasLocation() {
		p.Location = stored.Location
	}
}

// Clone returns a deep copy so callers can mutate without sharing slices.
func (p Preferences) Clone() Preferences {
	c := p
	c.RestaurantTypes = append([]string(nil), p.RestaurantTypes...)
	c.FlavorProfiles = append([]string(nil), p.FlavorProfiles...)
	return c
}

// FilterAny drops Any and empty entries from a tag list. Helper for
// prompt/description builders that only mention constrained dimensions.
func FilterAny(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" && t != Any {
			out = append(out, t)
		}
	}
	return out
}

func isAnyList(tags []string) bool {
	return len(FilterAny(tags)) == 0
}
