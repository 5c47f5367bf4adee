// Package recommend holds the preference model and the in-memory candidate
// filter/ranker.
//
// Preferences is the structured filter criteria extracted from a dining
// query (types, flavors, purpose, budget, location). Every field carries a
// defined default, so a Preferences value is never partially nil; Normalize
// and MergeDefaults maintain that invariant when values arrive from an LLM
// classifier or a stored profile.
//
// Filter is a pure function over a restaurant slice: each narrowing step is
// skipped when it would eliminate every candidate, results are ordered by
// rating, and large result sets are diversity-sampled. Pass WithRandSource
// with a seeded *rand.Rand for deterministic sampling in tests.
package recommend
