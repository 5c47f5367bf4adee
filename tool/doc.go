// Package tool provides the external retrieval tools and their dispatch
// registry.
//
// Two tools back the recommendation pipeline: gmap.search (candidate venues
// with ratings and price tiers) and xhs.search (social review notes). Both
// are plain HTTP clients with functional options for endpoint, result count
// and client injection.
//
// Registry.Dispatch is the single entry point the pipeline uses: it resolves
// tool names through a closed lookup table, applies a bounded per-call
// timeout, and converts every failure mode (unknown name, error, timeout,
// panic) into a failed Execution record instead of an error, so one bad tool
// never aborts a run.
package tool
