// Package intent decides what a user message means: a restaurant
// query, ordinary chat, or a yes/no answer to a pending confirmation.
//
// The primary classifier calls an OpenAI-compatible chat API in JSON
// mode and extracts dining preferences and profile updates along with
// the intent. A keyword-based RuleClassifier serves as an offline
// fallback. Both coerce out-of-state intents onto the legal set for
// the current conversation state.
package intent
