// Package conversation drives the dialogue with the user: it classifies
// each message, runs a confirmation round over the extracted
// preferences, and launches asynchronous recommendation tasks that are
// polled by ID.
//
// A user is in one of two states. Idle users get either a chat reply or
// a confirmation request for a detected restaurant query. While a
// confirmation is pending, a yes launches the task, a rejection with
// replacement preferences restarts the round, and anything else drops
// the round. The presence of a stored context is the single source of
// truth for the pending state, and there is at most one per user.
package conversation
