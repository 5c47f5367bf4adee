// Package store defines the persistence contracts and record types for
// the recommendation assistant: per-user preferences, pending
// confirmation contexts, conversation history, user profiles, and
// recorded pipeline runs.
//
// Implementations live in subpackages:
//
//   - store/memory: in-process maps, the default for tests and demos
//   - store/file: JSON files on disk for pipeline run artifacts
//   - store/redis: Redis-backed contexts and preferences with TTL
//   - store/sqlite: SQLite-backed conversation history
//   - store/postgres: PostgreSQL-backed user profiles
package store
