package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/dinerec/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// ProfileStore implements store.ProfileStore using PostgreSQL.
type ProfileStore struct {
	pool      DBPool
	tableName string
}

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "profiles"
}

// NewProfileStore creates a Postgres-backed profile store.
func NewProfileStore(ctx context.Context, opts PostgresOptions) (*ProfileStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "profiles"
	}

	return &ProfileStore{pool: pool, tableName: tableName}, nil
}

// NewProfileStoreWithPool creates a profile store with an existing pool.
// Useful for testing with mocks.
func NewProfileStoreWithPool(pool DBPool, tableName string) *ProfileStore {
	if tableName == "" {
		tableName = "profiles"
	}
	return &ProfileStore{pool: pool, tableName: tableName}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *ProfileStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			user_id TEXT PRIMARY KEY,
			demographics JSONB NOT NULL,
			dining_habits JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *ProfileStore) Close() {
	s.pool.Close()
}

// Get loads the user's profile, or store.ErrNotFound when absent.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*store.Profile, error) {
	query := fmt.Sprintf(`
		SELECT demographics, dining_habits, created_at, updated_at
		FROM %s WHERE user_id = $1
	`, s.tableName)

	var (
		demographicsJSON []byte
		habitsJSON       []byte
	)
	p := &store.Profile{UserID: userID}

	err := s.pool.QueryRow(ctx, query, userID).
		Scan(&demographicsJSON, &habitsJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := json.Unmarshal(demographicsJSON, &p.Demographics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal demographics: %w", err)
	}
	if err := json.Unmarshal(habitsJSON, &p.DiningHabits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dining habits: %w", err)
	}
	return p, nil
}

// Set upserts the user's profile.
func (s *ProfileStore) Set(ctx context.Context, userID string, p *store.Profile) error {
	demographicsJSON, err := json.Marshal(p.Demographics)
	if err != nil {
		return fmt.Errorf("failed to marshal demographics: %w", err)
	}
	habitsJSON, err := json.Marshal(p.DiningHabits)
	if err != nil {
		return fmt.Errorf("failed to marshal dining habits: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, demographics, dining_habits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			demographics = EXCLUDED.demographics,
			dining_habits = EXCLUDED.dining_habits,
			updated_at = EXCLUDED.updated_at
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		userID, demographicsJSON, habitsJSON, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
