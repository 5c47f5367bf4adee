package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/dinerec/store"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := NewHistoryStore(SqliteOptions{Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHistoryStoreAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().Truncate(time.Second)
	turns := []store.Message{
		{Role: store.RoleUser, Content: "any spicy food nearby?", CreatedAt: base},
		{Role: store.RoleAssistant, Content: "looking for spicy, correct?", CreatedAt: base.Add(time.Second)},
		{Role: store.RoleUser, Content: "yes", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, m := range turns {
		require.NoError(t, s.Append(ctx, "u1", m))
	}

	recent, err := s.Recent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "looking for spicy, correct?", recent[0].Content)
	assert.Equal(t, "yes", recent[1].Content)

	all, err := s.Recent(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, store.RoleUser, all[0].Role)
	assert.Equal(t, "any spicy food nearby?", all[0].Content)
}

func TestHistoryStoreIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Append(ctx, "u1", store.Message{Role: store.RoleUser, Content: "a", CreatedAt: time.Now()}))
	require.NoError(t, s.Append(ctx, "u2", store.Message{Role: store.RoleUser, Content: "b", CreatedAt: time.Now()}))

	msgs, err := s.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "a", msgs[0].Content)
}

func TestHistoryStoreEmptyUser(t *testing.T) {
	s := newTestStore(t)

	msgs, err := s.Recent(context.Background(), "stranger", 5)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestHistoryStoreCustomTable(t *testing.T) {
	s, err := NewHistoryStore(SqliteOptions{
		Path:      filepath.Join(t.TempDir(), "history.db"),
		TableName: "transcript",
	})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "u1", store.Message{Role: store.RoleUser, Content: "hello", CreatedAt: time.Now()}))

	msgs, err := s.Recent(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
}
