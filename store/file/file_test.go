package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/dinerec/store"
	"github.com/smallnest/dinerec/tool"
)

func TestNewArtifactStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	_, err := NewArtifactStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestArtifactStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	a := &store.Artifact{
		ID:        "demo",
		UserInput: "spicy dinner in Chinatown",
		PlanCalls: []tool.Call{
			{Name: tool.NameMapsSearch, Parameters: map[string]any{"query": "spicy Chinatown"}},
		},
		Executions: []tool.Execution{
			{Tool: tool.NameMapsSearch, Success: true, Output: []any{map[string]any{"name": "place"}}},
		},
		Summary: "Try these three spots.",
	}
	require.NoError(t, s.Save(ctx, a))

	loaded, err := s.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "spicy dinner in Chinatown", loaded.UserInput)
	assert.Equal(t, tool.NameMapsSearch, loaded.PlanCalls[0].Name)
	assert.True(t, loaded.Valid())
	assert.False(t, loaded.CreatedAt.IsZero())
}

func TestArtifactStoreAssignsIDWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	a := &store.Artifact{UserInput: "laksa"}
	require.NoError(t, s.Save(ctx, a))
	require.NotEmpty(t, a.ID)

	loaded, err := s.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "laksa", loaded.UserInput)
}

func TestArtifactStoreLatest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewArtifactStore(dir)
	require.NoError(t, err)

	_, err = s.Latest(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Save(ctx, &store.Artifact{ID: "old", UserInput: "first"}))
	// File modification times need to differ for ordering.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "run_old.json"), past, past))
	require.NoError(t, s.Save(ctx, &store.Artifact{ID: "new", UserInput: "second"}))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", latest.ID)

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new"}, ids)
}

func TestArtifactStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, &store.Artifact{ID: "gone"}))
	require.NoError(t, s.Delete(ctx, "gone"))

	_, err = s.Load(ctx, "gone")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestArtifactStoreIgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewArtifactStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, s.Save(ctx, &store.Artifact{ID: "only"}))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, ids)
}
