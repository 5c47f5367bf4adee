package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/smallnest/dinerec/store"
)

const (
	filePrefix = "run_"
	fileSuffix = ".json"
)

// ArtifactStore persists pipeline run traces as JSON files, one per
// run, named run_<id>.json inside a directory.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates the directory if missing and returns a store
// over it.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

func (s *ArtifactStore) path(id string) string {
	return filepath.Join(s.dir, filePrefix+id+fileSuffix)
}

// Save writes the artifact to disk. An empty ID gets a timestamp-based
// one assigned.
func (s *ArtifactStore) Save(_ context.Context, a *store.Artifact) error {
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	if cp.ID == "" {
		cp.ID = cp.CreatedAt.Format("20060102_150405")
	}
	a.ID = cp.ID

	data, err := json.MarshalIndent(&cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := os.WriteFile(s.path(cp.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact file: %w", err)
	}
	return nil
}

// Load reads one artifact by ID.
func (s *ArtifactStore) Load(_ context.Context, id string) (*store.Artifact, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read artifact file: %w", err)
	}

	var a store.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	if a.ID == "" {
		a.ID = id
	}
	return &a, nil
}

// Latest returns the most recently written artifact.
func (s *ArtifactStore) Latest(ctx context.Context) (*store.Artifact, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, store.ErrNotFound
	}
	return s.Load(ctx, ids[len(ids)-1])
}

// List returns artifact IDs ordered oldest to newest by file
// modification time.
func (s *ArtifactStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact directory: %w", err)
	}

	type record struct {
		id      string
		modTime time.Time
	}
	var records []record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		records = append(records, record{id: id, modTime: info.ModTime()})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].modTime.Equal(records[j].modTime) {
			return records[i].id < records[j].id
		}
		return records[i].modTime.Before(records[j].modTime)
	})

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.id
	}
	return ids, nil
}

// Delete removes one artifact file. Missing files are not an error.
func (s *ArtifactStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact file: %w", err)
	}
	return nil
}
