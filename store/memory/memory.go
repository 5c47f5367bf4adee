package memory

import (
	"context"
	"sync"
	"time"

	"github.com/smallnest/dinerec/recommend"
	"github.com/smallnest/dinerec/store"
)

// PreferenceStore keeps preferences in process memory.
type PreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]recommend.Preferences
}

// NewPreferenceStore creates an empty in-memory preference store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{prefs: make(map[string]recommend.Preferences)}
}

// Get returns the stored preferences, or defaults for an unknown user.
func (s *PreferenceStore) Get(_ context.Context, userID string) (recommend.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[userID]; ok {
		return p.Clone(), nil
	}
	return recommend.DefaultPreferences(), nil
}

func (s *PreferenceStore) Set(_ context.Context, userID string, prefs recommend.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = prefs.Clone()
	return nil
}

// ContextStore keeps pending confirmation contexts in process memory.
type ContextStore struct {
	mu       sync.RWMutex
	contexts map[string]*store.Context
}

// NewContextStore creates an empty in-memory context store.
func NewContextStore() *ContextStore {
	return &ContextStore{contexts: make(map[string]*store.Context)}
}

func (s *ContextStore) Get(_ context.Context, userID string) (*store.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contexts[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *ContextStore) Set(_ context.Context, userID string, c *store.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.contexts[userID] = &cp
	return nil
}

func (s *ContextStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, userID)
	return nil
}

// HistoryStore keeps conversation transcripts in process memory.
type HistoryStore struct {
	mu       sync.RWMutex
	messages map[string][]store.Message
}

// NewHistoryStore creates an empty in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{messages: make(map[string][]store.Message)}
}

func (s *HistoryStore) Append(_ context.Context, userID string, msg store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[userID] = append(s.messages[userID], msg)
	return nil
}

// Recent returns up to n of the latest messages, oldest first.
func (s *HistoryStore) Recent(_ context.Context, userID string, n int) ([]store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[userID]
	if n <= 0 || n > len(msgs) {
		n = len(msgs)
	}
	out := make([]store.Message, n)
	copy(out, msgs[len(msgs)-n:])
	return out, nil
}

// ProfileStore keeps user profiles in process memory.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*store.Profile
}

// NewProfileStore creates an empty in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]*store.Profile)}
}

func (s *ProfileStore) Get(_ context.Context, userID string) (*store.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *ProfileStore) Set(_ context.Context, userID string, p *store.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.profiles[userID] = &cp
	return nil
}

// ArtifactStore keeps pipeline run traces in process memory.
type ArtifactStore struct {
	mu        sync.RWMutex
	artifacts map[string]*store.Artifact
	order     []string
}

// NewArtifactStore creates an empty in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{artifacts: make(map[string]*store.Artifact)}
}

func (s *ArtifactStore) Save(_ context.Context, a *store.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	if _, exists := s.artifacts[cp.ID]; !exists {
		s.order = append(s.order, cp.ID)
	}
	s.artifacts[cp.ID] = &cp
	return nil
}

func (s *ArtifactStore) Load(_ context.Context, id string) (*store.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// Latest returns the most recently saved artifact.
func (s *ArtifactStore) Latest(_ context.Context) (*store.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, store.ErrNotFound
	}
	cp := *s.artifacts[s.order[len(s.order)-1]]
	return &cp, nil
}

func (s *ArtifactStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *ArtifactStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[id]; !ok {
		return nil
	}
	delete(s.artifacts, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
