package storage

import (
	"context"
	"sort"
	"sync"

	"wholecell/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	builds      map[string]model.BuildRecord
	networks    map[string]model.NetworkSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.builds = make(map[string]model.BuildRecord)
	s.networks = make(map[string]model.NetworkSummary)
	return nil
}

func (s *MemoryStore) SaveBuild(_ context.Context, build model.BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.builds[build.ID] = build
	return nil
}

func (s *MemoryStore) GetBuild(_ context.Context, id string) (model.BuildRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	build, ok := s.builds[id]
	return build, ok, nil
}

func (s *MemoryStore) ListBuilds(_ context.Context) ([]model.BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	builds := make([]model.BuildRecord, 0, len(s.builds))
	for _, build := range s.builds {
		builds = append(builds, build)
	}
	sort.Slice(builds, func(i, j int) bool {
		if !builds[i].CreatedAt.Equal(builds[j].CreatedAt) {
			return builds[i].CreatedAt.Before(builds[j].CreatedAt)
		}
		return builds[i].ID < builds[j].ID
	})
	return builds, nil
}

func (s *MemoryStore) SaveNetworkSummary(_ context.Context, summary model.NetworkSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.networks[summary.BuildID] = summary
	return nil
}

func (s *MemoryStore) GetNetworkSummary(_ context.Context, buildID string) (model.NetworkSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.networks[buildID]
	return summary, ok, nil
}
