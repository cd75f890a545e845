package memstore

import (
	"sort"
	"sync"

	"tagscope/internal/domain"
	"tagscope/internal/port"
)

// SnapshotStore keeps snapshots in memory. Snapshots are immutable once
// built, so they are stored and returned by pointer.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.ProjectIndex
}

var _ port.SnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]*domain.ProjectIndex),
	}
}

func (s *SnapshotStore) PutSnapshot(idx *domain.ProjectIndex) error {
	if idx == nil || idx.ProjectPath == "" {
		return domain.NewError(domain.CodeInvalidArgument, "snapshot has no project path")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[idx.ProjectPath] = idx
	return nil
}

func (s *SnapshotStore) GetSnapshot(projectPath string) (*domain.ProjectIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.snapshots[projectPath]
	if !ok {
		return nil, domain.NewError(domain.CodeNotFound, "no snapshot for project").
			WithContext(domain.CtxPath, projectPath)
	}
	return idx, nil
}

func (s *SnapshotStore) DeleteSnapshot(projectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, projectPath)
	return nil
}

func (s *SnapshotStore) ListSnapshots() ([]port.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]port.SnapshotInfo, 0, len(s.snapshots))
	for _, idx := range s.snapshots {
		infos = append(infos, port.Summarize(idx))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ProjectPath < infos[j].ProjectPath
	})
	return infos, nil
}

func (s *SnapshotStore) Close() error {
	return nil
}
