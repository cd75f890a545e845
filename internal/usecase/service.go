package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"tagscope/internal/adapter/cache"
	"tagscope/internal/adapter/fs"
	"tagscope/internal/domain"
	"tagscope/internal/port"
)

// IndexService exposes the operations callers run against a project: build,
// clear and read-file-by-index. All of them are safe to repeat.
type IndexService struct {
	builder *IndexUseCase
	repo    port.IndexRepository
	files   *cache.FileCache
	store   port.SnapshotStore
}

// NewIndexService wires the service. store may be nil, in which case
// snapshots live only as long as repo.
func NewIndexService(builder *IndexUseCase, repo port.IndexRepository, files *cache.FileCache, store port.SnapshotStore) *IndexService {
	return &IndexService{
		builder: builder,
		repo:    repo,
		files:   files,
		store:   store,
	}
}

// Build computes a fresh snapshot and swaps it in. A failed or cancelled
// build leaves the current snapshot in place.
func (s *IndexService) Build(ctx context.Context, projectPath, tagsPath string, progress Progress) (*domain.ProjectIndex, error) {
	idx, err := s.builder.Build(ctx, projectPath, tagsPath, progress)
	if err != nil {
		return nil, err
	}

	gen := s.repo.Set(idx)
	s.files.Purge()
	slog.Debug("snapshot swapped in", "id", idx.ID, "generation", gen)

	if s.store != nil {
		if err := s.store.PutSnapshot(idx); err != nil {
			return idx, fmt.Errorf("failed to persist snapshot: %w", err)
		}
	}
	return idx, nil
}

// Current returns the snapshot in place, if any.
func (s *IndexService) Current() (*domain.ProjectIndex, bool) {
	return s.repo.Get()
}

// Restore makes the stored snapshot of projectPath current.
func (s *IndexService) Restore(projectPath string) (*domain.ProjectIndex, error) {
	if s.store == nil {
		return nil, domain.NewError(domain.CodeNotFound, "no snapshot store configured")
	}
	root, err := fs.Canonical(projectPath)
	if err != nil {
		return nil, domain.Wrap(err, domain.CodeInvalidArgument, "invalid project path").
			WithContext(domain.CtxPath, projectPath)
	}
	idx, err := s.store.GetSnapshot(root)
	if err != nil {
		return nil, err
	}
	s.repo.Set(idx)
	s.files.Purge()
	return idx, nil
}

// Clear empties the current snapshot and the file-content cache.
func (s *IndexService) Clear() {
	s.repo.Clear()
	s.files.Purge()
}

// Forget clears the current snapshot and drops the stored one of projectPath.
func (s *IndexService) Forget(projectPath string) error {
	s.Clear()
	if s.store == nil {
		return nil
	}
	root, err := fs.Canonical(projectPath)
	if err != nil {
		return domain.Wrap(err, domain.CodeInvalidArgument, "invalid project path").
			WithContext(domain.CtxPath, projectPath)
	}
	return s.store.DeleteSnapshot(root)
}

// ReadFile returns the text of the index-th file of the current snapshot.
func (s *IndexService) ReadFile(index int) (string, error) {
	idx, ok := s.repo.Get()
	if !ok {
		return "", domain.NewError(domain.CodeNotFound, "no index has been built")
	}
	if index < 0 || index >= len(idx.Files) {
		return "", domain.NewError(domain.CodeInvalidArgument, "file index out of range").
			WithContext(domain.CtxIndex, index)
	}

	path := idx.Files[index]
	text, err := s.files.ReadFile(path)
	if err != nil {
		return "", domain.Wrap(err, domain.CodeFileUnreadable, "failed to read file").
			WithContext(domain.CtxPath, path)
	}
	return text, nil
}
