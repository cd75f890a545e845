package port

import (
	"time"

	"tagscope/internal/domain"
)

// IndexRepository holds the one current snapshot of a running process.
type IndexRepository interface {
	Get() (*domain.ProjectIndex, bool)

	Set(idx *domain.ProjectIndex) uint64

	Clear()
}

// SnapshotStore persists snapshots across runs, one per project path.
type SnapshotStore interface {
	PutSnapshot(idx *domain.ProjectIndex) error

	GetSnapshot(projectPath string) (*domain.ProjectIndex, error)

	DeleteSnapshot(projectPath string) error

	ListSnapshots() ([]SnapshotInfo, error)

	Close() error
}

type SnapshotInfo struct {
	ID          string    `json:"id"`
	ProjectPath string    `json:"project_path"`
	TagsPath    string    `json:"tags_path"`
	BuiltAt     time.Time `json:"built_at"`
	Files       int       `json:"files"`
	Tags        int       `json:"tags"`
	Errors      int       `json:"errors"`
}

// Summarize builds the listing entry of a snapshot.
func Summarize(idx *domain.ProjectIndex) SnapshotInfo {
	tags := 0
	for _, fa := range idx.Analyses {
		tags += len(fa.Tags)
	}
	return SnapshotInfo{
		ID:          idx.ID,
		ProjectPath: idx.ProjectPath,
		TagsPath:    idx.TagsPath,
		BuiltAt:     idx.BuiltAt,
		Files:       len(idx.Files),
		Tags:        tags,
		Errors:      len(idx.Errors),
	}
}
