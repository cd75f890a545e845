package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"tagscope/internal/domain"
	"tagscope/internal/port"
)

var (
	bucketSnapshots = []byte("snapshots")
	bucketSummaries = []byte("summaries")
	bucketMeta      = []byte("meta")
)

// BoltStore persists one snapshot per project path. Snapshots are stored
// as JSON next to a small summary record used for listing.
type BoltStore struct {
	db *bbolt.DB
}

var _ port.SnapshotStore = (*BoltStore)(nil)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketSnapshots, bucketSummaries, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

func (s *BoltStore) PutSnapshot(idx *domain.ProjectIndex) error {
	if idx == nil || idx.ProjectPath == "" {
		return domain.NewError(domain.CodeInvalidArgument, "snapshot has no project path")
	}
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	summary, err := json.Marshal(port.Summarize(idx))
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	key := []byte(idx.ProjectPath)
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSnapshots).Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(bucketSummaries).Put(key, summary)
	})
}

func (s *BoltStore) GetSnapshot(projectPath string) (*domain.ProjectIndex, error) {
	var idx domain.ProjectIndex
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSnapshots).Get([]byte(projectPath))
		if data == nil {
			return domain.NewError(domain.CodeNotFound, "no snapshot for project").
				WithContext(domain.CtxPath, projectPath)
		}
		return json.Unmarshal(data, &idx)
	})
	if err != nil {
		return nil, err
	}
	return &idx, nil
}

func (s *BoltStore) DeleteSnapshot(projectPath string) error {
	key := []byte(projectPath)
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSnapshots).Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketSummaries).Delete(key)
	})
}

// ListSnapshots returns the summaries ordered by project path.
func (s *BoltStore) ListSnapshots() ([]port.SnapshotInfo, error) {
	var infos []port.SnapshotInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSummaries).ForEach(func(k, v []byte) error {
			var info port.SnapshotInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("failed to decode summary %s: %w", k, err)
			}
			infos = append(infos, info)
			return nil
		})
	})
	return infos, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
