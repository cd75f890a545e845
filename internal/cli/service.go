package cli

import (
	"fmt"

	"tagscope/config"
	"tagscope/internal/adapter/cache"
	"tagscope/internal/adapter/fs"
	"tagscope/internal/adapter/lang"
	"tagscope/internal/adapter/memstore"
	"tagscope/internal/adapter/store"
	"tagscope/internal/port"
	"tagscope/internal/usecase"
)

// session is the wiring of one command run.
type session struct {
	service *usecase.IndexService
	walker  *fs.Walker
	store   port.SnapshotStore
	dbPath  string
}

func (s *session) Close() error {
	return s.store.Close()
}

func registryFor(cfg *config.Config) *lang.Registry {
	extra := make(map[string]lang.Patterns, len(cfg.Languages))
	for key, l := range cfg.Languages {
		extra[key] = lang.Patterns(l)
	}
	return lang.NewRegistry(extra)
}

// openSession wires the index service for project. With persist set the
// snapshot store lives in the project's .tagscope directory; otherwise it
// is in memory and gone when the command exits.
func openSession(project string, persist bool) (*session, error) {
	cfg := GetConfig()

	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)
	builder := usecase.NewIndexUseCase(registryFor(cfg), walker, cfg.Index.Workers)
	files, err := cache.NewFileCache(fs.OSReader{}, cfg.Index.FileCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create file cache: %w", err)
	}

	s := &session{walker: walker}
	if persist && cfg.Store.Enabled {
		if err := config.EnsureDir(project); err != nil {
			return nil, fmt.Errorf("failed to create .tagscope directory: %w", err)
		}
		s.dbPath = config.IndexDBPath(project)
		st, err := store.NewBoltStore(s.dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
		if err := prepareStore(st, cfg); err != nil {
			st.Close()
			return nil, err
		}
		s.store = st
	} else {
		s.store = memstore.NewSnapshotStore()
	}

	s.service = usecase.NewIndexService(builder, cache.NewIndexCache(), files, s.store)
	return s, nil
}

func prepareStore(st *store.BoltStore, cfg *config.Config) error {
	migrationResult, err := st.CheckMigration(cfg)
	if err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}

	if migrationResult.NeedsRebuild {
		fmt.Printf("Stored index is stale: %s\n", migrationResult.Reason)
		fmt.Println("Clearing stored snapshots...")
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
	}
	if migrationResult.NeedsRebuild || migrationResult.NeedsMigration {
		if err := st.Migrate(cfg); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
