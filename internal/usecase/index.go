package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tagscope/internal/adapter/analyzer"
	"tagscope/internal/adapter/fs"
	"tagscope/internal/adapter/graph"
	"tagscope/internal/adapter/imports"
	"tagscope/internal/adapter/lang"
	"tagscope/internal/adapter/tagfile"
	"tagscope/internal/domain"
	"tagscope/internal/port"
)

// Progress is told about every file whose extraction finished. It runs on
// its own goroutine and never blocks extraction.
type Progress func(done, total int, file string)

// IndexUseCase builds project snapshots.
type IndexUseCase struct {
	registry  *lang.Registry
	extractor *analyzer.Extractor
	walker    port.FileWalker
	workers   int
}

// NewIndexUseCase creates a new index use case. workers <= 0 means one per CPU.
func NewIndexUseCase(registry *lang.Registry, walker port.FileWalker, workers int) *IndexUseCase {
	return &IndexUseCase{
		registry:  registry,
		extractor: analyzer.NewExtractor(registry),
		walker:    walker,
		workers:   workers,
	}
}

type fileResult struct {
	analysis domain.FileAnalysis
	err      error
}

// Build indexes projectPath. With a tags path the listing names the files;
// without one the project is walked. Per-file failures are recorded in the
// snapshot and never abort the build. A cancelled ctx stops new files from
// being started and the build returns ctx.Err().
func (u *IndexUseCase) Build(ctx context.Context, projectPath, tagsPath string, progress Progress) (*domain.ProjectIndex, error) {
	start := time.Now()

	root, err := fs.Canonical(projectPath)
	if err != nil {
		return nil, domain.Wrap(err, domain.CodeInvalidArgument, "invalid project path").
			WithContext(domain.CtxPath, projectPath)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, domain.NewError(domain.CodeFileUnreadable, "project directory is not readable").
			WithContext(domain.CtxPath, root)
	}

	files, listing, err := u.discover(root, tagsPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("discovered files", "project", root, "files", len(files))

	results, err := u.extract(ctx, files, progress)
	if err != nil {
		return nil, err
	}

	analyses := make([]domain.FileAnalysis, len(files))
	var errs []domain.FileError
	seen := make(map[domain.FileError]bool)
	record := func(fe domain.FileError) {
		key := domain.FileError{File: fe.File, Code: fe.Code}
		if seen[key] {
			return
		}
		seen[key] = true
		errs = append(errs, fe)
	}
	for i, r := range results {
		analyses[i] = r.analysis
		if listing != nil {
			analyses[i] = analyzer.MarkListed(analyses[i], listing.ForFile(files[i]))
		}
		if r.err != nil {
			record(domain.FileError{File: files[i], Code: domain.CodeOf(r.err), Message: r.err.Error()})
		}
	}

	resolver := imports.NewResolver(root, files)
	edges, importErrs := resolver.ResolveAll(files)
	for _, fe := range importErrs {
		record(fe)
	}

	idx, unresolved := Link(root, files, analyses, edges, u.registry)
	idx.Errors = errs
	if listing != nil {
		idx.TagsPath = listing.Path
	}

	slog.Info("index built",
		"project", root,
		"files", len(files),
		"unresolved", unresolved,
		"errors", len(errs),
		"duration", time.Since(start))
	return idx, nil
}

// Link runs the symbol graph over extracted files and assembles a new
// snapshot. It also returns the number of references left unresolved.
func Link(projectPath string, files []string, analyses []domain.FileAnalysis, edges [][]domain.ImportEdge, prims graph.Primitives) (*domain.ProjectIndex, int) {
	linked := graph.Build(analyses, edges, prims)
	return &domain.ProjectIndex{
		ID:          uuid.NewString(),
		ProjectPath: projectPath,
		BuiltAt:     time.Now(),
		Files:       files,
		Analyses:    linked.Analyses,
		Imports:     edges,
		Access:      linked.Access,
		Children:    linked.Children,
	}, linked.Unresolved
}

// discover returns the sorted canonical file list of the build.
func (u *IndexUseCase) discover(root, tagsPath string) ([]string, *tagfile.Listing, error) {
	if tagsPath == "" {
		infos, err := u.walker.Walk(root)
		if err != nil {
			return nil, nil, domain.Wrap(err, domain.CodeFileUnreadable, "failed to walk project").
				WithContext(domain.CtxPath, root)
		}
		files := make([]string, 0, len(infos))
		for _, info := range infos {
			files = append(files, info.Path)
		}
		return files, nil, nil
	}

	canonTags, err := fs.Canonical(tagsPath)
	if err != nil {
		return nil, nil, domain.Wrap(err, domain.CodeFileUnreadable, "invalid tag listing path").
			WithContext(domain.CtxPath, tagsPath)
	}
	listing, err := tagfile.Load(canonTags)
	if err != nil {
		return nil, nil, err
	}
	return u.walker.Filter(root, listing.Files()), listing, nil
}

// extract analyzes every file in parallel. Each worker writes only its own
// result slot, so the output order is the file order.
func (u *IndexUseCase) extract(ctx context.Context, files []string, progress Progress) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	if len(files) == 0 {
		return results, ctx.Err()
	}

	workers := u.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	events := make(chan string, len(files))
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		done := 0
		for file := range events {
			done++
			if progress != nil {
				progress(done, len(files), file)
			}
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fa, err := u.extractor.AnalyzeFile(path)
			if err != nil {
				slog.Warn("file analysis failed", "path", path, "error", err)
			} else {
				slog.Debug("file analyzed", "path", path, "summary", analyzer.Describe(fa))
			}
			results[i] = fileResult{analysis: fa, err: err}
			events <- path
			return nil
		})
	}
	waitErr := g.Wait()
	close(events)
	<-drained

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if waitErr != nil {
		return nil, fmt.Errorf("extraction failed: %w", waitErr)
	}
	return results, nil
}
