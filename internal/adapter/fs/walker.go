package fs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"tagscope/internal/port"
)

// Walker lists project files through doublestar include and exclude globs.
type Walker struct {
	includes []string
	excludes []string
}

var _ port.FileWalker = (*Walker)(nil)

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

// Walk lists the project's files that pass the include and exclude globs,
// sorted by canonical path.
func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	root, err := Canonical(root)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.excludesDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, port.FileInfo{
				Path:    path,
				ModTime: info.ModTime().Unix(),
				Size:    info.Size(),
			})
		}

		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// Filter keeps the paths that pass the globs. Paths under root are matched
// relative to it; others are matched by their slash-separated absolute form.
// The result is deduplicated and sorted.
func (w *Walker) Filter(root string, paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, path := range paths {
		if seen[path] {
			continue
		}
		seen[path] = true
		rel := matchPath(root, path)
		if w.shouldInclude(rel) && !w.shouldExclude(rel) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// ExcludesDir reports whether a directory under root is pruned by the
// exclude globs.
func (w *Walker) ExcludesDir(root, dir string) bool {
	rel := matchPath(root, dir)
	if rel == "." {
		return false
	}
	return w.excludesDir(rel)
}

func (w *Walker) excludesDir(rel string) bool {
	return w.shouldExclude(rel) || w.shouldExclude(rel+"/")
}

// Matches reports whether a file under root passes the globs.
func (w *Walker) Matches(root, path string) bool {
	rel := matchPath(root, path)
	return w.shouldInclude(rel) && !w.shouldExclude(rel)
}

func matchPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return strings.TrimPrefix(filepath.ToSlash(path), "/")
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// Canonical returns the absolute, symlink-free form of path. A path that
// does not exist is returned absolute and cleaned.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// IsRegularFile reports whether path names an existing regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OSReader reads files straight from disk.
type OSReader struct{}

func (OSReader) ReadFile(path string) (string, error) {
	return ReadFile(path)
}
