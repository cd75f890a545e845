// Package tagfile reads ctags-style tag listings.
package tagfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tagscope/internal/adapter/fs"
	"tagscope/internal/domain"
)

// Listing is a parsed tag listing. Entry file names are canonical paths.
type Listing struct {
	Path    string
	Entries []domain.TagEntry
	byFile  map[string][]domain.TagEntry
}

// Load opens and parses the listing at path. Relative file names in it are
// resolved against the listing's own directory.
func Load(path string) (*Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.Wrap(err, domain.CodeFileUnreadable, "failed to open tag listing").
			WithContext(domain.CtxPath, path)
	}
	defer f.Close()

	base, err := fs.Canonical(filepath.Dir(path))
	if err != nil {
		return nil, domain.Wrap(err, domain.CodeFileUnreadable, "failed to resolve listing directory").
			WithContext(domain.CtxPath, path)
	}

	entries, err := Parse(f, base)
	if err != nil {
		return nil, domain.Wrap(err, domain.CodeFileUnreadable, "failed to read tag listing").
			WithContext(domain.CtxPath, path)
	}
	return NewListing(path, entries), nil
}

// NewListing indexes entries by file.
func NewListing(path string, entries []domain.TagEntry) *Listing {
	l := &Listing{Path: path, Entries: entries, byFile: make(map[string][]domain.TagEntry)}
	for _, e := range entries {
		l.byFile[e.File] = append(l.byFile[e.File], e)
	}
	return l
}

// Parse reads listing lines. Lines starting with '!' are comments and lines
// with fewer than three tab-separated fields are skipped.
func Parse(r io.Reader, baseDir string) ([]domain.TagEntry, error) {
	var entries []domain.TagEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 3 {
			continue
		}

		entry := domain.TagEntry{
			Name:    parts[0],
			File:    resolveFile(baseDir, parts[1]),
			Pattern: stripPattern(parts[2]),
		}
		if len(parts) >= 4 {
			entry.Kind = parts[3]
		}
		if len(parts) >= 5 {
			entry.Context = parts[4]
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func stripPattern(p string) string {
	p = strings.TrimPrefix(p, "/^")
	p = strings.TrimSuffix(p, `;"`)
	p = strings.TrimSuffix(p, "$/")
	p = strings.TrimSuffix(p, "/")
	return strings.TrimSpace(p)
}

func resolveFile(baseDir, name string) string {
	if !filepath.IsAbs(name) && baseDir != "" {
		name = filepath.Join(baseDir, name)
	}
	if canon, err := fs.Canonical(name); err == nil {
		return canon
	}
	return filepath.Clean(name)
}

// Files returns the distinct files named by the listing, sorted.
func (l *Listing) Files() []string {
	files := make([]string, 0, len(l.byFile))
	for f := range l.byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// ForFile returns the entries naming path, in listing order.
func (l *Listing) ForFile(path string) []domain.TagEntry {
	return l.byFile[path]
}
