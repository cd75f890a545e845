// Package imports finds the import lines of source files and maps their
// targets onto the project's file list.
package imports

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tagscope/internal/adapter/fs"
	"tagscope/internal/domain"
)

type lineRule struct {
	prefixes []string
	// cutset is trimmed from both ends of the target unless suffixOnly.
	cutset     string
	suffixOnly bool
}

var rules = map[string]lineRule{
	"rs":   {prefixes: []string{"mod ", "extern crate "}, cutset: ";", suffixOnly: true},
	"py":   {prefixes: []string{"import ", "from "}},
	"js":   {prefixes: []string{"import "}, cutset: `"'{}`},
	"ts":   {prefixes: []string{"import "}, cutset: `"'{}`},
	"java": {prefixes: []string{"import "}, cutset: ";", suffixOnly: true},
	"c":    {prefixes: []string{"#include "}, cutset: `"<>`},
	"cpp":  {prefixes: []string{"#include "}, cutset: `"<>`},
	"cc":   {prefixes: []string{"#include "}, cutset: `"<>`},
	"cxx":  {prefixes: []string{"#include "}, cutset: `"<>`},
	"h":    {prefixes: []string{"#include "}, cutset: `"<>`},
	"hpp":  {prefixes: []string{"#include "}, cutset: `"<>`},
	"php":  {prefixes: []string{"include", "require"}, cutset: `"';`},
}

// Supported reports whether imports can be extracted from path.
func Supported(path string) bool {
	_, ok := rules[strings.TrimPrefix(filepath.Ext(path), ".")]
	return ok
}

// Extract returns the raw import targets of content in line order. The
// target is the second whitespace-separated word of a matching line.
func Extract(path, content string) ([]string, error) {
	rule, ok := rules[strings.TrimPrefix(filepath.Ext(path), ".")]
	if !ok {
		return nil, domain.NewError(domain.CodeUnsupportedLanguage, "no import syntax for file").
			WithContext(domain.CtxPath, path)
	}

	var targets []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !hasAnyPrefix(line, rule.prefixes) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 {
			continue
		}
		target := words[1]
		if rule.suffixOnly {
			target = strings.TrimRight(target, rule.cutset)
		} else if rule.cutset != "" {
			target = strings.Trim(target, rule.cutset)
		}
		if target != "" {
			targets = append(targets, target)
		}
	}
	return targets, scanner.Err()
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Resolver classifies import targets as project files or opaque packages.
type Resolver struct {
	projectRoot string
	index       map[string]int
}

// NewResolver builds a resolver over the canonical file list of a project.
func NewResolver(projectRoot string, files []string) *Resolver {
	index := make(map[string]int, len(files))
	for i, f := range files {
		index[f] = i
	}
	return &Resolver{projectRoot: projectRoot, index: index}
}

// ResolveFile reads the file at position from of the list and returns its
// import edges in line order.
func (r *Resolver) ResolveFile(from int, path string) ([]domain.ImportEdge, error) {
	if !Supported(path) {
		return nil, domain.NewError(domain.CodeUnsupportedLanguage, "no import syntax for file").
			WithContext(domain.CtxPath, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.Wrap(err, domain.CodeFileUnreadable, "failed to read imports").
			WithContext(domain.CtxPath, path)
	}
	targets, err := Extract(path, string(data))
	if err != nil {
		return nil, domain.Wrap(err, domain.CodeFileUnreadable, "failed to scan imports").
			WithContext(domain.CtxPath, path)
	}

	edges := make([]domain.ImportEdge, 0, len(targets))
	for _, raw := range targets {
		edges = append(edges, r.Classify(from, path, raw))
	}
	return edges, nil
}

// Classify resolves one raw target. A file beside the importer wins over one
// under the project root; anything else is a package.
func (r *Resolver) Classify(from int, importer, raw string) domain.ImportEdge {
	candidates := []string{filepath.Join(filepath.Dir(importer), raw)}
	if r.projectRoot != "" {
		candidates = append(candidates, filepath.Join(r.projectRoot, raw))
	}

	for _, candidate := range candidates {
		if !fs.IsRegularFile(candidate) {
			continue
		}
		canon, err := fs.Canonical(candidate)
		if err != nil {
			continue
		}
		target, ok := r.index[canon]
		if !ok {
			target = domain.NoScope
		}
		return domain.ImportEdge{From: from, Raw: raw, Kind: domain.ImportFile, Path: canon, Target: target}
	}

	slog.Debug("import kept as package", "code", domain.CodeUnresolvedImport, "path", importer, "import", raw)
	return domain.ImportEdge{From: from, Raw: raw, Kind: domain.ImportPackage, Target: domain.NoScope}
}

// ClassifyKnown resolves one raw target against the file list alone, for
// sources that are not on disk. The candidate order matches Classify.
func (r *Resolver) ClassifyKnown(from int, importer, raw string) domain.ImportEdge {
	candidates := []string{filepath.Join(filepath.Dir(importer), raw)}
	if r.projectRoot != "" {
		candidates = append(candidates, filepath.Join(r.projectRoot, raw))
	}
	for _, candidate := range candidates {
		if target, ok := r.index[candidate]; ok {
			return domain.ImportEdge{From: from, Raw: raw, Kind: domain.ImportFile, Path: candidate, Target: target}
		}
	}
	return domain.ImportEdge{From: from, Raw: raw, Kind: domain.ImportPackage, Target: domain.NoScope}
}

// ResolveAll resolves every file of the list. Files that cannot be read or
// have no import syntax get no edges and a recorded error.
func (r *Resolver) ResolveAll(files []string) ([][]domain.ImportEdge, []domain.FileError) {
	edges := make([][]domain.ImportEdge, len(files))
	var errs []domain.FileError
	for i, path := range files {
		e, err := r.ResolveFile(i, path)
		if err != nil {
			slog.Warn("import resolution failed", "path", path, "error", err)
			errs = append(errs, domain.FileError{File: path, Code: domain.CodeOf(err), Message: err.Error()})
			continue
		}
		edges[i] = e
	}
	return edges, errs
}
