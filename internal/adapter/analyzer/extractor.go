package analyzer

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"tagscope/internal/adapter/lang"
	"tagscope/internal/domain"
)

// Extractor turns source text into scopes and tagged entities using the
// pattern bank of the file's language.
type Extractor struct {
	registry *lang.Registry
}

// NewExtractor creates an extractor over a compiled registry.
func NewExtractor(registry *lang.Registry) *Extractor {
	return &Extractor{registry: registry}
}

// AnalyzeFile reads path and analyzes it. Failures are per file: the returned
// analysis is always usable, empty when err is non-nil.
func (e *Extractor) AnalyzeFile(path string) (domain.FileAnalysis, error) {
	key, _ := lang.LanguageOf(path)
	profile, ok := e.registry.ForPath(path)
	if !ok {
		err := domain.NewError(domain.CodeUnsupportedLanguage, "no pattern bank for file").
			WithContext(domain.CtxPath, path)
		return domain.FileAnalysis{Path: path, Language: key, Err: domain.CodeUnsupportedLanguage}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		derr := domain.Wrap(err, domain.CodeFileUnreadable, "failed to read source").
			WithContext(domain.CtxPath, path)
		return domain.FileAnalysis{Path: path, Language: key, Err: domain.CodeFileUnreadable}, derr
	}

	return e.Analyze(path, string(data), profile), nil
}

// Analyze extracts everything from text. The extraction order matters:
// calls skip function names, chains reuse calls and equations reuse chains.
func (e *Extractor) Analyze(path, text string, profile *lang.Profile) domain.FileAnalysis {
	tree := BuildScopes(path, text)
	x := &extraction{
		path:    path,
		text:    text,
		scopes:  tree.Scopes,
		profile: profile,
		names:   make(map[int]bool),
	}

	x.functions()
	x.calls()
	x.chains()
	x.equations()
	x.classes()
	x.lambdas()
	x.objects()

	sort.SliceStable(x.tags, func(i, j int) bool { return x.tags[i].Offset < x.tags[j].Offset })

	return domain.FileAnalysis{
		Path:      path,
		Language:  profile.Key,
		Scopes:    tree.Scopes,
		Tags:      x.tags,
		Lambdas:   x.lambdaList,
		Calls:     x.callList,
		Equations: x.equationList,
		Chains:    x.chainList,
		Strays:    tree.Strays,
	}
}

type extraction struct {
	path    string
	text    string
	scopes  []domain.Scope
	profile *lang.Profile

	// names holds the offsets of declared function names, so the call
	// pass does not report a declaration as a call.
	names map[int]bool

	tags         []domain.Tag
	lambdaList   []domain.Lambda
	callList     []domain.Call
	equationList []domain.Equation
	chainList    []domain.AccessChain
}

func (x *extraction) functions() {
	for _, m := range matchAll(x.text, x.profile.Functions) {
		body, ok := scopeStartingAt(x.scopes, m[1]-1)
		if !ok {
			continue
		}
		typ := lang.StripAccessLabel(strings.TrimSpace(group(x.text, m, 1)))
		name := group(x.text, m, 2)
		if name == "" || x.profile.IsReserved(name) || x.profile.IsReserved(typ) {
			continue
		}
		x.names[m[4]] = true
		x.tags = append(x.tags, domain.Tag{
			Kind:       domain.KindFunction,
			Name:       name,
			Scope:      x.scopes[body].Parent,
			Body:       body,
			Offset:     m[0],
			NameOffset: m[4],
			Type:       domain.UnresolvedType(typ),
			Params:     splitArgs(group(x.text, m, 3)),
		})
	}
}

func (x *extraction) calls() {
	for _, m := range matchAll(x.text, x.profile.Calls) {
		if x.names[m[0]] {
			continue
		}
		name := strings.TrimRight(x.text[m[0]:m[1]-1], " \t\r\n")
		if x.profile.IsReserved(name) {
			continue
		}
		args, ok := scopeStartingAt(x.scopes, m[1]-1)
		if !ok {
			slog.Debug("call without argument scope", "path", x.path, "offset", m[0], "name", name)
			continue
		}
		x.callList = append(x.callList, domain.Call{Offset: m[0], Name: name, ArgsScope: args})
	}
}

func (x *extraction) chains() {
	callAt := make(map[int]int, len(x.callList))
	for i, c := range x.callList {
		callAt[c.Offset] = i
	}
	for _, m := range matchAll(x.text, x.profile.Chains) {
		links := x.walkChain(m[0], m[1], callAt)
		if len(links) == 0 {
			continue
		}
		x.chainList = append(x.chainList, domain.AccessChain{Offset: m[0], Links: links})
	}
}

func (x *extraction) equations() {
	chainAt := make(map[int]int, len(x.chainList))
	for i, c := range x.chainList {
		chainAt[c.Offset] = i
	}
	lookup := func(offset int) int {
		if i, ok := chainAt[offset]; ok {
			return i
		}
		return domain.NoScope
	}

	for _, m := range matchAll(x.text, x.profile.Equations) {
		start, end, ok := firstGroupWith(x.text, m, '=')
		if !ok {
			continue
		}
		eq := start + strings.IndexByte(x.text[start:end], '=')
		lhs := trimmedSpan(x.text, start, eq)
		rhsEnd := end
		if r := strings.TrimRight(x.text[eq+1:end], " \t\r\n"); strings.HasSuffix(r, ";") {
			rhsEnd = eq + 1 + len(r) - 1
		}
		rhs := trimmedSpan(x.text, eq+1, rhsEnd)
		x.equationList = append(x.equationList, domain.Equation{
			LHS:      lhs,
			RHS:      rhs,
			LHSChain: lookup(lhs.Offset),
			RHSChain: lookup(rhs.Offset),
		})
	}
}

func (x *extraction) classes() {
	for _, m := range matchAll(x.text, x.profile.Classes) {
		body, ok := scopeStartingAt(x.scopes, m[1]-1)
		if !ok {
			continue
		}
		name := group(x.text, m, 1)
		if name == "" {
			continue
		}
		x.tags = append(x.tags, domain.Tag{
			Kind:    domain.KindClass,
			Name:    name,
			Scope:   x.scopes[body].Parent,
			Body:    body,
			Offset:  m[0],
			Type:    domain.UnresolvedType(""),
			Parents: splitParents(group(x.text, m, 2)),
		})
	}
}

func (x *extraction) lambdas() {
	for _, m := range matchAll(x.text, x.profile.Lambdas) {
		body, ok := scopeStartingAt(x.scopes, m[1]-1)
		if !ok {
			continue
		}
		x.lambdaList = append(x.lambdaList, domain.Lambda{
			Body:     body,
			Offset:   m[0],
			Captures: splitArgs(group(x.text, m, 1)),
			Params:   splitArgs(group(x.text, m, 2)),
		})
	}
}

func (x *extraction) objects() {
	for _, m := range matchAll(x.text, x.profile.Objects) {
		typ := lang.StripAccessLabel(strings.TrimSpace(group(x.text, m, 1)))
		name := group(x.text, m, 2)
		if typ == "" || name == "" || x.profile.IsReserved(typ) {
			continue
		}
		x.tags = append(x.tags, domain.Tag{
			Kind:   domain.KindObject,
			Name:   name,
			Scope:  scopeBefore(x.scopes, m[0]),
			Body:   domain.NoScope,
			Offset: m[0],
			Type:   domain.UnresolvedType(typ),
		})
	}
}

// matchAll runs every pattern over text and merges the matches by start
// offset. A later match starting where an earlier one did is dropped, so the
// first registered pattern wins ties.
func matchAll(text string, patterns []*regexp.Regexp) [][]int {
	var all [][]int
	for _, re := range patterns {
		all = append(all, re.FindAllStringSubmatchIndex(text, -1)...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i][0] < all[j][0] })

	out := all[:0]
	last := -1
	for _, m := range all {
		if len(out) > 0 && m[0] == last {
			continue
		}
		out = append(out, m)
		last = m[0]
	}
	return out
}

func group(text string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return text[m[2*n]:m[2*n+1]]
}

func firstGroupWith(text string, m []int, c byte) (int, int, bool) {
	for n := 0; 2*n+1 < len(m); n++ {
		s, e := m[2*n], m[2*n+1]
		if s >= 0 && strings.IndexByte(text[s:e], c) >= 0 {
			return s, e, true
		}
	}
	return 0, 0, false
}

func trimmedSpan(text string, start, end int) domain.Span {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return domain.Span{Offset: start, Text: text[start:end]}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// MarkListed cross-checks an analysis against the listing entries for its
// file. Tags with a same-named, same-kind entry are flagged; entries of a
// known kind that matched no tag are kept as unmatched.
func MarkListed(fa domain.FileAnalysis, entries []domain.TagEntry) domain.FileAnalysis {
	type key struct {
		name string
		kind domain.TagKind
	}
	listed := make(map[key]bool)
	for _, entry := range entries {
		if kind, ok := entry.TagKind(); ok {
			listed[key{entry.Name, kind}] = true
		}
	}

	tags := make([]domain.Tag, len(fa.Tags))
	copy(tags, fa.Tags)
	found := make(map[key]bool)
	for i := range tags {
		k := key{tags[i].Name, tags[i].Kind}
		if listed[k] {
			tags[i].Listed = true
			found[k] = true
		}
	}

	var unmatched []domain.TagEntry
	for _, entry := range entries {
		kind, ok := entry.TagKind()
		if ok && !found[key{entry.Name, kind}] {
			unmatched = append(unmatched, entry)
		}
	}

	fa.Tags = tags
	fa.Unmatched = unmatched
	return fa
}

// Describe renders a one-line summary of an analysis for logs and the CLI.
func Describe(fa domain.FileAnalysis) string {
	counts := map[domain.TagKind]int{}
	for _, t := range fa.Tags {
		counts[t.Kind]++
	}
	return fmt.Sprintf("%d scopes, %d classes, %d functions, %d objects, %d lambdas, %d calls",
		len(fa.Scopes), counts[domain.KindClass], counts[domain.KindFunction], counts[domain.KindObject],
		len(fa.Lambdas), len(fa.Calls))
}
