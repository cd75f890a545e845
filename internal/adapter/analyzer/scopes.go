package analyzer

import (
	"log/slog"
	"sort"

	"tagscope/internal/domain"
)

// ScopeTree is the result of scanning a file's delimiters.
type ScopeTree struct {
	Scopes []domain.Scope
	// Strays holds the offsets of closers that had no open scope to close.
	Strays []int
}

// BuildScopes scans text once and returns its scope list. Index 0 is the
// root. Delimiters are matched lexically: the closer's kind is not checked
// against the opener's, and string or comment contents are not skipped.
func BuildScopes(path, text string) ScopeTree {
	scopes := []domain.Scope{{
		Start:  domain.RootStart,
		End:    len(text),
		Parent: domain.NoScope,
		Kind:   domain.ScopeRoot,
	}}
	stack := []int{0}
	var strays []int

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', '{', '[':
			scopes = append(scopes, domain.Scope{
				Start:  i,
				Parent: stack[len(stack)-1],
				Kind:   kindOf(text[i]),
			})
			stack = append(stack, len(scopes)-1)
		case ')', '}', ']':
			if len(stack) == 1 {
				slog.Warn("unmatched closing delimiter",
					"code", domain.CodeUnmatchedDelimiter, "path", path, "offset", i, "delimiter", string(text[i]))
				strays = append(strays, i)
				continue
			}
			scopes[stack[len(stack)-1]].End = i
			stack = stack[:len(stack)-1]
		}
	}

	for _, open := range stack[1:] {
		scopes[open].End = len(text)
		scopes[open].Forced = true
	}
	if len(stack) > 1 {
		slog.Debug("force-closed scopes at end of file", "path", path, "count", len(stack)-1)
	}

	return ScopeTree{Scopes: scopes, Strays: strays}
}

func kindOf(opener byte) domain.ScopeKind {
	switch opener {
	case '(':
		return domain.ScopeParen
	case '{':
		return domain.ScopeBrace
	default:
		return domain.ScopeBracket
	}
}

// firstScopeFrom returns the index of the first non-root scope starting at
// or after offset. Scopes are appended in opener order, so starts are
// strictly increasing.
func firstScopeFrom(scopes []domain.Scope, offset int) int {
	return 1 + sort.Search(len(scopes)-1, func(i int) bool {
		return scopes[i+1].Start >= offset
	})
}

// scopeStartingAt returns the index of the non-root scope opened at offset.
func scopeStartingAt(scopes []domain.Scope, offset int) (int, bool) {
	i := firstScopeFrom(scopes, offset)
	if i < len(scopes) && scopes[i].Start == offset {
		return i, true
	}
	return 0, false
}

// scopeBefore returns the scope with the greatest start still less than
// offset. The root always qualifies.
func scopeBefore(scopes []domain.Scope, offset int) int {
	return firstScopeFrom(scopes, offset) - 1
}
