package analyzer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagscope/internal/domain"
)

func TestBuildScopes_Nested(t *testing.T) {
	tree := BuildScopes("n.cpp", "a{b(c)[d]}")

	require.Len(t, tree.Scopes, 4)
	assert.Equal(t, domain.Scope{Start: domain.RootStart, End: 10, Parent: domain.NoScope, Kind: domain.ScopeRoot}, tree.Scopes[0])
	assert.Equal(t, domain.Scope{Start: 1, End: 9, Parent: 0, Kind: domain.ScopeBrace}, tree.Scopes[1])
	assert.Equal(t, domain.Scope{Start: 3, End: 5, Parent: 1, Kind: domain.ScopeParen}, tree.Scopes[2])
	assert.Equal(t, domain.Scope{Start: 6, End: 8, Parent: 1, Kind: domain.ScopeBracket}, tree.Scopes[3])
	assert.Empty(t, tree.Strays)
}

func TestBuildScopes_OpenerAtOffsetZero(t *testing.T) {
	tree := BuildScopes("z.cpp", "{}")

	require.Len(t, tree.Scopes, 2)
	assert.Greater(t, tree.Scopes[1].Start, tree.Scopes[0].Start)
	assert.Equal(t, 1, tree.Scopes[1].End)
}

func TestBuildScopes_CloserKindNotChecked(t *testing.T) {
	tree := BuildScopes("k.cpp", "(]")

	require.Len(t, tree.Scopes, 2)
	assert.Equal(t, 1, tree.Scopes[1].End)
	assert.False(t, tree.Scopes[1].Forced)
}

func TestBuildScopes_ForceClosesAtEOF(t *testing.T) {
	text := "f({"
	tree := BuildScopes("open.cpp", text)

	require.Len(t, tree.Scopes, 3)
	for _, s := range tree.Scopes[1:] {
		assert.Equal(t, len(text), s.End)
		assert.True(t, s.Forced)
	}
	assert.Equal(t, 1, tree.Scopes[2].Parent)
}

func TestBuildScopes_StrayCloserDoesNotAbort(t *testing.T) {
	text := "void f() { g(); } }\nclass A { int x; };\n"
	tree := BuildScopes("stray.cpp", text)

	require.Equal(t, []int{strings.Index(text, "} }") + 2}, tree.Strays)

	classOpen := strings.Index(text, "A {") + 2
	idx, ok := scopeStartingAt(tree.Scopes, classOpen)
	require.True(t, ok)
	assert.Equal(t, 0, tree.Scopes[idx].Parent)
	assert.Equal(t, strings.Index(text, "};"), tree.Scopes[idx].End)
	for _, s := range tree.Scopes {
		assert.False(t, s.Forced)
	}
}

func TestBuildScopes_NestingHoldsForRandomBalancedText(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		text, openers := randomBalanced(rng, 60)
		tree := BuildScopes("rand.cpp", text)

		require.Len(t, tree.Scopes, openers+1, text)
		assert.Empty(t, tree.Strays, text)
		for i, s := range tree.Scopes[1:] {
			parent := tree.Scopes[s.Parent]
			assert.Greater(t, s.Start, parent.Start, "scope %d in %q", i+1, text)
			assert.LessOrEqual(t, s.End, parent.End, "scope %d in %q", i+1, text)
			assert.False(t, s.Forced, text)
		}
	}
}

func randomBalanced(rng *rand.Rand, steps int) (string, int) {
	pairs := [][2]byte{{'(', ')'}, {'{', '}'}, {'[', ']'}}
	var b strings.Builder
	var stack []byte
	openers := 0
	for i := 0; i < steps; i++ {
		switch rng.Intn(3) {
		case 0:
			p := pairs[rng.Intn(len(pairs))]
			b.WriteByte(p[0])
			stack = append(stack, p[1])
			openers++
		case 1:
			if len(stack) > 0 {
				b.WriteByte(stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
		default:
			b.WriteString("x ")
		}
	}
	for len(stack) > 0 {
		b.WriteByte(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return b.String(), openers
}

func TestScopeBefore_IsLiteralNotEnclosing(t *testing.T) {
	text := "{}\nFoo bar;"
	tree := BuildScopes("lit.cpp", text)

	assert.Equal(t, 1, scopeBefore(tree.Scopes, strings.Index(text, "Foo")))
	assert.Equal(t, 0, scopeBefore(tree.Scopes, 0))
}

func TestScopeLookups_ShareOrdering(t *testing.T) {
	text := "f(a[0]) { }"
	tree := BuildScopes("look.cpp", text)
	require.Len(t, tree.Scopes, 4)

	for i := 1; i < len(tree.Scopes); i++ {
		start := tree.Scopes[i].Start
		idx, ok := scopeStartingAt(tree.Scopes, start)
		require.True(t, ok)
		assert.Equal(t, i, idx)
		assert.Equal(t, i-1, scopeBefore(tree.Scopes, start))
		assert.Equal(t, i, scopeBefore(tree.Scopes, start+1))
	}

	_, ok := scopeStartingAt(tree.Scopes, 0)
	assert.False(t, ok)
	_, ok = scopeStartingAt(tree.Scopes, len(text))
	assert.False(t, ok)
}
