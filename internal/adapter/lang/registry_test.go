package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageOf(t *testing.T) {
	cases := map[string]string{
		"main.c":        "c",
		"main.cpp":      "cpp",
		"lib/x.cc":      "cpp",
		"lib/x.cxx":     "cpp",
		"include/foo.h": "cpp",
		"foo.hpp":       "cpp",
	}
	for path, want := range cases {
		got, ok := LanguageOf(path)
		require.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}

	_, ok := LanguageOf("main.go")
	assert.False(t, ok)
	_, ok = LanguageOf("Makefile")
	assert.False(t, ok)
}

func TestRegistry_DefaultProfiles(t *testing.T) {
	r := NewRegistry(nil)
	assert.Empty(t, r.Malformed())

	c, ok := r.Profile("c")
	require.True(t, ok)
	assert.Len(t, c.Classes, 1)
	assert.NotEmpty(t, c.Functions)
	assert.Len(t, c.Objects, 2)

	cpp, ok := r.ForPath("/src/widget.hpp")
	require.True(t, ok)
	assert.Equal(t, "cpp", cpp.Key)
	assert.Len(t, cpp.Classes, 2)

	_, ok = r.ForPath("script.py")
	assert.False(t, ok)
}

func TestProfile_PrimitiveIndex(t *testing.T) {
	r := NewRegistry(nil)
	cpp, _ := r.Profile("cpp")

	i, ok := cpp.PrimitiveIndex("int")
	require.True(t, ok)
	assert.Equal(t, "int", cpp.Primitives[i])

	_, ok = cpp.PrimitiveIndex("unsigned long long int")
	assert.True(t, ok)
	_, ok = cpp.PrimitiveIndex("bool")
	assert.True(t, ok)
	_, ok = cpp.PrimitiveIndex("Foo")
	assert.False(t, ok)

	c, _ := r.Profile("c")
	_, ok = c.PrimitiveIndex("bool")
	assert.False(t, ok)
}

func TestProfile_IsReserved(t *testing.T) {
	r := NewRegistry(nil)
	p, _ := r.Profile("cpp")

	assert.True(t, p.IsReserved("else"))
	assert.True(t, p.IsReserved("public"))
	assert.True(t, p.IsReserved("  return x"))
	assert.True(t, p.IsReserved("public: void"))
	assert.False(t, p.IsReserved("int"))
	assert.False(t, p.IsReserved("publicity"))
	assert.False(t, p.IsReserved(""))
}

func TestStripAccessLabel(t *testing.T) {
	assert.Equal(t, "int", StripAccessLabel("public: int"))
	assert.Equal(t, "const Foo&", StripAccessLabel("  private :const Foo&"))
	assert.Equal(t, "", StripAccessLabel("protected:"))
	assert.Equal(t, "public::Type", StripAccessLabel("public::Type"))
	assert.Equal(t, "publicity int", StripAccessLabel("publicity int"))
	assert.Equal(t, "int", StripAccessLabel("int"))
}

func TestRegistry_ExtraPatterns(t *testing.T) {
	r := NewRegistry(map[string]Patterns{
		"cpp": {
			Classes: []string{`interface\s+(\w+)()\s*\{`},
			Calls:   []string{`([`},
		},
		"cobol": {Classes: []string{`x`}},
	})

	cpp, ok := r.Profile("cpp")
	require.True(t, ok)
	assert.Len(t, cpp.Classes, 3)
	assert.Len(t, cpp.Calls, 1)
	assert.Equal(t, []string{`([`}, r.Malformed())

	_, ok = r.Profile("cobol")
	assert.False(t, ok)

	c, _ := r.Profile("c")
	assert.Len(t, c.Classes, 1)
}

func TestBank_PatternsCompile(t *testing.T) {
	for key, p := range DefaultBank() {
		all := p.Append(Patterns{})
		for _, list := range [][]string{all.Classes, all.Functions, all.Objects, all.Lambdas, all.Calls, all.Equations, all.Chains} {
			for _, src := range list {
				r := NewRegistry(map[string]Patterns{key: {Chains: []string{src}}})
				assert.Empty(t, r.Malformed(), src)
			}
		}
	}
}
