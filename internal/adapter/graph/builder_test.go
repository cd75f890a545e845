package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagscope/internal/adapter/analyzer"
	"tagscope/internal/adapter/lang"
	"tagscope/internal/domain"
)

type source struct {
	path string
	text string
}

func analyzeAll(t *testing.T, reg *lang.Registry, sources ...source) []domain.FileAnalysis {
	t.Helper()
	e := analyzer.NewExtractor(reg)
	out := make([]domain.FileAnalysis, len(sources))
	for i, s := range sources {
		profile, ok := reg.ForPath(s.path)
		require.True(t, ok, s.path)
		out[i] = e.Analyze(s.path, s.text, profile)
	}
	return out
}

func fileEdge(from, to int) domain.ImportEdge {
	return domain.ImportEdge{From: from, Kind: domain.ImportFile, Target: to}
}

func findTag(t *testing.T, fa domain.FileAnalysis, name string, kind domain.TagKind) (int, domain.Tag) {
	t.Helper()
	for i, tag := range fa.Tags {
		if tag.Name == name && tag.Kind == kind {
			return i, tag
		}
	}
	require.Failf(t, "tag not found", "%s %s in %s", kind, name, fa.Path)
	return -1, domain.Tag{}
}

func TestBuild_PrimitiveResolvesWithoutImports(t *testing.T) {
	reg := lang.NewRegistry(nil)
	analyses := analyzeAll(t, reg, source{"main.cpp", "int x = 5;\n"})

	res := Build(analyses, nil, reg)

	_, x := findTag(t, res.Analyses[0], "x", domain.KindObject)
	profile, _ := reg.Profile("cpp")
	idx, _ := profile.PrimitiveIndex("int")
	assert.Equal(t, domain.PrimitiveType("int", idx), x.Type)
	assert.Equal(t, 0, res.Unresolved)
}

func TestBuild_ImportedDefinition(t *testing.T) {
	reg := lang.NewRegistry(nil)
	analyses := analyzeAll(t, reg,
		source{"a.h", "class Foo {};\n"},
		source{"b.cpp", "#include \"a.h\"\nFoo bar;\n"},
	)

	res := Build(analyses, [][]domain.ImportEdge{nil, {fileEdge(1, 0)}}, reg)

	_, bar := findTag(t, res.Analyses[1], "bar", domain.KindObject)
	assert.Equal(t, domain.DefinedType("Foo", 0, 0), bar.Type)
	def, ok := bar.Type.Definition()
	require.True(t, ok)
	assert.Equal(t, domain.TagRef{File: 0, Tag: 0}, def)

	unlinked := Build(analyses, nil, reg)
	_, bar = findTag(t, unlinked.Analyses[1], "bar", domain.KindObject)
	assert.Equal(t, domain.UnresolvedType("Foo"), bar.Type)
}

func TestBuild_UnreachableTypeStaysUnresolved(t *testing.T) {
	reg := lang.NewRegistry(nil)
	analyses := analyzeAll(t, reg, source{"bar.cpp", "class Bar { Baz b; };\n"})

	res := Build(analyses, nil, reg)

	barIdx, _ := findTag(t, res.Analyses[0], "Bar", domain.KindClass)
	bIdx, b := findTag(t, res.Analyses[0], "b", domain.KindObject)
	assert.Equal(t, domain.Unresolved, b.Type.State)
	assert.Equal(t, "Baz", b.Type.Name)
	assert.Equal(t, 1, res.Unresolved)

	require.Len(t, res.Children, 1)
	assert.Equal(t, domain.TagRef{File: 0, Tag: barIdx}, res.Children[0].Parent)
	assert.Equal(t, []domain.TagRef{{File: 0, Tag: bIdx}}, res.Children[0].Children)
}

func TestBuild_InnermostAncestorWins(t *testing.T) {
	reg := lang.NewRegistry(nil)
	text := "class Foo {};\n" +
		"namespace n {\n" +
		"class Foo {};\n" +
		"void g(Foo p) {\n}\n" +
		"}\n" +
		"void h(Foo q) {\n}\n"
	analyses := analyzeAll(t, reg, source{"ns.cpp", text})

	res := Build(analyses, nil, reg)
	fa := res.Analyses[0]

	_, g := findTag(t, fa, "g", domain.KindFunction)
	require.Len(t, g.Params, 1)
	assert.Equal(t, domain.DefinedType("Foo", 0, 1), g.Params[0].Type)
	assert.Equal(t, "void", g.Type.Name)
	assert.Equal(t, domain.ResolvedPrimitive, g.Type.State)

	_, h := findTag(t, fa, "h", domain.KindFunction)
	require.Len(t, h.Params, 1)
	assert.Equal(t, domain.DefinedType("Foo", 0, 0), h.Params[0].Type)
}

func TestBuild_ImportOrderBreaksTies(t *testing.T) {
	reg := lang.NewRegistry(nil)
	analyses := analyzeAll(t, reg,
		source{"one.h", "class T {};\n"},
		source{"two.h", "class T {};\n"},
		source{"use.cpp", "T t;\n"},
	)

	res := Build(analyses, [][]domain.ImportEdge{nil, nil, {fileEdge(2, 1), fileEdge(2, 0)}}, reg)

	_, tt := findTag(t, res.Analyses[2], "t", domain.KindObject)
	assert.Equal(t, domain.DefinedType("T", 1, 0), tt.Type)
}

func TestBuild_OwnFileBeforeImports(t *testing.T) {
	reg := lang.NewRegistry(nil)
	analyses := analyzeAll(t, reg,
		source{"dep.h", "class T {};\n"},
		source{"use.cpp", "class T {};\nT t;\n"},
	)

	res := Build(analyses, [][]domain.ImportEdge{nil, {fileEdge(1, 0)}}, reg)

	_, tt := findTag(t, res.Analyses[1], "t", domain.KindObject)
	assert.Equal(t, domain.DefinedType("T", 1, 0), tt.Type)
}

func TestBuild_PrimitiveBeatsClass(t *testing.T) {
	reg := lang.NewRegistry(nil)
	analyses := analyzeAll(t, reg, source{"p.cpp", "class bool {};\nbool flag;\n"})

	res := Build(analyses, nil, reg)

	_, flag := findTag(t, res.Analyses[0], "flag", domain.KindObject)
	assert.Equal(t, domain.ResolvedPrimitive, flag.Type.State)
}

func TestBuild_ClassParentsAndLambdas(t *testing.T) {
	reg := lang.NewRegistry(nil)
	text := "class Base {};\n" +
		"class Child : public Base, Missing {};\n" +
		"auto f = [](Base b, int n) {\n};\n"
	analyses := analyzeAll(t, reg, source{"c.cpp", text})

	res := Build(analyses, nil, reg)
	fa := res.Analyses[0]

	_, child := findTag(t, fa, "Child", domain.KindClass)
	require.Len(t, child.Parents, 2)
	assert.Equal(t, domain.DefinedType("Base", 0, 0), child.Parents[0].Type)
	assert.Equal(t, domain.UnresolvedType("Missing"), child.Parents[1].Type)

	require.Len(t, fa.Lambdas, 1)
	require.Len(t, fa.Lambdas[0].Params, 2)
	assert.Equal(t, domain.DefinedType("Base", 0, 0), fa.Lambdas[0].Params[0].Type)
	assert.Equal(t, domain.ResolvedPrimitive, fa.Lambdas[0].Params[1].Type.State)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	reg := lang.NewRegistry(nil)
	analyses := analyzeAll(t, reg, source{"m.cpp", "class A {};\nvoid f(A a) {\n}\nint n = 1;\n"})

	res := Build(analyses, nil, reg)

	_, before := findTag(t, analyses[0], "f", domain.KindFunction)
	_, after := findTag(t, res.Analyses[0], "f", domain.KindFunction)
	assert.False(t, before.Params[0].Type.IsResolved())
	assert.True(t, after.Params[0].Type.IsResolved())
	_, n := findTag(t, analyses[0], "n", domain.KindObject)
	assert.False(t, n.Type.IsResolved())
}

func TestBuild_IsDeterministic(t *testing.T) {
	reg := lang.NewRegistry(nil)
	analyses := analyzeAll(t, reg,
		source{"a.h", "class Foo {\n  int x;\n  void run(Foo f) {\n  }\n};\n"},
		source{"b.cpp", "Foo bar;\nclass Q : public Foo {};\n"},
	)
	imports := [][]domain.ImportEdge{nil, {fileEdge(1, 0)}}

	assert.Equal(t, Build(analyses, imports, reg), Build(analyses, imports, reg))
}

func TestReach_AccessSets(t *testing.T) {
	reg := lang.NewRegistry(nil)
	analyses := analyzeAll(t, reg,
		source{"a.h", "class A {};\n"},
		source{"b.cpp", "void f() {\n}\n"},
	)
	imports := [][]domain.ImportEdge{
		nil,
		{fileEdge(1, 0), fileEdge(1, 1), fileEdge(1, 0), {From: 1, Kind: domain.ImportPackage, Target: domain.NoScope}},
	}

	access := reach(analyses, imports)

	require.Len(t, access[1], 3)
	assert.Equal(t, []domain.ScopeRef{{File: 1, Scope: 0}, {File: 0, Scope: 0}}, access[1][0])
	assert.Equal(t, []domain.ScopeRef{{File: 1, Scope: 2}, {File: 1, Scope: 0}, {File: 0, Scope: 0}}, access[1][2])
	assert.Equal(t, []domain.ScopeRef{{File: 0, Scope: 1}, {File: 0, Scope: 0}}, access[0][1])
}
