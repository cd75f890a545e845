package imports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagscope/internal/adapter/fs"
	"tagscope/internal/domain"
)

func write(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	canon, err := fs.Canonical(path)
	require.NoError(t, err)
	return canon
}

func TestExtract_PerLanguage(t *testing.T) {
	cases := []struct {
		path    string
		content string
		want    []string
	}{
		{"a.cpp", "#include \"b.h\"\n  #include <vector>\nint x;\n", []string{"b.h", "vector"}},
		{"m.rs", "mod parser;\nextern crate serde;\nuse std::io;\n", []string{"parser", "crate"}},
		{"x.py", "import os\nfrom pkg import thing\n", []string{"os", "pkg"}},
		{"x.ts", "import {Foo} from './foo'\nimport 'side'\n", []string{"Foo", "side"}},
		{"X.java", "import java.util.List;\n", []string{"java.util.List"}},
		{"i.php", "require_once 'lib.php';\ninclude \"a.php\";\n", []string{"lib.php", "a.php"}},
		{"plain.c", "int main() { return 0; }\n", nil},
	}
	for _, tc := range cases {
		got, err := Extract(tc.path, tc.content)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}

	_, err := Extract("notes.md", "import x")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeUnsupportedLanguage))
}

func TestResolver_SiblingWinsOverProjectRoot(t *testing.T) {
	root := t.TempDir()
	importer := write(t, filepath.Join(root, "src", "main.cpp"), "#include \"util.h\"\n")
	sibling := write(t, filepath.Join(root, "src", "util.h"), "")
	atRoot := write(t, filepath.Join(root, "util.h"), "")

	files := []string{atRoot, importer, sibling}
	r := NewResolver(root, files)

	edges, err := r.ResolveFile(1, importer)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, domain.ImportFile, edges[0].Kind)
	assert.Equal(t, sibling, edges[0].Path)
	assert.Equal(t, 2, edges[0].Target)
	assert.Equal(t, 1, edges[0].From)
}

func TestResolver_ProjectRootFallbackAndPackages(t *testing.T) {
	root := t.TempDir()
	importer := write(t, filepath.Join(root, "src", "main.cpp"),
		"#include \"include/api.h\"\n#include <vector>\n#include \"unlisted.h\"\n")
	api := write(t, filepath.Join(root, "include", "api.h"), "")
	unlisted := write(t, filepath.Join(root, "unlisted.h"), "")

	r := NewResolver(root, []string{importer, api})
	edges, err := r.ResolveFile(0, importer)
	require.NoError(t, err)
	require.Len(t, edges, 3)

	assert.Equal(t, domain.ImportEdge{From: 0, Raw: "include/api.h", Kind: domain.ImportFile, Path: api, Target: 1}, edges[0])
	assert.Equal(t, domain.ImportEdge{From: 0, Raw: "vector", Kind: domain.ImportPackage, Target: domain.NoScope}, edges[1])
	assert.Equal(t, domain.ImportFile, edges[2].Kind)
	assert.Equal(t, unlisted, edges[2].Path)
	assert.Equal(t, domain.NoScope, edges[2].Target)
}

func TestResolver_DirectoryIsNotAFile(t *testing.T) {
	root := t.TempDir()
	importer := write(t, filepath.Join(root, "app.py"), "import pkg\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))

	edges, err := NewResolver(root, []string{importer}).ResolveFile(0, importer)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, domain.ImportPackage, edges[0].Kind)
}

func TestResolver_ResolveAllIsolatesFailures(t *testing.T) {
	root := t.TempDir()
	good := write(t, filepath.Join(root, "a.cpp"), "#include \"b.h\"\n")
	b := write(t, filepath.Join(root, "b.h"), "")
	missing := filepath.Join(root, "gone.cpp")
	odd := write(t, filepath.Join(root, "notes.txt"), "#include \"b.h\"\n")

	files := []string{good, b, missing, odd}
	edges, errs := NewResolver(root, files).ResolveAll(files)

	require.Len(t, edges, 4)
	require.Len(t, edges[0], 1)
	assert.Equal(t, 1, edges[0][0].Target)
	assert.Empty(t, edges[1])
	assert.Nil(t, edges[2])
	assert.Nil(t, edges[3])

	require.Len(t, errs, 2)
	assert.Equal(t, domain.CodeFileUnreadable, errs[0].Code)
	assert.Equal(t, missing, errs[0].File)
	assert.Equal(t, domain.CodeUnsupportedLanguage, errs[1].Code)
}

func TestResolver_ClassifyKnown(t *testing.T) {
	files := []string{"/p/include/util.h", "/p/src/util.h", "/p/src/main.cpp"}
	r := NewResolver("/p", files)

	sibling := r.ClassifyKnown(2, "/p/src/main.cpp", "util.h")
	assert.Equal(t, domain.ImportFile, sibling.Kind)
	assert.Equal(t, 1, sibling.Target)

	fromRoot := r.ClassifyKnown(2, "/p/src/main.cpp", "include/util.h")
	assert.Equal(t, 0, fromRoot.Target)
	assert.Equal(t, "/p/include/util.h", fromRoot.Path)

	pkg := r.ClassifyKnown(2, "/p/src/main.cpp", "vector")
	assert.Equal(t, domain.ImportPackage, pkg.Kind)
	assert.Equal(t, domain.NoScope, pkg.Target)
}
