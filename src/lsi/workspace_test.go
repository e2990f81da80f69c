package lsi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"lsindex/src/config"
	lsierrors "lsindex/src/internal/errors"
)

func newTestWorkspace(t *testing.T, fileTypes []string) *Workspace {
	t.Helper()
	w, err := NewWorkspace(t.TempDir(), "go", &config.LanguageConfig{FileTypes: fileTypes}, config.ScanConfig{})
	require.NoError(t, err)
	return w
}

func writeWorkspaceFile(t *testing.T, w *Workspace, relPath, contents string) string {
	t.Helper()
	path := filepath.Join(w.WorkspacePath, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func trackedPaths(w *Workspace) []string {
	paths := make([]string, 0, len(w.Files))
	for _, f := range w.Files {
		paths = append(paths, f.RelativePath())
	}
	return paths
}

func TestNewWorkspaceValidatesRoot(t *testing.T) {
	langCfg := &config.LanguageConfig{FileTypes: []string{"go"}}

	_, err := NewWorkspace(filepath.Join(t.TempDir(), "absent"), "go", langCfg, config.ScanConfig{})
	assert.Error(t, err)

	filePath := filepath.Join(t.TempDir(), "afile")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))
	_, err = NewWorkspace(filePath, "go", langCfg, config.ScanConfig{})
	assert.True(t, lsierrors.IsValidationError(err))
}

func TestScanWorkspaceFiles(t *testing.T) {
	w := newTestWorkspace(t, []string{"go"})
	writeWorkspaceFile(t, w, "main.go", "package main\n")
	writeWorkspaceFile(t, w, "internal/util.go", "package internal\n")
	writeWorkspaceFile(t, w, "README.md", "# readme\n")
	writeWorkspaceFile(t, w, ".hidden/secret.go", "package hidden\n")
	writeWorkspaceFile(t, w, "node_modules/dep/index.go", "package dep\n")

	require.NoError(t, w.ScanWorkspaceFiles())

	assert.ElementsMatch(t, []string{"main.go", filepath.Join("internal", "util.go")}, trackedPaths(w))
}

func TestScanIsIdempotent(t *testing.T) {
	w := newTestWorkspace(t, []string{"go"})
	writeWorkspaceFile(t, w, "a.go", "package a\n")

	require.NoError(t, w.ScanWorkspaceFiles())
	first := w.Files[0]
	require.NoError(t, w.ScanWorkspaceFiles())

	require.Len(t, w.Files, 1)
	// The same tracked file survives a rescan, version history intact.
	assert.Same(t, first, w.Files[0])
}

func TestScanRetiresDeletedFiles(t *testing.T) {
	w := newTestWorkspace(t, []string{"go"})
	writeWorkspaceFile(t, w, "keep.go", "package a\n")
	remove := writeWorkspaceFile(t, w, "remove.go", "package a\n")

	require.NoError(t, w.ScanWorkspaceFiles())
	require.Len(t, w.Files, 2)

	require.NoError(t, os.Remove(remove))
	require.NoError(t, w.ScanWorkspaceFiles())

	assert.Equal(t, []string{"keep.go"}, trackedPaths(w))
}

func TestScanRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("generated/\nskipme.go\n"), 0644))

	w, err := NewWorkspace(root, "go", &config.LanguageConfig{FileTypes: []string{"go"}},
		config.ScanConfig{RespectGitignore: true})
	require.NoError(t, err)

	writeWorkspaceFile(t, w, "main.go", "package main\n")
	writeWorkspaceFile(t, w, "skipme.go", "package main\n")
	writeWorkspaceFile(t, w, "generated/gen.go", "package gen\n")

	require.NoError(t, w.ScanWorkspaceFiles())
	assert.Equal(t, []string{"main.go"}, trackedPaths(w))
}

func TestScanGlobFileTypes(t *testing.T) {
	w := newTestWorkspace(t, []string{"*.gen.ts"})
	writeWorkspaceFile(t, w, "api.gen.ts", "export {}\n")
	writeWorkspaceFile(t, w, "api.ts", "export {}\n")

	require.NoError(t, w.ScanWorkspaceFiles())
	assert.Equal(t, []string{"api.gen.ts"}, trackedPaths(w))
}

func populateSymbols(t *testing.T, w *Workspace, relPath string, docSymbols []protocol.DocumentSymbol) *WorkspaceFile {
	t.Helper()
	var file *WorkspaceFile
	for _, f := range w.Files {
		if f.RelativePath() == relPath {
			file = f
			break
		}
	}
	require.NotNil(t, file, "file %s not tracked", relPath)
	require.NoError(t, file.UpdateSymbols(docSymbols))
	return file
}

func TestQuerySymbols(t *testing.T) {
	w := newTestWorkspace(t, []string{"go"})
	writeWorkspaceFile(t, w, "alpha.go", "package main\n")
	writeWorkspaceFile(t, w, "beta.go", "package main\n")
	require.NoError(t, w.ScanWorkspaceFiles())

	populateSymbols(t, w, "alpha.go", []protocol.DocumentSymbol{
		{Name: "ParseConfig", Kind: protocol.SymbolKindFunction, Range: makeRange(0, 0, 5, 1)},
		{Name: "Config", Kind: protocol.SymbolKindStruct, Range: makeRange(7, 0, 12, 1)},
	})
	populateSymbols(t, w, "beta.go", []protocol.DocumentSymbol{
		{Name: "WriteConfig", Kind: protocol.SymbolKindFunction, Range: makeRange(0, 0, 4, 1)},
	})

	// Name substring across the whole workspace.
	matches, err := w.QuerySymbols(&LsiQuery{NameQuery: "Config"})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Conjunction with kind.
	matches, err = w.QuerySymbols(&LsiQuery{NameQuery: "Config", Kind: protocol.SymbolKindFunction})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// File regex narrows to one file.
	matches, err = w.QuerySymbols(&LsiQuery{NameQuery: "Config", FilePathRegex: `alpha\.go$`})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Exact range match.
	rng := makeRange(7, 0, 12, 1)
	matches, err = w.QuerySymbols(&LsiQuery{Range: &rng})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Config", matches[0].Name)

	// Empty query matches everything, FILE roots included.
	matches, err = w.QuerySymbols(&LsiQuery{})
	require.NoError(t, err)
	assert.Len(t, matches, 5)
}

func TestQuerySymbolsScopeVsEmptyResult(t *testing.T) {
	w := newTestWorkspace(t, []string{"go"})
	writeWorkspaceFile(t, w, "alpha.go", "package main\n")
	require.NoError(t, w.ScanWorkspaceFiles())
	populateSymbols(t, w, "alpha.go", []protocol.DocumentSymbol{
		{Name: "foo", Kind: protocol.SymbolKindFunction, Range: makeRange(0, 0, 1, 1)},
	})

	// In-scope file, no symbol match: empty result, not an error.
	matches, err := w.QuerySymbols(&LsiQuery{NameQuery: "nothing", FilePathRegex: `alpha\.go$`})
	require.NoError(t, err)
	assert.Empty(t, matches)

	// Out-of-scope file filter: an error, not an empty result.
	_, err = w.QuerySymbols(&LsiQuery{FilePathRegex: `gamma\.go$`})
	assert.True(t, lsierrors.IsNoMatchingFilesError(err))

	// Malformed regex is a validation failure.
	_, err = w.QuerySymbols(&LsiQuery{FilePathRegex: `([`})
	assert.True(t, lsierrors.IsValidationError(err))
}

func TestQuerySymbolByID(t *testing.T) {
	w := newTestWorkspace(t, []string{"go"})
	writeWorkspaceFile(t, w, "alpha.go", "package main\n")
	require.NoError(t, w.ScanWorkspaceFiles())
	file := populateSymbols(t, w, "alpha.go", []protocol.DocumentSymbol{
		{Name: "foo", Kind: protocol.SymbolKindFunction, Range: makeRange(0, 0, 1, 1)},
	})

	foo := file.SymbolList[1]
	found, err := w.QuerySymbolByID(foo.SymbolID)
	require.NoError(t, err)
	assert.Same(t, foo, found)

	// A rebuild with different content retires the old id.
	require.NoError(t, file.UpdateSymbols([]protocol.DocumentSymbol{
		{Name: "foo", Kind: protocol.SymbolKindFunction, Range: makeRange(2, 0, 3, 1)},
	}))
	_, err = w.QuerySymbolByID(foo.SymbolID)
	assert.True(t, lsierrors.IsSymbolNotFoundError(err))
}

func TestQuerySymbolByIDCollisionPanics(t *testing.T) {
	w := newTestWorkspace(t, []string{"go"})
	writeWorkspaceFile(t, w, "alpha.go", "package main\n")
	require.NoError(t, w.ScanWorkspaceFiles())
	file := populateSymbols(t, w, "alpha.go", []protocol.DocumentSymbol{
		{Name: "foo", Kind: protocol.SymbolKindFunction, Range: makeRange(0, 0, 1, 1)},
	})

	// Force a duplicate entry to simulate a broken id scheme.
	file.SymbolList = append(file.SymbolList, file.SymbolList[1])
	assert.Panics(t, func() {
		_, _ = w.QuerySymbolByID(file.SymbolList[1].SymbolID)
	})
}

func TestQueriedSymbolReadsSource(t *testing.T) {
	w := newTestWorkspace(t, []string{"rs"})
	source := "fn foo() {\n  let x = 1;\n  x\n}\n"
	writeWorkspaceFile(t, w, "lib.rs", source)
	require.NoError(t, w.ScanWorkspaceFiles())
	populateSymbols(t, w, "lib.rs", []protocol.DocumentSymbol{
		{
			Name:           "foo",
			Kind:           protocol.SymbolKindFunction,
			Range:          makeRange(0, 0, 3, 1),
			SelectionRange: makeRange(0, 3, 0, 6),
		},
	})

	matches, err := w.QuerySymbols(&LsiQuery{NameQuery: "foo", Kind: protocol.SymbolKindFunction})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	text, err := matches[0].GetSource()
	require.NoError(t, err)
	assert.Equal(t, "fn foo() {\n  let x = 1;\n  x\n}", text)

	name, err := matches[0].GetSelection()
	require.NoError(t, err)
	assert.Equal(t, "foo", name)
}

func TestCountSymbols(t *testing.T) {
	w := newTestWorkspace(t, []string{"go"})
	writeWorkspaceFile(t, w, "a.go", "package main\n")
	require.NoError(t, w.ScanWorkspaceFiles())
	assert.Zero(t, w.CountSymbols())

	populateSymbols(t, w, "a.go", []protocol.DocumentSymbol{
		{Name: "x", Kind: protocol.SymbolKindVariable},
	})
	assert.Equal(t, 2, w.CountSymbols())
}
