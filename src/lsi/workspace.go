package lsi

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"lsindex/src/config"
	"lsindex/src/internal/common"
	lsierrors "lsindex/src/internal/errors"
	"lsindex/src/utils/filepattern"
)

// skipDirectories are directory names never descended into during a scan,
// independent of gitignore rules.
var skipDirectories = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"out":          true,
	"bin":          true,
	"obj":          true,
	"__pycache__":  true,
	"coverage":     true,
	"tmp":          true,
	"temp":         true,
}

// Workspace tracks every indexed file of one language under one root
// directory. Scanning keeps the file list consistent with the directory
// tree; symbol content is refreshed separately, per file, by whoever
// drives synchronization.
type Workspace struct {
	Files          []*WorkspaceFile
	WorkspacePath  string
	LanguageID     string
	LanguageConfig *config.LanguageConfig

	gitignore *ignore.GitIgnore
}

// NewWorkspace creates a workspace rooted at workspacePath for one
// language. The root must exist; it is canonicalized so later per-file
// paths and relative paths agree. When scanCfg asks for it and the root
// carries a .gitignore, its rules filter scans.
func NewWorkspace(workspacePath, languageID string, langCfg *config.LanguageConfig, scanCfg config.ScanConfig) (*Workspace, error) {
	canonical, err := common.CanonicalPath(workspacePath)
	if err != nil {
		return nil, lsierrors.NewIOError("stat", workspacePath, err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, lsierrors.NewIOError("stat", canonical, err)
	}
	if !info.IsDir() {
		return nil, lsierrors.NewValidationError("workspace_path", canonical+" is not a directory")
	}

	w := &Workspace{
		WorkspacePath:  canonical,
		LanguageID:     languageID,
		LanguageConfig: langCfg,
	}
	if scanCfg.RespectGitignore {
		gitignorePath := filepath.Join(canonical, ".gitignore")
		if common.FileExists(gitignorePath) {
			gi, err := ignore.CompileIgnoreFile(gitignorePath)
			if err != nil {
				common.ScanLogger.Warn("failed to compile %s: %v", gitignorePath, err)
			} else {
				w.gitignore = gi
			}
		}
	}
	return w, nil
}

// ScanWorkspaceFiles walks the workspace directory tree and reconciles
// the tracked file list with it: files matching the language's file types
// are added once (repeated scans are idempotent), and tracked files that
// no longer exist on disk are retired together with their symbols.
// Hidden directories and well-known build output directories are skipped.
func (w *Workspace) ScanWorkspaceFiles() error {
	tracked := make(map[string]bool, len(w.Files))
	for _, f := range w.Files {
		tracked[f.FilePath] = true
	}

	err := filepath.WalkDir(w.WorkspacePath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			common.ScanLogger.Warn("scan error at %s: %v", path, walkErr)
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != w.WorkspacePath && (strings.HasPrefix(name, ".") || skipDirectories[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if w.gitignore != nil {
			rel, relErr := filepath.Rel(w.WorkspacePath, path)
			if relErr == nil && w.gitignore.MatchesPath(rel) {
				return nil
			}
		}
		if !w.matchesFileType(path) {
			return nil
		}

		canonical, canonErr := common.CanonicalPath(path)
		if canonErr != nil {
			common.ScanLogger.Warn("skipping %s: %v", path, canonErr)
			return nil
		}
		if tracked[canonical] {
			return nil
		}
		tracked[canonical] = true
		w.Files = append(w.Files, NewWorkspaceFile(canonical, w.WorkspacePath))
		return nil
	})
	if err != nil {
		return lsierrors.NewIOError("walk", w.WorkspacePath, err)
	}

	// Retire tracked files deleted from disk.
	kept := w.Files[:0]
	for _, f := range w.Files {
		if common.FileExists(f.FilePath) {
			kept = append(kept, f)
		} else {
			common.ScanLogger.Debug("retiring deleted file %s", f.FilePath)
		}
	}
	w.Files = kept
	return nil
}

// matchesFileType reports whether a file belongs to the workspace's
// language. Bare-extension entries compare against the file extension;
// entries carrying glob characters match the whole relative path.
func (w *Workspace) matchesFileType(path string) bool {
	if w.LanguageConfig == nil {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	rel, err := filepath.Rel(w.WorkspacePath, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, ft := range w.LanguageConfig.FileTypes {
		if strings.ContainsAny(ft, "*?[") {
			if filepattern.Match(rel, ft) {
				return true
			}
			continue
		}
		if strings.TrimPrefix(ft, ".") == ext {
			return true
		}
	}
	return false
}

// FileByPath returns the tracked file with the given absolute path, nil
// when the path is not tracked
func (w *Workspace) FileByPath(path string) *WorkspaceFile {
	canonical, err := common.CanonicalPath(path)
	if err != nil {
		canonical = path
	}
	for _, f := range w.Files {
		if f.FilePath == canonical {
			return f
		}
	}
	return nil
}

// AllSymbols flattens every tracked file's symbol list, files in scan
// order and symbols in document pre-order within each file
func (w *Workspace) AllSymbols() []*SourceSymbol {
	var symbols []*SourceSymbol
	for _, f := range w.Files {
		symbols = append(symbols, f.SymbolList...)
	}
	return symbols
}

// CountSymbols returns the total number of indexed symbols, FILE roots
// included
func (w *Workspace) CountSymbols() int {
	n := 0
	for _, f := range w.Files {
		n += len(f.SymbolList)
	}
	return n
}

// QuerySymbols evaluates a query against the flat index and returns the
// matches in index order. Populated criteria combine conjunctively. A
// file path regex that matches no tracked file fails with
// NoMatchingFilesError; a regex with matching files but no matching
// symbols succeeds with an empty result.
func (w *Workspace) QuerySymbols(query *LsiQuery) ([]*SourceSymbol, error) {
	var re *regexp.Regexp
	if query.FilePathRegex != "" {
		var err error
		re, err = regexp.Compile(query.FilePathRegex)
		if err != nil {
			return nil, lsierrors.NewValidationError("file_path_regex", err.Error())
		}
		inScope := false
		for _, f := range w.Files {
			if w.fileMatches(re, f.FilePath) {
				inScope = true
				break
			}
		}
		if !inScope {
			return nil, lsierrors.NewNoMatchingFilesError(query.FilePathRegex, w.WorkspacePath)
		}
	}

	var matches []*SourceSymbol
	for _, sym := range w.AllSymbols() {
		if re != nil && !w.fileMatches(re, sym.AbsolutePath()) {
			continue
		}
		if query.NameQuery != "" && !strings.Contains(sym.Name, query.NameQuery) {
			continue
		}
		if query.Kind != 0 && sym.Kind != query.Kind {
			continue
		}
		if query.Range != nil && sym.Range() != *query.Range {
			continue
		}
		matches = append(matches, sym)
	}
	return matches, nil
}

// QuerySymbolByID resolves a previously minted symbol id against the
// current index. A miss returns SymbolNotFoundError: ids do not survive a
// rebuild that changed the symbol's content. More than one match means
// the content-derived id scheme itself is broken, and that is fatal.
func (w *Workspace) QuerySymbolByID(id SymbolID) (*SourceSymbol, error) {
	var found *SourceSymbol
	for _, sym := range w.AllSymbols() {
		if sym.SymbolID != id {
			continue
		}
		if found != nil {
			panic(fmt.Sprintf("symbol id collision in workspace %s: multiple symbols share id %s", w.WorkspacePath, id))
		}
		found = sym
	}
	if found == nil {
		return nil, lsierrors.NewSymbolNotFoundError(id.String())
	}
	return found, nil
}

// fileMatches applies a file regex the way queries address files: against
// the absolute path, the workspace-relative path, and the basename.
func (w *Workspace) fileMatches(re *regexp.Regexp, absPath string) bool {
	if re.MatchString(absPath) || re.MatchString(filepath.Base(absPath)) {
		return true
	}
	rel, err := filepath.Rel(w.WorkspacePath, absPath)
	if err != nil {
		return false
	}
	return re.MatchString(rel)
}
