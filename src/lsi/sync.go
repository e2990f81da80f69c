package lsi

import (
	"context"
	"regexp"
	"sync"

	"lsindex/src/config"
	"lsindex/src/internal/common"
	lsierrors "lsindex/src/internal/errors"

	"go.lsp.dev/protocol"
)

// IndexService owns a set of workspaces and drives their refresh cycle
// against a SymbolProvider. One mutex serializes everything: queries see
// either the index before a refresh or after it, never a half-rebuilt
// file.
type IndexService struct {
	mu         sync.Mutex
	workspaces []*Workspace
	provider   SymbolProvider
}

// NewIndexService creates a service backed by the given provider
func NewIndexService(provider SymbolProvider) *IndexService {
	return &IndexService{provider: provider}
}

// AddWorkspace registers a workspace root for a language. Registering the
// same root and language twice returns the existing workspace.
func (s *IndexService) AddWorkspace(workspacePath, languageID string, cfg *config.Config) (*Workspace, error) {
	langCfg, err := cfg.LanguageFor(languageID)
	if err != nil {
		return nil, lsierrors.NewValidationError("language", err.Error())
	}
	w, err := NewWorkspace(workspacePath, languageID, langCfg, cfg.Scan)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.workspaces {
		if existing.WorkspacePath == w.WorkspacePath && existing.LanguageID == languageID {
			return existing, nil
		}
	}
	s.workspaces = append(s.workspaces, w)
	return w, nil
}

// Workspaces returns the registered workspaces
func (s *IndexService) Workspaces() []*Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Workspace(nil), s.workspaces...)
}

// Synchronize refreshes every registered workspace: rescan the directory
// tree, then refresh each tracked file whose on-disk content drifted from
// its checksum. Per-file failures are logged and skipped so one broken
// file cannot starve the rest of the index.
func (s *IndexService) Synchronize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workspaces {
		if err := s.synchronizeWorkspace(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// SynchronizeWorkspace refreshes a single workspace addressed by root
func (s *IndexService) SynchronizeWorkspace(ctx context.Context, workspaceRoot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.workspaceFor(workspaceRoot)
	if err != nil {
		return err
	}
	return s.synchronizeWorkspace(ctx, w)
}

func (s *IndexService) synchronizeWorkspace(ctx context.Context, w *Workspace) error {
	if err := w.ScanWorkspaceFiles(); err != nil {
		return err
	}
	refreshed := 0
	for _, f := range w.Files {
		needsUpdate, err := f.NeedsUpdate()
		if err != nil {
			common.IndexLogger.Warn("skipping %s: %v", f.FilePath, err)
			continue
		}
		if !needsUpdate && !f.ResyncNeeded() {
			continue
		}
		if err := s.refreshFile(ctx, w, f); err != nil {
			common.IndexLogger.Warn("failed to refresh %s: %v", f.FilePath, err)
			continue
		}
		refreshed++
	}
	common.IndexLogger.Debug("workspace %s: %d files tracked, %d refreshed, %d symbols",
		w.WorkspacePath, len(w.Files), refreshed, w.CountSymbols())
	return nil
}

// refreshFile records a new content snapshot, notifies the provider of
// the transition, and rebuilds the file's symbol tree from the provider's
// outline. A failed provider round trip leaves the file flagged for
// resynchronization so the next cycle retries even though the checksum
// already matches; the retry re-opens the document with its full text
// because the provider's view after a failure is unknown.
func (s *IndexService) refreshFile(ctx context.Context, w *Workspace, f *WorkspaceFile) error {
	retrying := f.ResyncNeeded()
	change, err := f.UpdateContents()
	if err != nil {
		return err
	}
	if change.HasPrevious && !retrying {
		err = s.provider.DidChange(ctx, change.VersionedDocID, change.ContentChanges())
	} else {
		err = s.provider.DidOpen(ctx, change.VersionedDocID, w.LanguageID, change.NewContents)
	}
	if err != nil {
		f.SetResyncNeeded(true)
		return err
	}

	docSymbols, err := s.provider.DocumentSymbols(ctx, change.VersionedDocID.TextDocumentIdentifier)
	if err != nil {
		f.SetResyncNeeded(true)
		return err
	}
	if err := f.UpdateSymbols(docSymbols); err != nil {
		return err
	}
	f.SetResyncNeeded(false)
	return nil
}

// QuerySymbols evaluates a symbol query and returns detached snapshots.
// A populated SymbolID short-circuits to a direct id lookup.
func (s *IndexService) QuerySymbols(query *LsiQuery) ([]SymbolSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.workspaceFor(query.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	if query.SymbolID != "" {
		id, err := ParseSymbolID(query.SymbolID)
		if err != nil {
			return nil, lsierrors.NewValidationError("symbol_id", err.Error())
		}
		sym, err := w.QuerySymbolByID(id)
		if err != nil {
			return nil, err
		}
		return []SymbolSnapshot{NewSymbolSnapshot(sym)}, nil
	}

	syms, err := w.QuerySymbols(query)
	if err != nil {
		return nil, err
	}
	return NewSymbolSnapshots(syms), nil
}

// WorkspaceFiles lists the absolute paths of tracked files, optionally
// narrowed by the query's file path regex
func (s *IndexService) WorkspaceFiles(query *LsiQuery) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.workspaceFor(query.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	var re *regexp.Regexp
	if query.FilePathRegex != "" {
		re, err = regexp.Compile(query.FilePathRegex)
		if err != nil {
			return nil, lsierrors.NewValidationError("file_path_regex", err.Error())
		}
	}
	paths := make([]string, 0, len(w.Files))
	for _, f := range w.Files {
		if re != nil && !w.fileMatches(re, f.FilePath) {
			continue
		}
		paths = append(paths, f.FilePath)
	}
	return paths, nil
}

// Diagnostics collects the current-version diagnostics of tracked files,
// keyed by absolute path, honoring the query's file regex and severity
// flags. Files with nothing recorded for their current version are
// omitted.
func (s *IndexService) Diagnostics(query *LsiQuery) (map[string][]protocol.Diagnostic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.workspaceFor(query.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	var re *regexp.Regexp
	if query.FilePathRegex != "" {
		re, err = regexp.Compile(query.FilePathRegex)
		if err != nil {
			return nil, lsierrors.NewValidationError("file_path_regex", err.Error())
		}
	}

	result := make(map[string][]protocol.Diagnostic)
	for _, f := range w.Files {
		if re != nil && !w.fileMatches(re, f.FilePath) {
			continue
		}
		var kept []protocol.Diagnostic
		for _, diag := range f.CurrentDiagnostics() {
			if query.Severity.Includes(diag.Severity) {
				kept = append(kept, diag)
			}
		}
		if len(kept) > 0 {
			result[f.FilePath] = kept
		}
	}
	return result, nil
}

// PublishDiagnostics records diagnostics a provider pushed for a file at
// a specific content version
func (s *IndexService) PublishDiagnostics(workspaceRoot, filePath string, version int32, diags []protocol.Diagnostic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.workspaceFor(workspaceRoot)
	if err != nil {
		return err
	}
	f := w.FileByPath(filePath)
	if f == nil {
		return lsierrors.NewValidationError("file_path", filePath+" is not tracked by workspace "+w.WorkspacePath)
	}
	f.SetDiagnostics(version, diags)
	return nil
}

// workspaceFor resolves a workspace root to a registered workspace.
// Callers hold s.mu.
func (s *IndexService) workspaceFor(workspaceRoot string) (*Workspace, error) {
	canonical, err := common.CanonicalPath(workspaceRoot)
	if err != nil {
		canonical = workspaceRoot
	}
	for _, w := range s.workspaces {
		if w.WorkspacePath == canonical {
			return w, nil
		}
	}
	return nil, lsierrors.NewWorkspaceNotFoundError(workspaceRoot)
}
