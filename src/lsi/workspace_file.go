package lsi

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"

	lsierrors "lsindex/src/internal/errors"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// WorkspaceFile tracks one source file: its symbol tree, a flat pre-order
// list of every symbol in the tree (FILE root first), and a versioned
// history of content snapshots gated by a checksum of the on-disk bytes.
// Version 0 means never synchronized; the first snapshot is version 1.
type WorkspaceFile struct {
	FileTree   *SourceSymbol
	SymbolList []*SourceSymbol

	FilePath      string // absolute, canonical
	WorkspacePath string
	Version       int32

	checksum     [sha256.Size]byte
	hasChecksum  bool
	resyncNeeded bool
	contents     map[int32]string
	diagnostics  map[int32][]protocol.Diagnostic
}

// DocumentChange describes one content transition of a tracked file, in
// terms a language server collaborator consumes: the snapshot before the
// change when one exists, the snapshot after, and the versioned document
// identity of the new state.
type DocumentChange struct {
	PreviousContents string
	HasPrevious      bool
	NewContents      string
	VersionedDocID   protocol.VersionedTextDocumentIdentifier
}

// ContentChanges renders the transition as an LSP content change event,
// diffed against the previous snapshot or, when none exists, against an
// empty document.
func (dc *DocumentChange) ContentChanges() []protocol.TextDocumentContentChangeEvent {
	previous := ""
	if dc.HasPrevious {
		previous = dc.PreviousContents
	}
	return ContentChanges(dc.VersionedDocID.URI.Filename(), previous, dc.NewContents)
}

// NewWorkspaceFile starts tracking the file at filePath (absolute,
// canonical) under workspacePath. No disk access happens until the first
// synchronization.
func NewWorkspaceFile(filePath, workspacePath string) *WorkspaceFile {
	return &WorkspaceFile{
		FilePath:      filePath,
		WorkspacePath: workspacePath,
		contents:      make(map[int32]string),
		diagnostics:   make(map[int32][]protocol.Diagnostic),
	}
}

// CurrentContents returns the newest content snapshot, if any
func (wf *WorkspaceFile) CurrentContents() (string, bool) {
	text, ok := wf.contents[wf.Version]
	return text, ok
}

// PreviousContents returns the snapshot preceding the current version, if
// any
func (wf *WorkspaceFile) PreviousContents() (string, bool) {
	text, ok := wf.contents[wf.Version-1]
	return text, ok
}

// NeedsUpdate reports whether the on-disk bytes differ from the last
// recorded checksum. A file never synchronized always needs an update.
// The check is pure: no version, snapshot, or checksum state changes.
func (wf *WorkspaceFile) NeedsUpdate() (bool, error) {
	data, err := os.ReadFile(wf.FilePath)
	if err != nil {
		return false, lsierrors.NewIOError("read", wf.FilePath, err)
	}
	if !wf.hasChecksum {
		return true, nil
	}
	sum := sha256.Sum256(data)
	return !bytes.Equal(sum[:], wf.checksum[:]), nil
}

// UpdateContents reads the file once and records the bytes as a new
// snapshot: checksum, version bump, and content entry land together or,
// on a read failure, not at all. The returned DocumentChange carries the
// previous snapshot when one existed so callers can ship an incremental
// notification.
func (wf *WorkspaceFile) UpdateContents() (*DocumentChange, error) {
	data, err := os.ReadFile(wf.FilePath)
	if err != nil {
		return nil, lsierrors.NewIOError("read", wf.FilePath, err)
	}

	prev, hasPrev := wf.contents[wf.Version]

	wf.checksum = sha256.Sum256(data)
	wf.hasChecksum = true
	wf.Version++
	text := string(data)
	wf.contents[wf.Version] = text

	return &DocumentChange{
		PreviousContents: prev,
		HasPrevious:      hasPrev,
		NewContents:      text,
		VersionedDocID: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri.File(wf.FilePath)},
			Version:                wf.Version,
		},
	}, nil
}

// Checksum returns the last recorded content digest, false when the file
// was never synchronized
func (wf *WorkspaceFile) Checksum() ([sha256.Size]byte, bool) {
	return wf.checksum, wf.hasChecksum
}

// DocumentID returns the file's versioned document identity at its
// current version
func (wf *WorkspaceFile) DocumentID() protocol.VersionedTextDocumentIdentifier {
	return protocol.VersionedTextDocumentIdentifier{
		TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri.File(wf.FilePath)},
		Version:                wf.Version,
	}
}

// UpdateSymbols rebuilds the file's symbol tree from a hierarchical
// document symbol response. The previous tree and flat list are replaced
// wholesale; symbol ids minted for the old tree resolve to nothing
// afterwards unless the same content hashes out again.
func (wf *WorkspaceFile) UpdateSymbols(docSymbols []protocol.DocumentSymbol) error {
	rel, err := filepath.Rel(wf.WorkspacePath, wf.FilePath)
	if err != nil {
		return lsierrors.NewValidationError("file_path", "file "+wf.FilePath+" is not under workspace "+wf.WorkspacePath)
	}

	root := NewFileRoot(rel, wf.WorkspacePath)
	list := make([]*SourceSymbol, 0, len(docSymbols)+1)
	list = append(list, root)
	for _, docSym := range docSymbols {
		FromDocumentSymbol(docSym, rel, root, &list, wf.WorkspacePath)
	}

	wf.FileTree = root
	wf.SymbolList = list
	return nil
}

// SetResyncNeeded marks the file as needing a full resynchronization:
// the checksum is current but the provider round trip that should have
// rebuilt the symbols did not complete, so the symbol tree may not
// reflect the recorded content.
func (wf *WorkspaceFile) SetResyncNeeded(needed bool) {
	wf.resyncNeeded = needed
}

// ResyncNeeded reports whether a provider round trip is still owed for
// the current content
func (wf *WorkspaceFile) ResyncNeeded() bool {
	return wf.resyncNeeded
}

// SetDiagnostics records diagnostics published for a specific content
// version
func (wf *WorkspaceFile) SetDiagnostics(version int32, diags []protocol.Diagnostic) {
	wf.diagnostics[version] = diags
}

// CurrentDiagnostics returns the diagnostics recorded for the current
// version, nil when none were published for it
func (wf *WorkspaceFile) CurrentDiagnostics() []protocol.Diagnostic {
	return wf.diagnostics[wf.Version]
}

// RelativePath returns the file's path relative to its workspace root. It
// falls back to the absolute path when the file sits outside the root.
func (wf *WorkspaceFile) RelativePath() string {
	rel, err := filepath.Rel(wf.WorkspacePath, wf.FilePath)
	if err != nil {
		return wf.FilePath
	}
	return rel
}
