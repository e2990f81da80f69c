package lsi

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"path/filepath"
	"sync"

	"go.lsp.dev/protocol"
)

// SymbolID is a content-derived stable identifier for a symbol. Two
// symbols with identical semantic content at the same file position hash
// identically, so an id survives a rescan unless the symbol actually
// changed.
type SymbolID [sha256.Size]byte

// String returns the hex form of the id
func (id SymbolID) String() string {
	return hex.EncodeToString(id[:])
}

// ParseSymbolID decodes a hex-encoded symbol id
func ParseSymbolID(s string) (SymbolID, error) {
	var id SymbolID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid symbol id %q: %w", s, err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("invalid symbol id %q: expected %d bytes, got %d", s, len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// SourceSymbol is one node of a per-file symbol tree. The tree owns its
// children; the parent reference is a plain back-pointer. Ranges are
// mutable (a FILE root widens as children are added) and are guarded by a
// single mutex shared across the whole tree of one file.
type SourceSymbol struct {
	Name          string
	Detail        string
	Kind          protocol.SymbolKind
	Tags          []protocol.SymbolTag
	WorkspacePath string
	FilePath      string // relative to WorkspacePath
	SymbolID      SymbolID

	mu             *sync.Mutex
	rng            protocol.Range
	selectionRange protocol.Range
	parent         *SourceSymbol
	children       []*SourceSymbol
}

// NewFileRoot creates a FILE-kind root symbol for a file. Its range
// starts empty and widens as children are attached.
func NewFileRoot(relPath, workspacePath string) *SourceSymbol {
	root := &SourceSymbol{
		Name:          relPath,
		Kind:          protocol.SymbolKindFile,
		WorkspacePath: workspacePath,
		FilePath:      relPath,
		mu:            &sync.Mutex{},
	}
	root.SymbolID = computeSymbolID(root)
	return root
}

// FromDocumentSymbol converts one hierarchical document symbol into an
// owned SourceSymbol attached under parent, recursing over nested
// children depth-first in pre-order. Every created node is appended to
// allSymbols in that same order, which is the document order queries
// report results in. Construction is total: malformed responses must be
// rejected by the collaborator before this is called.
func FromDocumentSymbol(docSym protocol.DocumentSymbol, relPath string, parent *SourceSymbol, allSymbols *[]*SourceSymbol, workspacePath string) *SourceSymbol {
	converted := &SourceSymbol{
		Name:           docSym.Name,
		Detail:         docSym.Detail,
		Kind:           docSym.Kind,
		Tags:           docSym.Tags,
		WorkspacePath:  workspacePath,
		FilePath:       relPath,
		mu:             parent.mu,
		rng:            docSym.Range,
		selectionRange: docSym.SelectionRange,
	}
	converted.SymbolID = computeSymbolID(converted)

	*allSymbols = append(*allSymbols, converted)
	AddChild(parent, converted)
	for _, child := range docSym.Children {
		FromDocumentSymbol(child, relPath, converted, allSymbols, workspacePath)
	}
	return converted
}

// AddChild attaches child under parent: sets the back-reference, appends
// to the owned children, and widens a FILE-kind parent's range end so the
// root always bounds everything beneath it.
func AddChild(parent, child *SourceSymbol) {
	parent.mu.Lock()
	defer parent.mu.Unlock()

	child.parent = parent
	parent.children = append(parent.children, child)
	if parent.Kind == protocol.SymbolKindFile && positionAfter(child.rng.End, parent.rng.End) {
		parent.rng.End = child.rng.End
	}
}

// Range returns a copy of the symbol's full extent
func (s *SourceSymbol) Range() protocol.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng
}

// SelectionRange returns a copy of the symbol's name extent
func (s *SourceSymbol) SelectionRange() protocol.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionRange
}

// Parent returns the symbol's parent, nil for a root
func (s *SourceSymbol) Parent() *SourceSymbol {
	return s.parent
}

// Children returns the symbol's owned children in document order
func (s *SourceSymbol) Children() []*SourceSymbol {
	return s.children
}

// AbsolutePath returns the symbol's file path joined back onto its
// workspace path
func (s *SourceSymbol) AbsolutePath() string {
	return filepath.Join(s.WorkspacePath, s.FilePath)
}

// GetSource reads the symbol's current source text from disk using its
// full range
func (s *SourceSymbol) GetSource() (string, error) {
	rng := s.Range()
	return GetRangeContents(s.AbsolutePath(), &rng)
}

// GetSelection reads the symbol's name extent from disk
func (s *SourceSymbol) GetSelection() (string, error) {
	rng := s.SelectionRange()
	return GetRangeContents(s.AbsolutePath(), &rng)
}

// ReplaceText rewrites the symbol's full range on disk with replacement
// text and returns the resulting whole-file contents. Every range in the
// file is stale afterwards; the file must be re-scanned before further
// range-addressed operations are trusted.
func (s *SourceSymbol) ReplaceText(replacement string) (string, error) {
	rng := s.Range()
	return ReplaceRangeContents(s.AbsolutePath(), rng, replacement)
}

func (s *SourceSymbol) String() string {
	out := fmt.Sprintf("%s - %s: %s", filepath.Base(s.FilePath), symbolKindName(s.Kind), s.Name)
	if len(s.children) > 0 {
		out += fmt.Sprintf(" (%d child nodes)", len(s.children))
	}
	return out
}

// positionAfter reports whether a is strictly after b
func positionAfter(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line > b.Line
	}
	return a.Character > b.Character
}

// computeSymbolID derives the 32-byte identity digest from the symbol's
// semantic fields in a fixed order. Inputs are known-good in-memory
// values, so this never fails.
func computeSymbolID(s *SourceSymbol) SymbolID {
	h := sha256.New()
	hashString(h, s.Name)
	hashString(h, s.Detail)
	hashUint32(h, uint32(s.Kind))
	hashUint32(h, uint32(len(s.Tags)))
	for _, tag := range s.Tags {
		hashUint32(h, uint32(tag))
	}
	hashRange(h, s.rng)
	hashRange(h, s.selectionRange)
	hashString(h, s.WorkspacePath)
	hashString(h, s.FilePath)

	var id SymbolID
	copy(id[:], h.Sum(nil))
	return id
}

func hashString(h hash.Hash, s string) {
	hashUint32(h, uint32(len(s)))
	h.Write([]byte(s))
}

func hashUint32(h hash.Hash, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}

func hashRange(h hash.Hash, r protocol.Range) {
	hashUint32(h, r.Start.Line)
	hashUint32(h, r.Start.Character)
	hashUint32(h, r.End.Line)
	hashUint32(h, r.End.Character)
}

func symbolKindName(kind protocol.SymbolKind) string {
	switch kind {
	case protocol.SymbolKindFile:
		return "File"
	case protocol.SymbolKindModule:
		return "Module"
	case protocol.SymbolKindNamespace:
		return "Namespace"
	case protocol.SymbolKindPackage:
		return "Package"
	case protocol.SymbolKindClass:
		return "Class"
	case protocol.SymbolKindMethod:
		return "Method"
	case protocol.SymbolKindProperty:
		return "Property"
	case protocol.SymbolKindField:
		return "Field"
	case protocol.SymbolKindConstructor:
		return "Constructor"
	case protocol.SymbolKindEnum:
		return "Enum"
	case protocol.SymbolKindInterface:
		return "Interface"
	case protocol.SymbolKindFunction:
		return "Function"
	case protocol.SymbolKindVariable:
		return "Variable"
	case protocol.SymbolKindConstant:
		return "Constant"
	case protocol.SymbolKindStruct:
		return "Struct"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}
