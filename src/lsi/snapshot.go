package lsi

import "go.lsp.dev/protocol"

// SymbolSnapshot is the externally safe view of an indexed symbol: plain
// values plus the symbol's id, with no reference into the live tree.
// Callers hold snapshots across rebuilds and come back through the id,
// accepting that a rebuild may have retired it.
type SymbolSnapshot struct {
	Name           string               `json:"name"`
	Detail         string               `json:"detail,omitempty"`
	Kind           protocol.SymbolKind  `json:"kind"`
	Tags           []protocol.SymbolTag `json:"tags,omitempty"`
	Range          protocol.Range       `json:"range"`
	SelectionRange protocol.Range       `json:"selectionRange"`
	WorkspacePath  string               `json:"workspacePath"`
	FilePath       string               `json:"filePath"`
	SourceCode     string               `json:"sourceCode,omitempty"`
	SymbolID       string               `json:"symbolId"`
}

// NewSymbolSnapshot captures a symbol's current state, including its
// source text read from disk. A file that cannot be read right now yields
// a snapshot with empty source rather than an error: the structural view
// is still useful.
func NewSymbolSnapshot(sym *SourceSymbol) SymbolSnapshot {
	source, err := sym.GetSource()
	if err != nil {
		source = ""
	}
	return SymbolSnapshot{
		Name:           sym.Name,
		Detail:         sym.Detail,
		Kind:           sym.Kind,
		Tags:           sym.Tags,
		Range:          sym.Range(),
		SelectionRange: sym.SelectionRange(),
		WorkspacePath:  sym.WorkspacePath,
		FilePath:       sym.FilePath,
		SourceCode:     source,
		SymbolID:       sym.SymbolID.String(),
	}
}

// NewSymbolSnapshots captures a slice of symbols in order
func NewSymbolSnapshots(syms []*SourceSymbol) []SymbolSnapshot {
	snapshots := make([]SymbolSnapshot, 0, len(syms))
	for _, sym := range syms {
		snapshots = append(snapshots, NewSymbolSnapshot(sym))
	}
	return snapshots
}
