package lsi

import (
	"context"

	"go.lsp.dev/protocol"
)

// SymbolProvider is the language server collaborator the index pulls
// document symbols from. The index owns no server handle and no
// transport; implementations decide how notifications and requests reach
// an actual server. Document identities carry file URIs and the versions
// minted by WorkspaceFile content updates.
type SymbolProvider interface {
	// DidOpen announces a document with its full text. It may be called
	// again for a document the provider already knows when the index is
	// recovering from a failed round trip; implementations must treat
	// that as a full resynchronization of the document's content.
	DidOpen(ctx context.Context, docID protocol.VersionedTextDocumentIdentifier, languageID, text string) error

	// DidChange ships content changes for an already-open document.
	DidChange(ctx context.Context, docID protocol.VersionedTextDocumentIdentifier, changes []protocol.TextDocumentContentChangeEvent) error

	// DocumentSymbols requests the hierarchical symbol outline of an
	// open document.
	DocumentSymbols(ctx context.Context, docID protocol.TextDocumentIdentifier) ([]protocol.DocumentSymbol, error)
}
