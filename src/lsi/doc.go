// Package lsi maintains a queryable symbol index for workspace source
// files. Symbol trees are built from hierarchical document symbol
// responses supplied by an external language server collaborator; the
// index tracks file content versions by checksum and exposes a flat,
// filterable view of every symbol in a workspace.
package lsi
