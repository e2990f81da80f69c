package lsi

import (
	"strings"

	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"go.lsp.dev/protocol"
)

// ContentChanges computes the LSP content change event that transforms
// before into after. The Myers diff's edits are collapsed into a single
// whole-line replacement spanning the first through the last changed
// line: didChange events apply sequentially against the already-edited
// document, so shipping the raw edits (whose coordinates all address the
// original text) would corrupt any multi-edit change. Identical inputs
// produce no event.
func ContentChanges(filePath, before, after string) []protocol.TextDocumentContentChangeEvent {
	edits := myers.ComputeEdits(span.URIFromPath(filePath), before, after)
	if len(edits) == 0 {
		return nil
	}

	// Myers edit spans are whole-line and 1-based.
	startLine := edits[0].Span.Start().Line() - 1
	endLine := edits[0].Span.End().Line() - 1
	for _, edit := range edits[1:] {
		if line := edit.Span.Start().Line() - 1; line < startLine {
			startLine = line
		}
		if line := edit.Span.End().Line() - 1; line > endLine {
			endLine = line
		}
	}

	// Lines before startLine and after endLine are common to both texts,
	// so the replacement is the after-text minus that prefix and suffix.
	beforeLines := splitLines(before)
	afterLines := splitLines(after)
	keptSuffix := len(beforeLines) - endLine

	var text strings.Builder
	for _, line := range afterLines[startLine : len(afterLines)-keptSuffix] {
		text.WriteString(line)
	}

	return []protocol.TextDocumentContentChangeEvent{{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(startLine)},
			End:   protocol.Position{Line: uint32(endLine)},
		},
		Text: text.String(),
	}}
}

// splitLines splits text into lines, each keeping its trailing newline
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
