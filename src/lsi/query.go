package lsi

import "go.lsp.dev/protocol"

// LsiQuery selects symbols, files, or diagnostics from a workspace. All
// populated criteria must hold for a result to match; zero values mean
// "any". The file path regex plays a double role: besides filtering
// results it defines the query's scope, and a scope matching no tracked
// file is an error rather than an empty result.
type LsiQuery struct {
	// NameQuery matches symbols whose name contains this substring.
	NameQuery string `json:"nameQuery,omitempty"`

	// FilePathRegex restricts the query to files whose absolute path,
	// workspace-relative path, or basename matches.
	FilePathRegex string `json:"filePathRegex,omitempty"`

	// Kind, when non-zero, matches symbols of exactly this kind.
	Kind protocol.SymbolKind `json:"kind,omitempty"`

	// Range, when set, matches symbols whose full range equals it exactly.
	Range *protocol.Range `json:"range,omitempty"`

	// SymbolID, when set, is a hex-encoded id for a direct lookup that
	// bypasses the other symbol criteria.
	SymbolID string `json:"symbolId,omitempty"`

	// WorkspaceRoot addresses the workspace the query runs against.
	WorkspaceRoot string `json:"workspaceRoot"`

	// Severity tunes which diagnostic severities a diagnostics query
	// includes. Nil includes everything.
	Severity *DiagnosticIncludeFlags `json:"severity,omitempty"`
}

// DiagnosticIncludeFlags opts diagnostic severities in or out of a
// diagnostics query. Unset fields default to included.
type DiagnosticIncludeFlags struct {
	Errors      *bool `json:"errors,omitempty"`
	Warnings    *bool `json:"warnings,omitempty"`
	Information *bool `json:"information,omitempty"`
	Hints       *bool `json:"hints,omitempty"`
	Unknown     *bool `json:"unknown,omitempty"`
}

// Includes reports whether a diagnostic of the given severity passes the
// flags. A severity outside the four defined values falls under Unknown.
func (f *DiagnosticIncludeFlags) Includes(severity protocol.DiagnosticSeverity) bool {
	if f == nil {
		return true
	}
	var flag *bool
	switch severity {
	case protocol.DiagnosticSeverityError:
		flag = f.Errors
	case protocol.DiagnosticSeverityWarning:
		flag = f.Warnings
	case protocol.DiagnosticSeverityInformation:
		flag = f.Information
	case protocol.DiagnosticSeverityHint:
		flag = f.Hints
	default:
		flag = f.Unknown
	}
	if flag == nil {
		return true
	}
	return *flag
}
