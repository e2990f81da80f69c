// Package errors defines the typed error system shared by the indexing
// core. Callers can distinguish filesystem failures from bad requests and
// from queries whose scope matched nothing.
package errors

import (
	"errors"
	"fmt"
)

// IOError represents a filesystem read or write failure for a tracked file
type IOError struct {
	Op    string `json:"op"` // "read", "write", "stat", "walk"
	Path  string `json:"path"`
	Cause error  `json:"cause,omitempty"`
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error during %s of %s: %v", e.Op, e.Path, e.Cause)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}

// InvalidRangeError represents malformed or out-of-bounds line/character
// addressing against a file's text
type InvalidRangeError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range for %s: %s", e.Path, e.Reason)
}

// NoMatchingFilesError reports a query whose file filter matched none of
// the tracked files. Distinct from an empty result: the filter itself is
// out of scope for the workspace.
type NoMatchingFilesError struct {
	Pattern       string `json:"pattern"`
	WorkspaceRoot string `json:"workspaceRoot"`
}

func (e *NoMatchingFilesError) Error() string {
	return fmt.Sprintf("no files in workspace %s match pattern %q", e.WorkspaceRoot, e.Pattern)
}

// WorkspaceNotFoundError reports a query addressed to an untracked root
type WorkspaceNotFoundError struct {
	WorkspaceRoot string `json:"workspaceRoot"`
}

func (e *WorkspaceNotFoundError) Error() string {
	return fmt.Sprintf("no workspace found at %s", e.WorkspaceRoot)
}

// SymbolNotFoundError reports a symbol id lookup miss, typically because
// the file was rebuilt and the symbol's content changed
type SymbolNotFoundError struct {
	SymbolID string `json:"symbolId"`
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("no symbol found with id %s", e.SymbolID)
}

// ValidationError represents parameter validation errors
type ValidationError struct {
	Parameter string `json:"parameter"`
	Message   string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for parameter '%s': %s", e.Parameter, e.Message)
}

// Error constructors

// NewIOError creates an IOError for the given operation and path
func NewIOError(op, path string, cause error) *IOError {
	return &IOError{Op: op, Path: path, Cause: cause}
}

// NewInvalidRangeError creates an InvalidRangeError with a reason
func NewInvalidRangeError(path, reason string) *InvalidRangeError {
	return &InvalidRangeError{Path: path, Reason: reason}
}

// NewNoMatchingFilesError creates a NoMatchingFilesError for a pattern
func NewNoMatchingFilesError(pattern, workspaceRoot string) *NoMatchingFilesError {
	return &NoMatchingFilesError{Pattern: pattern, WorkspaceRoot: workspaceRoot}
}

// NewWorkspaceNotFoundError creates a WorkspaceNotFoundError
func NewWorkspaceNotFoundError(workspaceRoot string) *WorkspaceNotFoundError {
	return &WorkspaceNotFoundError{WorkspaceRoot: workspaceRoot}
}

// NewSymbolNotFoundError creates a SymbolNotFoundError for a hex-encoded id
func NewSymbolNotFoundError(symbolID string) *SymbolNotFoundError {
	return &SymbolNotFoundError{SymbolID: symbolID}
}

// NewValidationError creates a validation error for the specified parameter
func NewValidationError(parameter, message string) *ValidationError {
	return &ValidationError{Parameter: parameter, Message: message}
}

// Error classification

// IsIOError checks if the error is a filesystem failure
func IsIOError(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}

// IsInvalidRangeError checks if the error is a bad range request
func IsInvalidRangeError(err error) bool {
	var e *InvalidRangeError
	return errors.As(err, &e)
}

// IsNoMatchingFilesError checks if the error is an out-of-scope file filter
func IsNoMatchingFilesError(err error) bool {
	var e *NoMatchingFilesError
	return errors.As(err, &e)
}

// IsWorkspaceNotFoundError checks if the error names an untracked root
func IsWorkspaceNotFoundError(err error) bool {
	var e *WorkspaceNotFoundError
	return errors.As(err, &e)
}

// IsSymbolNotFoundError checks if the error is a symbol id lookup miss
func IsSymbolNotFoundError(err error) bool {
	var e *SymbolNotFoundError
	return errors.As(err, &e)
}

// IsValidationError checks if the error is a parameter validation error
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
