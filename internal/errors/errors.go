package errors

import (
	"fmt"
	"time"

	"github.com/standardbeagle/larnav/internal/types"
)

// Error types for the larnav core
type ErrorType string

const (
	// Pipeline errors
	ErrorTypeParse   ErrorType = "parse"
	ErrorTypeExtract ErrorType = "extract"
	ErrorTypeScan    ErrorType = "scan"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Engine errors
	ErrorTypeQuery ErrorType = "query"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// ParseError represents a grammar-level parse failure. Parse failures are
// per-file: the file's derived patterns are dropped but the rest of the
// project keeps working.
type ParseError struct {
	Type       ErrorType
	FileID     types.FileID
	FilePath   string
	Dialect    types.Dialect
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(fileID types.FileID, path string, dialect types.Dialect, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FileID:     fileID,
		FilePath:   path,
		Dialect:    dialect,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse (%s) failed for %s: %v", e.Dialect, e.FilePath, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// ScanError represents a failure while scanning the project for
// registrations. Scans are recoverable: a later filesystem change retries
// the scan.
type ScanError struct {
	Type        ErrorType
	Root        string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewScanError creates a new scan error with context
func NewScanError(op string, err error) *ScanError {
	return &ScanError{
		Type:        ErrorTypeScan,
		Operation:   op,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// WithRoot adds the project root to the error
func (e *ScanError) WithRoot(root string) *ScanError {
	e.Root = root
	return e
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e.Root != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.Root, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *ScanError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable checks if the error can be retried
func (e *ScanError) IsRecoverable() bool {
	return e.Recoverable
}

// QueryError represents an engine-level query failure: an unregistered
// query kind or a dependency cycle between derived queries.
type QueryError struct {
	Type       ErrorType
	Kind       string
	Arg        string
	Underlying error
	Timestamp  time.Time
}

// NewQueryError creates a new query error
func NewQueryError(kind, arg string, err error) *QueryError {
	return &QueryError{
		Type:       ErrorTypeQuery,
		Kind:       kind,
		Arg:        arg,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s(%q) failed: %v", e.Kind, e.Arg, e.Underlying)
}

// Unwrap returns the underlying error
func (e *QueryError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// isPermissionError checks if the error is a permission error
func isPermissionError(err error) bool {
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
