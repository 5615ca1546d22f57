// Package errors defines the typed errors of smellscan. Each type carries
// enough context to report which file, rule or codebase failed while the
// rest of the run continues.
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/standardbeagle/smellscan/internal/types"
)

// ErrorType classifies an error for reporting.
type ErrorType string

const (
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypeCodebase ErrorType = "codebase"

	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	ErrorTypeConfig ErrorType = "config"

	ErrorTypeInternal ErrorType = "internal"
)

// AnalysisError reports a detector or metric that failed on one unit or
// codebase. Panics recovered from detectors are recorded with Panicked set.
type AnalysisError struct {
	Type       ErrorType
	Operation  string
	Rule       string
	FileID     types.FileID
	FilePath   string
	Panicked   bool
	Underlying error
	Timestamp  time.Time
}

// NewAnalysisError creates an analysis error for op.
func NewAnalysisError(op string, err error) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeAnalysis,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewPanicError wraps a recovered panic value.
func NewPanicError(op string, recovered interface{}) *AnalysisError {
	e := NewAnalysisError(op, fmt.Errorf("panic: %v", recovered))
	e.Type = ErrorTypeInternal
	e.Panicked = true
	return e
}

// WithFile adds file information to the error.
func (e *AnalysisError) WithFile(fileID types.FileID, path string) *AnalysisError {
	e.FileID = fileID
	e.FilePath = path
	return e
}

// WithRule names the detector that failed.
func (e *AnalysisError) WithRule(rule string) *AnalysisError {
	e.Rule = rule
	return e
}

func (e *AnalysisError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Type, e.Operation)
	if e.Rule != "" {
		fmt.Fprintf(&b, " [%s]", e.Rule)
	}
	b.WriteString(" failed")
	if e.FilePath != "" {
		fmt.Fprintf(&b, " for %s", e.FilePath)
	}
	fmt.Fprintf(&b, ": %v", e.Underlying)
	return b.String()
}

func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// ParseError reports a source file that could not be turned into a tree.
type ParseError struct {
	Type       ErrorType
	FileID     types.FileID
	FilePath   string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a parse error. Line and column are 1-based; zero
// means the position is unknown.
func NewParseError(fileID types.FileID, path string, line, column int, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FileID:     fileID,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("parse error in %s: %v", e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("parse error at %s:%d:%d: %v", e.FilePath, e.Line, e.Column, e.Underlying)
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// FileError reports a file that could not be read or listed.
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a file error; permission failures are classified
// separately.
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if errors.Is(err, fs.ErrPermission) {
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

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error {
	return e.Underlying
}

// CodebaseError reports a codebase that could not be discovered or loaded
// as a whole. Other codebases are still analyzed.
type CodebaseError struct {
	Type       ErrorType
	Codebase   string
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewCodebaseError creates a codebase error.
func NewCodebaseError(op, codebase, path string, err error) *CodebaseError {
	return &CodebaseError{
		Type:       ErrorTypeCodebase,
		Codebase:   codebase,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *CodebaseError) Error() string {
	return fmt.Sprintf("codebase %s %s failed (%s): %v", e.Codebase, e.Operation, e.Path, e.Underlying)
}

func (e *CodebaseError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError collects independent failures.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a multi-error, dropping nil entries.
func NewMultiError(errs []error) *MultiError {
	m := &MultiError{}
	for _, err := range errs {
		m.Append(err)
	}
	return m
}

// Append adds err unless it is nil.
func (e *MultiError) Append(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// ErrorOrNil returns nil when nothing was collected.
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}
