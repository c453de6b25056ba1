// Package errors provides structured error handling for the psykal generator.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON.
package errors

import (
	"encoding/json"

	"github.com/psykal-lang/psykal/internal/compiler/ast"
)

// ErrorCode represents a unique error code in the psykal generator
type ErrorCode string

// ErrorCategory represents the category of generator error
type ErrorCategory string

const (
	// CategoryMetadata represents kernel metadata errors (MET001-099)
	CategoryMetadata ErrorCategory = "metadata"
	// CategoryBinding represents call-site binding errors (BND100-199)
	CategoryBinding ErrorCategory = "binding"
	// CategorySymbols represents symbol resolution errors (SYM200-299)
	CategorySymbols ErrorCategory = "symbols"
	// CategoryAccess represents access/dependency analysis errors (ACC300-399)
	CategoryAccess ErrorCategory = "access"
	// CategorySynthesis represents driver synthesis errors (PSY400-499)
	CategorySynthesis ErrorCategory = "synthesis"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that prevents synthesis
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a warning that suggests potential issues
	SeverityWarning ErrorSeverity = "warning"
)

// GeneratorError represents a structured generator error. Every error is
// fatal to the enclosing invoke unit: no partial driver output is emitted
// for a failing unit.
type GeneratorError struct {
	// Code is the unique error code (e.g., "MET003", "BND101")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Location is the source location of the error
	Location ast.SourceLocation `json:"location"`
	// File is the source file name (optional)
	File string `json:"file,omitempty"`
	// Kernel is the kernel descriptor the error refers to (optional)
	Kernel string `json:"kernel,omitempty"`
	// Unit is the invoke unit the error refers to (optional)
	Unit string `json:"unit,omitempty"`
	// CallIndex is the zero-based call index within the unit; -1 when unset
	CallIndex int `json:"call_index"`
	// Slot is the zero-based argument slot; -1 when unset
	Slot int `json:"slot"`
	// Quantity is the logical quantity the error refers to (optional)
	Quantity string `json:"quantity,omitempty"`
	// Names are conflicting symbol names (optional)
	Names []string `json:"names,omitempty"`
	// Calls are conflicting call indices (optional)
	Calls []int `json:"calls,omitempty"`
	// Expected describes what was expected (optional)
	Expected string `json:"expected,omitempty"`
	// Actual describes what was actually found (optional)
	Actual string `json:"actual,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (e *GeneratorError) Error() string {
	return e.Format()
}

// Format returns a human-readable error message for terminal output
func (e *GeneratorError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as a JSON string
func (e *GeneratorError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithFile sets the source file name for the error
func (e *GeneratorError) WithFile(file string) *GeneratorError {
	e.File = file
	return e
}

// WithUnit sets the invoke unit name for the error
func (e *GeneratorError) WithUnit(unit string) *GeneratorError {
	e.Unit = unit
	return e
}

// WithCall sets the call index for the error
func (e *GeneratorError) WithCall(index int) *GeneratorError {
	e.CallIndex = index
	return e
}

// WithSlot sets the argument slot for the error
func (e *GeneratorError) WithSlot(slot int) *GeneratorError {
	e.Slot = slot
	return e
}

// WithExpected sets the expected value for the error
func (e *GeneratorError) WithExpected(expected string) *GeneratorError {
	e.Expected = expected
	return e
}

// WithActual sets the actual value for the error
func (e *GeneratorError) WithActual(actual string) *GeneratorError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *GeneratorError) WithSuggestion(suggestion string) *GeneratorError {
	e.Suggestion = suggestion
	return e
}

// ErrorList is a collection of generator errors
type ErrorList []*GeneratorError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// HasErrors returns true if the list contains any errors (excludes warnings)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return
}

// newError creates a new GeneratorError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
	loc ast.SourceLocation,
) *GeneratorError {
	return &GeneratorError{
		Code:      code,
		Type:      typ,
		Category:  category,
		Severity:  severity,
		Message:   message,
		Location:  loc,
		CallIndex: -1,
		Slot:      -1,
	}
}
