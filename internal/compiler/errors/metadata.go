package errors

import (
	"fmt"

	"github.com/psykal-lang/psykal/internal/compiler/ast"
)

// Kernel metadata error codes (MET001-099)
const (
	// ErrMetadataMalformed indicates a descriptor that could not be decoded
	ErrMetadataMalformed ErrorCode = "MET001"
	// ErrMetadataArgCount indicates a mismatch between declared arguments and the kernel signature
	ErrMetadataArgCount ErrorCode = "MET002"
	// ErrMetadataAccessKind indicates an access mode that is invalid for the argument kind
	ErrMetadataAccessKind ErrorCode = "MET003"
	// ErrMetadataContinuity indicates an access mode incompatible with the function-space continuity
	ErrMetadataContinuity ErrorCode = "MET004"
	// ErrMetadataOperatorSpaces indicates an operator argument without valid to/from spaces
	ErrMetadataOperatorSpaces ErrorCode = "MET005"
	// ErrMetadataStencilAccess indicates a stencil declared on a non-read argument
	ErrMetadataStencilAccess ErrorCode = "MET006"
	// ErrMetadataUnknownSpace indicates a function space outside the supported set
	ErrMetadataUnknownSpace ErrorCode = "MET007"
	// ErrMetadataFieldSpaces indicates a field argument with the wrong number of space tags
	ErrMetadataFieldSpaces ErrorCode = "MET008"
	// ErrMetadataVectorLength indicates a field-vector with an invalid component count
	ErrMetadataVectorLength ErrorCode = "MET009"
	// ErrMetadataDuplicateKernel indicates two descriptors sharing one kernel name
	ErrMetadataDuplicateKernel ErrorCode = "MET010"
	// ErrMetadataGranularity indicates an unknown iteration granularity tag
	ErrMetadataGranularity ErrorCode = "MET011"
)

// NewMetadataMalformed creates a MET001 error
func NewMetadataMalformed(kernel, reason string) *GeneratorError {
	e := newError(
		ErrMetadataMalformed,
		"metadata_malformed",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' has malformed metadata: %s", kernel, reason),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e
}

// NewMetadataAccessKind creates a MET003 error
func NewMetadataAccessKind(kernel string, slot int, kind, access string) *GeneratorError {
	e := newError(
		ErrMetadataAccessKind,
		"invalid_access_for_kind",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' argument %d: access mode '%s' is not valid for a %s argument",
			kernel, slot, access, kind),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e.WithSlot(slot)
}

// NewMetadataContinuity creates a MET004 error
func NewMetadataContinuity(kernel string, slot int, access, space, continuity string) *GeneratorError {
	e := newError(
		ErrMetadataContinuity,
		"access_continuity_mismatch",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' argument %d: access mode '%s' is not permitted on %s space '%s'",
			kernel, slot, access, continuity, space),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e.WithSlot(slot).
		WithSuggestion("increment and reduction accesses require a continuous space; write and read-write require a discontinuous one")
}

// NewMetadataOperatorSpaces creates a MET005 error
func NewMetadataOperatorSpaces(kernel string, slot int, reason string) *GeneratorError {
	e := newError(
		ErrMetadataOperatorSpaces,
		"invalid_operator_spaces",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' argument %d: %s", kernel, slot, reason),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e.WithSlot(slot).
		WithSuggestion("operator arguments declare exactly a to-space and a from-space; same-space operators declare both tags equal")
}

// NewMetadataStencilAccess creates a MET006 error
func NewMetadataStencilAccess(kernel string, slot int, access string) *GeneratorError {
	e := newError(
		ErrMetadataStencilAccess,
		"stencil_on_non_read",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' argument %d: stencil metadata is only accepted on read-access fields, found access '%s'",
			kernel, slot, access),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e.WithSlot(slot)
}

// NewMetadataUnknownSpace creates a MET007 error
func NewMetadataUnknownSpace(kernel string, slot int, space string) *GeneratorError {
	e := newError(
		ErrMetadataUnknownSpace,
		"unknown_function_space",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' argument %d: unknown function space '%s'", kernel, slot, space),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e.WithSlot(slot)
}

// NewMetadataFieldSpaces creates a MET008 error
func NewMetadataFieldSpaces(kernel string, slot int, got int) *GeneratorError {
	e := newError(
		ErrMetadataFieldSpaces,
		"invalid_field_spaces",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' argument %d: a field argument carries exactly one function space, found %d",
			kernel, slot, got),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e.WithSlot(slot)
}

// NewMetadataVectorLength creates a MET009 error
func NewMetadataVectorLength(kernel string, slot, length int) *GeneratorError {
	e := newError(
		ErrMetadataVectorLength,
		"invalid_vector_length",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' argument %d: field-vector length must be at least 2, found %d",
			kernel, slot, length),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e.WithSlot(slot)
}

// NewMetadataDuplicateKernel creates a MET010 error
func NewMetadataDuplicateKernel(kernel string) *GeneratorError {
	e := newError(
		ErrMetadataDuplicateKernel,
		"duplicate_kernel",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' is declared more than once", kernel),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e
}

// NewMetadataGranularity creates a MET011 error
func NewMetadataGranularity(kernel, granularity string) *GeneratorError {
	e := newError(
		ErrMetadataGranularity,
		"unknown_granularity",
		CategoryMetadata,
		SeverityError,
		fmt.Sprintf("Kernel '%s' declares unknown iteration granularity '%s'", kernel, granularity),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Kernel = kernel
	return e.WithExpected("one of cell-column, per-cell, full-domain, per-dof")
}
