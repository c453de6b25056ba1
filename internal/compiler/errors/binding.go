package errors

import (
	"fmt"

	"github.com/psykal-lang/psykal/internal/compiler/ast"
)

// Call-site binding error codes (BND100-199)
const (
	// ErrBindingUnknownKernel indicates a call to a kernel with no registered descriptor
	ErrBindingUnknownKernel ErrorCode = "BND100"
	// ErrBindingArgCount indicates a call-site argument count differing from the descriptor
	ErrBindingArgCount ErrorCode = "BND101"
	// ErrBindingKindMismatch indicates an actual quantity of the wrong kind for its slot
	ErrBindingKindMismatch ErrorCode = "BND102"
	// ErrBindingSpaceMismatch indicates an actual quantity on the wrong function space
	ErrBindingSpaceMismatch ErrorCode = "BND103"
	// ErrBindingLiteralNonScalar indicates a literal constant bound to a non-scalar slot
	ErrBindingLiteralNonScalar ErrorCode = "BND104"
	// ErrBindingUnknownQuantity indicates a named argument not declared by the algorithm layer
	ErrBindingUnknownQuantity ErrorCode = "BND105"
	// ErrBindingDataType indicates an actual quantity with the wrong data type for its slot
	ErrBindingDataType ErrorCode = "BND106"
)

// NewBindingUnknownKernel creates a BND100 error
func NewBindingUnknownKernel(loc ast.SourceLocation, call int, kernel string) *GeneratorError {
	e := newError(
		ErrBindingUnknownKernel,
		"unknown_kernel",
		CategoryBinding,
		SeverityError,
		fmt.Sprintf("Call %d: no kernel descriptor registered for '%s'", call, kernel),
		loc,
	)
	e.Kernel = kernel
	return e.WithCall(call)
}

// NewBindingArgCount creates a BND101 error
func NewBindingArgCount(loc ast.SourceLocation, call int, kernel string, want, got int) *GeneratorError {
	e := newError(
		ErrBindingArgCount,
		"argument_count_mismatch",
		CategoryBinding,
		SeverityError,
		fmt.Sprintf("Call %d to kernel '%s': descriptor declares %d argument(s), call supplies %d",
			call, kernel, want, got),
		loc,
	)
	e.Kernel = kernel
	return e.WithCall(call).
		WithExpected(fmt.Sprintf("%d argument(s)", want)).
		WithActual(fmt.Sprintf("%d argument(s)", got))
}

// NewBindingKindMismatch creates a BND102 error
func NewBindingKindMismatch(loc ast.SourceLocation, call, slot int, kernel, want, got string) *GeneratorError {
	e := newError(
		ErrBindingKindMismatch,
		"argument_kind_mismatch",
		CategoryBinding,
		SeverityError,
		fmt.Sprintf("Call %d to kernel '%s', slot %d: expected a %s argument, got %s",
			call, kernel, slot, want, got),
		loc,
	)
	e.Kernel = kernel
	return e.WithCall(call).WithSlot(slot).WithExpected(want).WithActual(got)
}

// NewBindingSpaceMismatch creates a BND103 error
func NewBindingSpaceMismatch(loc ast.SourceLocation, call, slot int, kernel, quantity, want, got string) *GeneratorError {
	e := newError(
		ErrBindingSpaceMismatch,
		"function_space_mismatch",
		CategoryBinding,
		SeverityError,
		fmt.Sprintf("Call %d to kernel '%s', slot %d: quantity '%s' is on space '%s' but the descriptor requires '%s'",
			call, kernel, slot, quantity, got, want),
		loc,
	)
	e.Kernel = kernel
	e.Quantity = quantity
	return e.WithCall(call).WithSlot(slot).WithExpected(want).WithActual(got).
		WithSuggestion("no implicit space coercion exists; the actual quantity must live on the declared space")
}

// NewBindingLiteralNonScalar creates a BND104 error
func NewBindingLiteralNonScalar(loc ast.SourceLocation, call, slot int, kernel, literal string) *GeneratorError {
	e := newError(
		ErrBindingLiteralNonScalar,
		"literal_in_non_scalar_slot",
		CategoryBinding,
		SeverityError,
		fmt.Sprintf("Call %d to kernel '%s', slot %d: literal '%s' bound to a non-scalar slot",
			call, kernel, slot, literal),
		loc,
	)
	e.Kernel = kernel
	return e.WithCall(call).WithSlot(slot)
}

// NewBindingUnknownQuantity creates a BND105 error
func NewBindingUnknownQuantity(loc ast.SourceLocation, call, slot int, kernel, name string) *GeneratorError {
	e := newError(
		ErrBindingUnknownQuantity,
		"unknown_quantity",
		CategoryBinding,
		SeverityError,
		fmt.Sprintf("Call %d to kernel '%s', slot %d: quantity '%s' is not declared by the algorithm layer",
			call, kernel, slot, name),
		loc,
	)
	e.Kernel = kernel
	e.Quantity = name
	return e.WithCall(call).WithSlot(slot)
}

// NewBindingLiteralDataType creates a BND106 error for a literal whose
// lexical form does not fit the slot's declared data type
func NewBindingLiteralDataType(loc ast.SourceLocation, call, slot int, kernel, literal, want string) *GeneratorError {
	e := newError(
		ErrBindingDataType,
		"data_type_mismatch",
		CategoryBinding,
		SeverityError,
		fmt.Sprintf("Call %d to kernel '%s', slot %d: literal '%s' is not a valid %s value",
			call, kernel, slot, literal, want),
		loc,
	)
	e.Kernel = kernel
	return e.WithCall(call).WithSlot(slot).WithExpected(want).WithActual(literal)
}

// NewBindingDataType creates a BND106 error
func NewBindingDataType(loc ast.SourceLocation, call, slot int, kernel, quantity, want, got string) *GeneratorError {
	e := newError(
		ErrBindingDataType,
		"data_type_mismatch",
		CategoryBinding,
		SeverityError,
		fmt.Sprintf("Call %d to kernel '%s', slot %d: quantity '%s' has data type '%s' but the descriptor requires '%s'",
			call, kernel, slot, quantity, got, want),
		loc,
	)
	e.Kernel = kernel
	e.Quantity = quantity
	return e.WithCall(call).WithSlot(slot).WithExpected(want).WithActual(got)
}
