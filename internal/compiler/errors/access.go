package errors

import (
	"fmt"

	"github.com/psykal-lang/psykal/internal/compiler/ast"
)

// Access analysis error codes (ACC300-399)
const (
	// ErrAccessReductionConflict indicates two incompatible reduction kinds on one quantity
	ErrAccessReductionConflict ErrorCode = "ACC300"
	// ErrAccessReductionMixed indicates a quantity both reduced and accessed
	// non-reductively within one unit
	ErrAccessReductionMixed ErrorCode = "ACC301"
	// ErrAccessHaloUnavailable indicates a required halo depth the mesh cannot provide
	ErrAccessHaloUnavailable ErrorCode = "ACC302"
)

// NewAccessReductionConflict creates an ACC300 error
func NewAccessReductionConflict(unit, quantity, firstKind, secondKind string, calls []int) *GeneratorError {
	e := newError(
		ErrAccessReductionConflict,
		"reduction_kind_conflict",
		CategoryAccess,
		SeverityError,
		fmt.Sprintf("Invoke '%s': quantity '%s' is reduced with both '%s' and '%s'",
			unit, quantity, firstKind, secondKind),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Quantity = quantity
	e.Calls = calls
	return e.WithUnit(unit)
}

// NewAccessReductionMixed creates an ACC301 error
func NewAccessReductionMixed(unit, quantity, access string, calls []int) *GeneratorError {
	e := newError(
		ErrAccessReductionMixed,
		"reduction_access_mixed",
		CategoryAccess,
		SeverityError,
		fmt.Sprintf("Invoke '%s': quantity '%s' is both reduced and accessed with '%s' in the same unit",
			unit, quantity, access),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Quantity = quantity
	e.Calls = calls
	return e.WithUnit(unit)
}

// NewAccessHaloUnavailable creates an ACC302 error
func NewAccessHaloUnavailable(unit, quantity string, want, available int) *GeneratorError {
	e := newError(
		ErrAccessHaloUnavailable,
		"halo_depth_unavailable",
		CategoryAccess,
		SeverityError,
		fmt.Sprintf("Invoke '%s': quantity '%s' requires halo depth %d but the mesh provides at most %d",
			unit, quantity, want, available),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Quantity = quantity
	return e.WithUnit(unit).
		WithExpected(fmt.Sprintf("halo depth >= %d", want)).
		WithActual(fmt.Sprintf("halo depth %d", available))
}
