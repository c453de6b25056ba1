package errors

import (
	"fmt"

	"github.com/psykal-lang/psykal/internal/compiler/ast"
)

// Symbol resolution error codes (SYM200-299)
const (
	// ErrSymbolUserCollision indicates two distinct user quantities resolving to one internal symbol
	ErrSymbolUserCollision ErrorCode = "SYM200"
	// ErrSymbolRenameExhausted indicates deterministic renaming could not resolve a collision
	ErrSymbolRenameExhausted ErrorCode = "SYM201"
	// ErrSymbolTableClosed indicates a registration after the table was sealed for synthesis
	ErrSymbolTableClosed ErrorCode = "SYM202"
)

// NewSymbolUserCollision creates a SYM200 error
func NewSymbolUserCollision(unit, first, second string) *GeneratorError {
	e := newError(
		ErrSymbolUserCollision,
		"user_symbol_collision",
		CategorySymbols,
		SeverityError,
		fmt.Sprintf("Invoke '%s': distinct quantities '%s' and '%s' resolve to the same internal symbol",
			unit, first, second),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Names = []string{first, second}
	return e.WithUnit(unit)
}

// NewSymbolRenameExhausted creates a SYM201 error
func NewSymbolRenameExhausted(unit, internal string) *GeneratorError {
	e := newError(
		ErrSymbolRenameExhausted,
		"rename_exhausted",
		CategorySymbols,
		SeverityError,
		fmt.Sprintf("Invoke '%s': no collision-free rename exists for internal symbol '%s'",
			unit, internal),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Names = []string{internal}
	return e.WithUnit(unit)
}

// NewSymbolTableClosed creates a SYM202 error
func NewSymbolTableClosed(unit, name string) *GeneratorError {
	e := newError(
		ErrSymbolTableClosed,
		"symbol_table_closed",
		CategorySymbols,
		SeverityError,
		fmt.Sprintf("Invoke '%s': symbol '%s' registered after the table was sealed", unit, name),
		ast.SourceLocation{Line: 1, Column: 1},
	)
	e.Names = []string{name}
	return e.WithUnit(unit)
}
