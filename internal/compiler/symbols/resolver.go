package symbols

import (
	"sort"

	"github.com/psykal-lang/psykal/internal/compiler/binder"
	"github.com/psykal-lang/psykal/internal/compiler/errors"
	"github.com/psykal-lang/psykal/internal/compiler/metadata"
)

// Reserved-symbol keys for the loop machinery. Keys are stable lookup
// handles; the issued names may differ when a user quantity claims them.
const (
	KeyCell    = "cell"
	KeyNCell   = "ncell"
	KeyNLayers = "nlayers"
	KeyDof     = "df"
	KeyNDofs   = "ndofs"
)

// KeyNdf returns the reserved key for the dofs-per-cell count of a space
func KeyNdf(space string) string {
	return "ndf_" + space
}

// KeyUndf returns the reserved key for the unique-dof count of a space
func KeyUndf(space string) string {
	return "undf_" + space
}

// KeyDofmap returns the reserved key for the cell-to-dof map of a space
func KeyDofmap(space string) string {
	return "map_" + space
}

// KeyStencilMap returns the reserved key for a field's stencil dofmap
func KeyStencilMap(quantity string) string {
	return "stencil:" + quantity
}

// KeyReduction returns the reserved key for a reduction's local accumulator
func KeyReduction(quantity string) string {
	return "reduction:" + quantity
}

// Resolve builds the symbol table for a bound unit and fills in the internal
// symbol of every bound argument. Registration order is fixed - user
// quantities in first-reference order, kernel imports in call order, then
// reserved internals - so repeated resolution of the same unit yields
// byte-identical names.
func Resolve(bound *binder.BoundUnit) (*SymbolTable, *errors.GeneratorError) {
	t := NewSymbolTable(bound.Unit.Name)

	// User quantities keep their names verbatim.
	for _, call := range bound.Calls {
		for _, arg := range call.Args {
			if arg.IsLiteral() {
				continue
			}
			if err := t.RegisterUser(arg.Name()); err != nil {
				return nil, err
			}
		}
	}

	// Symbols imported by kernel modules share the unit namespace. An import
	// named like a bound quantity resolves to that quantity's verbatim entry;
	// registration is idempotent per name.
	for _, call := range bound.Calls {
		for _, imp := range call.Descriptor.Imports {
			if err := t.RegisterUser(imp); err != nil {
				return nil, err
			}
		}
	}

	if err := registerLoopSymbols(t, bound); err != nil {
		return nil, err
	}
	if err := registerSpaceSymbols(t, bound); err != nil {
		return nil, err
	}
	if err := registerStencilSymbols(t, bound); err != nil {
		return nil, err
	}
	if err := registerReductionSymbols(t, bound); err != nil {
		return nil, err
	}

	// Hand every bound argument its internal symbol. Literals pass through
	// as their source text.
	for _, call := range bound.Calls {
		for _, arg := range call.Args {
			if arg.IsLiteral() {
				arg.Symbol = arg.Literal
				continue
			}
			sym, _ := t.Symbol(arg.Name())
			arg.Symbol = sym
		}
	}

	if err := t.Seal(); err != nil {
		return nil, err
	}
	return t, nil
}

func registerLoopSymbols(t *SymbolTable, bound *binder.BoundUnit) *errors.GeneratorError {
	needCell, needLayers, needDof := false, false, false
	for _, call := range bound.Calls {
		switch call.Descriptor.Granularity {
		case metadata.GranularityCellColumn:
			needCell, needLayers = true, true
		case metadata.GranularityCell:
			needCell = true
		case metadata.GranularityDof:
			needDof = true
		}
	}
	if needCell {
		if _, err := t.RegisterInternal(KeyCell, "cell"); err != nil {
			return err
		}
		if _, err := t.RegisterInternal(KeyNCell, "ncell"); err != nil {
			return err
		}
	}
	if needLayers {
		if _, err := t.RegisterInternal(KeyNLayers, "nlayers"); err != nil {
			return err
		}
	}
	if needDof {
		if _, err := t.RegisterInternal(KeyDof, "df"); err != nil {
			return err
		}
		if _, err := t.RegisterInternal(KeyNDofs, "ndofs"); err != nil {
			return err
		}
	}
	return nil
}

// registerSpaceSymbols issues ndf/undf/dofmap symbols for every function
// space touched by the unit, in sorted space order.
func registerSpaceSymbols(t *SymbolTable, bound *binder.BoundUnit) *errors.GeneratorError {
	for _, space := range TouchedSpaces(bound) {
		if _, err := t.RegisterInternal(KeyNdf(space), "ndf_"+space); err != nil {
			return err
		}
		if _, err := t.RegisterInternal(KeyUndf(space), "undf_"+space); err != nil {
			return err
		}
		if _, err := t.RegisterInternal(KeyDofmap(space), "map_"+space); err != nil {
			return err
		}
	}
	return nil
}

func registerStencilSymbols(t *SymbolTable, bound *binder.BoundUnit) *errors.GeneratorError {
	seen := make(map[string]bool)
	for _, call := range bound.Calls {
		for _, arg := range call.Args {
			if arg.Spec.Stencil == nil || arg.IsLiteral() || seen[arg.Name()] {
				continue
			}
			seen[arg.Name()] = true
			key := KeyStencilMap(arg.Name())
			if _, err := t.RegisterInternal(key, arg.Name()+"_stencil_map"); err != nil {
				return err
			}
		}
	}
	return nil
}

func registerReductionSymbols(t *SymbolTable, bound *binder.BoundUnit) *errors.GeneratorError {
	seen := make(map[string]bool)
	for _, call := range bound.Calls {
		for _, arg := range call.Args {
			if !arg.Spec.Access.IsReduction() || arg.IsLiteral() || seen[arg.Name()] {
				continue
			}
			seen[arg.Name()] = true
			key := KeyReduction(arg.Name())
			if _, err := t.RegisterInternal(key, "l_"+arg.Name()); err != nil {
				return err
			}
		}
	}
	return nil
}

// TouchedSpaces returns every concrete function space referenced by the
// unit's actual quantities, sorted for deterministic iteration.
func TouchedSpaces(bound *binder.BoundUnit) []string {
	set := make(map[string]bool)
	for _, call := range bound.Calls {
		for _, arg := range call.Args {
			if arg.IsLiteral() {
				continue
			}
			q := arg.Quantity
			for _, s := range []string{q.Space, q.ToSpace, q.FromSpace} {
				if s != "" {
					set[s] = true
				}
			}
		}
	}
	spaces := make([]string, 0, len(set))
	for s := range set {
		spaces = append(spaces, s)
	}
	sort.Strings(spaces)
	return spaces
}
