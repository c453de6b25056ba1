// Package binder matches each call site in an invoke unit against the
// declared contract of its kernel. Matching is strictly positional: slot i of
// the call binds to argument i of the descriptor, with no keyword or
// reordering semantics. Kind, data type, and function space must match
// exactly; there is no implicit space coercion.
package binder

import (
	"fmt"
	"strconv"

	"github.com/psykal-lang/psykal/internal/compiler/ast"
	"github.com/psykal-lang/psykal/internal/compiler/errors"
	"github.com/psykal-lang/psykal/internal/compiler/metadata"
	"github.com/psykal-lang/psykal/internal/mesh"
)

// BoundArgument pairs an argument spec with the actual quantity bound to it.
// Symbol is empty until the resolver assigns the internal driver-layer name.
type BoundArgument struct {
	Spec     *metadata.ArgumentSpec
	Quantity *metadata.Quantity // nil when the actual is a literal
	Literal  string             // source text of the literal, if any
	Symbol   string             // internal name, assigned by the resolver
}

// IsLiteral reports whether the actual is a literal constant
func (b *BoundArgument) IsLiteral() bool {
	return b.Quantity == nil
}

// Name returns the logical name of the actual: the quantity name, or the
// literal text for literals.
func (b *BoundArgument) Name() string {
	if b.Quantity != nil {
		return b.Quantity.Name
	}
	return b.Literal
}

// BoundCall is one kernel call with every slot bound
type BoundCall struct {
	Index      int
	Descriptor *metadata.KernelDescriptor
	Args       []*BoundArgument
	Loc        ast.SourceLocation
}

// BoundUnit is a fully bound invoke unit, ready for symbol resolution and
// access analysis.
type BoundUnit struct {
	Unit  *ast.InvokeUnit
	Calls []*BoundCall
}

// Binder binds invoke units against a descriptor registry and the quantity
// declarations of the algorithm layer.
type Binder struct {
	registry   *metadata.Registry
	quantities map[string]*metadata.Quantity
}

// New creates a binder over the given registry and declared quantities
func New(registry *metadata.Registry, quantities []*metadata.Quantity) *Binder {
	m := make(map[string]*metadata.Quantity, len(quantities))
	for _, q := range quantities {
		m[q.Name] = q
	}
	return &Binder{registry: registry, quantities: m}
}

// Bind binds every call of the unit, failing on the first incompatibility.
// No partial binding survives an error.
func (b *Binder) Bind(unit *ast.InvokeUnit) (*BoundUnit, *errors.GeneratorError) {
	bound := &BoundUnit{Unit: unit}
	for i, call := range unit.Calls {
		bc, err := b.bindCall(i, call)
		if err != nil {
			return nil, err.WithUnit(unit.Name)
		}
		bound.Calls = append(bound.Calls, bc)
	}
	return bound, nil
}

func (b *Binder) bindCall(index int, call *ast.KernelCall) (*BoundCall, *errors.GeneratorError) {
	desc, ok := b.registry.Lookup(call.Kernel)
	if !ok {
		return nil, errors.NewBindingUnknownKernel(call.Loc, index, call.Kernel)
	}
	if len(call.Args) != len(desc.Args) {
		return nil, errors.NewBindingArgCount(call.Loc, index, desc.Name,
			len(desc.Args), len(call.Args))
	}

	bc := &BoundCall{Index: index, Descriptor: desc, Loc: call.Loc}
	for slot, actual := range call.Args {
		arg, err := b.bindSlot(index, slot, desc, actual)
		if err != nil {
			return nil, err
		}
		bc.Args = append(bc.Args, arg)
	}
	return bc, nil
}

func (b *Binder) bindSlot(call, slot int, desc *metadata.KernelDescriptor, actual ast.ArgExpr) (*BoundArgument, *errors.GeneratorError) {
	spec := desc.Args[slot]

	lit, isLiteral := actual.(*ast.LiteralExpr)
	if isLiteral {
		if spec.Kind != metadata.KindScalar {
			return nil, errors.NewBindingLiteralNonScalar(actual.Location(), call, slot,
				desc.Name, lit.Value)
		}
		if want := dataType(spec.DataType); !literalMatches(want, lit.Value) {
			return nil, errors.NewBindingLiteralDataType(actual.Location(), call, slot,
				desc.Name, lit.Value, string(want))
		}
		return &BoundArgument{Spec: spec, Literal: lit.Value}, nil
	}

	name := actual.(*ast.NameExpr)
	q, ok := b.quantities[name.Name]
	if !ok {
		return nil, errors.NewBindingUnknownQuantity(actual.Location(), call, slot,
			desc.Name, name.Name)
	}

	if q.Kind != spec.Kind {
		return nil, errors.NewBindingKindMismatch(actual.Location(), call, slot,
			desc.Name, kindLabel(spec.Kind, spec.VectorLength), kindLabel(q.Kind, q.VectorLength))
	}
	if spec.Kind == metadata.KindFieldVector && q.VectorLength != spec.VectorLength {
		return nil, errors.NewBindingKindMismatch(actual.Location(), call, slot,
			desc.Name, kindLabel(spec.Kind, spec.VectorLength), kindLabel(q.Kind, q.VectorLength))
	}

	if dataType(q.DataType) != dataType(spec.DataType) {
		return nil, errors.NewBindingDataType(actual.Location(), call, slot,
			desc.Name, q.Name, string(dataType(spec.DataType)), string(dataType(q.DataType)))
	}

	if err := b.checkSpaces(call, slot, desc, spec, q, actual.Location()); err != nil {
		return nil, err
	}

	return &BoundArgument{Spec: spec, Quantity: q}, nil
}

// checkSpaces enforces exact function-space compatibility. The any-space tags
// are the only declared wildcards: any-space accepts every supported space,
// any-discontinuous-space accepts every discontinuous one.
func (b *Binder) checkSpaces(call, slot int, desc *metadata.KernelDescriptor, spec *metadata.ArgumentSpec, q *metadata.Quantity, loc ast.SourceLocation) *errors.GeneratorError {
	if spec.Kind.IsField() {
		if !spaceMatches(spec.Space, q.Space) {
			return errors.NewBindingSpaceMismatch(loc, call, slot, desc.Name, q.Name,
				spec.Space, q.Space)
		}
		return nil
	}
	if spec.Kind.IsOperator() {
		if !spaceMatches(spec.ToSpace, q.ToSpace) {
			return errors.NewBindingSpaceMismatch(loc, call, slot, desc.Name, q.Name,
				spec.ToSpace, q.ToSpace)
		}
		if !spaceMatches(spec.FromSpace, q.FromSpace) {
			return errors.NewBindingSpaceMismatch(loc, call, slot, desc.Name, q.Name,
				spec.FromSpace, q.FromSpace)
		}
	}
	return nil
}

func spaceMatches(declared, actual string) bool {
	switch declared {
	case "any-space":
		_, known := metadata.SpaceContinuity(actual)
		return known
	case "any-discontinuous-space":
		c, known := metadata.SpaceContinuity(actual)
		return known && c == mesh.Discontinuous
	default:
		return declared == actual
	}
}

func dataType(t metadata.DataType) metadata.DataType {
	if t == "" {
		return metadata.TypeReal
	}
	return t
}

// literalMatches reports whether a literal's lexical form is assignable to
// the declared data type. An integer literal is a valid real; a fractional
// literal is not a valid integer.
func literalMatches(t metadata.DataType, text string) bool {
	switch t {
	case metadata.TypeInteger:
		_, err := strconv.ParseInt(text, 10, 64)
		return err == nil
	case metadata.TypeReal:
		_, err := strconv.ParseFloat(text, 64)
		return err == nil
	case metadata.TypeLogical:
		return text == ".true." || text == ".false."
	}
	return false
}

func kindLabel(kind metadata.ArgKind, vectorLength int) string {
	if kind == metadata.KindFieldVector && vectorLength > 0 {
		return fmt.Sprintf("%s(%d)", kind, vectorLength)
	}
	return string(kind)
}
