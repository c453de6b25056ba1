package metadata

import (
	"fmt"

	"github.com/psykal-lang/psykal/internal/compiler/errors"
	"github.com/psykal-lang/psykal/internal/mesh"
)

// Validate checks the descriptor against the construction-time rules. It
// fails fast on the first violation; a descriptor that passes never produces
// a metadata error later in the pipeline.
func (d *KernelDescriptor) Validate() *errors.GeneratorError {
	if d.Name == "" {
		return errors.NewMetadataMalformed("<unnamed>", "kernel name is required")
	}
	if !d.Granularity.Valid() {
		return errors.NewMetadataGranularity(d.Name, string(d.Granularity))
	}
	if !d.Quadrature.Valid() {
		return errors.NewMetadataMalformed(d.Name,
			fmt.Sprintf("unknown quadrature shape '%s'", d.Quadrature))
	}
	if len(d.Args) == 0 {
		return errors.NewMetadataMalformed(d.Name, "kernel declares no arguments")
	}
	if d.ProcedureArity != 0 && d.ProcedureArity != len(d.Args) {
		return errors.NewMetadataMalformed(d.Name,
			fmt.Sprintf("procedure arity %d does not match %d declared argument(s)",
				d.ProcedureArity, len(d.Args)))
	}

	for _, imp := range d.Imports {
		if imp == "" {
			return errors.NewMetadataMalformed(d.Name, "imported symbol name is empty")
		}
	}

	updates := 0
	for i, arg := range d.Args {
		if err := d.validateArg(i, arg); err != nil {
			return err
		}
		if arg.Access.WritesData() {
			updates++
		}
	}
	if updates == 0 {
		return errors.NewMetadataMalformed(d.Name, "kernel updates none of its arguments")
	}
	return nil
}

func (d *KernelDescriptor) validateArg(slot int, arg *ArgumentSpec) *errors.GeneratorError {
	if !arg.Kind.Valid() {
		return errors.NewMetadataMalformed(d.Name,
			fmt.Sprintf("argument %d has unknown kind '%s'", slot, arg.Kind))
	}
	if arg.DataType != "" && !arg.DataType.Valid() {
		return errors.NewMetadataMalformed(d.Name,
			fmt.Sprintf("argument %d has unknown data type '%s'", slot, arg.DataType))
	}
	if !arg.Access.Valid() {
		return errors.NewMetadataMalformed(d.Name,
			fmt.Sprintf("argument %d has unknown access mode '%s'", slot, arg.Access))
	}

	switch arg.Kind {
	case KindScalar:
		return d.validateScalar(slot, arg)
	case KindField, KindFieldVector:
		return d.validateField(slot, arg)
	case KindOperator, KindColumnwiseOperator:
		return d.validateOperator(slot, arg)
	}
	return nil
}

// validateScalar enforces that scalars are read-only or reduction targets and
// carry no space or stencil metadata.
func (d *KernelDescriptor) validateScalar(slot int, arg *ArgumentSpec) *errors.GeneratorError {
	if arg.Access != AccessRead && !arg.Access.IsReduction() {
		return errors.NewMetadataAccessKind(d.Name, slot, string(arg.Kind), string(arg.Access))
	}
	if arg.Space != "" || arg.ToSpace != "" || arg.FromSpace != "" {
		return errors.NewMetadataMalformed(d.Name,
			fmt.Sprintf("argument %d: scalar arguments carry no function space", slot))
	}
	if arg.Stencil != nil {
		return errors.NewMetadataStencilAccess(d.Name, slot, string(arg.Access))
	}
	if arg.VectorLength != 0 {
		return errors.NewMetadataMalformed(d.Name,
			fmt.Sprintf("argument %d: scalar arguments have no vector length", slot))
	}
	return nil
}

// validateField enforces the single-space rule, the continuity cross-check,
// and the stencil-on-read rule.
func (d *KernelDescriptor) validateField(slot int, arg *ArgumentSpec) *errors.GeneratorError {
	if arg.Access.IsReduction() {
		return errors.NewMetadataAccessKind(d.Name, slot, string(arg.Kind), string(arg.Access))
	}
	spaces := 0
	if arg.Space != "" {
		spaces++
	}
	if arg.ToSpace != "" || arg.FromSpace != "" {
		spaces += 2
	}
	if spaces != 1 {
		return errors.NewMetadataFieldSpaces(d.Name, slot, spaces)
	}
	cont, known := SpaceContinuity(arg.Space)
	if !known {
		return errors.NewMetadataUnknownSpace(d.Name, slot, arg.Space)
	}

	switch arg.Access {
	case AccessIncrement:
		if cont != mesh.Continuous {
			return errors.NewMetadataContinuity(d.Name, slot, string(arg.Access), arg.Space, cont.String())
		}
	case AccessWrite, AccessReadWrite:
		if cont != mesh.Discontinuous {
			return errors.NewMetadataContinuity(d.Name, slot, string(arg.Access), arg.Space, cont.String())
		}
	}

	if arg.Kind == KindFieldVector && arg.VectorLength < 2 {
		return errors.NewMetadataVectorLength(d.Name, slot, arg.VectorLength)
	}
	if arg.Kind == KindField && arg.VectorLength != 0 {
		return errors.NewMetadataMalformed(d.Name,
			fmt.Sprintf("argument %d: vector length declared on a plain field", slot))
	}

	if arg.Stencil != nil {
		if arg.Access != AccessRead {
			return errors.NewMetadataStencilAccess(d.Name, slot, string(arg.Access))
		}
		if !arg.Stencil.Shape.Valid() {
			return errors.NewMetadataMalformed(d.Name,
				fmt.Sprintf("argument %d: unknown stencil shape '%s'", slot, arg.Stencil.Shape))
		}
		if arg.Stencil.Extent < 1 {
			return errors.NewMetadataMalformed(d.Name,
				fmt.Sprintf("argument %d: stencil extent must be at least 1, found %d",
					slot, arg.Stencil.Extent))
		}
	}
	return nil
}

// validateOperator enforces the two-space rule. Operators are cell-local, so
// write and read-write are legal regardless of space continuity; increment
// and reductions are not defined for them.
func (d *KernelDescriptor) validateOperator(slot int, arg *ArgumentSpec) *errors.GeneratorError {
	if arg.Access == AccessIncrement || arg.Access.IsReduction() {
		return errors.NewMetadataAccessKind(d.Name, slot, string(arg.Kind), string(arg.Access))
	}
	if arg.Space != "" {
		return errors.NewMetadataOperatorSpaces(d.Name, slot,
			"operator arguments declare to_space and from_space, not a single space")
	}
	if arg.ToSpace == "" || arg.FromSpace == "" {
		return errors.NewMetadataOperatorSpaces(d.Name, slot,
			"operator arguments require both a to-space and a from-space")
	}
	if _, known := SpaceContinuity(arg.ToSpace); !known {
		return errors.NewMetadataUnknownSpace(d.Name, slot, arg.ToSpace)
	}
	if _, known := SpaceContinuity(arg.FromSpace); !known {
		return errors.NewMetadataUnknownSpace(d.Name, slot, arg.FromSpace)
	}
	if arg.Stencil != nil {
		return errors.NewMetadataStencilAccess(d.Name, slot, string(arg.Access))
	}
	return nil
}

// ValidateQuantity checks an algorithm-layer quantity declaration for
// internal consistency before binding sees it.
func ValidateQuantity(q *Quantity) *errors.GeneratorError {
	if q.Name == "" {
		return errors.NewMetadataMalformed("<quantity>", "quantity name is required")
	}
	if !q.Kind.Valid() {
		return errors.NewMetadataMalformed(q.Name,
			fmt.Sprintf("quantity '%s' has unknown kind '%s'", q.Name, q.Kind))
	}
	if q.DataType != "" && !q.DataType.Valid() {
		return errors.NewMetadataMalformed(q.Name,
			fmt.Sprintf("quantity '%s' has unknown data type '%s'", q.Name, q.DataType))
	}
	if q.Kind.IsField() {
		if q.Space == "" {
			return errors.NewMetadataMalformed(q.Name,
				fmt.Sprintf("field quantity '%s' declares no function space", q.Name))
		}
		if _, known := SpaceContinuity(q.Space); !known {
			return errors.NewMetadataMalformed(q.Name,
				fmt.Sprintf("quantity '%s' is on unknown space '%s'", q.Name, q.Space))
		}
	}
	if q.Kind.IsOperator() {
		if q.ToSpace == "" || q.FromSpace == "" {
			return errors.NewMetadataMalformed(q.Name,
				fmt.Sprintf("operator quantity '%s' requires both to_space and from_space", q.Name))
		}
	}
	return nil
}
