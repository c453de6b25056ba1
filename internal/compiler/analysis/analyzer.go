// Package analysis computes, for every quantity an invoke unit touches, the
// ordered sequence of accesses across the unit's kernel calls, and derives
// from it the ordering constraints, halo requirements, and reduction steps
// the synthesized driver must honor. Any hazard missed here becomes a data
// race in the generated code, so the analysis is conservative: an ordering
// is imposed unless the mesh collaborator certifies it unnecessary.
package analysis

import (
	"sort"

	"github.com/psykal-lang/psykal/internal/compiler/binder"
	"github.com/psykal-lang/psykal/internal/compiler/errors"
	"github.com/psykal-lang/psykal/internal/compiler/metadata"
	"github.com/psykal-lang/psykal/internal/mesh"
)

// Touch is one access to a quantity: which call touched it and how
type Touch struct {
	Call   int
	Access metadata.AccessMode
}

// AccessTrace is the full access history of one quantity across the unit,
// in call order.
type AccessTrace struct {
	Quantity string
	Space    string // empty for scalars and operators
	Touches  []Touch
}

// HazardKind classifies an ordering constraint
type HazardKind string

const (
	// HazardReadAfterWrite orders a read after the write that feeds it
	HazardReadAfterWrite HazardKind = "read-after-write"
	// HazardWriteAfterRead orders a write after an earlier read
	HazardWriteAfterRead HazardKind = "write-after-read"
	// HazardWriteAfterWrite orders two writes of one quantity
	HazardWriteAfterWrite HazardKind = "write-after-write"
	// HazardIncrementOrder serializes increments lacking a disjointness guarantee
	HazardIncrementOrder HazardKind = "increment-serialization"
	// HazardReductionOrder serializes contributing reduction calls
	HazardReductionOrder HazardKind = "reduction-serialization"
)

// OrderConstraint requires call Before to complete before call After, on
// account of one quantity.
type OrderConstraint struct {
	Before   int
	After    int
	Quantity string
	Kind     HazardKind
}

// HaloRequirement is a required halo refresh for one quantity: the depth to
// request and the call whose read it must precede.
type HaloRequirement struct {
	Quantity  string
	Depth     int
	FirstRead int
}

// Report is the complete hazard annotation of one unit, computed eagerly and
// fully before synthesis begins.
type Report struct {
	// Traces maps each quantity to its access history
	Traces map[string]*AccessTrace
	// Constraints are the ordering constraints, in discovery order
	Constraints []OrderConstraint
	// Halos are required halo refreshes, keyed by quantity
	Halos map[string]*HaloRequirement
	// Reductions records the reduction kind per reduced quantity
	Reductions map[string]metadata.AccessMode
}

// Ordered reports whether a direct ordering constraint exists between two
// calls. Later passes may only fuse or reorder call pairs for which this is
// false.
func (r *Report) Ordered(before, after int) bool {
	for _, c := range r.Constraints {
		if c.Before == before && c.After == after {
			return true
		}
	}
	return false
}

// Analyzer computes hazard reports against a mesh topology
type Analyzer struct {
	topology mesh.Topology
}

// New creates an analyzer that consults the given topology for
// dof-disjointness and halo availability facts.
func New(topology mesh.Topology) *Analyzer {
	return &Analyzer{topology: topology}
}

// Analyze builds the hazard report for a bound unit. It fails with an access
// conflict when one quantity is reduced with incompatible kinds, or mixes
// reduction with any other access, within the unit.
func (a *Analyzer) Analyze(bound *binder.BoundUnit) (*Report, *errors.GeneratorError) {
	report := &Report{
		Traces:     make(map[string]*AccessTrace),
		Halos:      make(map[string]*HaloRequirement),
		Reductions: make(map[string]metadata.AccessMode),
	}

	a.buildTraces(bound, report)
	if err := a.collectReductions(bound.Unit.Name, report); err != nil {
		return nil, err
	}
	a.deriveConstraints(report)
	if err := a.deriveHalos(bound, report); err != nil {
		return nil, err
	}
	return report, nil
}

// buildTraces records every (call, access) touch per quantity, in call order.
// Literals are values, not quantities, and carry no trace.
func (a *Analyzer) buildTraces(bound *binder.BoundUnit, report *Report) {
	for _, call := range bound.Calls {
		for _, arg := range call.Args {
			if arg.IsLiteral() {
				continue
			}
			name := arg.Name()
			trace, ok := report.Traces[name]
			if !ok {
				trace = &AccessTrace{Quantity: name, Space: arg.Quantity.Space}
				report.Traces[name] = trace
			}
			trace.Touches = append(trace.Touches, Touch{
				Call:   call.Index,
				Access: arg.Spec.Access,
			})
		}
	}
}

// collectReductions records the reduction kind per quantity. Two different
// kinds on one quantity are irreconcilable, and so is a reduction mixed with
// any other access, a plain read included: the combine step runs only after
// every loop, so no call inside the unit can observe the reduced value.
func (a *Analyzer) collectReductions(unit string, report *Report) *errors.GeneratorError {
	for _, name := range sortedQuantities(report) {
		trace := report.Traces[name]
		var kind metadata.AccessMode
		var kindCall int
		for _, touch := range trace.Touches {
			if !touch.Access.IsReduction() {
				continue
			}
			if kind == "" {
				kind, kindCall = touch.Access, touch.Call
				continue
			}
			if touch.Access != kind {
				return errors.NewAccessReductionConflict(unit, name,
					string(kind), string(touch.Access), []int{kindCall, touch.Call})
			}
		}
		if kind == "" {
			continue
		}
		for _, touch := range trace.Touches {
			if !touch.Access.IsReduction() {
				return errors.NewAccessReductionMixed(unit, name,
					string(touch.Access), []int{kindCall, touch.Call})
			}
		}
		report.Reductions[name] = kind
	}
	return nil
}

// deriveConstraints walks every trace pairwise and imposes call-order
// constraints for each hazard. Read-after-read never orders; a pair of
// increments on a space with a dof-disjointness guarantee is certified
// hazard-free by the mesh and left unordered. Quantities are visited in
// sorted order so the constraint list is identical run to run.
func (a *Analyzer) deriveConstraints(report *Report) {
	for _, name := range sortedQuantities(report) {
		trace := report.Traces[name]
		for i := 0; i < len(trace.Touches); i++ {
			for j := i + 1; j < len(trace.Touches); j++ {
				first, second := trace.Touches[i], trace.Touches[j]
				if first.Call == second.Call {
					continue
				}
				kind, hazardous := a.classify(trace, first.Access, second.Access)
				if !hazardous {
					continue
				}
				report.Constraints = append(report.Constraints, OrderConstraint{
					Before:   first.Call,
					After:    second.Call,
					Quantity: trace.Quantity,
					Kind:     kind,
				})
			}
		}
	}
}

func (a *Analyzer) classify(trace *AccessTrace, first, second metadata.AccessMode) (HazardKind, bool) {
	if first.IsReduction() && second.IsReduction() {
		return HazardReductionOrder, true
	}
	if first == metadata.AccessIncrement && second == metadata.AccessIncrement {
		if trace.Space != "" && a.topology.DisjointDofs(trace.Space) {
			return "", false
		}
		return HazardIncrementOrder, true
	}
	switch {
	case first.WritesData() && second.WritesData():
		return HazardWriteAfterWrite, true
	case first.WritesData() && second.ReadsData():
		return HazardReadAfterWrite, true
	case first.ReadsData() && second.WritesData():
		return HazardWriteAfterRead, true
	}
	return "", false
}

// sortedQuantities returns the traced quantity names in sorted order, so
// that passes over the trace map report errors and constraints
// deterministically.
func sortedQuantities(report *Report) []string {
	names := make([]string, 0, len(report.Traces))
	for name := range report.Traces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// deriveHalos aggregates, per quantity, the deepest halo any reading call
// requires: the declared stencil extent, or depth 1 for a plain read of a
// continuous-space field whose annexed dofs may be dirty. Only depths beyond
// what the mesh already guarantees clean become refresh requirements.
func (a *Analyzer) deriveHalos(bound *binder.BoundUnit, report *Report) *errors.GeneratorError {
	for _, call := range bound.Calls {
		for _, arg := range call.Args {
			if arg.IsLiteral() || !arg.Spec.Kind.IsField() {
				continue
			}
			if !arg.Spec.Access.ReadsData() {
				continue
			}
			depth := 0
			if arg.Spec.Stencil != nil {
				depth = arg.Spec.Stencil.Extent
			} else if c, ok := metadata.SpaceContinuity(arg.Quantity.Space); ok && c == mesh.Continuous {
				depth = 1
			}
			if depth == 0 {
				continue
			}
			if depth > a.topology.MaxHaloDepth() {
				return errors.NewAccessHaloUnavailable(bound.Unit.Name, arg.Name(),
					depth, a.topology.MaxHaloDepth())
			}
			if depth <= a.topology.HaloDepth(arg.Name()) {
				continue
			}
			req, ok := report.Halos[arg.Name()]
			if !ok {
				report.Halos[arg.Name()] = &HaloRequirement{
					Quantity:  arg.Name(),
					Depth:     depth,
					FirstRead: call.Index,
				}
				continue
			}
			if depth > req.Depth {
				req.Depth = depth
			}
			if call.Index < req.FirstRead {
				req.FirstRead = call.Index
			}
		}
	}
	return nil
}
