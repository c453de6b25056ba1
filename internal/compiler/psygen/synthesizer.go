package psygen

import (
	"sort"

	"github.com/psykal-lang/psykal/internal/compiler/analysis"
	"github.com/psykal-lang/psykal/internal/compiler/binder"
	"github.com/psykal-lang/psykal/internal/compiler/errors"
	"github.com/psykal-lang/psykal/internal/compiler/metadata"
	"github.com/psykal-lang/psykal/internal/compiler/symbols"
)

// Synthesizer emits driver schedules. It never reorders or fuses calls
// beyond what the analyzer has certified: calls are emitted in call-site
// order, and consecutive equal-granularity calls share one loop only when no
// ordering constraint links them.
type Synthesizer struct{}

// New creates a synthesizer
func New() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize emits the driver routine for one unit. The unit must already be
// bound, resolved, and analyzed; synthesis itself cannot fail unless the
// inputs disagree, which indicates a bug upstream.
func (s *Synthesizer) Synthesize(bound *binder.BoundUnit, table *symbols.SymbolTable, report *analysis.Report) (*Schedule, *errors.GeneratorError) {
	sched := &Schedule{Unit: bound.Unit.Name}

	s.emitAcquires(bound, table, sched)

	emitted := make(map[string]bool) // quantities whose halo refresh is placed
	for _, group := range groupCalls(bound.Calls, report) {
		s.emitHalos(group, table, report, emitted, sched)
		s.emitGroup(group, table, sched)
	}

	s.emitReductions(table, report, sched)
	return sched, nil
}

// emitAcquires acquires every touched space's iteration descriptor and dof
// map, in sorted space order.
func (s *Synthesizer) emitAcquires(bound *binder.BoundUnit, table *symbols.SymbolTable, sched *Schedule) {
	for _, space := range symbols.TouchedSpaces(bound) {
		ndf, _ := table.Internal(symbols.KeyNdf(space))
		undf, _ := table.Internal(symbols.KeyUndf(space))
		dofmap, _ := table.Internal(symbols.KeyDofmap(space))
		sched.Instructions = append(sched.Instructions, &AcquireSpace{
			Space:  space,
			Ndf:    ndf,
			Undf:   undf,
			Dofmap: dofmap,
		})
	}
}

// emitHalos places each required halo refresh immediately before the group
// containing the first call that reads the quantity. Each quantity is
// refreshed at most once, at its aggregate depth; ties in one group are
// broken by symbol name so output is byte-stable.
func (s *Synthesizer) emitHalos(group []*binder.BoundCall, table *symbols.SymbolTable, report *analysis.Report, emitted map[string]bool, sched *Schedule) {
	first, last := group[0].Index, group[len(group)-1].Index

	var due []*analysis.HaloRequirement
	for _, req := range report.Halos {
		if emitted[req.Quantity] {
			continue
		}
		if req.FirstRead >= first && req.FirstRead <= last {
			due = append(due, req)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].FirstRead != due[j].FirstRead {
			return due[i].FirstRead < due[j].FirstRead
		}
		si, _ := table.Symbol(due[i].Quantity)
		sj, _ := table.Symbol(due[j].Quantity)
		return si < sj
	})
	for _, req := range due {
		sym, _ := table.Symbol(req.Quantity)
		sched.Instructions = append(sched.Instructions, &HaloExchange{
			Quantity: req.Quantity,
			Symbol:   sym,
			Depth:    req.Depth,
		})
		emitted[req.Quantity] = true
	}
}

// emitGroup emits one iteration construct for a run of equal-granularity
// calls, or bare launches for full-domain kernels.
func (s *Synthesizer) emitGroup(group []*binder.BoundCall, table *symbols.SymbolTable, sched *Schedule) {
	granularity := group[0].Descriptor.Granularity

	launches := make([]*KernelLaunch, 0, len(group))
	for _, call := range group {
		launches = append(launches, s.launch(call, table))
	}

	if granularity == metadata.GranularityDomain {
		for _, l := range launches {
			sched.Instructions = append(sched.Instructions, l)
		}
		return
	}

	counter, bound := loopSymbols(granularity, table)
	sched.Instructions = append(sched.Instructions, &Loop{
		Granularity: granularity,
		Counter:     counter,
		Bound:       bound,
		Body:        launches,
	})
}

// launch assembles the marshalled argument list of one kernel call: the
// column count for column kernels, each bound symbol in slot order with any
// stencil map following its field, then the dimensioned extents of every
// space the call's actuals live on, in first-appearance order.
func (s *Synthesizer) launch(call *binder.BoundCall, table *symbols.SymbolTable) *KernelLaunch {
	var args []string

	if call.Descriptor.Granularity == metadata.GranularityCellColumn {
		if nlayers, ok := table.Internal(symbols.KeyNLayers); ok {
			args = append(args, nlayers)
		}
	}

	var spaceOrder []string
	seen := make(map[string]bool)
	for _, arg := range call.Args {
		args = append(args, arg.Symbol)
		if arg.Spec.Stencil != nil {
			if smap, ok := table.Internal(symbols.KeyStencilMap(arg.Name())); ok {
				args = append(args, smap)
			}
		}
		if arg.IsLiteral() {
			continue
		}
		q := arg.Quantity
		for _, space := range []string{q.Space, q.ToSpace, q.FromSpace} {
			if space != "" && !seen[space] {
				seen[space] = true
				spaceOrder = append(spaceOrder, space)
			}
		}
	}

	for _, space := range spaceOrder {
		ndf, _ := table.Internal(symbols.KeyNdf(space))
		undf, _ := table.Internal(symbols.KeyUndf(space))
		dofmap, _ := table.Internal(symbols.KeyDofmap(space))
		args = append(args, ndf, undf, dofmap)
	}

	return &KernelLaunch{Kernel: call.Descriptor.Name, Args: args}
}

// emitReductions emits one combine step per reduced quantity, sorted by the
// accumulator's internal symbol name so repeated generation is byte-stable.
func (s *Synthesizer) emitReductions(table *symbols.SymbolTable, report *analysis.Report, sched *Schedule) {
	type reduction struct {
		quantity    string
		accumulator string
		kind        metadata.AccessMode
	}
	var reductions []reduction
	for quantity, kind := range report.Reductions {
		acc, _ := table.Internal(symbols.KeyReduction(quantity))
		reductions = append(reductions, reduction{quantity: quantity, accumulator: acc, kind: kind})
	}
	sort.Slice(reductions, func(i, j int) bool {
		return reductions[i].accumulator < reductions[j].accumulator
	})
	for _, r := range reductions {
		sym, _ := table.Symbol(r.quantity)
		sched.Instructions = append(sched.Instructions, &Reduce{
			Quantity:    sym,
			Accumulator: r.accumulator,
			Kind:        r.kind,
		})
	}
}

// groupCalls splits the unit's calls into consecutive runs that may legally
// share one loop. A run never crosses a granularity change, and it ends at
// any call the analyzer ordered after a call already in the run: fusing such
// a pair would interleave their iterations and lose the ordering the
// constraint exists to enforce.
func groupCalls(calls []*binder.BoundCall, report *analysis.Report) [][]*binder.BoundCall {
	var groups [][]*binder.BoundCall
	for _, call := range calls {
		n := len(groups)
		if n > 0 && fusable(groups[n-1], call, report) {
			groups[n-1] = append(groups[n-1], call)
			continue
		}
		groups = append(groups, []*binder.BoundCall{call})
	}
	return groups
}

// fusable reports whether a call may join the loop of the preceding group
func fusable(group []*binder.BoundCall, call *binder.BoundCall, report *analysis.Report) bool {
	if group[0].Descriptor.Granularity != call.Descriptor.Granularity {
		return false
	}
	for _, prev := range group {
		if report.Ordered(prev.Index, call.Index) {
			return false
		}
	}
	return true
}

func loopSymbols(g metadata.Granularity, table *symbols.SymbolTable) (counter, bound string) {
	switch g {
	case metadata.GranularityDof:
		counter, _ = table.Internal(symbols.KeyDof)
		bound, _ = table.Internal(symbols.KeyNDofs)
	default:
		counter, _ = table.Internal(symbols.KeyCell)
		bound, _ = table.Internal(symbols.KeyNCell)
	}
	return counter, bound
}
