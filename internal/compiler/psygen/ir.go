// Package psygen synthesizes the driver routine for a validated, bound,
// hazard-annotated invoke unit. The output is a neutral instruction sequence
// - acquire-iteration-space, halo-refresh, kernel-call, reduce - not target
// language text, so that parallel-directive insertion remains a separate,
// later pass.
package psygen

import (
	"fmt"
	"strings"

	"github.com/psykal-lang/psykal/internal/compiler/metadata"
)

// Instruction is one step of the synthesized driver routine
type Instruction interface {
	instr()
	// Render returns the stable textual form of the instruction. Rendering
	// the same schedule twice yields byte-identical output.
	Render() string
}

// AcquireSpace acquires the iteration-space descriptor and dof map of one
// function space, bound to the resolver-issued symbols.
type AcquireSpace struct {
	Space  string
	Ndf    string
	Undf   string
	Dofmap string
}

func (a *AcquireSpace) instr() {}

// Render implements Instruction.
func (a *AcquireSpace) Render() string {
	return fmt.Sprintf("acquire_space %s (%s, %s, %s)", a.Space, a.Ndf, a.Undf, a.Dofmap)
}

// HaloExchange requests a clean halo for one quantity at the given depth,
// before the first call that reads it.
type HaloExchange struct {
	Quantity string
	Symbol   string
	Depth    int
}

func (h *HaloExchange) instr() {}

// Render implements Instruction.
func (h *HaloExchange) Render() string {
	return fmt.Sprintf("halo_exchange(%s, depth=%d)", h.Symbol, h.Depth)
}

// KernelLaunch invokes one kernel with the internal symbols assigned by the
// resolver, in descriptor slot order followed by the per-space extents.
type KernelLaunch struct {
	Kernel string
	Args   []string
}

func (k *KernelLaunch) instr() {}

// Render implements Instruction.
func (k *KernelLaunch) Render() string {
	return fmt.Sprintf("call %s(%s)", k.Kernel, strings.Join(k.Args, ", "))
}

// Loop is one iteration construct over the unit's mesh entities. Body calls
// appear in the order certified by the analyzer.
type Loop struct {
	Granularity metadata.Granularity
	Counter     string
	Bound       string
	Body        []*KernelLaunch
}

func (l *Loop) instr() {}

// Render implements Instruction.
func (l *Loop) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "loop %s (%s, 1, %s):", l.Granularity, l.Counter, l.Bound)
	for _, call := range l.Body {
		b.WriteString("\n  ")
		b.WriteString(call.Render())
	}
	return b.String()
}

// Reduce combines the per-call contributions of one reduction quantity once
// every contributing call has executed.
type Reduce struct {
	Quantity    string
	Accumulator string
	Kind        metadata.AccessMode
}

func (r *Reduce) instr() {}

// Render implements Instruction.
func (r *Reduce) Render() string {
	return fmt.Sprintf("reduce %s(%s, %s)", r.Kind, r.Quantity, r.Accumulator)
}

// Schedule is the synthesized driver routine for one invoke unit
type Schedule struct {
	Unit         string
	Instructions []Instruction
}

// Render returns the textual form of the whole schedule. Output is
// deterministic and suitable for golden-file comparison.
func (s *Schedule) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invoke %s:\n", s.Unit)
	for _, instr := range s.Instructions {
		for _, line := range strings.Split(instr.Render(), "\n") {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
