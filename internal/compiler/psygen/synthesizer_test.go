package psygen

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psykal-lang/psykal/internal/compiler/analysis"
	"github.com/psykal-lang/psykal/internal/compiler/ast"
	"github.com/psykal-lang/psykal/internal/compiler/binder"
	"github.com/psykal-lang/psykal/internal/compiler/metadata"
	"github.com/psykal-lang/psykal/internal/compiler/symbols"
	"github.com/psykal-lang/psykal/internal/mesh"
)

// synthesize runs the whole downstream pipeline - bind, resolve, analyze,
// synthesize - over an in-memory unit.
func synthesize(t *testing.T, kernels []*metadata.KernelDescriptor, quantities []*metadata.Quantity, unitName string, calls ...*ast.KernelCall) *Schedule {
	t.Helper()
	registry := metadata.NewRegistry()
	for _, k := range kernels {
		require.Nil(t, registry.Register(k))
	}
	bound, err := binder.New(registry, quantities).Bind(&ast.InvokeUnit{Name: unitName, Calls: calls})
	require.Nil(t, err)
	table, err := symbols.Resolve(bound)
	require.Nil(t, err)
	report, err := analysis.New(&mesh.StaticTopology{
		Spaces:   metadata.StandardSpaces(),
		MaxDepth: 2,
	}).Analyze(bound)
	require.Nil(t, err)
	sched, err := New().Synthesize(bound, table, report)
	require.Nil(t, err)
	return sched
}

func timestepSchedule(t *testing.T) *Schedule {
	t.Helper()
	kernels := []*metadata.KernelDescriptor{
		{
			Name:        "advect",
			Granularity: metadata.GranularityCellColumn,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessReadWrite, Space: "wtheta"},
				{Kind: metadata.KindField, Access: metadata.AccessRead, Space: "w2",
					Stencil: &metadata.Stencil{Shape: metadata.StencilCross, Extent: 2}},
			},
		},
		{
			Name:        "integrate",
			Granularity: metadata.GranularityCellColumn,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessRead, Space: "wtheta"},
				{Kind: metadata.KindScalar, Access: metadata.AccessSum},
			},
		},
	}
	quantities := []*metadata.Quantity{
		{Name: "theta", Kind: metadata.KindField, Space: "wtheta"},
		{Name: "wind", Kind: metadata.KindField, Space: "w2"},
		{Name: "total", Kind: metadata.KindScalar},
	}
	return synthesize(t, kernels, quantities, "timestep",
		&ast.KernelCall{Kernel: "advect", Args: []ast.ArgExpr{
			&ast.NameExpr{Name: "theta"}, &ast.NameExpr{Name: "wind"},
		}},
		&ast.KernelCall{Kernel: "integrate", Args: []ast.ArgExpr{
			&ast.NameExpr{Name: "theta"}, &ast.NameExpr{Name: "total"},
		}},
	)
}

func TestSynthesize_TimestepGolden(t *testing.T) {
	sched := timestepSchedule(t)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "timestep", []byte(sched.Render()))
}

func TestSynthesize_ByteStable(t *testing.T) {
	first := timestepSchedule(t).Render()
	second := timestepSchedule(t).Render()
	assert.Equal(t, first, second, "repeated generation must be byte-identical")
}

func TestSynthesize_HazardFreeCallsShareLoop(t *testing.T) {
	// Two calls writing distinct fields and reading a shared one carry no
	// ordering constraint, so they fuse into a single loop in call order.
	kernels := []*metadata.KernelDescriptor{
		{
			Name:        "apply_source",
			Granularity: metadata.GranularityCellColumn,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessWrite, Space: "w3"},
				{Kind: metadata.KindField, Access: metadata.AccessRead, Space: "w3"},
			},
		},
	}
	quantities := []*metadata.Quantity{
		{Name: "heat", Kind: metadata.KindField, Space: "w3"},
		{Name: "moisture", Kind: metadata.KindField, Space: "w3"},
		{Name: "source", Kind: metadata.KindField, Space: "w3"},
	}
	sched := synthesize(t, kernels, quantities, "forcing",
		&ast.KernelCall{Kernel: "apply_source", Args: []ast.ArgExpr{
			&ast.NameExpr{Name: "heat"}, &ast.NameExpr{Name: "source"},
		}},
		&ast.KernelCall{Kernel: "apply_source", Args: []ast.ArgExpr{
			&ast.NameExpr{Name: "moisture"}, &ast.NameExpr{Name: "source"},
		}},
	)

	var loops []*Loop
	for _, instr := range sched.Instructions {
		if l, ok := instr.(*Loop); ok {
			loops = append(loops, l)
		}
	}
	require.Len(t, loops, 1)
	require.Len(t, loops[0].Body, 2)
	assert.Equal(t, "apply_source", loops[0].Body[0].Kernel)
	assert.Contains(t, loops[0].Body[0].Args, "heat")
	assert.Contains(t, loops[0].Body[1].Args, "moisture")
}

func TestSynthesize_OrderedCallsSplitLoops(t *testing.T) {
	// A write of f followed by a stencil read of f is order-constrained:
	// fusing both calls into one loop would let iteration i read neighbor
	// cells the writing call has not produced yet. Each call gets its own
	// loop, and the halo refresh for f sits between them.
	kernels := []*metadata.KernelDescriptor{
		{
			Name:        "produce",
			Granularity: metadata.GranularityCellColumn,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessWrite, Space: "w3"},
			},
		},
		{
			Name:        "consume",
			Granularity: metadata.GranularityCellColumn,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessWrite, Space: "wtheta"},
				{Kind: metadata.KindField, Access: metadata.AccessRead, Space: "w3",
					Stencil: &metadata.Stencil{Shape: metadata.StencilCross, Extent: 1}},
			},
		},
	}
	quantities := []*metadata.Quantity{
		{Name: "f", Kind: metadata.KindField, Space: "w3"},
		{Name: "g", Kind: metadata.KindField, Space: "wtheta"},
	}
	sched := synthesize(t, kernels, quantities, "relax",
		&ast.KernelCall{Kernel: "produce", Args: []ast.ArgExpr{&ast.NameExpr{Name: "f"}}},
		&ast.KernelCall{Kernel: "consume", Args: []ast.ArgExpr{
			&ast.NameExpr{Name: "g"}, &ast.NameExpr{Name: "f"},
		}},
	)

	loopAt := []int{}
	haloAt := -1
	for i, instr := range sched.Instructions {
		switch in := instr.(type) {
		case *Loop:
			require.Len(t, in.Body, 1)
			loopAt = append(loopAt, i)
		case *HaloExchange:
			assert.Equal(t, "f", in.Quantity)
			assert.Equal(t, 1, in.Depth)
			haloAt = i
		}
	}
	require.Len(t, loopAt, 2, "ordered calls must not share a loop:\n%s", sched.Render())
	require.GreaterOrEqual(t, haloAt, 0, "halo exchange missing:\n%s", sched.Render())
	assert.Greater(t, haloAt, loopAt[0], "halo must follow the writing loop")
	assert.Less(t, haloAt, loopAt[1], "halo must precede the reading loop")
}

func TestSynthesize_HaloPlacedBeforeFirstReadingLoop(t *testing.T) {
	sched := timestepSchedule(t)

	haloAt, loopAt := -1, -1
	for i, instr := range sched.Instructions {
		switch instr.(type) {
		case *HaloExchange:
			haloAt = i
		case *Loop:
			if loopAt == -1 {
				loopAt = i
			}
		}
	}
	require.GreaterOrEqual(t, haloAt, 0, "halo exchange missing")
	require.GreaterOrEqual(t, loopAt, 0, "loop missing")
	assert.Less(t, haloAt, loopAt, "halo exchange must precede the reading loop")

	// Exactly one refresh per quantity per depth level.
	count := 0
	for _, instr := range sched.Instructions {
		if h, ok := instr.(*HaloExchange); ok && h.Quantity == "wind" {
			count++
			assert.Equal(t, 2, h.Depth)
		}
	}
	assert.Equal(t, 1, count)
}

func TestSynthesize_ReductionsSortedByAccumulator(t *testing.T) {
	kernels := []*metadata.KernelDescriptor{
		{
			Name:        "extrema",
			Granularity: metadata.GranularityCellColumn,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessRead, Space: "w3"},
				{Kind: metadata.KindScalar, Access: metadata.AccessMax},
				{Kind: metadata.KindScalar, Access: metadata.AccessSum},
			},
		},
	}
	quantities := []*metadata.Quantity{
		{Name: "rho", Kind: metadata.KindField, Space: "w3"},
		{Name: "zpeak", Kind: metadata.KindScalar},
		{Name: "amass", Kind: metadata.KindScalar},
	}
	sched := synthesize(t, kernels, quantities, "extremes",
		&ast.KernelCall{Kernel: "extrema", Args: []ast.ArgExpr{
			&ast.NameExpr{Name: "rho"}, &ast.NameExpr{Name: "zpeak"}, &ast.NameExpr{Name: "amass"},
		}},
	)

	var reduces []*Reduce
	for _, instr := range sched.Instructions {
		if r, ok := instr.(*Reduce); ok {
			reduces = append(reduces, r)
		}
	}
	require.Len(t, reduces, 2)
	assert.Equal(t, "l_amass", reduces[0].Accumulator)
	assert.Equal(t, metadata.AccessSum, reduces[0].Kind)
	assert.Equal(t, "l_zpeak", reduces[1].Accumulator)
	assert.Equal(t, metadata.AccessMax, reduces[1].Kind)
}

func TestSynthesize_FullDomainKernelHasNoLoop(t *testing.T) {
	kernels := []*metadata.KernelDescriptor{
		{
			Name:        "set_constant",
			Granularity: metadata.GranularityDomain,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessWrite, Space: "w3"},
			},
		},
	}
	quantities := []*metadata.Quantity{
		{Name: "rho", Kind: metadata.KindField, Space: "w3"},
	}
	sched := synthesize(t, kernels, quantities, "setup",
		&ast.KernelCall{Kernel: "set_constant", Args: []ast.ArgExpr{&ast.NameExpr{Name: "rho"}}},
	)

	for _, instr := range sched.Instructions {
		if _, ok := instr.(*Loop); ok {
			t.Fatal("full-domain kernels are launched once, not looped")
		}
	}
	assert.Contains(t, sched.Render(), "call set_constant(rho")
}

func TestSynthesize_PerDofLoopSymbols(t *testing.T) {
	kernels := []*metadata.KernelDescriptor{
		{
			Name:        "axpy",
			Granularity: metadata.GranularityDof,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessIncrement, Space: "w0"},
				{Kind: metadata.KindField, Access: metadata.AccessRead, Space: "w0"},
			},
		},
	}
	quantities := []*metadata.Quantity{
		{Name: "y", Kind: metadata.KindField, Space: "w0"},
		{Name: "x", Kind: metadata.KindField, Space: "w0"},
	}
	sched := synthesize(t, kernels, quantities, "axpy_invoke",
		&ast.KernelCall{Kernel: "axpy", Args: []ast.ArgExpr{
			&ast.NameExpr{Name: "y"}, &ast.NameExpr{Name: "x"},
		}},
	)

	var loop *Loop
	for _, instr := range sched.Instructions {
		if l, ok := instr.(*Loop); ok {
			loop = l
		}
	}
	require.NotNil(t, loop)
	assert.Equal(t, metadata.GranularityDof, loop.Granularity)
	assert.Equal(t, "df", loop.Counter)
	assert.Equal(t, "ndofs", loop.Bound)
}

func TestSynthesize_GranularityChangeSplitsLoops(t *testing.T) {
	kernels := []*metadata.KernelDescriptor{
		{
			Name:        "column_kern",
			Granularity: metadata.GranularityCellColumn,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessWrite, Space: "w3"},
			},
		},
		{
			Name:        "dof_kern",
			Granularity: metadata.GranularityDof,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessIncrement, Space: "w0"},
			},
		},
	}
	quantities := []*metadata.Quantity{
		{Name: "rho", Kind: metadata.KindField, Space: "w3"},
		{Name: "chi", Kind: metadata.KindField, Space: "w0"},
	}
	sched := synthesize(t, kernels, quantities, "split",
		&ast.KernelCall{Kernel: "column_kern", Args: []ast.ArgExpr{&ast.NameExpr{Name: "rho"}}},
		&ast.KernelCall{Kernel: "dof_kern", Args: []ast.ArgExpr{&ast.NameExpr{Name: "chi"}}},
		&ast.KernelCall{Kernel: "column_kern", Args: []ast.ArgExpr{&ast.NameExpr{Name: "rho"}}},
	)

	var loops []*Loop
	for _, instr := range sched.Instructions {
		if l, ok := instr.(*Loop); ok {
			loops = append(loops, l)
		}
	}
	require.Len(t, loops, 3, "grouping must not cross a granularity change")
	assert.Equal(t, metadata.GranularityCellColumn, loops[0].Granularity)
	assert.Equal(t, metadata.GranularityDof, loops[1].Granularity)
	assert.Equal(t, metadata.GranularityCellColumn, loops[2].Granularity)
}

func TestRender_UserNameVerbatimDespiteReservedCollision(t *testing.T) {
	// A user field named "ncell" appears verbatim in the output; the loop
	// bound is the renamed internal.
	kernels := []*metadata.KernelDescriptor{
		{
			Name:        "setval",
			Granularity: metadata.GranularityCell,
			Args: []*metadata.ArgumentSpec{
				{Kind: metadata.KindField, Access: metadata.AccessWrite, Space: "w3"},
			},
		},
	}
	quantities := []*metadata.Quantity{
		{Name: "ncell", Kind: metadata.KindField, Space: "w3"},
	}
	sched := synthesize(t, kernels, quantities, "collide",
		&ast.KernelCall{Kernel: "setval", Args: []ast.ArgExpr{&ast.NameExpr{Name: "ncell"}}},
	)

	out := sched.Render()
	assert.Contains(t, out, "call setval(ncell,")
	assert.True(t, strings.Contains(out, "ncell_1"), "renamed loop bound missing:\n%s", out)
}
