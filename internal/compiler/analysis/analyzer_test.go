package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psykal-lang/psykal/internal/compiler/ast"
	"github.com/psykal-lang/psykal/internal/compiler/binder"
	"github.com/psykal-lang/psykal/internal/compiler/errors"
	"github.com/psykal-lang/psykal/internal/compiler/metadata"
	"github.com/psykal-lang/psykal/internal/mesh"
)

// testUnit assembles a bound unit directly: each call is a list of
// (quantity, access) pairs on one kernel.
type testArg struct {
	quantity *metadata.Quantity
	access   metadata.AccessMode
	stencil  *metadata.Stencil
}

func testUnit(name string, calls ...[]testArg) *binder.BoundUnit {
	bound := &binder.BoundUnit{Unit: &ast.InvokeUnit{Name: name}}
	for i, args := range calls {
		call := &binder.BoundCall{
			Index: i,
			Descriptor: &metadata.KernelDescriptor{
				Name:        "kern",
				Granularity: metadata.GranularityCellColumn,
			},
		}
		for _, a := range args {
			kind := a.quantity.Kind
			if kind == "" {
				kind = metadata.KindField
			}
			call.Args = append(call.Args, &binder.BoundArgument{
				Spec: &metadata.ArgumentSpec{
					Kind:    kind,
					Access:  a.access,
					Space:   a.quantity.Space,
					Stencil: a.stencil,
				},
				Quantity: a.quantity,
			})
		}
		bound.Calls = append(bound.Calls, call)
	}
	return bound
}

func bareTopology() *mesh.StaticTopology {
	return &mesh.StaticTopology{Spaces: metadata.StandardSpaces(), MaxDepth: 2}
}

func fieldOn(name, space string) *metadata.Quantity {
	return &metadata.Quantity{Name: name, Kind: metadata.KindField, Space: space}
}

func scalar(name string) *metadata.Quantity {
	return &metadata.Quantity{Name: name, Kind: metadata.KindScalar}
}

func TestAnalyze_TracesInCallOrder(t *testing.T) {
	f := fieldOn("f", "w3")
	unit := testUnit("traces",
		[]testArg{{quantity: f, access: metadata.AccessWrite}},
		[]testArg{{quantity: f, access: metadata.AccessRead}},
	)

	report, err := New(bareTopology()).Analyze(unit)
	require.Nil(t, err)

	trace := report.Traces["f"]
	require.NotNil(t, trace)
	require.Len(t, trace.Touches, 2)
	assert.Equal(t, Touch{Call: 0, Access: metadata.AccessWrite}, trace.Touches[0])
	assert.Equal(t, Touch{Call: 1, Access: metadata.AccessRead}, trace.Touches[1])
}

func TestAnalyze_WriteWritePreservesCallOrder(t *testing.T) {
	// Two calls both write field F on a discontinuous space with no overlap
	// guarantee: (0) must stay before (1).
	f := fieldOn("F", "w3")
	unit := testUnit("ww",
		[]testArg{{quantity: f, access: metadata.AccessWrite}},
		[]testArg{{quantity: f, access: metadata.AccessWrite}},
	)

	report, err := New(bareTopology()).Analyze(unit)
	require.Nil(t, err)

	require.Len(t, report.Constraints, 1)
	c := report.Constraints[0]
	assert.Equal(t, 0, c.Before)
	assert.Equal(t, 1, c.After)
	assert.Equal(t, HazardWriteAfterWrite, c.Kind)
	assert.True(t, report.Ordered(0, 1))
}

func TestAnalyze_ReadAfterReadUnordered(t *testing.T) {
	f := fieldOn("f", "w3")
	unit := testUnit("rr",
		[]testArg{{quantity: f, access: metadata.AccessRead}},
		[]testArg{{quantity: f, access: metadata.AccessRead}},
	)

	report, err := New(bareTopology()).Analyze(unit)
	require.Nil(t, err)
	assert.Empty(t, report.Constraints)
	assert.False(t, report.Ordered(0, 1))
}

func TestAnalyze_ReadWriteHazards(t *testing.T) {
	f := fieldOn("f", "w3")
	unit := testUnit("raw",
		[]testArg{{quantity: f, access: metadata.AccessWrite}},
		[]testArg{{quantity: f, access: metadata.AccessRead}},
		[]testArg{{quantity: f, access: metadata.AccessWrite}},
	)

	report, err := New(bareTopology()).Analyze(unit)
	require.Nil(t, err)

	kinds := map[HazardKind]bool{}
	for _, c := range report.Constraints {
		kinds[c.Kind] = true
	}
	assert.True(t, kinds[HazardReadAfterWrite])
	assert.True(t, kinds[HazardWriteAfterRead])
	assert.True(t, kinds[HazardWriteAfterWrite])
}

func TestAnalyze_IncrementsSerializedWithoutGuarantee(t *testing.T) {
	f := fieldOn("lhs", "w1")
	unit := testUnit("inc",
		[]testArg{{quantity: f, access: metadata.AccessIncrement}},
		[]testArg{{quantity: f, access: metadata.AccessIncrement}},
	)

	report, err := New(bareTopology()).Analyze(unit)
	require.Nil(t, err)
	require.Len(t, report.Constraints, 1)
	assert.Equal(t, HazardIncrementOrder, report.Constraints[0].Kind)
}

func TestAnalyze_IncrementsUnorderedWithDisjointGuarantee(t *testing.T) {
	topo := bareTopology()
	topo.Disjoint = map[string]bool{"w1": true}

	f := fieldOn("lhs", "w1")
	unit := testUnit("inc",
		[]testArg{{quantity: f, access: metadata.AccessIncrement}},
		[]testArg{{quantity: f, access: metadata.AccessIncrement}},
	)

	report, err := New(topo).Analyze(unit)
	require.Nil(t, err)
	assert.Empty(t, report.Constraints, "mesh certified dof ownership disjoint")
}

func TestAnalyze_ReductionKindRecorded(t *testing.T) {
	total := scalar("total")
	unit := testUnit("red",
		[]testArg{{quantity: total, access: metadata.AccessMin}},
		[]testArg{{quantity: total, access: metadata.AccessMin}},
	)

	report, err := New(bareTopology()).Analyze(unit)
	require.Nil(t, err)
	assert.Equal(t, metadata.AccessMin, report.Reductions["total"],
		"reduction kind must be recorded, never defaulted to sum")

	// Contributing calls stay serialized in call-site order.
	require.Len(t, report.Constraints, 1)
	assert.Equal(t, HazardReductionOrder, report.Constraints[0].Kind)
}

func TestAnalyze_ConflictingReductionKinds(t *testing.T) {
	// One call sums `total`, another takes its minimum.
	total := scalar("total")
	unit := testUnit("conflict",
		[]testArg{{quantity: total, access: metadata.AccessSum}},
		[]testArg{{quantity: total, access: metadata.AccessMin}},
	)

	_, err := New(bareTopology()).Analyze(unit)
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrAccessReductionConflict, err.Code)
	assert.Equal(t, "total", err.Quantity)
	assert.Equal(t, []int{0, 1}, err.Calls)
}

func TestAnalyze_ReductionMixedWithOtherAccess(t *testing.T) {
	// Even a plain read conflicts with a reduction: the combine step runs
	// after all loops, so no call in the unit can see the reduced value.
	total := scalar("total")
	unit := testUnit("mixed",
		[]testArg{{quantity: total, access: metadata.AccessSum}},
		[]testArg{{quantity: total, access: metadata.AccessRead}},
	)

	_, err := New(bareTopology()).Analyze(unit)
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrAccessReductionMixed, err.Code)
	assert.Equal(t, "total", err.Quantity)
}

func TestAnalyze_ConflictReportedDeterministically(t *testing.T) {
	// With conflicts on two quantities, the reported one must not depend on
	// map iteration order.
	alpha, beta := scalar("alpha"), scalar("beta")
	unit := testUnit("multi",
		[]testArg{
			{quantity: alpha, access: metadata.AccessSum},
			{quantity: beta, access: metadata.AccessSum},
		},
		[]testArg{
			{quantity: alpha, access: metadata.AccessMin},
			{quantity: beta, access: metadata.AccessMin},
		},
	)

	for i := 0; i < 10; i++ {
		_, err := New(bareTopology()).Analyze(unit)
		require.NotNil(t, err)
		assert.Equal(t, errors.ErrAccessReductionConflict, err.Code)
		assert.Equal(t, "alpha", err.Quantity)
	}
}

func TestAnalyze_StencilHaloDepthAggregated(t *testing.T) {
	f := fieldOn("wind", "w3")
	unit := testUnit("halo",
		[]testArg{{quantity: f, access: metadata.AccessRead,
			stencil: &metadata.Stencil{Shape: metadata.StencilCross, Extent: 1}}},
		[]testArg{{quantity: f, access: metadata.AccessRead,
			stencil: &metadata.Stencil{Shape: metadata.StencilCross, Extent: 2}}},
	)

	report, err := New(bareTopology()).Analyze(unit)
	require.Nil(t, err)

	req := report.Halos["wind"]
	require.NotNil(t, req)
	assert.Equal(t, 2, req.Depth, "deepest reading call wins")
	assert.Equal(t, 0, req.FirstRead)
}

func TestAnalyze_ContinuousReadNeedsDepthOne(t *testing.T) {
	f := fieldOn("chi", "w0")
	unit := testUnit("annexed",
		[]testArg{{quantity: f, access: metadata.AccessRead}},
	)

	report, err := New(bareTopology()).Analyze(unit)
	require.Nil(t, err)

	req := report.Halos["chi"]
	require.NotNil(t, req)
	assert.Equal(t, 1, req.Depth)
}

func TestAnalyze_CleanHaloSuppressesRefresh(t *testing.T) {
	topo := bareTopology()
	topo.CleanDepths = map[string]int{"chi": 1}

	f := fieldOn("chi", "w0")
	unit := testUnit("clean",
		[]testArg{{quantity: f, access: metadata.AccessRead}},
	)

	report, err := New(topo).Analyze(unit)
	require.Nil(t, err)
	assert.Empty(t, report.Halos)
}

func TestAnalyze_HaloDepthBeyondMesh(t *testing.T) {
	f := fieldOn("wind", "w3")
	unit := testUnit("deep",
		[]testArg{{quantity: f, access: metadata.AccessRead,
			stencil: &metadata.Stencil{Shape: metadata.StencilRegion, Extent: 5}}},
	)

	_, err := New(bareTopology()).Analyze(unit)
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrAccessHaloUnavailable, err.Code)
	assert.Equal(t, "wind", err.Quantity)
}

func TestAnalyze_LiteralsCarryNoTrace(t *testing.T) {
	unit := testUnit("lit")
	call := &binder.BoundCall{
		Index:      0,
		Descriptor: &metadata.KernelDescriptor{Name: "kern", Granularity: metadata.GranularityCell},
		Args: []*binder.BoundArgument{
			{Spec: &metadata.ArgumentSpec{Kind: metadata.KindScalar, Access: metadata.AccessRead}, Literal: "0.5"},
		},
	}
	unit.Calls = append(unit.Calls, call)

	report, err := New(bareTopology()).Analyze(unit)
	require.Nil(t, err)
	assert.Empty(t, report.Traces)
}
