package mesh

import "testing"

func TestStaticTopologyZeroValue(t *testing.T) {
	var topo StaticTopology

	if _, ok := topo.Continuity("w3"); ok {
		t.Error("empty topology should know no spaces")
	}
	if topo.DisjointDofs("w3") {
		t.Error("zero value must not guarantee disjoint dofs")
	}
	if got := topo.HaloDepth("theta"); got != 0 {
		t.Errorf("zero value guarantees no clean halo, got depth %d", got)
	}
	if got := topo.MaxHaloDepth(); got != 2 {
		t.Errorf("expected default max halo depth 2, got %d", got)
	}
}

func TestStaticTopologyTables(t *testing.T) {
	topo := StaticTopology{
		Spaces:        map[string]Continuity{"w0": Continuous, "w3": Discontinuous},
		Disjoint:      map[string]bool{"w3": true},
		CleanDepths:   map[string]int{"theta": 1},
		MaxDepth:      3,
		DefaultDepths: 0,
	}

	if c, ok := topo.Continuity("w0"); !ok || c != Continuous {
		t.Errorf("w0 should be continuous, got %v (known=%v)", c, ok)
	}
	if c, ok := topo.Continuity("w3"); !ok || c != Discontinuous {
		t.Errorf("w3 should be discontinuous, got %v (known=%v)", c, ok)
	}
	if !topo.DisjointDofs("w3") || topo.DisjointDofs("w0") {
		t.Error("disjointness must follow the declared table")
	}
	if topo.HaloDepth("theta") != 1 || topo.HaloDepth("wind") != 0 {
		t.Error("clean depths must follow the declared table")
	}
	if topo.MaxHaloDepth() != 3 {
		t.Errorf("expected max halo depth 3, got %d", topo.MaxHaloDepth())
	}
}
