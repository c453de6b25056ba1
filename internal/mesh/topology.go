// Package mesh defines the interface to the mesh/space runtime collaborator.
// The generator consults it for function-space continuity, degree-of-freedom
// ownership facts, and halo availability; it never defines mesh data
// structures itself.
package mesh

// Continuity classifies a function space as continuous (degrees of freedom
// shared between adjacent cells) or discontinuous (cell-local).
type Continuity int

const (
	// Continuous marks a space whose dofs are shared between adjacent cells
	Continuous Continuity = iota
	// Discontinuous marks a space whose dofs are owned by a single cell
	Discontinuous
)

func (c Continuity) String() string {
	if c == Continuous {
		return "continuous"
	}
	return "discontinuous"
}

// Topology supplies the mesh/space facts needed during hazard analysis.
// Implementations wrap the external mesh runtime; StaticTopology backs tests
// and standalone runs.
type Topology interface {
	// Continuity reports the continuity classification of a function space.
	// The second return is false when the space is unknown to the mesh.
	Continuity(space string) (Continuity, bool)

	// DisjointDofs reports whether the mesh guarantees that iterations over
	// the given space touch disjoint degree-of-freedom sets, allowing
	// multiple increment accesses to run unordered. Absent a guarantee the
	// analyzer orders them conservatively.
	DisjointDofs(space string) bool

	// HaloDepth reports the halo depth currently guaranteed clean for a
	// quantity. A required depth beyond this triggers a halo-refresh
	// instruction in the synthesized driver.
	HaloDepth(quantity string) int

	// MaxHaloDepth reports the deepest halo the mesh can exchange.
	MaxHaloDepth() int
}

// StaticTopology is a Topology backed by fixed tables. The zero value
// guarantees nothing: every increment is serialized, every read needs a
// refresh.
type StaticTopology struct {
	Spaces        map[string]Continuity
	Disjoint      map[string]bool
	CleanDepths   map[string]int
	MaxDepth      int
	DefaultDepths int
}

// Continuity implements Topology.
func (s *StaticTopology) Continuity(space string) (Continuity, bool) {
	c, ok := s.Spaces[space]
	return c, ok
}

// DisjointDofs implements Topology.
func (s *StaticTopology) DisjointDofs(space string) bool {
	return s.Disjoint[space]
}

// HaloDepth implements Topology.
func (s *StaticTopology) HaloDepth(quantity string) int {
	if d, ok := s.CleanDepths[quantity]; ok {
		return d
	}
	return s.DefaultDepths
}

// MaxHaloDepth implements Topology.
func (s *StaticTopology) MaxHaloDepth() int {
	if s.MaxDepth > 0 {
		return s.MaxDepth
	}
	return 2
}
