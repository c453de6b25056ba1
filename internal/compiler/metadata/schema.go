// Package metadata models the declared contract of a numerical kernel: its
// ordered argument specifications, access modes, function spaces, and
// iteration granularity. Validation is eager: a descriptor that survives
// Validate is safe for binding and synthesis.
package metadata

import (
	"github.com/psykal-lang/psykal/internal/mesh"
)

// ArgKind is the kind of a declared kernel argument
type ArgKind string

const (
	// KindScalar is a single scalar value
	KindScalar ArgKind = "scalar"
	// KindField is a field over one function space
	KindField ArgKind = "field"
	// KindFieldVector is a bundle of identically-spaced field components
	KindFieldVector ArgKind = "field-vector"
	// KindOperator is an assembled operator mapping from-space to to-space
	KindOperator ArgKind = "operator"
	// KindColumnwiseOperator is a column-wise assembled operator
	KindColumnwiseOperator ArgKind = "columnwise-operator"
)

// Valid reports whether the kind is a member of the closed kind set
func (k ArgKind) Valid() bool {
	switch k {
	case KindScalar, KindField, KindFieldVector, KindOperator, KindColumnwiseOperator:
		return true
	}
	return false
}

// IsOperator reports whether the kind is one of the operator kinds
func (k ArgKind) IsOperator() bool {
	return k == KindOperator || k == KindColumnwiseOperator
}

// IsField reports whether the kind is field or field-vector
func (k ArgKind) IsField() bool {
	return k == KindField || k == KindFieldVector
}

// DataType is the intrinsic data type of a kernel argument
type DataType string

const (
	// TypeReal is a real-valued argument
	TypeReal DataType = "real"
	// TypeInteger is an integer-valued argument
	TypeInteger DataType = "integer"
	// TypeLogical is a logical-valued argument
	TypeLogical DataType = "logical"
)

// Valid reports whether the data type is supported
func (d DataType) Valid() bool {
	switch d {
	case TypeReal, TypeInteger, TypeLogical:
		return true
	}
	return false
}

// AccessMode describes how a kernel touches an argument
type AccessMode string

const (
	// AccessRead reads the argument only
	AccessRead AccessMode = "read"
	// AccessWrite overwrites the argument without reading it
	AccessWrite AccessMode = "write"
	// AccessReadWrite both reads and overwrites the argument
	AccessReadWrite AccessMode = "read-write"
	// AccessIncrement accumulates into shared degrees of freedom
	AccessIncrement AccessMode = "increment"
	// AccessSum is a sum reduction into a scalar
	AccessSum AccessMode = "sum"
	// AccessMin is a min reduction into a scalar
	AccessMin AccessMode = "min"
	// AccessMax is a max reduction into a scalar
	AccessMax AccessMode = "max"
)

// Valid reports whether the access mode is a member of the closed mode set
func (a AccessMode) Valid() bool {
	switch a {
	case AccessRead, AccessWrite, AccessReadWrite, AccessIncrement,
		AccessSum, AccessMin, AccessMax:
		return true
	}
	return false
}

// IsReduction reports whether the mode is one of the reduction kinds
func (a AccessMode) IsReduction() bool {
	return a == AccessSum || a == AccessMin || a == AccessMax
}

// ReadsData reports whether the mode observes existing values. Increment and
// the reductions read before combining.
func (a AccessMode) ReadsData() bool {
	switch a {
	case AccessRead, AccessReadWrite, AccessIncrement, AccessSum, AccessMin, AccessMax:
		return true
	}
	return false
}

// WritesData reports whether the mode modifies the quantity
func (a AccessMode) WritesData() bool {
	return a != AccessRead
}

// Granularity is the iteration granularity a kernel is written for
type Granularity string

const (
	// GranularityCellColumn iterates over vertical columns of cells
	GranularityCellColumn Granularity = "cell-column"
	// GranularityCell iterates over single cells
	GranularityCell Granularity = "per-cell"
	// GranularityDomain is called once for the whole local domain
	GranularityDomain Granularity = "full-domain"
	// GranularityDof iterates over degrees of freedom
	GranularityDof Granularity = "per-dof"
)

// Valid reports whether the granularity tag is known
func (g Granularity) Valid() bool {
	switch g {
	case GranularityCellColumn, GranularityCell, GranularityDomain, GranularityDof:
		return true
	}
	return false
}

// StencilShape is the shape of a declared stencil access
type StencilShape string

const (
	// StencilX1D extends along the x direction only
	StencilX1D StencilShape = "x1d"
	// StencilY1D extends along the y direction only
	StencilY1D StencilShape = "y1d"
	// StencilXorY1D extends along x or y, chosen at run time
	StencilXorY1D StencilShape = "xory1d"
	// StencilCross extends along both axes
	StencilCross StencilShape = "cross"
	// StencilRegion covers the full square region
	StencilRegion StencilShape = "region"
)

// Valid reports whether the stencil shape is known
func (s StencilShape) Valid() bool {
	switch s {
	case StencilX1D, StencilY1D, StencilXorY1D, StencilCross, StencilRegion:
		return true
	}
	return false
}

// Stencil is a declared stencil access: shape plus extent in cells
type Stencil struct {
	Shape  StencilShape `yaml:"shape" json:"shape"`
	Extent int          `yaml:"extent" json:"extent"`
}

// QuadratureShape is an optional quadrature requirement of a kernel
type QuadratureShape string

const (
	// QuadratureNone means the kernel needs no quadrature rule
	QuadratureNone QuadratureShape = ""
	// QuadratureXYoZ is Gaussian quadrature on horizontal then vertical points
	QuadratureXYoZ QuadratureShape = "xyoz"
	// QuadratureFace is quadrature over cell faces
	QuadratureFace QuadratureShape = "face"
	// QuadratureEvaluator evaluates basis functions at nodal points
	QuadratureEvaluator QuadratureShape = "evaluator"
)

// Valid reports whether the quadrature shape is known (or absent)
func (q QuadratureShape) Valid() bool {
	switch q {
	case QuadratureNone, QuadratureXYoZ, QuadratureFace, QuadratureEvaluator:
		return true
	}
	return false
}

// ArgumentSpec is one declared kernel argument. Fields carry exactly one
// function space; operators carry a to-space and a from-space; scalars carry
// none. A stencil is only legal on a read-access field.
type ArgumentSpec struct {
	Kind         ArgKind    `yaml:"kind" json:"kind"`
	DataType     DataType   `yaml:"data_type,omitempty" json:"data_type"`
	Access       AccessMode `yaml:"access" json:"access"`
	Space        string     `yaml:"space,omitempty" json:"space,omitempty"`
	ToSpace      string     `yaml:"to_space,omitempty" json:"to_space,omitempty"`
	FromSpace    string     `yaml:"from_space,omitempty" json:"from_space,omitempty"`
	VectorLength int        `yaml:"vector_length,omitempty" json:"vector_length,omitempty"`
	Stencil      *Stencil   `yaml:"stencil,omitempty" json:"stencil,omitempty"`
}

// Spaces returns every function space tag the argument carries, in
// declaration order.
func (a *ArgumentSpec) Spaces() []string {
	if a.Kind.IsOperator() {
		return []string{a.ToSpace, a.FromSpace}
	}
	if a.Space != "" {
		return []string{a.Space}
	}
	return nil
}

// KernelDescriptor is the declared contract of one kernel. Argument order is
// fixed at declaration and is the binding contract with call sites.
type KernelDescriptor struct {
	Name        string          `yaml:"name" json:"name"`
	Granularity Granularity     `yaml:"iterates_over" json:"iterates_over"`
	Args        []*ArgumentSpec `yaml:"args" json:"args"`
	Quadrature  QuadratureShape `yaml:"quadrature,omitempty" json:"quadrature,omitempty"`
	// Imports names read-only module symbols the kernel implementation pulls
	// in. They share the invoke unit's namespace during symbol resolution so
	// generated internals never shadow them.
	Imports []string `yaml:"imports,omitempty" json:"imports,omitempty"`
	// ProcedureArity, when non-zero, is the arity of the kernel subroutine
	// this metadata describes and must match the declared argument count.
	ProcedureArity int `yaml:"procedure_arity,omitempty" json:"procedure_arity,omitempty"`
}

// UpdatedArgs returns the slots whose access mode modifies data
func (d *KernelDescriptor) UpdatedArgs() []int {
	var out []int
	for i, a := range d.Args {
		if a.Access.WritesData() {
			out = append(out, i)
		}
	}
	return out
}

// StandardSpaces returns the fixed continuity table of the supported
// function-space set.
func StandardSpaces() map[string]mesh.Continuity {
	return map[string]mesh.Continuity{
		"w0":                      mesh.Continuous,
		"w1":                      mesh.Continuous,
		"w2":                      mesh.Continuous,
		"w2h":                     mesh.Continuous,
		"any-space":               mesh.Continuous,
		"w3":                      mesh.Discontinuous,
		"wtheta":                  mesh.Discontinuous,
		"w2v":                     mesh.Discontinuous,
		"w2broken":                mesh.Discontinuous,
		"any-discontinuous-space": mesh.Discontinuous,
	}
}

// SpaceContinuity reports the continuity of a supported space. The second
// return is false for spaces outside the supported set.
func SpaceContinuity(space string) (mesh.Continuity, bool) {
	c, ok := StandardSpaces()[space]
	return c, ok
}

// Quantity is a named actual declared by the algorithm layer. Binding checks
// each call-site quantity against the ArgumentSpec of its slot.
type Quantity struct {
	Name         string   `yaml:"name" json:"name"`
	Kind         ArgKind  `yaml:"kind" json:"kind"`
	DataType     DataType `yaml:"data_type,omitempty" json:"data_type"`
	Space        string   `yaml:"space,omitempty" json:"space,omitempty"`
	ToSpace      string   `yaml:"to_space,omitempty" json:"to_space,omitempty"`
	FromSpace    string   `yaml:"from_space,omitempty" json:"from_space,omitempty"`
	VectorLength int      `yaml:"vector_length,omitempty" json:"vector_length,omitempty"`
}
