// Package ast defines the node types for the algorithm-layer input of the
// psykal generator: invoke units, the kernel calls they group, and the
// argument expressions supplied at each call site.
package ast

// SourceLocation tracks the position of a node in the algorithm source
type SourceLocation struct {
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// Program is the root node: every invoke unit found in one algorithm file
type Program struct {
	Invokes []*InvokeUnit
}

func (p *Program) node() {}

// Location returns the source location of the program node.
func (p *Program) Location() SourceLocation {
	if len(p.Invokes) > 0 {
		return p.Invokes[0].Loc
	}
	return SourceLocation{Line: 1, Column: 1}
}

// InvokeUnit is an ordered sequence of kernel calls driven as one logical
// unit. Calls execute in declaration order with respect to any data
// dependency; reordering independent calls is left to later passes.
type InvokeUnit struct {
	Name  string // Unit name, used to label the synthesized driver routine
	Calls []*KernelCall
	Loc   SourceLocation
}

func (u *InvokeUnit) node() {}

// Location returns the source location of the invoke unit.
func (u *InvokeUnit) Location() SourceLocation {
	return u.Loc
}

// KernelCall references a kernel by name together with the actual argument
// expressions supplied at the call site. Arguments are strictly positional.
type KernelCall struct {
	Kernel string // Name of the kernel descriptor this call resolves against
	Args   []ArgExpr
	Loc    SourceLocation
}

func (c *KernelCall) node() {}

// Location returns the source location of the kernel call.
func (c *KernelCall) Location() SourceLocation {
	return c.Loc
}

// ArgExpr is an actual argument expression at a call site: either a named
// quantity (field, operator, scalar variable) or a literal constant.
type ArgExpr interface {
	Node
	argExpr()
	// String returns the source form of the expression.
	String() string
}

// NameExpr is a reference to a named quantity declared by the algorithm layer
type NameExpr struct {
	Name string
	Loc  SourceLocation
}

func (n *NameExpr) node()    {}
func (n *NameExpr) argExpr() {}

// Location returns the source location of the name expression.
func (n *NameExpr) Location() SourceLocation {
	return n.Loc
}

func (n *NameExpr) String() string {
	return n.Name
}

// LiteralExpr is a literal constant supplied directly at the call site.
// Literals are only ever legal in scalar argument slots.
type LiteralExpr struct {
	Value string // Source text of the literal, e.g. "0.5" or "1"
	Loc   SourceLocation
}

func (l *LiteralExpr) node()    {}
func (l *LiteralExpr) argExpr() {}

// Location returns the source location of the literal expression.
func (l *LiteralExpr) Location() SourceLocation {
	return l.Loc
}

func (l *LiteralExpr) String() string {
	return l.Value
}
