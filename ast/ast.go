// Package ast defines the read-only interface the walker expects of the
// externally-owned typed expression tree (the surface-language parser and
// type checker are out of scope for this module; see spec.md's External
// Interfaces). It also provides a minimal in-memory tree builder used only
// by tests in this module, standing in for a real parser.
package ast

import "github.com/bnikolic/swift-t/types"

// NodeKind enumerates the expression-tree token kinds the walker dispatches
// on.
type NodeKind int

const (
	Variable NodeKind = iota
	IntLiteral
	FloatLiteral
	StringLiteral
	BoolLiteral
	Operator
	CallFunction
	ArrayLoad
	StructLoad
	ArrayRange
	ArrayElems
	ArrayKVElems
)

// Span is a source position, used only for diagnostics.
type Span struct {
	Line, Col int
}

// Node is the interface the walker uses to read the decorated expression
// tree. Implementations are produced by earlier compiler phases.
type Node interface {
	Kind() NodeKind
	Child(i int) Node
	NumChildren() int
	Text() string
	Type() types.DataType
	Span() Span
}

// Tree is a simple in-memory Node implementation, used by this module's own
// tests to construct fixture expressions.
type Tree struct {
	kind     NodeKind
	text     string
	typ      types.DataType
	children []*Tree
	span     Span
}

// NewLeaf builds a leaf node (variable reference or literal).
func NewLeaf(kind NodeKind, text string, typ types.DataType) *Tree {
	return &Tree{kind: kind, text: text, typ: typ}
}

// NewBranch builds an interior node with children.
func NewBranch(kind NodeKind, text string, typ types.DataType, children ...*Tree) *Tree {
	return &Tree{kind: kind, text: text, typ: typ, children: children}
}

func (t *Tree) Kind() NodeKind { return t.kind }
func (t *Tree) Text() string   { return t.text }
func (t *Tree) Type() types.DataType { return t.typ }
func (t *Tree) Span() Span     { return t.span }
func (t *Tree) NumChildren() int { return len(t.children) }

func (t *Tree) Child(i int) Node {
	if i < 0 || i >= len(t.children) {
		return nil
	}
	return t.children[i]
}

// WithSpan sets the span of the tree and returns it, for fluent test
// construction.
func (t *Tree) WithSpan(line, col int) *Tree {
	t.span = Span{Line: line, Col: col}
	return t
}
