package types

import "fmt"

// ArgKind distinguishes the two forms an Arg can take.
type ArgKind int

const (
	ArgConst ArgKind = iota
	ArgVar
)

// ConstKind is the literal kind carried by a constant Arg.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstString
	ConstBlob
	ConstVoid
)

// Arg is an immutable argument value: either a literal constant or a
// reference to a variable. Arguments carry their own type so that
// instructions can be queried without re-resolving a symbol table.
type Arg struct {
	kind ArgKind

	// constant fields (valid when kind == ArgConst)
	constKind ConstKind
	intVal    int64
	floatVal  float64
	boolVal   bool
	stringVal string

	// variable field (valid when kind == ArgVar)
	v *Var
}

// ConstInt64 builds an integer-literal argument.
func ConstInt64(n int64) Arg { return Arg{kind: ArgConst, constKind: ConstInt, intVal: n} }

// ConstFloat64 builds a float-literal argument.
func ConstFloat64(f float64) Arg { return Arg{kind: ArgConst, constKind: ConstFloat, floatVal: f} }

// ConstBoolVal builds a bool-literal argument.
func ConstBoolVal(b bool) Arg { return Arg{kind: ArgConst, constKind: ConstBool, boolVal: b} }

// ConstStringVal builds a string-literal argument.
func ConstStringVal(s string) Arg { return Arg{kind: ArgConst, constKind: ConstString, stringVal: s} }

// ConstVoidVal builds the unit/void literal argument.
func ConstVoidVal() Arg { return Arg{kind: ArgConst, constKind: ConstVoid} }

// VarRef wraps a variable as an argument.
func VarRef(v *Var) Arg { return Arg{kind: ArgVar, v: v} }

// IsConst reports whether the argument is a literal constant.
func (a Arg) IsConst() bool { return a.kind == ArgConst }

// IsVar reports whether the argument is a variable reference.
func (a Arg) IsVar() bool { return a.kind == ArgVar }

// Var returns the referenced variable. Panics if the argument is not a
// variable reference.
func (a Arg) Var() *Var {
	if a.kind != ArgVar {
		panic("Arg.Var: argument is a constant")
	}
	return a.v
}

// ConstKind returns the literal kind. Panics if the argument is a variable.
func (a Arg) ConstKind() ConstKind {
	if a.kind != ArgConst {
		panic("Arg.ConstKind: argument is a variable")
	}
	return a.constKind
}

func (a Arg) IntVal() int64      { return a.intVal }
func (a Arg) FloatVal() float64  { return a.floatVal }
func (a Arg) BoolVal() bool      { return a.boolVal }
func (a Arg) StringVal() string  { return a.stringVal }

// Type projects the argument's data type: for a variable, its declared
// type; for a constant, the local-value type of its literal kind.
func (a Arg) Type() DataType {
	if a.kind == ArgVar {
		return a.v.Type
	}
	switch a.constKind {
	case ConstInt:
		return PrimValue{K: Int}
	case ConstFloat:
		return PrimValue{K: Float}
	case ConstBool:
		return PrimValue{K: Bool}
	case ConstString:
		return PrimValue{K: String}
	case ConstBlob:
		return PrimValue{K: Blob}
	default:
		return PrimValue{K: Void}
	}
}

// Equal reports whether two arguments denote the same value: equal
// constants of the same kind, or references to the same variable name.
func (a Arg) Equal(b Arg) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == ArgVar {
		return a.v.Name == b.v.Name
	}
	if a.constKind != b.constKind {
		return false
	}
	switch a.constKind {
	case ConstInt:
		return a.intVal == b.intVal
	case ConstFloat:
		return a.floatVal == b.floatVal
	case ConstBool:
		return a.boolVal == b.boolVal
	case ConstString:
		return a.stringVal == b.stringVal
	default:
		return true
	}
}

// Less provides a total order over arguments, used to canonicalize the
// operand list of commutative operators for CSE keying.
func (a Arg) Less(b Arg) bool {
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	if a.kind == ArgVar {
		return a.v.Name < b.v.Name
	}
	return a.Repr() < b.Repr()
}

func (a Arg) Repr() string {
	if a.kind == ArgVar {
		return a.v.Name
	}
	switch a.constKind {
	case ConstInt:
		return fmt.Sprintf("%d", a.intVal)
	case ConstFloat:
		return fmt.Sprintf("%g", a.floatVal)
	case ConstBool:
		return fmt.Sprintf("%t", a.boolVal)
	case ConstString:
		return fmt.Sprintf("%q", a.stringVal)
	default:
		return "()"
	}
}
