// Package types implements the type algebra of the dataflow middle end: the
// primitive kinds, the tagged union of data types (futures, local values,
// updateables, references, containers, structs), and the variable
// descriptor that instructions and the walker operate over.
package types

import (
	"fmt"
	"strings"
)

// PrimKind is the kind of a primitive value, independent of how it is
// stored (future, local value, updateable, ...).
type PrimKind int

// Enumeration of primitive kinds.
const (
	Int PrimKind = iota
	Float
	Bool
	String
	Blob
	Void
	File
)

func (k PrimKind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Blob:
		return "blob"
	case Void:
		return "void"
	case File:
		return "file"
	default:
		return "<bad prim kind>"
	}
}

// DataType is the tagged union of all types in the dataflow language.
// Concrete variants are PrimFuture, PrimValue, PrimUpdateable, Ref, Array,
// Bag, Struct, and Union.
type DataType interface {
	// Repr returns a human-readable representation of the type, used in
	// diagnostics and IR pretty-printing.
	Repr() string

	// equals is true equality: it does not consider coercions or unions.
	// Unexported so that callers go through Equals, which normalizes first.
	equals(other DataType) bool
}

// Equals computes equality between two data types.
func Equals(a, b DataType) bool {
	return a.equals(b)
}

// -----------------------------------------------------------------------------

// PrimFuture is a single-assignment asynchronous cell of primitive kind K.
type PrimFuture struct {
	K PrimKind
}

func (p PrimFuture) Repr() string { return p.K.String() }

func (p PrimFuture) equals(other DataType) bool {
	o, ok := other.(PrimFuture)
	return ok && o.K == p.K
}

// PrimValue is a synchronously available local value of primitive kind K.
type PrimValue struct {
	K PrimKind
}

func (p PrimValue) Repr() string { return p.K.String() + "_val" }

func (p PrimValue) equals(other DataType) bool {
	o, ok := other.(PrimValue)
	return ok && o.K == p.K
}

// PrimUpdateable is a mutable cell supporting monotonic update operations
// (min, incr, scale). Only Float is currently supported.
type PrimUpdateable struct {
	K PrimKind
}

func (p PrimUpdateable) Repr() string { return "updateable_" + p.K.String() }

func (p PrimUpdateable) equals(other DataType) bool {
	o, ok := other.(PrimUpdateable)
	return ok && o.K == p.K
}

// Ref is a reference whose contents, once assigned, point to a value of
// type Elem.
type Ref struct {
	Elem DataType
}

func (r Ref) Repr() string { return "ref<" + r.Elem.Repr() + ">" }

func (r Ref) equals(other DataType) bool {
	o, ok := other.(Ref)
	return ok && Equals(o.Elem, r.Elem)
}

// Array is an associative container with future-typed keys.
type Array struct {
	Key  DataType
	Elem DataType
}

func (a Array) Repr() string {
	return fmt.Sprintf("array<%s, %s>", a.Key.Repr(), a.Elem.Repr())
}

func (a Array) equals(other DataType) bool {
	o, ok := other.(Array)
	return ok && Equals(o.Key, a.Key) && Equals(o.Elem, a.Elem)
}

// Bag is an unordered multiset.
type Bag struct {
	Elem DataType
}

func (b Bag) Repr() string { return "bag<" + b.Elem.Repr() + ">" }

func (b Bag) equals(other DataType) bool {
	o, ok := other.(Bag)
	return ok && Equals(o.Elem, b.Elem)
}

// StructField is a single named field of a Struct type.
type StructField struct {
	Name string
	Type DataType
}

// Struct is a nominal record type.
type Struct struct {
	Name   string
	Fields []StructField
}

func (s Struct) Repr() string { return "struct " + s.Name }

func (s Struct) equals(other DataType) bool {
	o, ok := other.(Struct)
	if !ok || o.Name != s.Name || len(o.Fields) != len(s.Fields) {
		return false
	}
	for i, f := range s.Fields {
		if f.Name != o.Fields[i].Name || !Equals(f.Type, o.Fields[i].Type) {
			return false
		}
	}
	return true
}

// FieldType returns the type of the named field, or nil if not present.
func (s Struct) FieldType(name string) DataType {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

// Union is used transiently by the type checker to represent an
// undetermined choice between alternatives; it must be concretized before
// lowering reaches the walker.
type Union struct {
	Alternatives []DataType
}

func (u Union) Repr() string {
	parts := make([]string, len(u.Alternatives))
	for i, a := range u.Alternatives {
		parts[i] = a.Repr()
	}
	return "{" + strings.Join(parts, " | ") + "}"
}

func (u Union) equals(other DataType) bool {
	o, ok := other.(Union)
	if !ok || len(o.Alternatives) != len(u.Alternatives) {
		return false
	}
	for i, a := range u.Alternatives {
		if !Equals(a, o.Alternatives[i]) {
			return false
		}
	}
	return true
}
