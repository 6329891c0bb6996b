package types

import "fmt"

// Alloc is the allocation class of a variable.
type Alloc int

// Enumeration of allocation classes.
const (
	// Stack is a backend-visible future allocated in the enclosing frame.
	Stack Alloc = iota
	// Temp is a backend-visible future allocated as compiler-generated
	// scratch storage.
	Temp
	// Alias is a handle to storage owned elsewhere.
	Alias
	// Local is a plain value held directly in the emitting task's frame.
	Local
	// GlobalConst is a compile-time constant visible in every scope.
	GlobalConst
)

func (a Alloc) String() string {
	switch a {
	case Stack:
		return "stack"
	case Temp:
		return "temp"
	case Alias:
		return "alias"
	case Local:
		return "local"
	case GlobalConst:
		return "global_const"
	default:
		return "<bad alloc>"
	}
}

// DefType is the provenance of a variable's definition.
type DefType int

// Enumeration of definition provenances.
const (
	LocalUser DefType = iota
	LocalCompiler
	DefGlobalConst
	Inputarg
	Outputarg
)

func (d DefType) String() string {
	switch d {
	case LocalUser:
		return "local_user"
	case LocalCompiler:
		return "local_compiler"
	case DefGlobalConst:
		return "global_const"
	case Inputarg:
		return "input_arg"
	case Outputarg:
		return "output_arg"
	default:
		return "<bad def type>"
	}
}

// Var is the descriptor for a named variable: instructions reference
// variables by descriptor, never by an owning handle, so Var must carry
// everything a consumer needs to know about identity and storage.
type Var struct {
	Name    string
	Type    DataType
	Alloc   Alloc
	DefType DefType

	// Mapping is non-nil only for File-typed variables, and must point to a
	// previously declared String-typed variable holding the filename.
	Mapping *Var
}

// NewVar constructs a variable descriptor.
func NewVar(name string, t DataType, alloc Alloc, def DefType) *Var {
	return &Var{Name: name, Type: t, Alloc: alloc, DefType: def}
}

// Identical reports whether two variable references refer to the exact
// same declaration: same name, storage class, definition type, type, and
// mapping. Every
// instruction input/output must be Identical to the variable's declaration
// site for the IR to be well-formed (checked by the validate package).
func (v *Var) Identical(other *Var) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Name != other.Name || v.Alloc != other.Alloc || v.DefType != other.DefType {
		return false
	}
	if !Equals(v.Type, other.Type) {
		return false
	}
	if (v.Mapping == nil) != (other.Mapping == nil) {
		return false
	}
	if v.Mapping != nil && v.Mapping.Name != other.Mapping.Name {
		return false
	}
	return true
}

func (v *Var) String() string {
	return fmt.Sprintf("%s:%s", v.Name, v.Type.Repr())
}

// TypeMismatch is raised when a copy or assignment is attempted between
// incompatible types.
type TypeMismatch struct {
	Src, Dst DataType
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: cannot assign %s to %s", e.Src.Repr(), e.Dst.Repr())
}

// CheckCopy asserts that src is assignable to dst, returning a TypeMismatch
// error otherwise.
func CheckCopy(src, dst DataType) error {
	if !AssignableTo(src, dst) {
		return &TypeMismatch{Src: src, Dst: dst}
	}
	return nil
}
