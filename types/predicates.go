package types

import "fmt"

// IsPrimFuture reports whether t is a single-assignment future of a
// primitive kind.
func IsPrimFuture(t DataType) bool {
	_, ok := t.(PrimFuture)
	return ok
}

// IsPrimValue reports whether t is a synchronously available local value.
func IsPrimValue(t DataType) bool {
	_, ok := t.(PrimValue)
	return ok
}

// IsUpdateable reports whether t is a monotonic updateable cell.
func IsUpdateable(t DataType) bool {
	_, ok := t.(PrimUpdateable)
	return ok
}

// IsRef reports whether t is a reference type.
func IsRef(t DataType) bool {
	_, ok := t.(Ref)
	return ok
}

// IsArray reports whether t is an array type.
func IsArray(t DataType) bool {
	_, ok := t.(Array)
	return ok
}

// IsBag reports whether t is a bag type.
func IsBag(t DataType) bool {
	_, ok := t.(Bag)
	return ok
}

// IsContainer reports whether t is an array or bag.
func IsContainer(t DataType) bool {
	return IsArray(t) || IsBag(t)
}

// IsStruct reports whether t is a struct type.
func IsStruct(t DataType) bool {
	_, ok := t.(Struct)
	return ok
}

// IsFile reports whether t denotes a File-kinded future or value.
func IsFile(t DataType) bool {
	switch v := t.(type) {
	case PrimFuture:
		return v.K == File
	case PrimValue:
		return v.K == File
	default:
		return false
	}
}

// IsPrimOfKind reports whether t is a PrimFuture or PrimValue of kind k.
func IsPrimOfKind(t DataType, k PrimKind) bool {
	switch v := t.(type) {
	case PrimFuture:
		return v.K == k
	case PrimValue:
		return v.K == k
	default:
		return false
	}
}

// AssignableTo reports whether a value of type src may be assigned to a
// variable of type dst. Futures accept values of the equivalent local kind
// (the walker materializes them); containers and structs require structural
// equality; refs require equality of their pointee types.
func AssignableTo(src, dst DataType) bool {
	if Equals(src, dst) {
		return true
	}

	switch d := dst.(type) {
	case PrimFuture:
		if s, ok := src.(PrimValue); ok {
			return s.K == d.K
		}
	case PrimValue:
		if s, ok := src.(PrimFuture); ok {
			return s.K == d.K
		}
	case Union:
		for _, alt := range d.Alternatives {
			if AssignableTo(src, alt) {
				return true
			}
		}
	}

	if s, ok := src.(Union); ok {
		for _, alt := range s.Alternatives {
			if AssignableTo(alt, dst) {
				return true
			}
		}
	}

	return false
}

// DerefResultType strips exactly one layer of Ref from t. It panics (an
// internal invariant violation -- callers must check IsRef first) if t is
// not a reference.
func DerefResultType(t DataType) DataType {
	r, ok := t.(Ref)
	if !ok {
		panic(fmt.Sprintf("DerefResultType: %s is not a reference", t.Repr()))
	}
	return r.Elem
}

// ContainerElemType returns the element type of an array or bag.
func ContainerElemType(t DataType) DataType {
	switch v := t.(type) {
	case Array:
		return v.Elem
	case Bag:
		return v.Elem
	default:
		panic(fmt.Sprintf("ContainerElemType: %s is not a container", t.Repr()))
	}
}

// ArrayKeyType returns the key type of an array.
func ArrayKeyType(t DataType) DataType {
	a, ok := t.(Array)
	if !ok {
		panic(fmt.Sprintf("ArrayKeyType: %s is not an array", t.Repr()))
	}
	return a.Key
}

// FutureType returns the future-cell equivalent of a local primitive value
// type; used when materializing constants into futures.
func FutureType(t DataType) DataType {
	v, ok := t.(PrimValue)
	if !ok {
		panic(fmt.Sprintf("FutureType: %s is not a local value", t.Repr()))
	}
	return PrimFuture{K: v.K}
}

// UnpackedContainerType recursively strips futures from containers and
// struct fields, yielding the fully-local shape of a value (used when
// packing checkpoint data or unpacking checkpointed results).
func UnpackedContainerType(t DataType) DataType {
	switch v := t.(type) {
	case PrimFuture:
		return PrimValue{K: v.K}
	case Array:
		return Array{Key: UnpackedContainerType(v.Key), Elem: UnpackedContainerType(v.Elem)}
	case Bag:
		return Bag{Elem: UnpackedContainerType(v.Elem)}
	case Struct:
		fields := make([]StructField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = StructField{Name: f.Name, Type: UnpackedContainerType(f.Type)}
		}
		return Struct{Name: v.Name, Fields: fields}
	default:
		return t
	}
}
