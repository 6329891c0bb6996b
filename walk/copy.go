package walk

import (
	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

// copyByValue lowers "dst = src" by kind-directed dispatch, the core
// operation every other leaf (variable reference, array/struct element,
// checkpoint restore) bottoms out in. path accumulates the struct-field
// access chain taken to reach this copy, threaded through so a diagnostic
// raised deep in a nested struct copy can report the full field path; it is
// pushed and popped by the struct case below.
func (w *Walker) copyByValue(dst *types.Var, src types.Arg, path []string) error {
	if src.IsVar() && src.Var().Name == dst.Name {
		return nil
	}

	t := dst.Type
	switch {
	case types.IsFile(t):
		return w.copyFileValue(dst, src)
	case types.IsStruct(t):
		return w.copyStruct(dst, src, t.(types.Struct), path)
	case types.IsContainer(t):
		return w.copyContainer(dst, src, t)
	case types.IsRef(t):
		return w.copyRef(dst, src, t.(types.Ref))
	default:
		w.Backend.AssignScalar(dst, src)
		return nil
	}
}

func (w *Walker) copyFileValue(dst *types.Var, src types.Arg) error {
	if src.IsVar() {
		w.Backend.CopyFile(dst, src.Var())
		return nil
	}
	w.Backend.AssignFile(dst, src)
	return nil
}

// copyStruct copies a struct value field by field, pushing and popping each
// field's name onto path for diagnostics, then emits the actual transfer as one
// StoreRecursive under a wait -- the Backend's method set (spec.md §4.4)
// exposes struct access only as StructLookup/StructRefLookup reads, with no
// paired field-level write, so the per-field pass here exists to walk and
// type-check the structure (and would drive a per-field diagnostic were one
// to fire) while StoreRecursive performs the bulk write.
func (w *Walker) copyStruct(dst *types.Var, src types.Arg, st types.Struct, path []string) error {
	if !src.IsVar() {
		diag.Raisef("walk: cannot copy a constant into struct %q", dst.Name)
	}
	srcVar := src.Var()

	for _, f := range st.Fields {
		path = append(path, f.Name)
		if sub, ok := f.Type.(types.Struct); ok {
			fieldTmp := w.VC.CreateStructFieldTmp(f.Type, f.Name)
			w.Backend.StructLookup(fieldTmp, srcVar, f.Name)
			if err := w.copyStruct(fieldTmp, types.VarRef(fieldTmp), sub, path); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
	}

	if srcVar.Name == dst.Name {
		return nil
	}
	w.Backend.StartWaitStatement("copy-struct-"+dst.Name, []*types.Var{srcVar}, backend.WaitOnly, true, true, backend.Local, nil)
	w.Backend.StoreRecursive(dst, types.VarRef(srcVar))
	w.Backend.EndWaitStatement()
	return nil
}

func (w *Walker) copyContainer(dst *types.Var, src types.Arg, t types.DataType) error {
	if !src.IsVar() {
		diag.Raisef("walk: cannot copy a constant into container %q", dst.Name)
	}
	srcVar := src.Var()

	w.Backend.StartWaitStatement("copy-"+dst.Name, []*types.Var{srcVar}, backend.WaitOnly, true, true, backend.Local, nil)
	elemType := types.ContainerElemType(t)
	if arr, ok := t.(types.Array); ok {
		keyVar := w.VC.CreateLocalValueVar(arr.Key, "k")
		valVar := w.VC.CreateLocalValueVar(elemType, "v")
		w.Backend.StartForeachLoop(srcVar, keyVar, valVar)
		w.Backend.ArrayInsertImm(dst, types.VarRef(keyVar), types.VarRef(valVar))
		w.Backend.EndForeachLoop()
	} else {
		valVar := w.VC.CreateLocalValueVar(elemType, "v")
		w.Backend.StartForeachLoop(srcVar, nil, valVar)
		w.Backend.BagInsert(dst, types.VarRef(valVar))
		w.Backend.EndForeachLoop()
	}
	w.Backend.EndWaitStatement()
	return nil
}

func (w *Walker) copyRef(dst *types.Var, src types.Arg, refType types.Ref) error {
	if !src.IsVar() {
		diag.Raisef("walk: cannot copy a constant into ref %q", dst.Name)
	}
	srcVar := src.Var()

	w.Backend.StartWaitStatement("copy-ref-"+dst.Name, []*types.Var{srcVar}, backend.WaitOnly, false, true, backend.Local, nil)
	alias := w.VC.CreateAliasVar(refType.Elem)
	w.Backend.RetrieveRef(alias, srcVar)
	w.Backend.AssignRef(dst, types.VarRef(alias))
	w.Backend.EndWaitStatement()
	return nil
}

// dereference implements the implicit-dereference dispatch used wherever an
// expression yields a Ref but the context wants the pointee's value
// (struct-of-ref loads, array-of-ref loads, checkpoint restores).
func (w *Walker) dereference(dst *types.Var, srcRef *types.Var) error {
	refT, ok := srcRef.Type.(types.Ref)
	if !ok {
		diag.Raisef("walk: cannot dereference non-reference %q", srcRef.Name)
	}

	switch {
	case types.IsFile(refT.Elem):
		w.Backend.DerefFile(dst, srcRef)
		return nil
	case types.IsContainer(refT.Elem), types.IsStruct(refT.Elem):
		w.Backend.StartWaitStatement("deref-"+dst.Name, []*types.Var{srcRef}, backend.WaitOnly, false, true, backend.Local, nil)
		tmp := w.VC.CreateAliasVar(refT.Elem)
		w.Backend.RetrieveRef(tmp, srcRef)
		if err := w.copyByValue(dst, types.VarRef(tmp), nil); err != nil {
			return err
		}
		w.Backend.EndWaitStatement()
		return nil
	default:
		w.Backend.DerefScalar(dst, srcRef)
		return nil
	}
}
