package walk

import (
	"github.com/bnikolic/swift-t/ast"
	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

// evalArrayLoad implements "arr[idx]": a literal integer index always goes
// through arrayLookupRefImm (yielding a ref to the slot, dereferenced into
// the output unless the output itself wants a ref), any other index goes
// through the future-keyed lookup (yielding the element type directly).
func (w *Walker) evalArrayLoad(node ast.Node, outs []*types.Var, renames map[string]string) error {
	if len(outs) != 1 {
		diag.Raisef("walk: array load must have exactly one output, got %d", len(outs))
	}
	out := outs[0]

	arrNode, idxNode := node.Child(0), node.Child(1)
	arrType, ok := concreteArrayType(arrNode.Type(), out.Type)
	if !ok {
		return w.typeErrorf(node, "no array alternative of %s has an element type assignable to %s", arrNode.Type().Repr(), out.Type.Repr())
	}

	arrVar, err := w.evalToVar(arrNode, arrType, renames)
	if err != nil {
		return err
	}
	elemType := arrType.Elem

	if idxNode.Kind() == ast.IntLiteral {
		idx, ierr := literalConstFor(idxNode, types.PrimValue{K: types.Int})
		if ierr != nil {
			return w.typeErrorf(idxNode, "%s", ierr.Error())
		}
		slot := w.VC.CreateAliasVar(types.Ref{Elem: elemType})
		w.Backend.ArrayLookupRefImm(slot, arrVar, idx)
		if types.IsRef(out.Type) {
			return w.copyByValue(out, types.VarRef(slot), nil)
		}
		return w.dereference(out, slot)
	}

	idxVar, err := w.evalToVar(idxNode, arrType.Key, renames)
	if err != nil {
		return err
	}
	if types.Equals(elemType, out.Type) {
		w.Backend.ArrayLookupFuture(out, arrVar, idxVar)
		return nil
	}
	slot := w.VC.CreateTmp(elemType, false)
	w.Backend.ArrayLookupFuture(slot, arrVar, idxVar)
	if types.IsRef(elemType) {
		return w.dereference(out, slot)
	}
	return w.copyByValue(out, types.VarRef(slot), nil)
}

func concreteArrayType(t types.DataType, wantElem types.DataType) (types.Array, bool) {
	if a, ok := t.(types.Array); ok {
		return a, true
	}
	if u, ok := t.(types.Union); ok {
		for _, alt := range u.Alternatives {
			if a, ok := alt.(types.Array); ok && types.AssignableTo(a.Elem, wantElem) {
				return a, true
			}
		}
	}
	return types.Array{}, false
}

// evalStructLoad implements "a.b.c": it walks up through nested StructLoad
// nodes to find the root expression and the full field path, then performs
// one StructLookup per path element. A ref-typed root is wait-dereferenced
// first; a ref-typed final field is read with StructRefLookup and
// dereferenced into the output unless the output is itself a ref. A
// ref-typed field in the middle of the path is not dereferenced and is
// reported as not a struct.
func (w *Walker) evalStructLoad(node ast.Node, outs []*types.Var, renames map[string]string) error {
	if len(outs) != 1 {
		diag.Raisef("walk: struct load must have exactly one output, got %d", len(outs))
	}
	out := outs[0]

	var path []string
	root := node
	for root.Kind() == ast.StructLoad {
		path = append([]string{root.Text()}, path...)
		root = root.Child(0)
	}

	rootType := root.Type()
	isRootRef := types.IsRef(rootType)
	baseType := rootType
	if isRootRef {
		baseType = types.DerefResultType(rootType)
	}

	baseVar, err := w.evalToVar(root, rootType, renames)
	if err != nil {
		return err
	}

	if isRootRef {
		w.Backend.StartWaitStatement("deref-"+baseVar.Name, []*types.Var{baseVar}, backend.WaitOnly, false, true, backend.Local, nil)
		deref := w.VC.CreateAliasVar(baseType)
		w.Backend.RetrieveRef(deref, baseVar)
		baseVar = deref
		defer w.Backend.EndWaitStatement()
	}

	cur, curType := baseVar, baseType
	for i, field := range path {
		st, ok := curType.(types.Struct)
		if !ok {
			return w.typeErrorf(node, "%q is not a struct", cur.Name)
		}
		fieldType := st.FieldType(field)
		if fieldType == nil {
			return w.nameErrorf(node, "undefined field %q", field)
		}

		last := i == len(path)-1
		if !last {
			next := w.VC.CreateStructFieldTmp(fieldType, field)
			w.Backend.StructLookup(next, cur, field)
			cur, curType = next, fieldType
			continue
		}

		if types.IsRef(fieldType) && !types.IsRef(out.Type) {
			refSlot := w.VC.CreateAliasVar(fieldType)
			w.Backend.StructRefLookup(refSlot, cur, field)
			return w.dereference(out, refSlot)
		}
		w.Backend.StructLookup(out, cur, field)
		return nil
	}

	return w.copyByValue(out, types.VarRef(cur), nil)
}

// evalArrayRange implements "[a:b]"/"[a:b:s]", lowering to the range/
// range_step special foreign functions.
func (w *Walker) evalArrayRange(node ast.Node, outs []*types.Var, renames map[string]string) error {
	if len(outs) != 1 {
		diag.Raisef("walk: array range must have exactly one output, got %d", len(outs))
	}
	out := outs[0]
	intT := types.PrimFuture{K: types.Int}

	start, err := w.eval(node.Child(0), intT, renames)
	if err != nil {
		return err
	}
	end, err := w.eval(node.Child(1), intT, renames)
	if err != nil {
		return err
	}
	args := []types.Arg{start, end}
	name := "range"
	if node.NumChildren() == 3 {
		step, serr := w.eval(node.Child(2), intT, renames)
		if serr != nil {
			return serr
		}
		args = append(args, step)
		name = "range_step"
	}
	return w.callFunction(name, []*types.Var{out}, args, &backend.TaskProps{})
}

// evalArrayElems implements both array-literal forms: positional elements
// ("[e1, e2, ...]", implicit integer keys) build the whole array in one
// arrayBuild call; explicit key-value pairs ("[k1=v1, ...]") insert one
// element at a time since keys are arbitrary expressions, not a contiguous
// implicit range.
func (w *Walker) evalArrayElems(node ast.Node, outs []*types.Var, renames map[string]string) error {
	if len(outs) != 1 {
		diag.Raisef("walk: array constructor must have exactly one output, got %d", len(outs))
	}
	out := outs[0]
	arrType, ok := out.Type.(types.Array)
	if !ok {
		return w.typeErrorf(node, "array constructor output %q is not an array type", out.Name)
	}
	elemType := arrType.Elem

	if node.Kind() == ast.ArrayElems {
		keys := make([]types.Arg, node.NumChildren())
		vals := make([]types.Arg, node.NumChildren())
		for i := 0; i < node.NumChildren(); i++ {
			keys[i] = types.ConstInt64(int64(i))
			v, err := w.eval(node.Child(i), elemType, renames)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		w.Backend.ArrayBuild(out, keys, vals)
		return nil
	}

	for i := 0; i < node.NumChildren(); i++ {
		pair := node.Child(i)
		keyVar, err := w.evalToVar(pair.Child(0), arrType.Key, renames)
		if err != nil {
			return err
		}
		valArg, err := w.eval(pair.Child(1), elemType, renames)
		if err != nil {
			return err
		}
		w.Backend.ArrayInsertFuture(out, keyVar, valArg)
	}
	return nil
}
