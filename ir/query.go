package ir

import "github.com/bnikolic/swift-t/types"

// RenameMode selects how RenameVars treats a substituted variable,
// mirroring original_source's RenameMode enum: REPLACE_VAR substitutes the
// variable wholesale (used by CSE, which has proven the two variables hold
// the same value and are otherwise interchangeable); REFERENCE substitutes
// only a variable used as a handle (e.g. the array a Ref points into);
// VALUE substitutes only a variable whose current value is read.
type RenameMode int

const (
	RenameReplaceVar RenameMode = iota
	RenameReference
	RenameValue
)

// RefcountKind distinguishes the two independent counters every variable
// carries (spec.md §5's "Refcount discipline").
type RefcountKind int

const (
	ReadRefcount RefcountKind = iota
	WriteRefcount
)

// MakeImmRequest is CanMakeImmediate's answer: which blocking inputs to
// fetch to local values and which outputs the resulting synchronous
// instruction will materialize, before MakeImmediate is invoked with the
// fetched values.
type MakeImmRequest struct {
	FetchInputs   []*types.Var
	AssignOutputs []*types.Var
}

// MakeImmChange is the replacement instruction sequence MakeImmediate
// produces once the requested inputs are available as local values.
type MakeImmChange struct {
	Instrs []Instruction
}

// getIncrVarsDefault is the shared refcount-claim rule that holds for every
// instruction in this package that does not piggyback or alias: it claims
// a read on every future/ref variable among its inputs, and a write on
// every output, satisfying the "Refcount conservativeness" property
// (reads ⊆ inputs.vars ∪ outputs; writes ⊆ outputs).
func getIncrVarsDefault(ins []types.Arg, outs []*types.Var) (reads, writes []*types.Var) {
	for _, a := range ins {
		if a.IsVar() && (types.IsPrimFuture(a.Var().Type) || types.IsRef(a.Var().Type)) {
			reads = append(reads, a.Var())
		}
	}
	writes = append(writes, outs...)
	return reads, writes
}

// cloneVars returns an independent copy of a *types.Var slice; the Var
// pointers themselves are shared (they are declaration-site descriptors,
// not owned state), only the slice backing array is new.
func cloneVars(vars []*types.Var) []*types.Var {
	if vars == nil {
		return nil
	}
	out := make([]*types.Var, len(vars))
	copy(out, vars)
	return out
}

// cloneArgs returns an independent copy of a types.Arg slice.
func cloneArgs(args []types.Arg) []types.Arg {
	if args == nil {
		return nil
	}
	out := make([]types.Arg, len(args))
	copy(out, args)
	return out
}

// renameVarSlice returns vars with every entry present in renames replaced
// by its mapped *types.Var, substituting in place (the contract for
// RenameVars is an in-place rewrite, matching original_source's mutating
// Instruction.renameVars).
func renameVarSlice(vars []*types.Var, renames map[string]*types.Var) {
	for i, v := range vars {
		if nv, ok := renames[v.Name]; ok {
			vars[i] = nv
		}
	}
}

// renameArgSlice rewrites the Var-kind entries of args in place per
// renames; constant args are untouched.
func renameArgSlice(args []types.Arg, renames map[string]*types.Var) {
	for i, a := range args {
		if a.IsVar() {
			if nv, ok := renames[a.Var().Name]; ok {
				args[i] = types.VarRef(nv)
			}
		}
	}
}

