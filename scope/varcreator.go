package scope

import (
	"fmt"

	"github.com/bnikolic/swift-t/types"
)

// VarCreator mints fresh compiler-local variables into a Context, following
// the naming scheme of LocalContext.java's createTmpVar/createAliasVariable/
// createLocalValueVar/createStructFieldTmp: try a readable name first (when
// a hint is given), then fall back to a counter-suffixed name, retrying the
// counter until it lands on a name not already bound in scope.
type VarCreator struct {
	ctx *Context
}

// NewVarCreator wraps ctx for variable minting.
func NewVarCreator(ctx *Context) *VarCreator {
	return &VarCreator{ctx: ctx}
}

const (
	tmpVarPrefix        = "tmp."
	aliasVarPrefix      = "alias."
	localValueVarPrefix = "val."
	structFieldPrefix   = "field."
	filenameOfPrefix    = "filename_of."
)

func (vc *VarCreator) chooseName(prefix, preferredSuffix, counterName string) string {
	fc := vc.ctx.FunctionContext()
	if fc == nil {
		panic("scope: VarCreator used outside a function scope")
	}
	if preferredSuffix != "" {
		candidate := prefix + preferredSuffix
		if _, ok := vc.ctx.LookupVar(candidate); !ok {
			return candidate
		}
	}
	for {
		name := fmt.Sprintf("%s%d", prefix, fc.NextCounter(counterName))
		if _, ok := vc.ctx.LookupVar(name); !ok {
			return name
		}
	}
}

// CreateTmp creates a compiler-local temporary of type t. storeInStack
// selects Stack allocation over Temp allocation, mirroring the
// storeInStack flag on createTmpVar.
func (vc *VarCreator) CreateTmp(t types.DataType, storeInStack bool) *types.Var {
	name := vc.chooseName(tmpVarPrefix, "", "intermediate_var")
	alloc := types.Temp
	if storeInStack {
		alloc = types.Stack
	}
	v := types.NewVar(name, t, alloc, types.LocalCompiler)
	vc.ctx.DeclareVariable(v)
	return v
}

// CreateAliasVar creates an Alias-allocated handle to storage owned
// elsewhere.
func (vc *VarCreator) CreateAliasVar(t types.DataType) *types.Var {
	name := vc.chooseName(aliasVarPrefix, "", "alias_var")
	v := types.NewVar(name, t, types.Alias, types.LocalCompiler)
	vc.ctx.DeclareVariable(v)
	return v
}

// CreateLocalValueVar creates a Local-allocated value, preferring a
// readable name derived from hint (the name of the future this is the
// materialized value of) when available.
func (vc *VarCreator) CreateLocalValueVar(t types.DataType, hint string) *types.Var {
	name := vc.chooseName(localValueVarPrefix, hint, "value_var")
	v := types.NewVar(name, t, types.Local, types.LocalCompiler)
	vc.ctx.DeclareVariable(v)
	return v
}

// CreateStructFieldTmp creates a compiler temporary that holds the value of
// a single struct field, named after the field when possible.
func (vc *VarCreator) CreateStructFieldTmp(t types.DataType, fieldName string) *types.Var {
	name := vc.chooseName(structFieldPrefix, fieldName, "intermediate_var")
	v := types.NewVar(name, t, types.Temp, types.LocalCompiler)
	vc.ctx.DeclareVariable(v)
	return v
}

// CreateFilenameAliasVar creates the alias variable holding the filename of
// a File-typed variable, used to populate Var.Mapping.
func (vc *VarCreator) CreateFilenameAliasVar(fileVarName string) *types.Var {
	name := vc.chooseName(filenameOfPrefix, fileVarName, "filename_of")
	v := types.NewVar(name, types.PrimFuture{K: types.String}, types.Alias, types.LocalCompiler)
	vc.ctx.DeclareVariable(v)
	return v
}
