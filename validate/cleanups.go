package validate

import (
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/ir"
	"github.com/bnikolic/swift-t/types"
)

// checkCleanupPlacement verifies every Cleanup a block carries targets a
// variable actually visible at that point: a function parameter, a
// variable declared earlier in this block or an enclosing one, or a
// construct-defined variable (a foreach loop's key/value) of the
// conditional owning this block. original_source's checkCleanups rejects a
// cleanup that could run before its target variable exists; this is the Go
// analogue, built on a scope set inherited down the block tree rather than
// Java's direct walk of Continuation.constructDefinedVars.
//
// Unlike checkUniqueVarNames's single function-wide map, scope here is
// copied at each level: a cleanup in one branch of an if/else must not be
// satisfied by a variable declared only in the other branch.
func checkCleanupPlacement(fn *ir.Function) {
	scope := make(map[string]bool, len(fn.Inputs)+len(fn.Outputs))
	for _, in := range fn.Inputs {
		scope[in.Name] = true
	}
	for _, out := range fn.Outputs {
		scope[out.Name] = true
	}
	checkBlockCleanups(fn.MainBlock, scope, fn.Name)
}

func checkBlockCleanups(b *ir.Block, inherited map[string]bool, fnName string) {
	scope := extendScope(inherited, nil)
	for _, s := range b.Statements {
		switch st := s.(type) {
		case *ir.InstrStatement:
			for _, o := range st.Instr.Outputs() {
				scope[o.Name] = true
			}
		case *ir.CondStatement:
			nestedScope := extendScope(scope, constructDefinedVars(st.Cond))
			for _, nested := range st.Cond.Blocks() {
				checkBlockCleanups(nested, nestedScope, fnName)
			}
		}
	}
	for _, c := range b.Cleanups {
		if !scope[c.Var.Name] {
			diag.Raisef("validate: %s: cleanup of %q runs before it is in scope", fnName, c.Var.Name)
		}
	}
}

func extendScope(base map[string]bool, extra []*types.Var) map[string]bool {
	out := make(map[string]bool, len(base)+len(extra))
	for k := range base {
		out[k] = true
	}
	for _, v := range extra {
		out[v.Name] = true
	}
	return out
}
