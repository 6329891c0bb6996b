package validate

import (
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/ir"
	"github.com/bnikolic/swift-t/types"
)

// checkUniqueVarNames walks every block of fn and verifies that no two
// distinct declarations share a name, building (and returning) the
// name->declaration map checkVarReferences checks uses against. Matches
// original_source's checkUniqueVarNames: the map is seeded with the
// function's own inputs/outputs, then mutated in place as the walk
// descends into nested blocks -- so uniqueness is checked across the whole
// function, not independently per block, the same scope original_source
// checks (a single declared name must mean one thing everywhere beneath
// it, not just within its immediate block).
func checkUniqueVarNames(fn *ir.Function) map[string]*types.Var {
	declared := make(map[string]*types.Var)
	for _, in := range fn.Inputs {
		declareUnique(declared, in, fn.Name)
	}
	for _, out := range fn.Outputs {
		declareUnique(declared, out, fn.Name)
	}
	declareBlockVars(fn.MainBlock, declared, fn.Name)
	return declared
}

func declareBlockVars(b *ir.Block, declared map[string]*types.Var, fnName string) {
	for _, s := range b.Statements {
		switch st := s.(type) {
		case *ir.InstrStatement:
			for _, o := range st.Instr.Outputs() {
				declareUnique(declared, o, fnName)
			}
		case *ir.CondStatement:
			for _, cv := range constructDefinedVars(st.Cond) {
				declareUnique(declared, cv, fnName)
			}
			for _, nested := range st.Cond.Blocks() {
				declareBlockVars(nested, declared, fnName)
			}
		}
	}
}

// constructDefinedVars returns the variables a conditional construct binds
// for the duration of its own nested block(s) -- a foreach loop's key/value
// variables are the only case this IR has, matching original_source's
// Continuation.constructDefinedVars for its FOREACH_LOOP continuation type
// (wait and if/else bind nothing of their own).
func constructDefinedVars(c ir.Conditional) []*types.Var {
	f, ok := c.(*ir.ForeachStatement)
	if !ok {
		return nil
	}
	if f.KeyVar != nil {
		return []*types.Var{f.KeyVar, f.ValVar}
	}
	return []*types.Var{f.ValVar}
}

// declareUnique records decl under its own name, raising an ICE if a
// different declaration already claims that name. Matches
// original_source's checkVarUnique, minus its GLOBAL_CONST
// redeclare-identically special case: this module's ir.Program carries no
// global-variable table to redeclare against.
func declareUnique(declared map[string]*types.Var, decl *types.Var, fnName string) {
	if existing, ok := declared[decl.Name]; ok {
		if !existing.Identical(decl) {
			diag.Raisef("validate: %s: variable %q redeclared with a different type or storage class", fnName, decl.Name)
		}
		return
	}
	declared[decl.Name] = decl
}
