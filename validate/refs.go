package validate

import (
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/ir"
	"github.com/bnikolic/swift-t/types"
)

// checkVarReferences verifies every variable an instruction or conditional
// reads or writes is Identical to its declaration in declared --
// original_source's checkVarReferences/checkVarReference, catching both
// undeclared variables (a walker bug) and stale references left over from
// a rewrite that changed a variable's type or storage class without
// updating every use of it.
func checkVarReferences(fn *ir.Function, declared map[string]*types.Var) {
	checkBlockReferences(fn.MainBlock, declared, fn.Name)
}

func checkBlockReferences(b *ir.Block, declared map[string]*types.Var, fnName string) {
	for _, s := range b.Statements {
		switch st := s.(type) {
		case *ir.InstrStatement:
			for _, in := range st.Instr.Inputs() {
				if in.IsVar() {
					checkReference(declared, in.Var(), fnName)
				}
			}
			for _, o := range st.Instr.Outputs() {
				checkReference(declared, o, fnName)
			}
		case *ir.CondStatement:
			checkConditionalReferences(st.Cond, declared, fnName)
			for _, nested := range st.Cond.Blocks() {
				checkBlockReferences(nested, declared, fnName)
			}
		}
	}
	for _, c := range b.Cleanups {
		checkReference(declared, c.Var, fnName)
	}
}

func checkConditionalReferences(c ir.Conditional, declared map[string]*types.Var, fnName string) {
	switch cond := c.(type) {
	case *ir.WaitStatement:
		for _, wv := range cond.WaitVars {
			checkReference(declared, wv, fnName)
		}
	case *ir.IfStatement:
		if cond.Cond.IsVar() {
			checkReference(declared, cond.Cond.Var(), fnName)
		}
	case *ir.ForeachStatement:
		checkReference(declared, cond.Container, fnName)
	}
}

func checkReference(declared map[string]*types.Var, used *types.Var, fnName string) {
	decl, ok := declared[used.Name]
	if !ok {
		diag.Raisef("validate: %s: variable %q used but never declared", fnName, used.Name)
	}
	if !decl.Identical(used) {
		diag.Raisef("validate: %s: use of %q does not match its declaration", fnName, used.Name)
	}
}
