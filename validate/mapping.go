package validate

import (
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/ir"
	"github.com/bnikolic/swift-t/types"
)

// checkMappingTargets verifies that every File-typed variable's Mapping
// points to a declared String-typed variable, original_source's
// checkMappingTargets. Run alongside checkUniqueVarNames/checkVarReferences
// since it needs the same declared-name map those checks build.
func checkMappingTargets(fn *ir.Function, declared map[string]*types.Var) {
	check := func(v *types.Var) {
		if v == nil || v.Mapping == nil {
			return
		}
		if !types.IsFile(v.Type) {
			diag.Raisef("validate: %s: non-file variable %q has a mapping", fn.Name, v.Name)
		}
		target, ok := declared[v.Mapping.Name]
		if !ok {
			diag.Raisef("validate: %s: file variable %q maps to undeclared variable %q", fn.Name, v.Name, v.Mapping.Name)
		}
		if !types.IsPrimOfKind(target.Type, types.String) {
			diag.Raisef("validate: %s: file variable %q maps to non-string variable %q", fn.Name, v.Name, v.Mapping.Name)
		}
	}

	for _, in := range fn.Inputs {
		check(in)
	}
	for _, out := range fn.Outputs {
		check(out)
	}
	checkBlockMappingTargets(fn.MainBlock, check)
}

func checkBlockMappingTargets(b *ir.Block, check func(*types.Var)) {
	for _, s := range b.Statements {
		switch st := s.(type) {
		case *ir.InstrStatement:
			for _, o := range st.Instr.Outputs() {
				check(o)
			}
		case *ir.CondStatement:
			for _, cv := range constructDefinedVars(st.Cond) {
				check(cv)
			}
			for _, nested := range st.Cond.Blocks() {
				checkBlockMappingTargets(nested, check)
			}
		}
	}
}
