package validate

import (
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/ir"
)

// checkNoRefcountOps verifies fn contains no ir.RefcountOpcodes instruction.
// Standard-mode validation runs immediately after the expression walker,
// before the refcount-insertion pass has had a chance to run, so finding
// one here means a walker bug inserted refcounting work it should have left
// to that later pass. original_source's standardValidator carries the
// analogous check; finalValidator (run after refcount insertion) does not.
func checkNoRefcountOps(fn *ir.Function) {
	checkBlockNoRefcountOps(fn.MainBlock, fn.Name)
}

func checkBlockNoRefcountOps(b *ir.Block, fnName string) {
	for _, s := range b.Statements {
		switch st := s.(type) {
		case *ir.InstrStatement:
			if ir.IsRefcountOp(st.Instr.Opcode()) {
				diag.Raisef("validate: %s: refcount instruction %s present before refcount insertion", fnName, st.Instr.Opcode())
			}
		case *ir.CondStatement:
			for _, nested := range st.Cond.Blocks() {
				checkBlockNoRefcountOps(nested, fnName)
			}
		}
	}
}
