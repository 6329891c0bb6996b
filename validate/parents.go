package validate

import (
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/ir"
)

// checkParentLinks verifies every nested block's Parent pointer actually
// names the conditional that owns it -- original_source's
// checkParentLinks, adapted to this IR's simpler shape: ir.Block only
// stores a back-pointer to its owning Conditional (never to a Function), so
// there is no separate block<->function parent check to run; a function's
// MainBlock is required to have a nil Parent by construction instead.
func checkParentLinks(fn *ir.Function) {
	if fn.MainBlock.Parent != nil {
		diag.Raisef("validate: %s: main block has a non-nil parent", fn.Name)
	}
	checkBlockParents(fn.MainBlock, fn.Name)
}

func checkBlockParents(b *ir.Block, fnName string) {
	for _, s := range b.Statements {
		cond, ok := s.(*ir.CondStatement)
		if !ok {
			continue
		}
		for _, nested := range cond.Cond.Blocks() {
			if nested.Parent != cond.Cond {
				diag.Raisef("validate: %s: block's parent pointer does not match its owning conditional", fnName)
			}
			checkBlockParents(nested, fnName)
		}
	}
}
