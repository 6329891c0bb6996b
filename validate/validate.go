// Package validate implements the structural well-formedness checks run
// over an emitted ir.Program: unique variable names, reference identity,
// cleanup placement, and parent-link consistency. Grounded on
// original_source/Validate.java, which runs these same checks (in the same
// order) over STC's IC tree once right after the expression walker emits a
// function, and again right before code generation.
package validate

import (
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/ir"
)

// Validator runs a configurable subset of the structural checks, mirroring
// original_source's standardValidator/finalValidator constructor pair.
type Validator struct {
	// checkCleanups gates both cleanup-placement and no-refcount-ops
	// checking: both only hold before the refcount-insertion pass runs
	// (that pass both attaches new cleanups and introduces the refcount
	// instructions the standard check forbids).
	checkCleanups bool
}

// Standard returns the validator run immediately after expression-walking:
// names, references, mapping targets, cleanup placement, the absence of
// refcount instructions, and parent links are all checked.
func Standard() *Validator { return &Validator{checkCleanups: true} }

// Final returns the validator run immediately before code generation. Only
// names, references, mapping targets, and parent links are re-checked: by this point
// optimizer passes have rewritten cleanup actions in ways the placement
// check was never meant to survive (a pass may sink a DecrRef past the
// point the standard check
// considers its target's last in-scope use).
func Final() *Validator { return &Validator{checkCleanups: false} }

// Validate runs every active check over p, returning the first violation
// found as an error. A violation indicates a bug in the walker or an
// optimizer pass, not a user-facing compile error, so each check below
// raises a diag.ICE via panic and Validate recovers it into a regular error
// at this one boundary.
func (v *Validator) Validate(p *ir.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ice, ok := r.(*diag.ICE); ok {
				err = ice
				return
			}
			panic(r)
		}
	}()

	for _, fn := range p.Functions {
		v.validateFunction(fn)
	}
	return nil
}

func (v *Validator) validateFunction(fn *ir.Function) {
	declared := checkUniqueVarNames(fn)
	checkVarReferences(fn, declared)
	checkMappingTargets(fn, declared)
	if v.checkCleanups {
		checkCleanupPlacement(fn)
		checkNoRefcountOps(fn)
	}
	checkParentLinks(fn)
}
