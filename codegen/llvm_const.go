// Package codegen is the seam where a real downstream LLVM backend would
// live: given a dataflow Arg constant, translate it to an LLVM IR constant.
// This is the one piece of LLVM-facing code this module carries -- a full
// Backend emitting LLVM IR for every dataflow instruction is out of scope
// (only backend.Recorder is shipped) -- but it is grounded directly on the
// teacher's own genLiteral, which performs the equivalent translation from
// its HIR literal nodes.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	swifttypes "github.com/bnikolic/swift-t/types"
)

// LLVMConstant translates a dataflow constant argument to its LLVM IR
// equivalent. It panics (an internal invariant violation) if given a
// variable reference or a blob/void constant, neither of which has a
// context-free LLVM representation.
func LLVMConstant(a swifttypes.Arg) llvalue.Value {
	if a.IsVar() {
		panic("codegen: LLVMConstant: argument is a variable reference, not a constant")
	}
	switch a.ConstKind() {
	case swifttypes.ConstInt:
		return constant.NewInt(types.I64, a.IntVal())
	case swifttypes.ConstFloat:
		return constant.NewFloat(types.Double, a.FloatVal())
	case swifttypes.ConstBool:
		return constant.NewBool(a.BoolVal())
	case swifttypes.ConstString:
		return constant.NewCharArrayFromString(a.StringVal())
	default:
		panic(fmt.Sprintf("codegen: LLVMConstant: no LLVM representation for %s", a.Repr()))
	}
}
