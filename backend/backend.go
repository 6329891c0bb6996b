// Package backend defines the one-way channel from the expression walker to
// the instruction emitter: a single Go interface, Backend, enumerating every
// emission operation the walker requires. Grounded on spec.md §4.4 directly;
// the textual Recorder implementation's output style is grounded on the
// teacher's bootstrap/mir/print_mir.go Repr() convention of building output
// with a strings.Builder, one line per operation.
package backend

import "github.com/bnikolic/swift-t/types"

// WaitMode is the suspend policy of a wait statement.
type WaitMode int

const (
	// WaitOnly suspends until the watched variables are closed and
	// produces no task body of its own.
	WaitOnly WaitMode = iota
)

// TaskMode is the execution locality an instruction or wait statement
// spawns.
type TaskMode int

const (
	Sync TaskMode = iota
	Local
	LocalControl
	ControlMode
)

// TaskProps carries optional scheduling annotations (priority, target
// rank, parallelism) attached to async operations and function calls.
type TaskProps struct {
	Priority   *types.Arg
	TargetRank *types.Arg
	Parallelism *types.Arg
}

// Backend is the emission contract the walker drives. Implementations turn
// each call into IR instructions (a real lowering backend) or into a log of
// calls (Recorder, used by tests).
type Backend interface {
	// Primitive data movement.
	AssignScalar(dst *types.Var, src types.Arg)
	AssignFile(dst *types.Var, src types.Arg)
	AssignArray(dst *types.Var, src types.Arg)
	AssignBag(dst *types.Var, src types.Arg)
	RetrieveScalar(dst *types.Var, src *types.Var)
	RetrieveFile(dst *types.Var, src *types.Var)
	RetrieveArray(dst *types.Var, src *types.Var)
	RetrieveBag(dst *types.Var, src *types.Var)
	RetrieveRecursive(dst *types.Var, src *types.Var)
	RetrieveRef(dst *types.Var, src *types.Var)
	AssignRef(dst *types.Var, src types.Arg)
	CopyFile(dst, src *types.Var)

	// Dereference.
	DerefScalar(dst *types.Var, src *types.Var)
	DerefFile(dst *types.Var, src *types.Var)

	// Container ops.
	ArrayLookupRefImm(dst *types.Var, arr *types.Var, key types.Arg)
	ArrayLookupFuture(dst *types.Var, arr *types.Var, key *types.Var)
	ArrayInsertImm(arr *types.Var, key types.Arg, val types.Arg)
	ArrayInsertFuture(arr *types.Var, key *types.Var, val types.Arg)
	ArrayBuild(dst *types.Var, keys, vals []types.Arg)
	BagInsert(bag *types.Var, val types.Arg)

	// Struct ops.
	StructLookup(dst *types.Var, strct *types.Var, field string)
	StructRefLookup(dst *types.Var, strct *types.Var, field string)

	// Operator ops.
	LocalOp(sub string, out *types.Var, ins []types.Arg)
	AsyncOp(sub string, out *types.Var, ins []types.Arg, props *TaskProps)

	// Control flow.
	StartWaitStatement(name string, vars []*types.Var, mode WaitMode, recursive, continueAfter bool, taskMode TaskMode, props *TaskProps)
	EndWaitStatement()
	StartForeachLoop(container *types.Var, keyVar, valVar *types.Var)
	EndForeachLoop()
	StartIfStatement(cond types.Arg, hasElse bool)
	StartElseBlock()
	EndIfStatement()

	// Function dispatch.
	FunctionCall(name string, args []types.Arg, outs []*types.Var, mode TaskMode, props *TaskProps)
	BuiltinFunctionCall(name string, args []types.Arg, outs []*types.Var, props *TaskProps)
	BuiltinLocalFunctionCall(name string, args []types.Arg, outs []*types.Var)
	IntrinsicCall(name string, args []types.Arg, outs []*types.Var)

	// Checkpointing.
	CheckpointLookupEnabled() bool
	CheckpointWriteEnabled() bool
	LookupCheckpoint(existsOut, valOut *types.Var, keyBlob types.Arg)
	WriteCheckpoint(keyBlob, valBlob types.Arg)
	PackValues(dst *types.Var, vals []types.Arg)
	UnpackValues(dsts []*types.Var, blob types.Arg)
	FreeBlob(blob *types.Var)
	StoreRecursive(dst *types.Var, src types.Arg)
}
