package ir

import (
	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/config"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

// InitState describes how completely an instruction initializes one of its
// outputs.
type InitState int

const (
	Full InitState = iota
	Partial
)

// InitializedVar pairs an output variable with how fully this instruction
// initializes it.
type InitializedVar struct {
	Var   *types.Var
	State InitState
}

// Instruction is the contract every concrete opcode variant implements.
// Optimizer and validator correctness depends on each being complete and
// consistent (original_source/ICInstructions.java's Instruction base
// class).
type Instruction interface {
	Opcode() Opcode

	// Inputs returns all values read, including task properties when
	// present.
	Inputs() []types.Arg
	// Outputs returns all variables the instruction may mutate.
	Outputs() []*types.Var
	// ModifiedOutputs returns the subset of Outputs actually mutated;
	// defaults to Outputs.
	ModifiedOutputs() []*types.Var
	// ReadOutputs returns outputs whose prior value is read (e.g. mapped
	// files read before being rewritten).
	ReadOutputs() []*types.Var
	// Initialized returns the variables this instruction initializes,
	// and how completely.
	Initialized() []InitializedVar
	// BlockingInputs returns the variables the scheduler must wait on
	// before this instruction may fire.
	BlockingInputs() []*types.Var
	// Mode returns the execution locality this instruction spawns.
	Mode() backend.TaskMode
	// HasSideEffects is true if reordering or eliding this instruction
	// changes observable behavior.
	HasSideEffects() bool
	// CanChangeTiming defaults to the negation of HasSideEffects.
	CanChangeTiming() bool
	// IsIdempotent is true if repeated execution is equivalent to
	// executing once.
	IsIdempotent() bool
	// WritesAliasVar is true if any output is Alias-allocated.
	WritesAliasVar() bool
	// WritesMappedVar is true if any output has a non-nil mapping.
	WritesMappedVar() bool
	// ConstantFold returns a map from outputs to folded constants if
	// every input is known, or nil otherwise. fnName and reporter exist
	// only so ASSERT/ASSERT_EQ can report a provable-failure warning
	// against the enclosing function name; every other instruction
	// ignores both (reporter may be nil, meaning "don't report").
	ConstantFold(fnName string, knownConstants map[string]types.Arg, reporter *diag.Reporter) map[string]types.Arg
	// ConstantReplace returns a simpler instruction equivalent to this one
	// given a set of known-constant variables, or nil if none applies
	// (e.g. short-circuiting a boolean AND/OR against a known operand).
	ConstantReplace(knownConstants map[string]types.Arg) Instruction
	// CanMakeImmediate reports whether this instruction can be rewritten
	// into a synchronous, local-value form once the named blocking inputs
	// are closed (waitForClose maps variable name to whether this
	// instruction would need to wait for that variable to close, as
	// opposed to merely being set). Returns nil if no synchronous form
	// exists.
	CanMakeImmediate(waitForClose map[string]bool) *MakeImmRequest
	// MakeImmediate builds the synchronous replacement requested by a
	// prior CanMakeImmediate call, given the fetched local values for
	// inputVars and the local-value variables to assign for outVars.
	MakeImmediate(outVars []*types.Var, inValues []types.Arg) *MakeImmChange
	// GetResults returns the ResultVals this instruction's outputs
	// establish for common-subexpression elimination, recording them in
	// known as a side effect. Returns nil for instructions with no
	// CSE-exploitable result (side-effecting or non-deterministic ops).
	// opts gates the opt-in inference rules (OptAlgebra); every
	// instruction besides Builtin's PLUS_INT/MINUS_INT ignores it.
	GetResults(known *Tracker, opts *config.Options) []ResultVal
	// GetIncrVars returns the variables this instruction claims a read
	// refcount increment on (reads) and a write refcount increment on
	// (writes); reads must be a subset of the variables among
	// Inputs and Outputs, writes a subset of Outputs.
	GetIncrVars() (reads, writes []*types.Var)
	// TryPiggyback returns the subset of counters (of the given kind)
	// this instruction can decrement as a side effect of its own
	// execution rather than needing a separate decrement instruction, or
	// nil if it cannot piggyback any.
	TryPiggyback(counters []*types.Var, kind RefcountKind) []*types.Var
	// GetComponentAlias reports whether this instruction establishes that
	// one variable (part) is a structural component of another (whole),
	// e.g. a struct_lookup's result aliasing a field of its struct input.
	GetComponentAlias() (whole, part *types.Var, ok bool)
	// Clone returns a deep-enough copy of this instruction that mutating
	// the clone's Inputs/Outputs slices or calling RenameVars on it does
	// not affect the original.
	Clone() Instruction
	// RenameVars substitutes variables in place according to renames and
	// mode.
	RenameVars(renames map[string]*types.Var, mode RenameMode)

	String() string
}

// base supplies the header field and default method bodies shared by every
// concrete instruction, the way the teacher's mir.Instruction struct
// carries one OpCode+Operands pair that every lowering site fills in rather
// than redeclaring. Concrete families embed base for Opcode() and the
// defaults below, and implement the rest (Outputs/Inputs/HasSideEffects/
// CanChangeTiming/WritesAliasVar/WritesMappedVar) themselves, since Go
// cannot override a promoted method's result by embedding alone.
type base struct {
	op Opcode
}

func (b base) Opcode() Opcode { return b.op }

func (b base) ModifiedOutputs() []*types.Var { return nil }
func (b base) ReadOutputs() []*types.Var     { return nil }
func (b base) Initialized() []InitializedVar { return nil }
func (b base) Mode() backend.TaskMode        { return backend.Local }
func (b base) IsIdempotent() bool            { return false }

// canChangeTiming is the shared default: true unless the instruction has
// side effects.
func canChangeTiming(hasSideEffects bool) bool { return !hasSideEffects }

// writesAliasVar reports whether any of outs is Alias-allocated.
func writesAliasVar(outs []*types.Var) bool {
	for _, v := range outs {
		if v.Alloc == types.Alias {
			return true
		}
	}
	return false
}

// writesMappedVar reports whether any of outs has a non-nil mapping.
func writesMappedVar(outs []*types.Var) bool {
	for _, v := range outs {
		if v.Mapping != nil {
			return true
		}
	}
	return false
}

// modifiedOutputsDefault returns outs unchanged, the default for
// ModifiedOutputs on instructions where every declared output is actually
// mutated.
func modifiedOutputsDefault(outs []*types.Var) []*types.Var { return outs }
