package ir

import (
	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/config"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

// ForeignKind tags the handful of foreign functions CSE gives extra
// result-equivalence treatment beyond the plain call-equivalence every
// deterministic ForeignCall gets, mirroring ForeignFunctions.SpecialFunction
// without this package importing the ffi package that owns that enum -- ir
// sits below ffi in this module's dependency order.
type ForeignKind int

const (
	ForeignPlain ForeignKind = iota
	ForeignInputFile
	ForeignUncachedInputFile
	ForeignInputURL
	ForeignRange
	ForeignRangeStep
	ForeignSize
	ForeignArgv
)

// ForeignCall invokes a registered foreign function asynchronously --
// CALL_FOREIGN blocks on every future/ref input, the same as an ordinary
// FunctionCall, but when Deterministic it also publishes CSE ResultVals for
// its outputs: a plain call-equivalence result per output, plus whichever
// special ResultVal its Kind establishes (filename equivalence for the
// input_file family, array-size equivalence for size/range/range_step),
// grounded on ICInstructions.java's addSpecialCVs.
type ForeignCall struct {
	base
	Name          string
	Kind          ForeignKind
	Args          []types.Arg
	Outs          []*types.Var
	Deterministic bool
	Props         *backend.TaskProps
}

// NewForeignCall builds a ForeignCall instruction.
func NewForeignCall(name string, kind ForeignKind, args []types.Arg, outs []*types.Var, deterministic bool, props *backend.TaskProps) *ForeignCall {
	if props == nil {
		props = &backend.TaskProps{}
	}
	return &ForeignCall{base: base{op: CallForeign}, Name: name, Kind: kind, Args: args, Outs: outs, Deterministic: deterministic, Props: props}
}

func (c *ForeignCall) Inputs() []types.Arg {
	all := make([]types.Arg, len(c.Args), len(c.Args)+3)
	copy(all, c.Args)
	for _, p := range []*types.Arg{c.Props.Priority, c.Props.TargetRank, c.Props.Parallelism} {
		if p != nil {
			all = append(all, *p)
		}
	}
	return all
}

func (c *ForeignCall) Outputs() []*types.Var         { return c.Outs }
func (c *ForeignCall) ModifiedOutputs() []*types.Var { return modifiedOutputsDefault(c.Outs) }

// HasSideEffects is the negation of Deterministic: the CSE pass only ever
// marks a ForeignCall deterministic once it has checked the callee's
// registry entry carries no side-effecting property, so that flag alone is
// authoritative here.
func (c *ForeignCall) HasSideEffects() bool   { return !c.Deterministic }
func (c *ForeignCall) CanChangeTiming() bool  { return canChangeTiming(c.HasSideEffects()) }
func (c *ForeignCall) IsIdempotent() bool     { return c.Deterministic }
func (c *ForeignCall) WritesAliasVar() bool   { return writesAliasVar(c.Outs) }
func (c *ForeignCall) WritesMappedVar() bool  { return writesMappedVar(c.Outs) }
func (c *ForeignCall) Mode() backend.TaskMode { return backend.ControlMode }

func (c *ForeignCall) BlockingInputs() []*types.Var {
	var blocking []*types.Var
	for _, a := range c.Args {
		if a.IsVar() && (types.IsPrimFuture(a.Var().Type) || types.IsRef(a.Var().Type)) {
			blocking = append(blocking, a.Var())
		}
	}
	return blocking
}

func (c *ForeignCall) ConstantFold(string, map[string]types.Arg, *diag.Reporter) map[string]types.Arg { return nil }
func (c *ForeignCall) ConstantReplace(map[string]types.Arg) Instruction       { return nil }
func (c *ForeignCall) CanMakeImmediate(map[string]bool) *MakeImmRequest       { return nil }
func (c *ForeignCall) MakeImmediate([]*types.Var, []types.Arg) *MakeImmChange { return nil }

// GetResults publishes the plain call-equivalence ResultVal for every
// output of a deterministic call -- so two calls to the same function with
// equal arguments collapse under CSE -- plus whichever special ResultVal
// this call's Kind establishes.
func (c *ForeignCall) GetResults(known *Tracker, _ *config.Options) []ResultVal {
	if !c.Deterministic || len(c.Outs) == 0 {
		return nil
	}
	var results []ResultVal
	for i, o := range c.Outs {
		results = append(results, BuildResult(c.op, c.Name, i, c.Args, types.VarRef(o), false))
	}
	switch c.Kind {
	case ForeignInputFile, ForeignUncachedInputFile, ForeignInputURL:
		if len(c.Args) == 1 && len(c.Outs) == 1 {
			results = append(results, FilenameResult(c.Args[0], c.Outs[0], false))
		}
	case ForeignSize:
		if len(c.Args) == 1 && c.Args[0].IsVar() && len(c.Outs) == 1 {
			results = append(results, ArraySizeResult(c.Args[0].Var(), types.VarRef(c.Outs[0])))
		}
	case ForeignRange, ForeignRangeStep:
		if size, ok := rangeOutputSize(c.Kind, c.Args); ok && len(c.Outs) == 1 {
			results = append(results, ArraySizeResult(c.Outs[0], size))
		}
	}
	for _, rv := range results {
		known.Record(rv)
	}
	return results
}

// rangeOutputSize computes a fully-constant range/range_step call's output
// array size: max(0, (end-start)/step + 1), matching the boundary case
// where a step that can never reach end (e.g. a negative step with
// end > start) collapses the array to size 0.
func rangeOutputSize(kind ForeignKind, args []types.Arg) (types.Arg, bool) {
	if len(args) < 2 {
		return types.Arg{}, false
	}
	for _, a := range args {
		if !a.IsConst() || a.ConstKind() != types.ConstInt {
			return types.Arg{}, false
		}
	}
	start, end := args[0].IntVal(), args[1].IntVal()
	step := int64(1)
	if kind == ForeignRangeStep {
		if len(args) < 3 {
			return types.Arg{}, false
		}
		step = args[2].IntVal()
	}
	if step == 0 {
		return types.Arg{}, false
	}
	size := (end-start)/step + 1
	if size < 0 {
		size = 0
	}
	return types.ConstInt64(size), true
}

func (c *ForeignCall) GetIncrVars() (reads, writes []*types.Var) {
	return getIncrVarsDefault(c.Args, c.Outs)
}

func (c *ForeignCall) TryPiggyback([]*types.Var, RefcountKind) []*types.Var { return nil }

func (c *ForeignCall) GetComponentAlias() (whole, part *types.Var, ok bool) { return nil, nil, false }

func (c *ForeignCall) Clone() Instruction {
	clone := *c
	clone.Args = cloneArgs(c.Args)
	clone.Outs = cloneVars(c.Outs)
	if c.Props != nil {
		p := *c.Props
		clone.Props = &p
	}
	return &clone
}

func (c *ForeignCall) RenameVars(renames map[string]*types.Var, mode RenameMode) {
	renameArgSlice(c.Args, renames)
	renameVarSlice(c.Outs, renames)
}

func (c *ForeignCall) String() string {
	return formatCall(c.op.String(), c.Name, c.Outs, c.Args)
}

var _ Instruction = (*ForeignCall)(nil)
