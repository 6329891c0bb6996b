package ir

import (
	"strings"

	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/config"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

// FunctionCall invokes a dataflow function asynchronously: it returns as
// soon as it has forked off the callee task, and its outputs become
// available only once the callee completes.
type FunctionCall struct {
	base
	Name  string
	Args  []types.Arg
	Outs  []*types.Var
	Props *backend.TaskProps
}

// NewFunctionCall builds a FunctionCall, choosing CALL_CONTROL vs CALL_SYNC
// per the calling convention given by sync.
func NewFunctionCall(name string, args []types.Arg, outs []*types.Var, sync bool, props *backend.TaskProps) *FunctionCall {
	op := CallControl
	if sync {
		op = CallSync
	}
	return &FunctionCall{base: base{op: op}, Name: name, Args: args, Outs: outs, Props: props}
}

func (c *FunctionCall) Inputs() []types.Arg          { return c.Args }
func (c *FunctionCall) Outputs() []*types.Var         { return c.Outs }
func (c *FunctionCall) ModifiedOutputs() []*types.Var { return modifiedOutputsDefault(c.Outs) }
func (c *FunctionCall) HasSideEffects() bool          { return true }
func (c *FunctionCall) CanChangeTiming() bool         { return canChangeTiming(true) }
func (c *FunctionCall) IsIdempotent() bool            { return false }
func (c *FunctionCall) WritesAliasVar() bool          { return writesAliasVar(c.Outs) }
func (c *FunctionCall) WritesMappedVar() bool         { return writesMappedVar(c.Outs) }
func (c *FunctionCall) Mode() backend.TaskMode {
	if c.op == CallSync {
		return backend.Sync
	}
	return backend.ControlMode
}

// BlockingInputs is empty: asynchronous calls do not block the caller on
// their arguments -- the callee task waits on them instead.
func (c *FunctionCall) BlockingInputs() []*types.Var { return nil }

func (c *FunctionCall) ConstantFold(string, map[string]types.Arg, *diag.Reporter) map[string]types.Arg { return nil }
func (c *FunctionCall) ConstantReplace(map[string]types.Arg) Instruction       { return nil }
func (c *FunctionCall) CanMakeImmediate(map[string]bool) *MakeImmRequest       { return nil }
func (c *FunctionCall) MakeImmediate([]*types.Var, []types.Arg) *MakeImmChange { return nil }

// GetResults is nil: a dataflow-function call's purity is not decidable
// from the instruction alone (this package carries no function-body
// summary), unlike ForeignCall and RunExternal which carry their own
// Deterministic flag.
func (c *FunctionCall) GetResults(*Tracker, *config.Options) []ResultVal { return nil }

func (c *FunctionCall) GetIncrVars() (reads, writes []*types.Var) {
	return getIncrVarsDefault(c.Args, c.Outs)
}

func (c *FunctionCall) TryPiggyback([]*types.Var, RefcountKind) []*types.Var { return nil }

func (c *FunctionCall) GetComponentAlias() (whole, part *types.Var, ok bool) { return nil, nil, false }

func (c *FunctionCall) Clone() Instruction {
	clone := *c
	clone.Args = cloneArgs(c.Args)
	clone.Outs = cloneVars(c.Outs)
	if c.Props != nil {
		p := *c.Props
		clone.Props = &p
	}
	return &clone
}

func (c *FunctionCall) RenameVars(renames map[string]*types.Var, _ RenameMode) {
	renameArgSlice(c.Args, renames)
	renameVarSlice(c.Outs, renames)
}

func (c *FunctionCall) String() string {
	return formatCall(c.op.String(), c.Name, c.Outs, c.Args)
}

// LocalFunctionCall invokes a synchronous builtin or foreign-local function:
// it runs immediately in the caller's task and its outputs are available
// the moment the call returns.
type LocalFunctionCall struct {
	base
	Name string
	Args []types.Arg
	Outs []*types.Var
}

// NewLocalFunctionCall builds a LocalFunctionCall.
func NewLocalFunctionCall(name string, args []types.Arg, outs []*types.Var) *LocalFunctionCall {
	return &LocalFunctionCall{base: base{op: CallForeignLocal}, Name: name, Args: args, Outs: outs}
}

func (c *LocalFunctionCall) Inputs() []types.Arg          { return c.Args }
func (c *LocalFunctionCall) Outputs() []*types.Var         { return c.Outs }
func (c *LocalFunctionCall) ModifiedOutputs() []*types.Var { return modifiedOutputsDefault(c.Outs) }

// HasSideEffects defaults to true: most local functions are treated as
// possibly impure (file I/O, randomness) unless the caller knows otherwise
// via the ffi registry; CSE should consult ffi.Registry before trusting
// determinism, not this flag alone.
func (c *LocalFunctionCall) HasSideEffects() bool  { return true }
func (c *LocalFunctionCall) CanChangeTiming() bool { return canChangeTiming(true) }
func (c *LocalFunctionCall) IsIdempotent() bool    { return false }
func (c *LocalFunctionCall) WritesAliasVar() bool  { return writesAliasVar(c.Outs) }
func (c *LocalFunctionCall) WritesMappedVar() bool { return writesMappedVar(c.Outs) }
func (c *LocalFunctionCall) Mode() backend.TaskMode { return backend.Local }

func (c *LocalFunctionCall) BlockingInputs() []*types.Var {
	var blocking []*types.Var
	for _, a := range c.Args {
		if a.IsVar() && types.IsPrimFuture(a.Var().Type) {
			blocking = append(blocking, a.Var())
		}
	}
	return blocking
}

func (c *LocalFunctionCall) ConstantFold(string, map[string]types.Arg, *diag.Reporter) map[string]types.Arg { return nil }
func (c *LocalFunctionCall) ConstantReplace(map[string]types.Arg) Instruction       { return nil }
func (c *LocalFunctionCall) CanMakeImmediate(map[string]bool) *MakeImmRequest       { return nil }
func (c *LocalFunctionCall) MakeImmediate([]*types.Var, []types.Arg) *MakeImmChange { return nil }

// GetResults is nil for the same reason as FunctionCall: purity for an
// arbitrary local/foreign-local call is a registry-level fact this
// instruction does not carry.
func (c *LocalFunctionCall) GetResults(*Tracker, *config.Options) []ResultVal { return nil }

func (c *LocalFunctionCall) GetIncrVars() (reads, writes []*types.Var) {
	return getIncrVarsDefault(c.Args, c.Outs)
}

func (c *LocalFunctionCall) TryPiggyback([]*types.Var, RefcountKind) []*types.Var { return nil }

func (c *LocalFunctionCall) GetComponentAlias() (whole, part *types.Var, ok bool) {
	return nil, nil, false
}

func (c *LocalFunctionCall) Clone() Instruction {
	clone := *c
	clone.Args = cloneArgs(c.Args)
	clone.Outs = cloneVars(c.Outs)
	return &clone
}

func (c *LocalFunctionCall) RenameVars(renames map[string]*types.Var, _ RenameMode) {
	renameArgSlice(c.Args, renames)
	renameVarSlice(c.Outs, renames)
}

func (c *LocalFunctionCall) String() string {
	return formatCall(c.op.String(), c.Name, c.Outs, c.Args)
}

// RunExternal invokes an external program synchronously: input files are
// blocking inputs, output files are produced (and closed) the moment the
// program exits.
type RunExternal struct {
	base
	Cmd            string
	InFiles        []types.Arg
	OutFiles       []*types.Var
	Args           []types.Arg
	SideEffects    bool
	Deterministic  bool
}

// NewRunExternal builds a RunExternal instruction.
func NewRunExternal(cmd string, inFiles []types.Arg, outFiles []*types.Var, args []types.Arg, sideEffects, deterministic bool) *RunExternal {
	return &RunExternal{
		base: base{op: OpRunExternal},
		Cmd: cmd, InFiles: inFiles, OutFiles: outFiles, Args: args,
		SideEffects: sideEffects, Deterministic: deterministic,
	}
}

func (r *RunExternal) Inputs() []types.Arg {
	all := make([]types.Arg, 0, len(r.Args)+len(r.InFiles))
	all = append(all, r.Args...)
	all = append(all, r.InFiles...)
	return all
}
func (r *RunExternal) Outputs() []*types.Var         { return r.OutFiles }
func (r *RunExternal) ModifiedOutputs() []*types.Var { return modifiedOutputsDefault(r.OutFiles) }
func (r *RunExternal) HasSideEffects() bool          { return r.SideEffects }
func (r *RunExternal) CanChangeTiming() bool         { return canChangeTiming(r.SideEffects) }
func (r *RunExternal) IsIdempotent() bool            { return false }
func (r *RunExternal) WritesAliasVar() bool          { return writesAliasVar(r.OutFiles) }
func (r *RunExternal) WritesMappedVar() bool         { return writesMappedVar(r.OutFiles) }
func (r *RunExternal) Mode() backend.TaskMode        { return backend.Sync }

// BlockingInputs reports only the input files: the run itself is
// synchronous, but the compiler must still treat it as depending on the
// files it reads.
func (r *RunExternal) BlockingInputs() []*types.Var {
	var blocking []*types.Var
	for _, a := range r.InFiles {
		if a.IsVar() {
			blocking = append(blocking, a.Var())
		}
	}
	return blocking
}

func (r *RunExternal) ConstantFold(string, map[string]types.Arg, *diag.Reporter) map[string]types.Arg { return nil }
func (r *RunExternal) ConstantReplace(map[string]types.Arg) Instruction       { return nil }
func (r *RunExternal) CanMakeImmediate(map[string]bool) *MakeImmRequest       { return nil }
func (r *RunExternal) MakeImmediate([]*types.Var, []types.Arg) *MakeImmChange { return nil }

// GetResults publishes a call-equivalence ResultVal per output file when
// Deterministic is set: the cache key is the command, its arguments, and
// its input files, so two runs of the same deterministic external program
// over the same inputs collapse under CSE.
func (r *RunExternal) GetResults(known *Tracker, _ *config.Options) []ResultVal {
	if !r.Deterministic || len(r.OutFiles) == 0 {
		return nil
	}
	key := make([]types.Arg, 0, len(r.Args)+len(r.InFiles)+1)
	key = append(key, types.ConstStringVal(r.Cmd))
	key = append(key, r.Args...)
	key = append(key, r.InFiles...)
	var results []ResultVal
	for i, o := range r.OutFiles {
		rv := BuildResult(r.op, "", i, key, types.VarRef(o), true)
		results = append(results, rv)
		known.Record(rv)
	}
	return results
}

func (r *RunExternal) GetIncrVars() (reads, writes []*types.Var) {
	return getIncrVarsDefault(r.Inputs(), r.OutFiles)
}

func (r *RunExternal) TryPiggyback([]*types.Var, RefcountKind) []*types.Var { return nil }

func (r *RunExternal) GetComponentAlias() (whole, part *types.Var, ok bool) { return nil, nil, false }

func (r *RunExternal) Clone() Instruction {
	clone := *r
	clone.InFiles = cloneArgs(r.InFiles)
	clone.Args = cloneArgs(r.Args)
	clone.OutFiles = cloneVars(r.OutFiles)
	return &clone
}

func (r *RunExternal) RenameVars(renames map[string]*types.Var, _ RenameMode) {
	renameArgSlice(r.InFiles, renames)
	renameArgSlice(r.Args, renames)
	renameVarSlice(r.OutFiles, renames)
}

func (r *RunExternal) String() string {
	var sb strings.Builder
	sb.WriteString(formatCall("run_external", r.Cmd, r.OutFiles, r.Args))
	sb.WriteString(" infiles=")
	sb.WriteString(argsRepr(r.InFiles))
	return sb.String()
}

func formatCall(op, name string, outs []*types.Var, args []types.Arg) string {
	var sb strings.Builder
	sb.WriteString(op)
	sb.WriteRune(' ')
	for i, v := range outs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.Name)
	}
	if len(outs) > 0 {
		sb.WriteString(" = ")
	}
	sb.WriteString(name)
	sb.WriteRune('(')
	sb.WriteString(argsRepr(args))
	sb.WriteRune(')')
	return sb.String()
}

func argsRepr(args []types.Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Repr()
	}
	return strings.Join(parts, ", ")
}

var (
	_ Instruction = (*FunctionCall)(nil)
	_ Instruction = (*LocalFunctionCall)(nil)
	_ Instruction = (*RunExternal)(nil)
)
