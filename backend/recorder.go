package backend

import (
	"fmt"
	"strings"

	"github.com/bnikolic/swift-t/types"
)

// Op is a single recorded backend call, kept as a name plus a rendered
// argument list so tests can assert on exact emission sequences without
// depending on concrete Go types.
type Op struct {
	Name string
	Args []string
}

func (o Op) String() string {
	return o.Name + "(" + strings.Join(o.Args, ", ") + ")"
}

// Recorder is an in-memory Backend that logs every call it receives, in
// order, for assertions in walk package tests. It never constructs real IR;
// this module contains no Backend implementation that emits ir
// instructions.
type Recorder struct {
	Ops        []Op
	checkpoint checkpointToggle
}

// NewRecorder creates an empty Recorder with checkpointing disabled.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetCheckpointing configures what CheckpointLookupEnabled/
// CheckpointWriteEnabled report, letting tests exercise both lowering paths
// of a checkpointed call.
func (r *Recorder) SetCheckpointing(lookup, write bool) {
	r.checkpoint = checkpointToggle{lookup: lookup, write: write}
}

func (r *Recorder) record(name string, args ...interface{}) {
	rendered := make([]string, len(args))
	for i, a := range args {
		rendered[i] = fmt.Sprint(a)
	}
	r.Ops = append(r.Ops, Op{Name: name, Args: rendered})
}

// Repr renders the full op log, one call per line, in the teacher's
// strings.Builder emission style.
func (r *Recorder) Repr() string {
	var sb strings.Builder
	for _, op := range r.Ops {
		sb.WriteString(op.String())
		sb.WriteRune('\n')
	}
	return sb.String()
}

func argsRepr(args []types.Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Repr()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func varsRepr(vars []*types.Var) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.Name
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r *Recorder) AssignScalar(dst *types.Var, src types.Arg) { r.record("assign_scalar", dst.Name, src.Repr()) }
func (r *Recorder) AssignFile(dst *types.Var, src types.Arg)   { r.record("assign_file", dst.Name, src.Repr()) }
func (r *Recorder) AssignArray(dst *types.Var, src types.Arg)  { r.record("assign_array", dst.Name, src.Repr()) }
func (r *Recorder) AssignBag(dst *types.Var, src types.Arg)    { r.record("assign_bag", dst.Name, src.Repr()) }

func (r *Recorder) RetrieveScalar(dst, src *types.Var)    { r.record("retrieve_scalar", dst.Name, src.Name) }
func (r *Recorder) RetrieveFile(dst, src *types.Var)      { r.record("retrieve_file", dst.Name, src.Name) }
func (r *Recorder) RetrieveArray(dst, src *types.Var)     { r.record("retrieve_array", dst.Name, src.Name) }
func (r *Recorder) RetrieveBag(dst, src *types.Var)       { r.record("retrieve_bag", dst.Name, src.Name) }
func (r *Recorder) RetrieveRecursive(dst, src *types.Var) { r.record("retrieve_recursive", dst.Name, src.Name) }
func (r *Recorder) RetrieveRef(dst, src *types.Var)       { r.record("retrieve_ref", dst.Name, src.Name) }
func (r *Recorder) AssignRef(dst *types.Var, src types.Arg) { r.record("assign_ref", dst.Name, src.Repr()) }
func (r *Recorder) CopyFile(dst, src *types.Var)          { r.record("copy_file", dst.Name, src.Name) }

func (r *Recorder) DerefScalar(dst, src *types.Var) { r.record("deref_scalar", dst.Name, src.Name) }
func (r *Recorder) DerefFile(dst, src *types.Var)   { r.record("deref_file", dst.Name, src.Name) }

func (r *Recorder) ArrayLookupRefImm(dst, arr *types.Var, key types.Arg) {
	r.record("array_lookup_ref_imm", dst.Name, arr.Name, key.Repr())
}
func (r *Recorder) ArrayLookupFuture(dst, arr, key *types.Var) {
	r.record("array_lookup_future", dst.Name, arr.Name, key.Name)
}
func (r *Recorder) ArrayInsertImm(arr *types.Var, key, val types.Arg) {
	r.record("array_insert_imm", arr.Name, key.Repr(), val.Repr())
}
func (r *Recorder) ArrayInsertFuture(arr, key *types.Var, val types.Arg) {
	r.record("array_insert_future", arr.Name, key.Name, val.Repr())
}
func (r *Recorder) ArrayBuild(dst *types.Var, keys, vals []types.Arg) {
	r.record("array_build", dst.Name, argsRepr(keys), argsRepr(vals))
}
func (r *Recorder) BagInsert(bag *types.Var, val types.Arg) {
	r.record("bag_insert", bag.Name, val.Repr())
}

func (r *Recorder) StructLookup(dst, strct *types.Var, field string) {
	r.record("struct_lookup", dst.Name, strct.Name, field)
}
func (r *Recorder) StructRefLookup(dst, strct *types.Var, field string) {
	r.record("struct_ref_lookup", dst.Name, strct.Name, field)
}

func (r *Recorder) LocalOp(sub string, out *types.Var, ins []types.Arg) {
	r.record("local_op", sub, out.Name, argsRepr(ins))
}
func (r *Recorder) AsyncOp(sub string, out *types.Var, ins []types.Arg, props *TaskProps) {
	r.record("async_op", sub, out.Name, argsRepr(ins))
}

func (r *Recorder) StartWaitStatement(name string, vars []*types.Var, mode WaitMode, recursive, continueAfter bool, taskMode TaskMode, props *TaskProps) {
	r.record("start_wait", name, varsRepr(vars), recursive, continueAfter)
}
func (r *Recorder) EndWaitStatement() { r.record("end_wait") }

func (r *Recorder) StartForeachLoop(container *types.Var, keyVar, valVar *types.Var) {
	keyName, valName := "_", "_"
	if keyVar != nil {
		keyName = keyVar.Name
	}
	if valVar != nil {
		valName = valVar.Name
	}
	r.record("start_foreach", container.Name, keyName, valName)
}
func (r *Recorder) EndForeachLoop() { r.record("end_foreach") }

func (r *Recorder) StartIfStatement(cond types.Arg, hasElse bool) {
	r.record("start_if", cond.Repr(), hasElse)
}
func (r *Recorder) StartElseBlock() { r.record("start_else") }
func (r *Recorder) EndIfStatement() { r.record("end_if") }

func (r *Recorder) FunctionCall(name string, args []types.Arg, outs []*types.Var, mode TaskMode, props *TaskProps) {
	r.record("function_call", name, argsRepr(args), varsRepr(outs))
}
func (r *Recorder) BuiltinFunctionCall(name string, args []types.Arg, outs []*types.Var, props *TaskProps) {
	r.record("builtin_function_call", name, argsRepr(args), varsRepr(outs))
}
func (r *Recorder) BuiltinLocalFunctionCall(name string, args []types.Arg, outs []*types.Var) {
	r.record("builtin_local_function_call", name, argsRepr(args), varsRepr(outs))
}
func (r *Recorder) IntrinsicCall(name string, args []types.Arg, outs []*types.Var) {
	r.record("intrinsic_call", name, argsRepr(args), varsRepr(outs))
}

// lookup/write toggle whether the embedded checkpoint
// behavior is active; real backends source these from config.Options.
type checkpointToggle struct {
	lookup, write bool
}

func (r *Recorder) CheckpointLookupEnabled() bool { return r.checkpoint.lookup }
func (r *Recorder) CheckpointWriteEnabled() bool  { return r.checkpoint.write }

func (r *Recorder) LookupCheckpoint(existsOut, valOut *types.Var, keyBlob types.Arg) {
	r.record("lookup_checkpoint", existsOut.Name, valOut.Name, keyBlob.Repr())
}
func (r *Recorder) WriteCheckpoint(keyBlob, valBlob types.Arg) {
	r.record("write_checkpoint", keyBlob.Repr(), valBlob.Repr())
}
func (r *Recorder) PackValues(dst *types.Var, vals []types.Arg) {
	r.record("pack_values", dst.Name, argsRepr(vals))
}
func (r *Recorder) UnpackValues(dsts []*types.Var, blob types.Arg) {
	r.record("unpack_values", varsRepr(dsts), blob.Repr())
}
func (r *Recorder) FreeBlob(blob *types.Var) { r.record("free_blob", blob.Name) }
func (r *Recorder) StoreRecursive(dst *types.Var, src types.Arg) {
	r.record("store_recursive", dst.Name, src.Repr())
}
