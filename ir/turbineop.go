package ir

import (
	"strings"

	"github.com/bnikolic/swift-t/config"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

// turbineTrait records the fixed, opcode-indexed semantic facts about a
// mechanical data-movement instruction: whether it blocks on its inputs,
// whether it has side effects, and whether repeating it is a no-op. These
// never vary per instance, only per opcode, so they are looked up once from
// a table rather than recomputed -- the Go analogue of the large per-case
// switch STC's Instruction subclasses use, collapsed because the turbine
// ops share one struct shape.
type turbineTrait struct {
	blocksOnInputs bool
	sideEffects    bool
	idempotent     bool
}

var turbineTraits = map[Opcode]turbineTrait{
	DerefInt:    {blocksOnInputs: true},
	DerefString: {blocksOnInputs: true},
	DerefFloat:  {blocksOnInputs: true},
	DerefBool:   {blocksOnInputs: true},
	DerefBlob:   {blocksOnInputs: true},
	DerefFile:   {blocksOnInputs: true},

	StoreInt:    {sideEffects: true, idempotent: true},
	StoreString: {sideEffects: true, idempotent: true},
	StoreFloat:  {sideEffects: true, idempotent: true},
	StoreBool:   {sideEffects: true, idempotent: true},
	StoreRef:    {sideEffects: true, idempotent: true},
	StoreBlob:   {sideEffects: true, idempotent: true},
	StoreVoid:   {sideEffects: true, idempotent: true},
	StoreFile:   {sideEffects: true, idempotent: true},

	LoadInt:    {blocksOnInputs: true},
	LoadString: {blocksOnInputs: true},
	LoadFloat:  {blocksOnInputs: true},
	LoadBool:   {blocksOnInputs: true},
	LoadRef:    {blocksOnInputs: true},
	LoadBlob:   {blocksOnInputs: true},
	LoadVoid:   {blocksOnInputs: true},
	LoadFile:   {blocksOnInputs: true},

	FreeBlob:         {sideEffects: true},
	DecrLocalFileRef: {sideEffects: true},
	DecrWriters:      {sideEffects: true},
	DecrRef:          {sideEffects: true},
	IncrWriters:      {sideEffects: true},
	IncrRef:          {sideEffects: true},

	ArrayRefLookupFuture: {blocksOnInputs: true},
	ArrayLookupFuture:    {blocksOnInputs: true},
	ArrayRefLookupImm:    {blocksOnInputs: true},
	ArrayLookupRefImm:    {blocksOnInputs: true},
	ArrayLookupImm:       {blocksOnInputs: true},

	ArrayInsertFuture:         {sideEffects: true},
	ArrayDerefInsertFuture:    {sideEffects: true, blocksOnInputs: true},
	ArrayInsertImm:            {sideEffects: true},
	ArrayDerefInsertImm:       {sideEffects: true, blocksOnInputs: true},
	ArrayRefInsertFuture:      {sideEffects: true},
	ArrayRefDerefInsertFuture: {sideEffects: true, blocksOnInputs: true},
	ArrayRefInsertImm:         {sideEffects: true},
	ArrayRefDerefInsertImm:    {sideEffects: true, blocksOnInputs: true},
	ArrayBuild:                {sideEffects: true},

	StructLookup:    {},
	StructRefLookup: {blocksOnInputs: true},
	StructInsert:    {sideEffects: true},

	ArrayCreateNestedFuture:    {sideEffects: true},
	ArrayRefCreateNestedFuture: {sideEffects: true, blocksOnInputs: true},
	ArrayCreateNestedImm:       {sideEffects: true},
	ArrayRefCreateNestedImm:    {sideEffects: true, blocksOnInputs: true},

	CopyRef: {},

	InitUpdateableFloat: {sideEffects: true},
	UpdateMin:           {sideEffects: true, blocksOnInputs: true},
	UpdateIncr:          {sideEffects: true, blocksOnInputs: true},
	UpdateScale:         {sideEffects: true, blocksOnInputs: true},
	LatestValue:         {blocksOnInputs: true},
	UpdateMinImm:        {sideEffects: true},
	UpdateIncrImm:       {sideEffects: true},
	UpdateScaleImm:      {sideEffects: true},

	InitLocalOutputFile: {sideEffects: true},
	GetFilename:         {},
	ChooseTmpFilename:   {sideEffects: true},
	IsMapped:            {},
	SetFilenameVal:      {sideEffects: true},
	GetFilenameVal:      {blocksOnInputs: true},
	GetLocalFilename:    {},
	CopyFileContents:    {sideEffects: true, blocksOnInputs: true},
}

// TurbineOp is the generic instruction for the turbine data-movement
// opcodes (store/load/deref/array/struct/refcount/file families). These
// share one instance/output/input shape, so -- following the teacher's own
// single Instruction{OpCode, Operands} struct for its entire mechanical
// opcode set -- they share one Go type rather than one struct per opcode.
type TurbineOp struct {
	base
	outs []*types.Var
	ins  []types.Arg
}

// NewTurbineOp constructs a turbine op of the given opcode.
func NewTurbineOp(op Opcode, outs []*types.Var, ins []types.Arg) *TurbineOp {
	return &TurbineOp{base: base{op: op}, outs: outs, ins: ins}
}

func (t *TurbineOp) Inputs() []types.Arg       { return t.ins }
func (t *TurbineOp) Outputs() []*types.Var      { return t.outs }
func (t *TurbineOp) ModifiedOutputs() []*types.Var { return modifiedOutputsDefault(t.outs) }

func (t *TurbineOp) trait() turbineTrait { return turbineTraits[t.op] }

func (t *TurbineOp) HasSideEffects() bool { return t.trait().sideEffects }
func (t *TurbineOp) CanChangeTiming() bool { return canChangeTiming(t.HasSideEffects()) }
func (t *TurbineOp) IsIdempotent() bool   { return t.trait().idempotent }
func (t *TurbineOp) WritesAliasVar() bool { return writesAliasVar(t.outs) }
func (t *TurbineOp) WritesMappedVar() bool { return writesMappedVar(t.outs) }

func (t *TurbineOp) BlockingInputs() []*types.Var {
	if !t.trait().blocksOnInputs {
		return nil
	}
	var blocking []*types.Var
	for _, a := range t.ins {
		if a.IsVar() && types.IsPrimFuture(a.Var().Type) {
			blocking = append(blocking, a.Var())
		}
	}
	return blocking
}

// ConstantFold never applies to turbine ops: their output is either storage
// manipulation (store/incr/decr) or a retrieval whose value is not known
// until the referenced future closes.
func (t *TurbineOp) ConstantFold(string, map[string]types.Arg, *diag.Reporter) map[string]types.Arg { return nil }

// ConstantReplace never applies: turbine ops are mechanical storage
// manipulation, not expressions with an equivalent simpler form.
func (t *TurbineOp) ConstantReplace(map[string]types.Arg) Instruction { return nil }

// CanMakeImmediate returns nil for every turbine op. For the blocking ones
// (load/deref/array-lookup family), fetching their blocking inputs would
// just leave the same op blocked on nothing, which the scheduler already
// handles without a rewrite -- unlike Builtin, no turbine op has a distinct
// LOCAL_OP-equivalent opcode to rewrite into.
func (t *TurbineOp) CanMakeImmediate(map[string]bool) *MakeImmRequest       { return nil }
func (t *TurbineOp) MakeImmediate([]*types.Var, []types.Arg) *MakeImmChange { return nil }

// cacheableTurbineOps are the opcodes whose result is safe to key a
// ResultVal on: loading a future or dereferencing a ref always yields the
// same value on every occurrence (dataflow futures are write-once), and a
// struct field lookup always yields the same component variable for the
// same struct input. Every other turbine op is storage manipulation
// (store, refcount, array mutation, file bookkeeping) or retrieval from
// storage that can still be written after this instruction runs, neither
// of which is safe to treat as a pure, cacheable computation.
var cacheableTurbineOps = map[Opcode]bool{
	LoadInt: true, LoadString: true, LoadFloat: true, LoadBool: true,
	LoadRef: true, LoadBlob: true, LoadVoid: true, LoadFile: true,
	DerefInt: true, DerefString: true, DerefFloat: true, DerefBool: true,
	DerefBlob: true, DerefFile: true,
	StructLookup: true, StructRefLookup: true,
}

// GetResults publishes a canonical (opcode, inputs)-keyed ResultVal for the
// load/deref/struct-lookup family, so CSE can replace a second load of the
// same future, or a second lookup of the same struct field, with a
// reference to the first's output instead of re-emitting the instruction.
func (t *TurbineOp) GetResults(known *Tracker, _ *config.Options) []ResultVal {
	if !cacheableTurbineOps[t.op] || len(t.outs) == 0 {
		return nil
	}
	rv := BuildResult(t.op, "", 0, t.ins, types.VarRef(t.outs[0]), true)
	known.Record(rv)
	return []ResultVal{rv}
}

// GetIncrVars defers to the shared default except for the refcount
// opcodes themselves, which are the adjustment instructions, not
// candidates for a further wrapping increment.
func (t *TurbineOp) GetIncrVars() (reads, writes []*types.Var) {
	if IsRefcountOp(t.op) {
		return nil, nil
	}
	return getIncrVarsDefault(t.ins, t.outs)
}

// TryPiggyback lets a blocking op (load/deref/array-lookup) absorb a
// pending read-refcount decrement on any counter variable it already reads
// as a blocking input, sparing a separate DecrRef instruction.
func (t *TurbineOp) TryPiggyback(counters []*types.Var, kind RefcountKind) []*types.Var {
	if kind != ReadRefcount || !t.trait().blocksOnInputs {
		return nil
	}
	blocking := t.BlockingInputs()
	var piggybacked []*types.Var
	for _, c := range counters {
		for _, b := range blocking {
			if b.Name == c.Name {
				piggybacked = append(piggybacked, c)
				break
			}
		}
	}
	return piggybacked
}

// GetComponentAlias reports a struct_lookup/structref_lookup's looked-up
// field as a component of its struct input, the one turbine op family that
// establishes a part/whole relationship between two variables.
func (t *TurbineOp) GetComponentAlias() (whole, part *types.Var, ok bool) {
	if t.op != StructLookup && t.op != StructRefLookup {
		return nil, nil, false
	}
	if len(t.ins) == 0 || !t.ins[0].IsVar() || len(t.outs) == 0 {
		return nil, nil, false
	}
	return t.ins[0].Var(), t.outs[0], true
}

func (t *TurbineOp) Clone() Instruction {
	clone := *t
	clone.ins = cloneArgs(t.ins)
	clone.outs = cloneVars(t.outs)
	return &clone
}

func (t *TurbineOp) RenameVars(renames map[string]*types.Var, _ RenameMode) {
	renameArgSlice(t.ins, renames)
	renameVarSlice(t.outs, renames)
}

func (t *TurbineOp) String() string {
	var sb strings.Builder
	sb.WriteString(t.op.String())
	sb.WriteRune(' ')
	for i, v := range t.outs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.Name)
	}
	if len(t.outs) > 0 && len(t.ins) > 0 {
		sb.WriteString(" = ")
	}
	for i, a := range t.ins {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Repr())
	}
	return sb.String()
}

var _ Instruction = (*TurbineOp)(nil)
