package ir

import (
	"fmt"
	"strings"

	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/config"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

// BuiltinOpcode is the arithmetic/logic/control sub-operation a Builtin
// instruction performs, independent of whether it runs as LOCAL_OP or
// ASYNC_OP (original_source Operators.BuiltinOpcode).
type BuiltinOpcode int

// Enumeration of builtin sub-operations. Not exhaustive of STC's full
// operator table, but covers every operator the walker's operator dispatch
// (spec.md §4.6) needs plus the special foreign functions in the ffi
// package.
const (
	PlusInt BuiltinOpcode = iota
	MinusInt
	MultInt
	DivInt
	ModInt
	NegateInt
	PlusFloat
	MinusFloat
	MultFloat
	DivFloat
	NegateFloat
	PlusString
	EqInt
	NeqInt
	LtInt
	LteInt
	GtInt
	GteInt
	EqFloat
	LtFloat
	LteFloat
	GtFloat
	GteFloat
	EqString
	EqBool
	AndBool
	OrBool
	NotBool
	Assert
	AssertEq
	CopyBool
)

var builtinNames = map[BuiltinOpcode]string{
	PlusInt: "plus_int", MinusInt: "minus_int", MultInt: "mult_int",
	DivInt: "div_int", ModInt: "mod_int", NegateInt: "negate_int",
	PlusFloat: "plus_float", MinusFloat: "minus_float", MultFloat: "mult_float",
	DivFloat: "div_float", NegateFloat: "negate_float",
	PlusString: "plus_string",
	EqInt:      "eq_int", NeqInt: "neq_int", LtInt: "lt_int", LteInt: "lte_int",
	GtInt: "gt_int", GteInt: "gte_int",
	EqFloat: "eq_float", LtFloat: "lt_float", LteFloat: "lte_float",
	GtFloat: "gt_float", GteFloat: "gte_float",
	EqString: "eq_string", EqBool: "eq_bool",
	AndBool: "and_bool", OrBool: "or_bool", NotBool: "not_bool",
	Assert: "assert", AssertEq: "assert_eq",
	CopyBool: "copy_bool",
}

func (b BuiltinOpcode) String() string {
	if s, ok := builtinNames[b]; ok {
		return s
	}
	return "<bad builtin opcode>"
}

// impureOps are builtins whose evaluation can fail or produce
// observably-ordered output (the assert family); all others are pure.
var impureOps = map[BuiltinOpcode]bool{
	Assert:   true,
	AssertEq: true,
}

// commutative marks builtins whose input order does not affect the result,
// used by CSE to canonicalize operand order before keying.
var commutative = map[BuiltinOpcode]bool{
	PlusInt: true, MultInt: true, PlusFloat: true, MultFloat: true,
	EqInt: true, NeqInt: true, EqFloat: true, EqString: true, EqBool: true,
	AndBool: true, OrBool: true,
}

// flippable pairs a comparison opcode with its argument-order-flipped
// equivalent (a <= b  <=>  b >= a), used by CSE canonicalization.
var flippable = map[BuiltinOpcode]BuiltinOpcode{
	LtInt: GtInt, GtInt: LtInt, LteInt: GteInt, GteInt: LteInt,
	LtFloat: GtFloat, GtFloat: LtFloat, LteFloat: GteFloat, GteFloat: LteFloat,
}

// Builtin is an arithmetic, comparison, logic, or assertion operation.
// LOCAL_OP variants read and produce plain local values; ASYNC_OP variants
// read and produce futures and carry scheduling TaskProps.
type Builtin struct {
	base
	Subop  BuiltinOpcode
	Output *types.Var // nil if no output (e.g. assert)
	Ins    []types.Arg
	Props  *backend.TaskProps // non-nil only for ASYNC_OP
}

// NewLocalOp builds a LOCAL_OP builtin.
func NewLocalOp(subop BuiltinOpcode, output *types.Var, ins []types.Arg) *Builtin {
	return &Builtin{base: base{op: LocalOp}, Subop: subop, Output: output, Ins: ins}
}

// NewAsyncOp builds an ASYNC_OP builtin.
func NewAsyncOp(subop BuiltinOpcode, output *types.Var, ins []types.Arg, props *backend.TaskProps) *Builtin {
	if props == nil {
		props = &backend.TaskProps{}
	}
	return &Builtin{base: base{op: AsyncOp}, Subop: subop, Output: output, Ins: ins, Props: props}
}

func (b *Builtin) Inputs() []types.Arg {
	if b.Props == nil {
		return b.Ins
	}
	all := make([]types.Arg, len(b.Ins), len(b.Ins)+3)
	copy(all, b.Ins)
	for _, p := range []*types.Arg{b.Props.Priority, b.Props.TargetRank, b.Props.Parallelism} {
		if p != nil {
			all = append(all, *p)
		}
	}
	return all
}

func (b *Builtin) Outputs() []*types.Var {
	if b.Output == nil {
		return nil
	}
	return []*types.Var{b.Output}
}

func (b *Builtin) ModifiedOutputs() []*types.Var { return modifiedOutputsDefault(b.Outputs()) }

func (b *Builtin) HasSideEffects() bool {
	if b.op == LocalOp {
		return impureOps[b.Subop]
	}
	return impureOps[b.Subop] || b.WritesAliasVar() || b.WritesMappedVar()
}

func (b *Builtin) CanChangeTiming() bool { return canChangeTiming(b.HasSideEffects()) }
func (b *Builtin) IsIdempotent() bool    { return !impureOps[b.Subop] }
func (b *Builtin) WritesAliasVar() bool  { return writesAliasVar(b.Outputs()) }
func (b *Builtin) WritesMappedVar() bool { return writesMappedVar(b.Outputs()) }

func (b *Builtin) Mode() backend.TaskMode {
	if b.op == LocalOp {
		return backend.Local
	}
	return backend.ControlMode
}

// BlockingInputs is every future-typed variable input for ASYNC_OP;
// LOCAL_OP never blocks since its inputs are already local values.
func (b *Builtin) BlockingInputs() []*types.Var {
	if b.op == LocalOp {
		return nil
	}
	var blocking []*types.Var
	for _, a := range b.Ins {
		if a.IsVar() && types.IsPrimFuture(a.Var().Type) {
			blocking = append(blocking, a.Var())
		}
	}
	return blocking
}

// ConstantFold evaluates this builtin if every input resolves to a known
// constant, returning the folded value for Output (keyed by its name).
// Folds plus/minus/mult for ints and floats, negate_int, the integer
// comparisons eq/lt/lte/gt/gte, and plus_string; every other subop
// (division, modulo, negate_float, neq_int, the float comparisons, and the
// remaining string and bool ops) returns nil. ASSERT/ASSERT_EQ never
// fold a value (they have no Output) but are checked here regardless,
// mirroring ICInstructions.java's constantFold calling
// compileTimeAssertCheck before its own output-fold logic.
func (b *Builtin) ConstantFold(fnName string, knownConstants map[string]types.Arg, reporter *diag.Reporter) map[string]types.Arg {
	if b.Subop == Assert || b.Subop == AssertEq {
		checkCompileTimeAssert(b.Subop, b.Ins, knownConstants, fnName, reporter)
	}
	if b.Output == nil {
		return nil
	}
	vals := make([]types.Arg, len(b.Ins))
	for i, a := range b.Ins {
		if a.IsConst() {
			vals[i] = a
			continue
		}
		c, ok := knownConstants[a.Var().Name]
		if !ok {
			return nil
		}
		vals[i] = c
	}
	folded, ok := evalBuiltin(b.Subop, vals)
	if !ok {
		return nil
	}
	return map[string]types.Arg{b.Output.Name: folded}
}

// checkCompileTimeAssert resolves subop's inputs against knownConstants and,
// when every input is known and the assertion is provably false, reports a
// warning. Mirrors ICInstructions.java's compileTimeAssertCheck/
// compileTimeAssertWarn; ASSERT takes (cond, msg), ASSERT_EQ takes
// (a, b, msg) per the ffi registry's assert/assert_eq signatures.
func checkCompileTimeAssert(subop BuiltinOpcode, ins []types.Arg, knownConstants map[string]types.Arg, fnName string, reporter *diag.Reporter) {
	resolved := make([]types.Arg, len(ins))
	for i, in := range ins {
		if in.IsConst() {
			resolved[i] = in
			continue
		}
		c, ok := knownConstants[in.Var().Name]
		if !ok {
			return
		}
		resolved[i] = c
	}

	switch subop {
	case Assert:
		if !resolved[0].BoolVal() {
			warnAssertFailure(fnName, "constant condition evaluated to false", ins[1], knownConstants, reporter)
		}
	case AssertEq:
		if !resolved[0].Equal(resolved[1]) {
			reason := fmt.Sprintf("%s != %s", resolved[0].Repr(), resolved[1].Repr())
			warnAssertFailure(fnName, reason, ins[2], knownConstants, reporter)
		}
	}
}

func warnAssertFailure(fnName, reason string, msgArg types.Arg, knownConstants map[string]types.Arg, reporter *diag.Reporter) {
	if reporter == nil {
		return
	}
	msg := "<runtime error message>"
	if msgArg.IsConst() && msgArg.ConstKind() == types.ConstString {
		msg = msgArg.StringVal()
	} else if msgArg.IsVar() {
		if c, ok := knownConstants[msgArg.Var().Name]; ok && c.ConstKind() == types.ConstString {
			msg = c.StringVal()
		}
	}
	reporter.ReportWarning(fmt.Sprintf(
		"assertion in %s with error message %q will fail at runtime because %s", fnName, msg, reason))
}

// ConstantReplace implements boolean short-circuiting: an AND/OR whose
// operand resolves to a known constant collapses to a plain copy of the
// other operand (or to a constant), even though the other operand itself
// may be unknown -- the one case ConstantFold's all-inputs-known rule can
// never reach. Mirrors ICInstructions.java's tryShortCircuit.
func (b *Builtin) ConstantReplace(knownConstants map[string]types.Arg) Instruction {
	if b.Output == nil || len(b.Ins) != 2 || (b.Subop != AndBool && b.Subop != OrBool) {
		return nil
	}
	for i := 0; i < 2; i++ {
		known, ok := resolveBoolConst(b.Ins[i], knownConstants)
		if !ok {
			continue
		}
		other := b.Ins[1-i]
		switch {
		case b.Subop == AndBool && known:
			return b.copyAsBuiltin(other)
		case b.Subop == AndBool && !known:
			return b.copyAsBuiltin(types.ConstBoolVal(false))
		case b.Subop == OrBool && known:
			return b.copyAsBuiltin(types.ConstBoolVal(true))
		case b.Subop == OrBool && !known:
			return b.copyAsBuiltin(other)
		}
	}
	return nil
}

func resolveBoolConst(a types.Arg, knownConstants map[string]types.Arg) (bool, bool) {
	if a.IsConst() {
		if a.ConstKind() != types.ConstBool {
			return false, false
		}
		return a.BoolVal(), true
	}
	c, ok := knownConstants[a.Var().Name]
	if !ok || c.ConstKind() != types.ConstBool {
		return false, false
	}
	return c.BoolVal(), true
}

// copyAsBuiltin builds the COPY_BOOL replacement for this instruction's
// output, preserving its LOCAL_OP/ASYNC_OP mode and scheduling props.
func (b *Builtin) copyAsBuiltin(in types.Arg) Instruction {
	if b.op == LocalOp {
		return NewLocalOp(CopyBool, b.Output, []types.Arg{in})
	}
	return NewAsyncOp(CopyBool, b.Output, []types.Arg{in}, b.Props)
}

// CanMakeImmediate applies only to ASYNC_OP builtins with blocking inputs:
// fetching every blocking input to a local value lets MakeImmediate replace
// this instruction with an equivalent LOCAL_OP.
func (b *Builtin) CanMakeImmediate(map[string]bool) *MakeImmRequest {
	if b.op != AsyncOp {
		return nil
	}
	blocking := b.BlockingInputs()
	if len(blocking) == 0 {
		return nil
	}
	return &MakeImmRequest{FetchInputs: blocking, AssignOutputs: b.Outputs()}
}

// MakeImmediate substitutes the fetched local values for this builtin's
// blocking inputs (in the order CanMakeImmediate's FetchInputs returned
// them) and rebuilds the op as LOCAL_OP.
func (b *Builtin) MakeImmediate(outVars []*types.Var, inValues []types.Arg) *MakeImmChange {
	if b.op != AsyncOp {
		return nil
	}
	blocking := b.BlockingInputs()
	sub := make(map[string]types.Arg, len(blocking))
	for i, v := range blocking {
		if i < len(inValues) {
			sub[v.Name] = inValues[i]
		}
	}
	newIns := make([]types.Arg, len(b.Ins))
	for i, a := range b.Ins {
		if a.IsVar() {
			if v, ok := sub[a.Var().Name]; ok {
				newIns[i] = v
				continue
			}
		}
		newIns[i] = a
	}
	var out *types.Var
	if len(outVars) > 0 {
		out = outVars[0]
	} else {
		out = b.Output
	}
	return &MakeImmChange{Instrs: []Instruction{NewLocalOp(b.Subop, out, newIns)}}
}

// GetResults wraps BuiltinResult, recording it with known when this is a
// pure builtin with an output, then -- when opts.OptAlgebra is set -- also
// tries to recover an algebraic equivalence for a plus_int/minus_int chain:
// `x = y +/- c1` where y was itself recorded as `y = z +/- c2` folds to the
// same CSE key a direct `x = z +/- (c1+c2)` builtin would produce, letting a
// later redundant recomputation of that offset collapse under CSE even
// though the two additions were never written as one expression. Mirrors
// ICInstructions.java's makeInferredComputedValues/tryAlgebra.
func (b *Builtin) GetResults(known *Tracker, opts *config.Options) []ResultVal {
	var results []ResultVal
	if rv, ok := BuiltinResult(b); ok {
		known.Record(rv)
		results = append(results, rv)
	}
	if opts != nil && opts.OptAlgebra {
		if rv, ok := inferAlgebraic(b, known); ok {
			known.Record(rv)
			results = append(results, rv)
		}
	}
	if len(results) == 0 {
		return nil
	}
	return results
}

// canonicalAdd recognizes ins as the single-variable-side shape `var +/- c`
// (plus_int accepts either operand order since it's commutative; minus_int
// only accepts var-first, since `c - var` has no var+offset form) and
// returns the variable and the signed offset such that the instruction
// computes var+offset.
func canonicalAdd(subop BuiltinOpcode, ins []types.Arg) (v *types.Var, offset int64, ok bool) {
	if len(ins) != 2 {
		return nil, 0, false
	}
	switch subop {
	case PlusInt:
		if ins[0].IsVar() && ins[1].IsConst() && ins[1].ConstKind() == types.ConstInt {
			return ins[0].Var(), ins[1].IntVal(), true
		}
		if ins[1].IsVar() && ins[0].IsConst() && ins[0].ConstKind() == types.ConstInt {
			return ins[1].Var(), ins[0].IntVal(), true
		}
	case MinusInt:
		if ins[0].IsVar() && ins[1].IsConst() && ins[1].ConstKind() == types.ConstInt {
			return ins[0].Var(), -ins[1].IntVal(), true
		}
	}
	return nil, 0, false
}

// inferAlgebraic walks back through known's recorded origin of this
// builtin's variable operand, looking for an earlier plus_int/minus_int that
// also reduces to the var+offset shape, and -- if found, and produced by the
// same LOCAL_OP/ASYNC_OP mode as b -- combines the two offsets into a single
// canonical plus_int ComputedValue keyed the same way a direct `z +
// (c1+c2)` builtin would be.
func inferAlgebraic(b *Builtin, known *Tracker) (ResultVal, bool) {
	if b.Output == nil || (b.Subop != PlusInt && b.Subop != MinusInt) {
		return ResultVal{}, false
	}
	y, c1, ok := canonicalAdd(b.Subop, b.Ins)
	if !ok {
		return ResultVal{}, false
	}
	origins := known.OriginsOf(y.Name)
	for i := len(origins) - 1; i >= 0; i-- {
		origin := origins[i]
		if origin.Op != b.op {
			continue
		}
		var originSubop BuiltinOpcode
		switch origin.Subop {
		case PlusInt.String():
			originSubop = PlusInt
		case MinusInt.String():
			originSubop = MinusInt
		default:
			continue
		}
		z, c2, ok := canonicalAdd(originSubop, origin.Inputs)
		if !ok {
			continue
		}
		ins := []types.Arg{types.VarRef(z), types.ConstInt64(c1 + c2)}
		if ins[1].Less(ins[0]) {
			ins[0], ins[1] = ins[1], ins[0]
		}
		return ResultVal{
			Value:  ComputedValue{Op: b.op, Subop: PlusInt.String(), Inputs: ins},
			Loc:    types.VarRef(b.Output),
			Closed: b.op == LocalOp,
		}, true
	}
	return ResultVal{}, false
}

func (b *Builtin) GetIncrVars() (reads, writes []*types.Var) {
	return getIncrVarsDefault(b.Ins, b.Outputs())
}

func (b *Builtin) TryPiggyback([]*types.Var, RefcountKind) []*types.Var { return nil }

func (b *Builtin) GetComponentAlias() (whole, part *types.Var, ok bool) { return nil, nil, false }

// Clone deep-copies the input slice and TaskProps so the clone's
// RenameVars cannot mutate the original.
func (b *Builtin) Clone() Instruction {
	clone := *b
	clone.Ins = cloneArgs(b.Ins)
	if b.Props != nil {
		p := *b.Props
		clone.Props = &p
	}
	return &clone
}

func (b *Builtin) RenameVars(renames map[string]*types.Var, _ RenameMode) {
	renameArgSlice(b.Ins, renames)
	if b.Output != nil {
		if nv, ok := renames[b.Output.Name]; ok {
			b.Output = nv
		}
	}
}

func evalBuiltin(subop BuiltinOpcode, ins []types.Arg) (types.Arg, bool) {
	switch subop {
	case PlusInt:
		return types.ConstInt64(ins[0].IntVal() + ins[1].IntVal()), true
	case MinusInt:
		return types.ConstInt64(ins[0].IntVal() - ins[1].IntVal()), true
	case MultInt:
		return types.ConstInt64(ins[0].IntVal() * ins[1].IntVal()), true
	case NegateInt:
		return types.ConstInt64(-ins[0].IntVal()), true
	case PlusFloat:
		return types.ConstFloat64(ins[0].FloatVal() + ins[1].FloatVal()), true
	case MinusFloat:
		return types.ConstFloat64(ins[0].FloatVal() - ins[1].FloatVal()), true
	case MultFloat:
		return types.ConstFloat64(ins[0].FloatVal() * ins[1].FloatVal()), true
	case PlusString:
		return types.ConstStringVal(ins[0].StringVal() + ins[1].StringVal()), true
	case EqInt:
		return types.ConstBoolVal(ins[0].IntVal() == ins[1].IntVal()), true
	case LtInt:
		return types.ConstBoolVal(ins[0].IntVal() < ins[1].IntVal()), true
	case LteInt:
		return types.ConstBoolVal(ins[0].IntVal() <= ins[1].IntVal()), true
	case GtInt:
		return types.ConstBoolVal(ins[0].IntVal() > ins[1].IntVal()), true
	case GteInt:
		return types.ConstBoolVal(ins[0].IntVal() >= ins[1].IntVal()), true
	default:
		return types.Arg{}, false
	}
}

// CanonicalInputs returns this builtin's inputs reordered for CSE keying:
// commutative operators get their operands sorted, and a flippable
// comparison with a higher-sorting first operand is rewritten to its
// flipped counterpart with operands swapped (a<=b canonicalized the same as
// b>=a), mirroring ICInstructions.java's makeBasicComputedValue.
func (b *Builtin) CanonicalInputs() (BuiltinOpcode, []types.Arg) {
	subop, ins := b.Subop, append([]types.Arg(nil), b.Ins...)
	if commutative[subop] && len(ins) == 2 && ins[1].Less(ins[0]) {
		ins[0], ins[1] = ins[1], ins[0]
	}
	if flip, ok := flippable[subop]; ok && len(ins) == 2 && ins[1].Less(ins[0]) {
		subop = flip
		ins[0], ins[1] = ins[1], ins[0]
	}
	return subop, ins
}

func (b *Builtin) String() string {
	var sb strings.Builder
	sb.WriteString(b.op.String())
	sb.WriteRune(' ')
	if b.Output != nil {
		sb.WriteString(b.Output.Name)
		sb.WriteString(" = ")
	}
	sb.WriteString(b.Subop.String())
	for _, in := range b.Ins {
		sb.WriteRune(' ')
		sb.WriteString(in.Repr())
	}
	if b.Props != nil {
		sb.WriteString(" #props")
	}
	return sb.String()
}

var _ Instruction = (*Builtin)(nil)
