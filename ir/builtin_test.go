package ir

import (
	"testing"

	"github.com/bnikolic/swift-t/config"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

func intVar(name string) *types.Var {
	return types.NewVar(name, types.PrimFuture{K: types.Int}, types.Stack, types.LocalUser)
}

// A pure LOCAL_OP builtin is idempotent and never blocks its caller: its
// inputs are already local values by construction.
func TestLocalOpNeverBlocks(t *testing.T) {
	out := types.NewVar("out", types.PrimValue{K: types.Int}, types.Local, types.LocalCompiler)
	op := NewLocalOp(PlusInt, out, []types.Arg{types.ConstInt64(2), types.ConstInt64(3)})

	if blocking := op.BlockingInputs(); blocking != nil {
		t.Errorf("LOCAL_OP should never report blocking inputs, got %v", blocking)
	}
	if !op.IsIdempotent() {
		t.Error("plus_int should be idempotent")
	}
	if op.HasSideEffects() {
		t.Error("plus_int should have no side effects")
	}
}

// An ASYNC_OP builtin blocks on every future-typed variable input, but not
// on constant inputs.
func TestAsyncOpBlocksOnFutureInputsOnly(t *testing.T) {
	a, b := intVar("a"), intVar("b")
	out := intVar("out")
	op := NewAsyncOp(PlusInt, out, []types.Arg{types.VarRef(a), types.VarRef(b), types.ConstInt64(1)}, nil)

	blocking := op.BlockingInputs()
	if len(blocking) != 2 || blocking[0].Name != "a" || blocking[1].Name != "b" {
		t.Errorf("expected blocking inputs [a, b], got %v", blocking)
	}
}

// assert/assert_eq are impure: they must never be treated as idempotent or
// side-effect-free, since eliding a repeated assert changes behavior.
func TestAssertIsNotIdempotent(t *testing.T) {
	cond := types.NewVar("cond", types.PrimValue{K: types.Bool}, types.Local, types.LocalCompiler)
	op := NewLocalOp(Assert, nil, []types.Arg{types.VarRef(cond)})

	if op.IsIdempotent() {
		t.Error("assert must not be idempotent")
	}
	if !op.HasSideEffects() {
		t.Error("assert must have side effects")
	}
	if op.CanChangeTiming() {
		t.Error("an op with side effects must not report CanChangeTiming")
	}
}

// ConstantFold only fires when every input resolves to a known constant,
// and only for the arithmetic/comparison subops the fold table covers.
func TestConstantFoldRequiresAllInputsKnown(t *testing.T) {
	a := intVar("a")
	out := intVar("out")
	op := NewAsyncOp(PlusInt, out, []types.Arg{types.VarRef(a), types.ConstInt64(3)}, nil)

	if folded := op.ConstantFold("f", map[string]types.Arg{}, nil); folded != nil {
		t.Errorf("expected no fold with an unknown input, got %v", folded)
	}

	folded := op.ConstantFold("f", map[string]types.Arg{"a": types.ConstInt64(2)}, nil)
	if folded == nil {
		t.Fatal("expected a fold once every input is known")
	}
	if v := folded["out"]; !v.IsConst() || v.IntVal() != 5 {
		t.Errorf("expected out to fold to 5, got %v", v)
	}
}

func TestConstantFoldUnsupportedSubopReturnsNil(t *testing.T) {
	s := types.NewVar("s", types.PrimValue{K: types.String}, types.Local, types.LocalCompiler)
	out := types.NewVar("out", types.PrimValue{K: types.Bool}, types.Local, types.LocalCompiler)
	op := NewLocalOp(EqString, out, []types.Arg{types.VarRef(s), types.ConstStringVal("x")})

	if folded := op.ConstantFold("f", map[string]types.Arg{"s": types.ConstStringVal("x")}, nil); folded != nil {
		t.Errorf("eq_string has no fold rule, expected nil, got %v", folded)
	}
}

// CanonicalInputs sorts commutative operands and rewrites a flippable
// comparison to its mirror opcode when that yields the canonical order, so
// that `a + b` and `b + a` -- and `a <= b` and `b >= a` -- key identically
// for CSE.
func TestCanonicalInputsCommutative(t *testing.T) {
	a, b := intVar("a"), intVar("b")
	out := intVar("out")

	fwd := NewAsyncOp(PlusInt, out, []types.Arg{types.VarRef(b), types.VarRef(a)}, nil)
	rev := NewAsyncOp(PlusInt, out, []types.Arg{types.VarRef(a), types.VarRef(b)}, nil)

	fwdOp, fwdIns := fwd.CanonicalInputs()
	revOp, revIns := rev.CanonicalInputs()

	if fwdOp != revOp {
		t.Fatalf("commutative canonicalization should not change the opcode, got %v vs %v", fwdOp, revOp)
	}
	if len(fwdIns) != 2 || len(revIns) != 2 || !fwdIns[0].Equal(revIns[0]) || !fwdIns[1].Equal(revIns[1]) {
		t.Errorf("expected both orderings to canonicalize identically, got %v and %v", fwdIns, revIns)
	}
}

func TestCanonicalInputsFlippable(t *testing.T) {
	a, b := intVar("a"), intVar("b")
	out := types.NewVar("out", types.PrimFuture{K: types.Bool}, types.Stack, types.LocalUser)

	lte := NewAsyncOp(LteInt, out, []types.Arg{types.VarRef(b), types.VarRef(a)}, nil)
	gte := NewAsyncOp(GteInt, out, []types.Arg{types.VarRef(a), types.VarRef(b)}, nil)

	lteOp, lteIns := lte.CanonicalInputs()
	gteOp, gteIns := gte.CanonicalInputs()

	if lteOp != gteOp {
		t.Errorf("b<=a and a>=b should canonicalize to the same opcode, got %v vs %v", lteOp, gteOp)
	}
	if !lteIns[0].Equal(gteIns[0]) || !lteIns[1].Equal(gteIns[1]) {
		t.Errorf("expected matching canonical operand order, got %v and %v", lteIns, gteIns)
	}
}

// BuiltinResult/Tracker: a pure builtin's second occurrence with the same
// canonical inputs must be found by the Tracker, letting CSE substitute a
// reference instead of re-emitting the instruction.
func TestTrackerFindsCommonSubexpression(t *testing.T) {
	a, b := intVar("a"), intVar("b")
	out1 := intVar("out1")
	out2 := intVar("out2")

	first := NewAsyncOp(PlusInt, out1, []types.Arg{types.VarRef(a), types.VarRef(b)}, nil)
	second := NewAsyncOp(PlusInt, out2, []types.Arg{types.VarRef(b), types.VarRef(a)}, nil)

	tr := NewTracker()
	rv1, ok := BuiltinResult(first)
	if !ok {
		t.Fatal("expected a pure builtin to produce a ResultVal")
	}
	tr.Record(rv1)

	rv2, ok := BuiltinResult(second)
	if !ok {
		t.Fatal("expected a pure builtin to produce a ResultVal")
	}
	loc, found := tr.Lookup(rv2.Value)
	if !found {
		t.Fatal("expected the flipped-operand duplicate to be found by the tracker")
	}
	if !loc.IsVar() || loc.Var().Name != "out1" {
		t.Errorf("expected the tracker to point at out1, got %v", loc)
	}
}

// A builtin with side effects (assert) is never a CSE candidate.
func TestBuiltinResultExcludesSideEffects(t *testing.T) {
	cond := types.NewVar("cond", types.PrimValue{K: types.Bool}, types.Local, types.LocalCompiler)
	op := NewLocalOp(Assert, nil, []types.Arg{types.VarRef(cond)})

	if _, ok := BuiltinResult(op); ok {
		t.Error("assert must not produce a ResultVal")
	}
}

// Short-circuit replace: `x = a && true` should rewrite to a plain copy of
// a, regardless of whether a itself is known -- the one case ConstantFold's
// all-inputs-known rule cannot reach.
func TestConstantReplaceShortCircuitsAndTrue(t *testing.T) {
	a := types.NewVar("a", types.PrimFuture{K: types.Bool}, types.Stack, types.LocalUser)
	x := types.NewVar("x", types.PrimFuture{K: types.Bool}, types.Stack, types.LocalUser)
	op := NewAsyncOp(AndBool, x, []types.Arg{types.VarRef(a), types.ConstBoolVal(true)}, nil)

	replaced := op.ConstantReplace(nil)
	if replaced == nil {
		t.Fatal("expected a && true to produce a replacement instruction")
	}
	repl, ok := replaced.(*Builtin)
	if !ok {
		t.Fatalf("expected a *Builtin replacement, got %T", replaced)
	}
	if repl.Subop != CopyBool {
		t.Errorf("expected copy_bool, got %v", repl.Subop)
	}
	if repl.Output != x {
		t.Errorf("expected output x preserved, got %v", repl.Output)
	}
	if len(repl.Ins) != 1 || !repl.Ins[0].Equal(types.VarRef(a)) {
		t.Errorf("expected the single input a, got %v", repl.Ins)
	}
}

func TestConstantReplaceShortCircuitsOrFalseKnownVar(t *testing.T) {
	a := types.NewVar("a", types.PrimFuture{K: types.Bool}, types.Stack, types.LocalUser)
	b := types.NewVar("b", types.PrimFuture{K: types.Bool}, types.Stack, types.LocalUser)
	x := types.NewVar("x", types.PrimFuture{K: types.Bool}, types.Stack, types.LocalUser)
	op := NewAsyncOp(OrBool, x, []types.Arg{types.VarRef(a), types.VarRef(b)}, nil)

	replaced := op.ConstantReplace(map[string]types.Arg{"b": types.ConstBoolVal(false)})
	if replaced == nil {
		t.Fatal("expected a || false to produce a replacement instruction")
	}
	repl := replaced.(*Builtin)
	if len(repl.Ins) != 1 || !repl.Ins[0].Equal(types.VarRef(a)) {
		t.Errorf("expected the replacement to copy a, got %v", repl.Ins)
	}
}

func TestConstantReplaceNoOpWithoutKnownBoolOperand(t *testing.T) {
	a, b := intVar("a"), intVar("b")
	out := intVar("out")
	op := NewAsyncOp(PlusInt, out, []types.Arg{types.VarRef(a), types.VarRef(b)}, nil)

	if replaced := op.ConstantReplace(nil); replaced != nil {
		t.Errorf("expected no replacement for plus_int, got %v", replaced)
	}
}

// CanMakeImmediate/MakeImmediate coherence: if CanMakeImmediate requests n
// inputs and m outputs, MakeImmediate(outs[m], vals[n]) must return a
// change whose instructions are built from local values (never futures).
func TestMakeImmediateCoherence(t *testing.T) {
	a, b := intVar("a"), intVar("b")
	out := intVar("out")
	op := NewAsyncOp(PlusInt, out, []types.Arg{types.VarRef(a), types.VarRef(b)}, nil)

	req := op.CanMakeImmediate(nil)
	if req == nil {
		t.Fatal("expected a make-immediate request for an ASYNC_OP with blocking inputs")
	}
	if len(req.FetchInputs) != 2 || len(req.AssignOutputs) != 1 {
		t.Fatalf("expected 2 fetch inputs and 1 assign output, got %d and %d", len(req.FetchInputs), len(req.AssignOutputs))
	}

	localA := types.NewVar("a_local", types.PrimValue{K: types.Int}, types.Local, types.LocalCompiler)
	localOut := types.NewVar("out_local", types.PrimValue{K: types.Int}, types.Local, types.LocalCompiler)
	change := op.MakeImmediate(
		[]*types.Var{localOut},
		[]types.Arg{types.VarRef(localA), types.ConstInt64(4)},
	)
	if change == nil || len(change.Instrs) != 1 {
		t.Fatal("expected one replacement instruction")
	}
	local, ok := change.Instrs[0].(*Builtin)
	if !ok || local.Opcode() != LocalOp {
		t.Fatalf("expected a LOCAL_OP replacement, got %v", change.Instrs[0])
	}
	for _, in := range local.Inputs() {
		if in.IsVar() && types.IsPrimFuture(in.Var().Type) {
			t.Errorf("expected every MakeImmediate input to be a local value, got future %v", in)
		}
	}
}

// Refcount conservativeness: GetIncrVars().reads must be a subset of the
// variables among Inputs/Outputs, and .writes a subset of
// Outputs.
func TestGetIncrVarsConservative(t *testing.T) {
	a, b := intVar("a"), intVar("b")
	out := intVar("out")
	op := NewAsyncOp(PlusInt, out, []types.Arg{types.VarRef(a), types.VarRef(b), types.ConstInt64(1)}, nil)

	reads, writes := op.GetIncrVars()
	inputSet := map[string]bool{}
	for _, in := range op.Inputs() {
		if in.IsVar() {
			inputSet[in.Var().Name] = true
		}
	}
	outputSet := map[string]bool{}
	for _, o := range op.Outputs() {
		outputSet[o.Name] = true
	}
	for _, r := range reads {
		if !inputSet[r.Name] && !outputSet[r.Name] {
			t.Errorf("read %q is not among inputs or outputs", r.Name)
		}
	}
	for _, w := range writes {
		if !outputSet[w.Name] {
			t.Errorf("write %q is not among outputs", w.Name)
		}
	}
}

// ASSERT with a known-false constant condition must warn; a known-true
// condition must not.
func TestConstantFoldAssertWarnsOnProvableFailure(t *testing.T) {
	op := NewAsyncOp(Assert, nil, []types.Arg{types.ConstBoolVal(false), types.ConstStringVal("boom")}, nil)
	reporter := diag.NewReporter(diag.LevelWarning)
	op.ConstantFold("f", map[string]types.Arg{}, reporter)
	if _, warnings := reporter.Counts(); warnings != 1 {
		t.Fatalf("expected one warning for a provably false assert, got %d", warnings)
	}
}

func TestConstantFoldAssertTrueNoWarning(t *testing.T) {
	op := NewAsyncOp(Assert, nil, []types.Arg{types.ConstBoolVal(true), types.ConstStringVal("boom")}, nil)
	reporter := diag.NewReporter(diag.LevelWarning)
	op.ConstantFold("f", map[string]types.Arg{}, reporter)
	if _, warnings := reporter.Counts(); warnings != 0 {
		t.Fatalf("expected no warning for a provably true assert, got %d", warnings)
	}
}

// ASSERT_EQ with two known, unequal constants must warn.
func TestConstantFoldAssertEqWarnsOnMismatch(t *testing.T) {
	a := intVar("a")
	op := NewAsyncOp(AssertEq, nil, []types.Arg{types.VarRef(a), types.ConstInt64(2), types.ConstStringVal("mismatch")}, nil)
	reporter := diag.NewReporter(diag.LevelWarning)
	op.ConstantFold("f", map[string]types.Arg{"a": types.ConstInt64(1)}, reporter)
	if _, warnings := reporter.Counts(); warnings != 1 {
		t.Fatalf("expected one warning for a provably unequal assert_eq, got %d", warnings)
	}
}

// Unresolved inputs must not be checked (and must not panic the fold).
func TestConstantFoldAssertUnknownInputSkipsCheck(t *testing.T) {
	a := intVar("a")
	op := NewAsyncOp(Assert, nil, []types.Arg{types.VarRef(a), types.ConstStringVal("boom")}, nil)
	reporter := diag.NewReporter(diag.LevelWarning)
	op.ConstantFold("f", map[string]types.Arg{}, reporter)
	if _, warnings := reporter.Counts(); warnings != 0 {
		t.Fatalf("expected no warning when the condition is not yet known, got %d", warnings)
	}
}

// A nil reporter must not panic even when the assertion provably fails.
func TestConstantFoldAssertNilReporterSafe(t *testing.T) {
	op := NewAsyncOp(Assert, nil, []types.Arg{types.ConstBoolVal(false), types.ConstStringVal("boom")}, nil)
	op.ConstantFold("f", map[string]types.Arg{}, nil)
}

// GetResults(known, nil) must behave exactly as before OptAlgebra existed:
// a plain BuiltinResult, recorded once.
func TestGetResultsWithoutOptsSkipsAlgebra(t *testing.T) {
	y := intVar("y")
	z := intVar("z")
	x := intVar("x")

	tracker := NewTracker()
	defY := NewAsyncOp(PlusInt, y, []types.Arg{types.VarRef(z), types.ConstInt64(1)}, nil)
	if got := defY.GetResults(tracker, nil); len(got) != 1 {
		t.Fatalf("expected one ResultVal for y's definition, got %d", len(got))
	}

	useX := NewAsyncOp(PlusInt, x, []types.Arg{types.VarRef(y), types.ConstInt64(2)}, nil)
	results := useX.GetResults(tracker, nil)
	if len(results) != 1 {
		t.Fatalf("expected no algebraic inference without opts, got %d results", len(results))
	}
}

// x = y + 2, where y = z + 1, must -- under OptAlgebra -- infer the
// equivalence x = z + 3, so a later direct `z + 3` builtin collides with x
// under CSE.
func TestGetResultsInfersAlgebraicChain(t *testing.T) {
	y := intVar("y")
	z := intVar("z")
	x := intVar("x")
	opts := &config.Options{OptAlgebra: true}

	tracker := NewTracker()
	defY := NewAsyncOp(PlusInt, y, []types.Arg{types.VarRef(z), types.ConstInt64(1)}, nil)
	defY.GetResults(tracker, opts)

	defX := NewAsyncOp(PlusInt, x, []types.Arg{types.VarRef(y), types.ConstInt64(2)}, nil)
	results := defX.GetResults(tracker, opts)
	if len(results) != 2 {
		t.Fatalf("expected a plain result plus an inferred algebraic result, got %d", len(results))
	}

	direct := NewAsyncOp(PlusInt, intVar("w"), []types.Arg{types.VarRef(z), types.ConstInt64(3)}, nil)
	rv, ok := BuiltinResult(direct)
	if !ok {
		t.Fatal("expected BuiltinResult to succeed for a plain plus_int")
	}
	loc, found := tracker.Lookup(rv.Value)
	if !found {
		t.Fatal("expected the inferred chain to have recorded a ComputedValue equal to a direct z+3")
	}
	if !loc.Equal(types.VarRef(x)) {
		t.Errorf("expected the recorded location to be x, got %v", loc)
	}
}

// x = y - 1, where y = z + 4, must infer x = z + 3 -- mixing plus_int and
// minus_int in the same chain.
func TestGetResultsInfersAlgebraicChainMixedSign(t *testing.T) {
	y := intVar("y")
	z := intVar("z")
	x := intVar("x")
	opts := &config.Options{OptAlgebra: true}

	tracker := NewTracker()
	defY := NewAsyncOp(PlusInt, y, []types.Arg{types.VarRef(z), types.ConstInt64(4)}, nil)
	defY.GetResults(tracker, opts)

	defX := NewAsyncOp(MinusInt, x, []types.Arg{types.VarRef(y), types.ConstInt64(1)}, nil)
	results := defX.GetResults(tracker, opts)
	if len(results) != 2 {
		t.Fatalf("expected a plain result plus an inferred algebraic result, got %d", len(results))
	}

	direct := NewAsyncOp(PlusInt, intVar("w"), []types.Arg{types.VarRef(z), types.ConstInt64(3)}, nil)
	rv, _ := BuiltinResult(direct)
	loc, found := tracker.Lookup(rv.Value)
	if !found || !loc.Equal(types.VarRef(x)) {
		t.Errorf("expected z+3 to resolve to x, got %v (found=%v)", loc, found)
	}
}

// A constant-minus-variable shape (`5 - v`) has no var+offset form and must
// not be mistaken for one.
func TestCanonicalAddRejectsConstMinusVar(t *testing.T) {
	v := intVar("v")
	if _, _, ok := canonicalAdd(MinusInt, []types.Arg{types.ConstInt64(5), types.VarRef(v)}); ok {
		t.Error("expected const-minus-var to have no canonical var+offset form")
	}
}
