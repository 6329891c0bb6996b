package ir

import (
	"fmt"
	"strings"

	"github.com/bnikolic/swift-t/types"
)

// ComputedValue is the CSE key for a value an instruction produces: the
// opcode, an optional sub-operation tag, and the canonicalized argument
// list that produced it. Two instructions with equal ComputedValues are
// interchangeable -- the second occurrence can be replaced by a reference
// to the first's result, grounded on
// original_source/ICInstructions.java's makeBasicComputedValue.
type ComputedValue struct {
	Op     Opcode
	Subop  string
	Inputs []types.Arg
}

// Key renders a stable string key suitable for map lookups.
func (cv ComputedValue) Key() string {
	var sb strings.Builder
	sb.WriteString(cv.Op.String())
	if cv.Subop != "" {
		sb.WriteRune(':')
		sb.WriteString(cv.Subop)
	}
	for _, a := range cv.Inputs {
		sb.WriteRune('|')
		sb.WriteString(a.Repr())
	}
	return sb.String()
}

// ResultVal pairs a ComputedValue with the location (constant or variable)
// that currently holds it, and whether that location is guaranteed closed
// (available without waiting) the instant the instruction that produced it
// completes.
type ResultVal struct {
	Value  ComputedValue
	Loc    types.Arg
	Closed bool
}

// BuildResult constructs a ResultVal for a deterministic instruction's
// i'th output, mirroring ResultVal.buildResult(op, subop, i, args, out,
// closed) -- the index is folded into the key so that a multi-output
// instruction's outputs don't collide under one ComputedValue.
func BuildResult(op Opcode, subop string, outIndex int, args []types.Arg, out types.Arg, closed bool) ResultVal {
	return ResultVal{
		Value: ComputedValue{Op: op, Subop: fmt.Sprintf("%s#%d", subop, outIndex), Inputs: args},
		Loc:   out,
		Closed: closed,
	}
}

// BuiltinResult constructs the ResultVal of a pure Builtin instruction
// using its canonicalized inputs, so that e.g. `a+b` and `b+a` collide to
// the same CSE key.
func BuiltinResult(b *Builtin) (ResultVal, bool) {
	if b.Output == nil || b.HasSideEffects() {
		return ResultVal{}, false
	}
	subop, ins := b.CanonicalInputs()
	return ResultVal{
		Value:  ComputedValue{Op: b.op, Subop: subop.String(), Inputs: ins},
		Loc:    types.VarRef(b.Output),
		Closed: b.op == LocalOp,
	}, true
}

// FilenameResult builds the special ComputedValue tracking that out holds
// the filename of the file produced by an input_file/uncached_input_file/
// input_url call, per ICInstructions.java's addSpecialCVs filename
// tracking. local selects the CALL_FOREIGN_LOCAL variant's key.
func FilenameResult(in types.Arg, out *types.Var, local bool) ResultVal {
	op := CallForeign
	if local {
		op = CallForeignLocal
	}
	return ResultVal{
		Value:  ComputedValue{Op: op, Subop: "filename_of", Inputs: []types.Arg{in}},
		Loc:    types.VarRef(out),
		Closed: true,
	}
}

// ArraySizeResult builds the special ComputedValue tracking a statically
// known array size, produced either by the `size` foreign function or by
// folding a fully-constant `range`/`range_step` call.
func ArraySizeResult(arr *types.Var, size types.Arg) ResultVal {
	return ResultVal{
		Value:  ComputedValue{Op: CallForeignLocal, Subop: "array_size", Inputs: []types.Arg{types.VarRef(arr)}},
		Loc:    size,
		Closed: true,
	}
}

// Tracker accumulates ResultVals seen so far during a single lowering pass
// and answers whether a new ComputedValue already has a known location,
// letting a CSE pass substitute a reference instead of re-emitting an
// instruction.
type Tracker struct {
	known      map[string]types.Arg
	varOrigins map[string][]ComputedValue
}

// NewTracker creates an empty value tracker.
func NewTracker() *Tracker {
	return &Tracker{known: make(map[string]types.Arg), varOrigins: make(map[string][]ComputedValue)}
}

// Record stores rv's location under its ComputedValue key unless that key
// already has one (the first recorded location is kept, so a later
// duplicate resolves to the earlier result), and, when rv's location is a
// variable, indexes the ComputedValue under that variable's name so a later
// instruction reading the variable can recover how it was computed (e.g.
// algebraic inference walking back through a chain of plus_int/minus_int
// defs).
func (t *Tracker) Record(rv ResultVal) {
	key := rv.Value.Key()
	if _, ok := t.known[key]; !ok {
		t.known[key] = rv.Loc
	}
	if rv.Loc.IsVar() {
		name := rv.Loc.Var().Name
		t.varOrigins[name] = append(t.varOrigins[name], rv.Value)
	}
}

// Lookup returns the previously recorded location for cv, if any.
func (t *Tracker) Lookup(cv ComputedValue) (types.Arg, bool) {
	loc, ok := t.known[cv.Key()]
	return loc, ok
}

// OriginsOf returns the ComputedValues recorded so far whose result was
// assigned to the named variable, most recent last.
func (t *Tracker) OriginsOf(name string) []ComputedValue {
	return t.varOrigins[name]
}
