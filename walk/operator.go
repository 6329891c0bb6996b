package walk

import (
	"strconv"

	"github.com/bnikolic/swift-t/ast"
	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/types"
)

// binaryOps maps a source operator symbol and the primitive kind of its
// operands to the asyncOp/localOp subop name the Backend understands.
// Subop names are plain strings by design -- the walker never imports the
// ir package's BuiltinOpcode; a real ir-backed Backend is responsible for
// mapping these names onto its own opcode table.
var binaryOps = map[string]map[types.PrimKind]string{
	"+":  {types.Int: "plus_int", types.Float: "plus_float", types.String: "plus_string"},
	"-":  {types.Int: "minus_int", types.Float: "minus_float"},
	"*":  {types.Int: "mult_int", types.Float: "mult_float"},
	"/":  {types.Int: "div_int", types.Float: "div_float"},
	"%":  {types.Int: "mod_int"},
	"==": {types.Int: "eq_int", types.Float: "eq_float", types.String: "eq_string", types.Bool: "eq_bool"},
	"!=": {types.Int: "neq_int", types.Float: "neq_float", types.String: "neq_string", types.Bool: "neq_bool"},
	"<":  {types.Int: "lt_int", types.Float: "lt_float"},
	"<=": {types.Int: "lte_int", types.Float: "lte_float"},
	">":  {types.Int: "gt_int", types.Float: "gt_float"},
	">=": {types.Int: "gte_int", types.Float: "gte_float"},
	"&&": {types.Bool: "and_bool"},
	"||": {types.Bool: "or_bool"},
}

var unaryOps = map[string]map[types.PrimKind]string{
	"-": {types.Int: "negate_int", types.Float: "negate_float"},
	"!": {types.Bool: "not_bool"},
}

// evalOperator implements the Operator dispatch case: unary negation of a
// literal constant-folds at compile time (rather than emitting an
// instruction), everything else resolves a subop by source symbol and
// operand primitive kind and emits it as a local or async op depending on
// whether the output is a local value or a future.
func (w *Walker) evalOperator(node ast.Node, outs []*types.Var, renames map[string]string) error {
	if len(outs) != 1 {
		diag.Raisef("walk: operator application must have exactly one output, got %d", len(outs))
	}
	out := outs[0]

	if node.NumChildren() == 1 && node.Text() == "-" {
		if c, ok := foldUnaryNegateLiteral(node.Child(0), out.Type); ok {
			w.Backend.AssignScalar(out, c)
			return nil
		}
	}

	kind := scalarKind(out.Type)
	local := isLocalValue(out.Type)
	opT := operandType(kind, local)

	var opName string
	var ins []types.Arg
	switch node.NumChildren() {
	case 2:
		table, ok := binaryOps[node.Text()]
		if !ok {
			return w.typeErrorf(node, "unknown operator %q", node.Text())
		}
		opName, ok = table[kind]
		if !ok {
			return w.typeErrorf(node, "operator %q is not defined for %s", node.Text(), out.Type.Repr())
		}
		lhs, err := w.eval(node.Child(0), opT, renames)
		if err != nil {
			return err
		}
		rhs, err := w.eval(node.Child(1), opT, renames)
		if err != nil {
			return err
		}
		ins = []types.Arg{lhs, rhs}
	case 1:
		table, ok := unaryOps[node.Text()]
		if !ok {
			return w.typeErrorf(node, "unknown unary operator %q", node.Text())
		}
		opName, ok = table[kind]
		if !ok {
			return w.typeErrorf(node, "operator %q is not defined for %s", node.Text(), out.Type.Repr())
		}
		v, err := w.eval(node.Child(0), opT, renames)
		if err != nil {
			return err
		}
		ins = []types.Arg{v}
	default:
		diag.Raisef("walk: operator node with %d children", node.NumChildren())
	}

	if local {
		w.Backend.LocalOp(opName, out, ins)
	} else {
		w.Backend.AsyncOp(opName, out, ins, &backend.TaskProps{})
	}
	return nil
}

func operandType(kind types.PrimKind, local bool) types.DataType {
	if local {
		return types.PrimValue{K: kind}
	}
	return types.PrimFuture{K: kind}
}

func foldUnaryNegateLiteral(child ast.Node, outType types.DataType) (types.Arg, bool) {
	switch child.Kind() {
	case ast.IntLiteral:
		n, err := strconv.ParseInt(child.Text(), 10, 64)
		if err != nil {
			return types.Arg{}, false
		}
		if types.IsPrimOfKind(outType, types.Float) {
			return types.ConstFloat64(-float64(n)), true
		}
		return types.ConstInt64(-n), true
	case ast.FloatLiteral:
		f, err := strconv.ParseFloat(child.Text(), 64)
		if err != nil {
			return types.Arg{}, false
		}
		return types.ConstFloat64(-f), true
	default:
		return types.Arg{}, false
	}
}
