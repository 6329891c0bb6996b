package validate

import (
	"testing"

	"github.com/bnikolic/swift-t/ir"
	"github.com/bnikolic/swift-t/types"
)

func intVar(name string, alloc types.Alloc, def types.DefType) *types.Var {
	return types.NewVar(name, types.PrimFuture{K: types.Int}, alloc, def)
}

// validFunction builds "out = a + 1": one input, one output, one
// instruction, no conditionals, no cleanups.
func validFunction() *ir.Function {
	a := intVar("a", types.Stack, types.Inputarg)
	out := intVar("out", types.Stack, types.Outputarg)
	fn := ir.NewFunction("f", []*types.Var{a}, []*types.Var{out})
	fn.MainBlock.AddInstr(ir.NewAsyncOp(ir.PlusInt, out, []types.Arg{types.VarRef(a), types.ConstInt64(1)}, nil))
	return fn
}

func TestMappingToUndeclaredVariableRejected(t *testing.T) {
	fn := validFunction()
	ghostName := types.NewVar("ghost_name", types.PrimFuture{K: types.String}, types.Stack, types.LocalUser)
	f := types.NewVar("f", types.PrimFuture{K: types.File}, types.Stack, types.LocalCompiler)
	f.Mapping = ghostName
	fn.MainBlock.AddInstr(ir.NewTurbineOp(ir.StoreFile, []*types.Var{f}, []types.Arg{types.ConstStringVal("x")}))

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err == nil {
		t.Fatal("expected a file variable mapped to an undeclared variable to be rejected")
	}
}

func TestMappingToNonStringVariableRejected(t *testing.T) {
	fn := validFunction()
	badTarget := intVar("not_a_string", types.Stack, types.LocalUser)
	f := types.NewVar("f", types.PrimFuture{K: types.File}, types.Stack, types.LocalCompiler)
	f.Mapping = badTarget
	fn.MainBlock.AddInstr(ir.NewTurbineOp(ir.ArrayBuild, []*types.Var{badTarget}, nil))
	fn.MainBlock.AddInstr(ir.NewTurbineOp(ir.StoreFile, []*types.Var{f}, []types.Arg{types.ConstStringVal("x")}))

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err == nil {
		t.Fatal("expected a file variable mapped to a non-string variable to be rejected")
	}
}

func TestMappingToDeclaredStringVariableAccepted(t *testing.T) {
	fn := validFunction()
	name := types.NewVar("filename", types.PrimFuture{K: types.String}, types.Stack, types.LocalUser)
	f := types.NewVar("f", types.PrimFuture{K: types.File}, types.Stack, types.LocalCompiler)
	f.Mapping = name
	fn.MainBlock.AddInstr(ir.NewTurbineOp(ir.ArrayBuild, []*types.Var{name}, nil))
	fn.MainBlock.AddInstr(ir.NewTurbineOp(ir.StoreFile, []*types.Var{f}, []types.Arg{types.ConstStringVal("x")}))

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err != nil {
		t.Fatalf("expected a file variable mapped to a declared string variable to validate, got %v", err)
	}
}

func TestRefcountOpRejectedByStandardOnly(t *testing.T) {
	fn := validFunction()
	a := fn.Inputs[0]
	fn.MainBlock.AddInstr(ir.NewTurbineOp(ir.IncrRef, nil, []types.Arg{types.VarRef(a), types.ConstInt64(1)}))

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err == nil {
		t.Fatal("expected Standard to reject a refcount instruction present before refcount insertion")
	}
	if err := Final().Validate(prog); err != nil {
		t.Fatalf("Final skips the no-refcount-ops check, expected no error, got %v", err)
	}
}

func TestNoRefcountOpsAcceptedByStandard(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{validFunction()}}
	if err := Standard().Validate(prog); err != nil {
		t.Fatalf("expected a function with no refcount ops to validate, got %v", err)
	}
}

func TestValidateAcceptsWellFormedFunction(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{validFunction()}}
	if err := Standard().Validate(prog); err != nil {
		t.Fatalf("expected a well-formed function to validate cleanly, got %v", err)
	}
}

// Validation must not mutate the program: running it twice over the same
// input must agree.
func TestValidateIsIdempotent(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{validFunction()}}
	err1 := Standard().Validate(prog)
	err2 := Standard().Validate(prog)
	if err1 != nil || err2 != nil {
		t.Fatalf("expected both passes to succeed, got %v then %v", err1, err2)
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	fn := validFunction()
	// Redeclare "a" as a float output of a second instruction -- same name,
	// incompatible type.
	badA := types.NewVar("a", types.PrimFuture{K: types.Float}, types.Stack, types.LocalCompiler)
	fn.MainBlock.AddInstr(ir.NewAsyncOp(ir.PlusFloat, badA, []types.Arg{types.ConstFloat64(1), types.ConstFloat64(2)}, nil))

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	err := Standard().Validate(prog)
	if err == nil {
		t.Fatal("expected duplicate-name redeclaration to be rejected")
	}
}

func TestUndeclaredReferenceRejected(t *testing.T) {
	fn := validFunction()
	ghost := intVar("ghost", types.Stack, types.LocalUser)
	out2 := intVar("out2", types.Stack, types.LocalCompiler)
	fn.MainBlock.AddInstr(ir.NewAsyncOp(ir.PlusInt, out2, []types.Arg{types.VarRef(ghost), types.ConstInt64(1)}, nil))

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err == nil {
		t.Fatal("expected a reference to an undeclared variable to be rejected")
	}
}

// A variable declared only in an if's then-branch must not satisfy a
// cleanup placed in the sibling else-branch, even though it is a
// perfectly valid declaration for the function-wide name/reference checks
// (which is why only Standard, not Final, catches this).
func TestCleanupOutOfScopeRejectedByStandardOnly(t *testing.T) {
	fn := validFunction()
	onlyInThen := types.NewVar("only_in_then", types.PrimFuture{K: types.Int}, types.Stack, types.LocalCompiler)

	thenBlock := ir.NewBlock()
	thenBlock.AddInstr(ir.NewAsyncOp(ir.PlusInt, onlyInThen, []types.Arg{types.ConstInt64(1), types.ConstInt64(2)}, nil))

	elseBlock := ir.NewBlock()
	elseBlock.Cleanups = append(elseBlock.Cleanups, ir.Cleanup{Var: onlyInThen})

	ifStmt := &ir.IfStatement{Cond: types.ConstBoolVal(true), Then: thenBlock, Else: elseBlock}
	thenBlock.Parent, elseBlock.Parent = ifStmt, ifStmt
	fn.MainBlock.AddConditional(ifStmt)

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err == nil {
		t.Fatal("expected Standard to reject a cleanup satisfied only by the sibling branch's declaration")
	}
	if err := Final().Validate(prog); err != nil {
		t.Fatalf("Final skips cleanup placement checks, expected no error, got %v", err)
	}
}

func TestCleanupInScopeAccepted(t *testing.T) {
	fn := validFunction()
	out := fn.Outputs[0]
	fn.MainBlock.Cleanups = append(fn.MainBlock.Cleanups, ir.Cleanup{Var: out})

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err != nil {
		t.Fatalf("expected a cleanup of an in-scope variable to validate, got %v", err)
	}
}

func TestParentLinkMismatchRejected(t *testing.T) {
	fn := validFunction()
	thenBlock := ir.NewBlock()
	ifStmt := &ir.IfStatement{Cond: types.ConstBoolVal(true), Then: thenBlock}
	// thenBlock.Parent is left nil instead of pointing back at ifStmt.
	fn.MainBlock.AddConditional(ifStmt)

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err == nil {
		t.Fatal("expected a mismatched block parent link to be rejected")
	}
}

func TestParentLinkCorrectlyWiredAccepted(t *testing.T) {
	fn := validFunction()
	thenBlock := ir.NewBlock()
	ifStmt := &ir.IfStatement{Cond: types.ConstBoolVal(true), Then: thenBlock}
	thenBlock.Parent = ifStmt
	fn.MainBlock.AddConditional(ifStmt)

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err != nil {
		t.Fatalf("expected a correctly wired conditional to validate, got %v", err)
	}
}

// A foreach loop's key/value variables are visible inside its body but
// must not leak into the enclosing function's declared-name space as a
// second, independent binding elsewhere.
func TestForeachConstructDefinedVarsVisibleInBody(t *testing.T) {
	fn := validFunction()
	arr := types.NewVar("arr", types.Array{Key: types.PrimValue{K: types.Int}, Elem: types.PrimFuture{K: types.Int}}, types.Stack, types.LocalCompiler)
	fn.MainBlock.AddInstr(ir.NewTurbineOp(ir.ArrayBuild, []*types.Var{arr}, nil))

	key := types.NewVar("k", types.PrimValue{K: types.Int}, types.Local, types.LocalCompiler)
	val := types.NewVar("v", types.PrimFuture{K: types.Int}, types.Local, types.LocalCompiler)
	body := ir.NewBlock()
	sum := types.NewVar("sum", types.PrimFuture{K: types.Int}, types.Stack, types.LocalCompiler)
	body.AddInstr(ir.NewAsyncOp(ir.PlusInt, sum, []types.Arg{types.VarRef(val), types.ConstInt64(0)}, nil))

	loop := &ir.ForeachStatement{Container: arr, KeyVar: key, ValVar: val, Body: body}
	body.Parent = loop
	fn.MainBlock.AddConditional(loop)

	prog := &ir.Program{Functions: []*ir.Function{fn}}
	if err := Standard().Validate(prog); err != nil {
		t.Fatalf("expected foreach key/value vars to be visible inside the loop body, got %v", err)
	}
}
