package scope

import (
	"testing"

	"github.com/bnikolic/swift-t/types"
)

func intVar(name string) *types.Var {
	return types.NewVar(name, types.PrimFuture{K: types.Int}, types.Stack, types.LocalUser)
}

func TestDeclareVariableRejectsRepeatDefinition(t *testing.T) {
	ctx := NewGlobalContext()
	if !ctx.DeclareVariable(intVar("x")) {
		t.Fatal("expected the first declaration of x to succeed")
	}
	if ctx.DeclareVariable(intVar("x")) {
		t.Fatal("expected a repeat declaration of x in the same scope to fail")
	}
}

func TestDeclareVariableRejectsShadowingAnOuterScope(t *testing.T) {
	outer := NewGlobalContext()
	outer.DeclareVariable(intVar("x"))

	inner := outer.NewBlockScope()
	if inner.DeclareVariable(intVar("x")) {
		t.Fatal("expected a nested scope to reject redeclaring a name already visible from an enclosing scope")
	}
}

func TestLookupVarChasesTheChainInnermostFirst(t *testing.T) {
	outer := NewGlobalContext()
	outerX := intVar("x")
	outer.DeclareVariable(outerX)

	inner := outer.NewBlockScope()
	if v, ok := inner.LookupVar("x"); !ok || v != outerX {
		t.Fatalf("expected inner scope to see outer's x, got %v, %v", v, ok)
	}

	if _, ok := inner.LookupVar("nonexistent"); ok {
		t.Fatal("expected lookup of an undeclared name to fail")
	}
}

func TestFunctionContextIsInheritedByNestedBlockScopes(t *testing.T) {
	global := NewGlobalContext()
	if global.FunctionContext() != nil {
		t.Fatal("expected global scope to have no function context")
	}

	fc := NewFuncContext("f", NewFuncPropSet(Sync))
	fnScope := global.NewFunctionScope(fc)
	blockScope := fnScope.NewBlockScope()

	if blockScope.FunctionContext() != fc {
		t.Fatal("expected a nested block scope to inherit its enclosing function's FuncContext")
	}
}

// Counter pools are scoped per function: two functions mint "tmp.0"
// independently without colliding.
func TestCounterPoolsAreScopedPerFunction(t *testing.T) {
	fc1 := NewFuncContext("f1", NewFuncPropSet())
	fc2 := NewFuncContext("f2", NewFuncPropSet())

	if n := fc1.NextCounter("intermediate_var"); n != 0 {
		t.Errorf("expected f1's first counter value to be 0, got %d", n)
	}
	if n := fc1.NextCounter("intermediate_var"); n != 1 {
		t.Errorf("expected f1's second counter value to be 1, got %d", n)
	}
	if n := fc2.NextCounter("intermediate_var"); n != 0 {
		t.Errorf("expected f2's counter to start independently at 0, got %d", n)
	}
}

func TestGetVisibleVariablesPrefersInnermostShadow(t *testing.T) {
	outer := NewGlobalContext()
	outerX := types.NewVar("x", types.PrimFuture{K: types.Int}, types.Stack, types.LocalUser)
	outer.DeclareVariable(outerX)

	fc := NewFuncContext("f", NewFuncPropSet())
	fnScope := outer.NewFunctionScope(fc)
	innerX := types.NewVar("x", types.PrimFuture{K: types.Float}, types.Local, types.LocalCompiler)
	// Bypass DeclareVariable's shadow rejection to construct the
	// otherwise-impossible shadowed state directly, the way a
	// hand-built test fixture would.
	fnScope.symbols["x"] = innerX

	visible := fnScope.GetVisibleVariables()
	var found *types.Var
	for _, v := range visible {
		if v.Name == "x" {
			found = v
		}
	}
	if found == nil {
		t.Fatal("expected x to be visible")
	}
	if found != innerX {
		t.Error("expected the innermost declaration of x to shadow the outer one")
	}
}

type fakeRegistry struct {
	props      map[string]FuncPropSet
	intrinsics map[string]bool
}

func (r fakeRegistry) HasFunctionProp(fn string, p FuncProp) bool {
	return r.props[fn].Has(p)
}
func (r fakeRegistry) IsIntrinsic(fn string) bool { return r.intrinsics[fn] }

func TestHasFunctionPropAndIsIntrinsicDelegateToRegistry(t *testing.T) {
	reg := fakeRegistry{
		props:      map[string]FuncPropSet{"f": NewFuncPropSet(Checkpointed)},
		intrinsics: map[string]bool{"g": true},
	}
	if !HasFunctionProp(reg, "f", Checkpointed) {
		t.Error("expected f to have the Checkpointed property")
	}
	if HasFunctionProp(reg, "f", Sync) {
		t.Error("expected f not to have the Sync property")
	}
	if !IsIntrinsic(reg, "g") {
		t.Error("expected g to be reported as intrinsic")
	}
}
