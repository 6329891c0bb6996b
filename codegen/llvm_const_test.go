package codegen

import (
	"strings"
	"testing"

	"github.com/bnikolic/swift-t/types"
)

func TestLLVMConstantInt(t *testing.T) {
	v := LLVMConstant(types.ConstInt64(5))
	if !strings.Contains(v.String(), "5") {
		t.Errorf("expected the rendered constant to contain 5, got %q", v.String())
	}
}

func TestLLVMConstantFloat(t *testing.T) {
	v := LLVMConstant(types.ConstFloat64(2.5))
	if !strings.Contains(v.String(), "2.5") {
		t.Errorf("expected the rendered constant to contain 2.5, got %q", v.String())
	}
}

func TestLLVMConstantBool(t *testing.T) {
	v := LLVMConstant(types.ConstBoolVal(true))
	if !strings.Contains(v.String(), "true") {
		t.Errorf("expected a true bool to render containing \"true\", got %q", v.String())
	}
}

func TestLLVMConstantPanicsOnVarRef(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected LLVMConstant to panic on a variable reference")
		}
	}()
	v := types.NewVar("x", types.PrimValue{K: types.Int}, types.Local, types.LocalUser)
	LLVMConstant(types.VarRef(v))
}

func TestLLVMConstantPanicsOnVoid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected LLVMConstant to panic on a void constant")
		}
	}()
	LLVMConstant(types.ConstVoidVal())
}
