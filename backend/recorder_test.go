package backend

import (
	"strings"
	"testing"

	"github.com/bnikolic/swift-t/types"
)

func TestRecorderReprFormatsOneCallPerLine(t *testing.T) {
	r := NewRecorder()
	dst := types.NewVar("x", types.PrimFuture{K: types.Int}, types.Stack, types.LocalUser)
	r.AssignScalar(dst, types.ConstInt64(5))
	r.EndWaitStatement()

	repr := r.Repr()
	lines := strings.Split(strings.TrimRight(repr, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 recorded lines, got %v", lines)
	}
	if lines[0] != "assign_scalar(x, 5)" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if lines[1] != "end_wait()" {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestRecorderCheckpointTogglesAreIndependent(t *testing.T) {
	r := NewRecorder()
	if r.CheckpointLookupEnabled() || r.CheckpointWriteEnabled() {
		t.Fatal("expected a fresh Recorder to have both checkpoint flags disabled")
	}
	r.SetCheckpointing(true, false)
	if !r.CheckpointLookupEnabled() {
		t.Error("expected lookup enabled")
	}
	if r.CheckpointWriteEnabled() {
		t.Error("expected write to remain disabled")
	}
}

func TestRecorderArrayBuildRendersKeysAndValues(t *testing.T) {
	r := NewRecorder()
	dst := types.NewVar("a", types.Array{Key: types.PrimValue{K: types.Int}, Elem: types.PrimFuture{K: types.Int}}, types.Stack, types.LocalUser)
	r.ArrayBuild(dst, []types.Arg{types.ConstInt64(0), types.ConstInt64(1)}, []types.Arg{types.ConstInt64(10), types.ConstInt64(20)})

	op := r.Ops[0]
	if op.Name != "array_build" || op.Args[0] != "a" {
		t.Fatalf("unexpected op: %v", op)
	}
	if !strings.Contains(op.Args[1], "0") || !strings.Contains(op.Args[1], "1") {
		t.Errorf("expected keys rendered in args[1], got %q", op.Args[1])
	}
	if !strings.Contains(op.Args[2], "10") || !strings.Contains(op.Args[2], "20") {
		t.Errorf("expected values rendered in args[2], got %q", op.Args[2])
	}
}

func TestRecorderStartForeachLoopHandlesNilKeyOrVal(t *testing.T) {
	r := NewRecorder()
	container := types.NewVar("c", types.Array{Key: types.PrimValue{K: types.Int}, Elem: types.PrimFuture{K: types.Int}}, types.Stack, types.LocalUser)
	val := types.NewVar("v", types.PrimFuture{K: types.Int}, types.Stack, types.LocalUser)

	r.StartForeachLoop(container, nil, val)

	op := r.Ops[0]
	if op.Args[1] != "_" {
		t.Errorf("expected a nil key var to render as _, got %q", op.Args[1])
	}
	if op.Args[2] != "v" {
		t.Errorf("expected val var name v, got %q", op.Args[2])
	}
}
