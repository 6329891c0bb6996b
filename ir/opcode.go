// Package ir implements the dataflow instruction model: the opcode
// taxonomy, the Instruction interface every opcode variant answers, and the
// concrete instruction families (function calls, builtins, loop control,
// comments, and the turbine data-movement ops). Grounded primarily on
// original_source/ICInstructions.java — the literal Java instruction tree
// this model distills — generalized into Go's interface+struct idiom the
// way the teacher's bootstrap/mir package turns a similarly large opcode
// enumeration into a small family of Go structs rather than one class per
// opcode.
package ir

// Opcode enumerates every dataflow instruction kind.
type Opcode int

// Enumeration of opcodes (original_source/ICInstructions.java's Opcode
// enum, renamed to Go conventions but otherwise unchanged in membership).
const (
	FAKE Opcode = iota // used only as a ComputedValue placeholder
	COMMENT

	CallForeign
	CallForeignLocal
	CallControl
	CallSync
	CallLocal
	CallLocalControl

	DerefInt
	DerefString
	DerefFloat
	DerefBool
	DerefBlob
	DerefFile

	StoreInt
	StoreString
	StoreFloat
	StoreBool
	StoreRef
	LoadInt
	LoadString
	LoadFloat
	LoadBool
	LoadRef
	StoreBlob
	LoadBlob
	FreeBlob
	StoreVoid
	LoadVoid
	StoreFile
	DecrLocalFileRef
	LoadFile
	DecrWriters
	DecrRef
	IncrWriters
	IncrRef

	ArrayRefLookupFuture
	ArrayLookupFuture
	ArrayRefLookupImm
	ArrayLookupRefImm
	ArrayLookupImm
	ArrayInsertFuture
	ArrayDerefInsertFuture
	ArrayInsertImm
	ArrayDerefInsertImm
	ArrayRefInsertFuture
	ArrayRefDerefInsertFuture
	ArrayRefInsertImm
	ArrayRefDerefInsertImm
	ArrayBuild

	StructLookup
	StructRefLookup
	StructInsert

	ArrayCreateNestedFuture
	ArrayRefCreateNestedFuture
	ArrayCreateNestedImm
	ArrayRefCreateNestedImm

	OpLoopBreak
	OpLoopContinue

	CopyRef

	LocalOp
	AsyncOp

	OpRunExternal

	InitUpdateableFloat
	UpdateMin
	UpdateIncr
	UpdateScale
	LatestValue
	UpdateMinImm
	UpdateIncrImm
	UpdateScaleImm

	InitLocalOutputFile
	GetFilename
	ChooseTmpFilename
	IsMapped
	SetFilenameVal
	GetFilenameVal
	GetLocalFilename
	CopyFileContents
)

var opcodeNames = map[Opcode]string{
	FAKE:    "fake",
	COMMENT: "comment",

	CallForeign:      "call_foreign",
	CallForeignLocal: "call_foreign_local",
	CallControl:      "call_control",
	CallSync:         "call_sync",
	CallLocal:        "call_local",
	CallLocalControl: "call_local_control",

	DerefInt:    "deref_int",
	DerefString: "deref_string",
	DerefFloat:  "deref_float",
	DerefBool:   "deref_bool",
	DerefBlob:   "deref_blob",
	DerefFile:   "deref_file",

	StoreInt:         "store_int",
	StoreString:      "store_string",
	StoreFloat:       "store_float",
	StoreBool:        "store_bool",
	StoreRef:         "store_ref",
	LoadInt:          "load_int",
	LoadString:       "load_string",
	LoadFloat:        "load_float",
	LoadBool:         "load_bool",
	LoadRef:          "load_ref",
	StoreBlob:        "store_blob",
	LoadBlob:         "load_blob",
	FreeBlob:         "free_blob",
	StoreVoid:        "store_void",
	LoadVoid:         "load_void",
	StoreFile:        "store_file",
	DecrLocalFileRef: "decr_local_file_ref",
	LoadFile:         "load_file",
	DecrWriters:      "decr_writers",
	DecrRef:          "decr_ref",
	IncrWriters:      "incr_writers",
	IncrRef:          "incr_ref",

	ArrayRefLookupFuture:      "arrayref_lookup_future",
	ArrayLookupFuture:         "array_lookup_future",
	ArrayRefLookupImm:         "arrayref_lookup_imm",
	ArrayLookupRefImm:         "array_lookup_ref_imm",
	ArrayLookupImm:            "array_lookup_imm",
	ArrayInsertFuture:         "array_insert_future",
	ArrayDerefInsertFuture:    "array_deref_insert_future",
	ArrayInsertImm:            "array_insert_imm",
	ArrayDerefInsertImm:       "array_deref_insert_imm",
	ArrayRefInsertFuture:      "arrayref_insert_future",
	ArrayRefDerefInsertFuture: "arrayref_deref_insert_future",
	ArrayRefInsertImm:         "arrayref_insert_imm",
	ArrayRefDerefInsertImm:    "arrayref_deref_insert_imm",
	ArrayBuild:                "array_build",

	StructLookup:    "struct_lookup",
	StructRefLookup: "structref_lookup",
	StructInsert:    "struct_insert",

	ArrayCreateNestedFuture:    "array_create_nested_future",
	ArrayRefCreateNestedFuture: "arrayref_create_nested_future",
	ArrayCreateNestedImm:       "array_create_nested_imm",
	ArrayRefCreateNestedImm:    "arrayref_create_nested_imm",

	OpLoopBreak:    "loop_break",
	OpLoopContinue: "loop_continue",

	CopyRef: "copy_ref",

	LocalOp: "local_op",
	AsyncOp: "async_op",

	OpRunExternal: "run_external",

	InitUpdateableFloat: "init_updateable_float",
	UpdateMin:           "update_min",
	UpdateIncr:          "update_incr",
	UpdateScale:         "update_scale",
	LatestValue:         "latest_value",
	UpdateMinImm:        "update_min_imm",
	UpdateIncrImm:       "update_incr_imm",
	UpdateScaleImm:      "update_scale_imm",

	InitLocalOutputFile: "init_local_output_file",
	GetFilename:         "get_filename",
	ChooseTmpFilename:   "choose_tmp_filename",
	IsMapped:            "is_mapped",
	SetFilenameVal:      "set_filename_val",
	GetFilenameVal:      "get_filename_val",
	GetLocalFilename:    "get_local_filename",
	CopyFileContents:    "copy_file_contents",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "<bad opcode>"
}

// RefcountOpcodes is the set of opcodes the refcount-insertion pass emits
// (spec.md's "refcount discipline" family). A standard-mode Program (one
// validated before that pass has run) must not yet contain any of these.
var RefcountOpcodes = map[Opcode]bool{
	IncrRef:          true,
	DecrRef:          true,
	IncrWriters:      true,
	DecrWriters:      true,
	DecrLocalFileRef: true,
}

// IsRefcountOp reports whether op is one of RefcountOpcodes.
func IsRefcountOp(op Opcode) bool { return RefcountOpcodes[op] }
