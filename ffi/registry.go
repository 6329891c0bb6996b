// Package ffi implements the function-property registry the walker and
// scope chain consult to decide how a call lowers: as a plain function
// call, a special foreign function with constant-folding hooks, or a
// compiler intrinsic. Grounded on STC's ForeignFunctions/SpecialFunction
// machinery (exm.stc.common.lang.ForeignFunctions).
package ffi

import "github.com/bnikolic/swift-t/scope"

// Special identifies one of the small set of foreign functions the walker
// and CSE pass give bespoke treatment, mirroring ForeignFunctions.SpecialFunction.
type Special int

// Enumeration of special foreign functions.
const (
	NotSpecial Special = iota
	Range
	RangeStep
	Size
	InputFile
	UncachedInputFile
	InputURL
	Argv
	Assert
	AssertEq
)

// Signature describes a foreign function's arity and property set.
type Signature struct {
	Name       string
	Props      scope.FuncPropSet
	Special    Special
	Intrinsic  bool
	NumInputs  int
	NumOutputs int
}

// Registry holds every foreign/intrinsic function signature known to the
// walker, keyed by name.
type Registry struct {
	funcs map[string]Signature
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Signature)}
}

// Register adds or replaces a function signature.
func (r *Registry) Register(sig Signature) {
	r.funcs[sig.Name] = sig
}

// Lookup returns the signature for name, if registered.
func (r *Registry) Lookup(name string) (Signature, bool) {
	sig, ok := r.funcs[name]
	return sig, ok
}

// HasFunctionProp implements scope.PropertyLookup.
func (r *Registry) HasFunctionProp(fn string, p scope.FuncProp) bool {
	sig, ok := r.funcs[fn]
	return ok && sig.Props.Has(p)
}

// IsIntrinsic implements scope.PropertyLookup.
func (r *Registry) IsIntrinsic(fn string) bool {
	sig, ok := r.funcs[fn]
	return ok && sig.Intrinsic
}

// IsSpecial reports whether fn is registered as the given special function.
func (r *Registry) IsSpecial(fn string, want Special) bool {
	sig, ok := r.funcs[fn]
	return ok && sig.Special == want
}

// SpecialOf returns the Special tag of fn, or NotSpecial if fn is
// unregistered or has no special treatment.
func (r *Registry) SpecialOf(fn string) Special {
	if sig, ok := r.funcs[fn]; ok {
		return sig.Special
	}
	return NotSpecial
}

// StandardLibrary returns a registry seeded with the special foreign
// functions table every dataflow program can call without an explicit
// import, grounded on STC's builtin SpecialFunction set.
func StandardLibrary() *Registry {
	r := NewRegistry()
	builtin := scope.NewFuncPropSet(scope.Builtin)
	control := scope.NewFuncPropSet(scope.Builtin, scope.Control)

	r.Register(Signature{Name: "range", Props: builtin, Special: Range, NumInputs: 2, NumOutputs: 1})
	r.Register(Signature{Name: "range_step", Props: builtin, Special: RangeStep, NumInputs: 3, NumOutputs: 1})
	r.Register(Signature{Name: "size", Props: builtin, Special: Size, NumInputs: 1, NumOutputs: 1})
	r.Register(Signature{Name: "input_file", Props: builtin, Special: InputFile, NumInputs: 1, NumOutputs: 1})
	r.Register(Signature{Name: "uncached_input_file", Props: builtin, Special: UncachedInputFile, NumInputs: 1, NumOutputs: 1})
	r.Register(Signature{Name: "input_url", Props: builtin, Special: InputURL, NumInputs: 1, NumOutputs: 1})
	r.Register(Signature{Name: "argv", Props: builtin, Special: Argv, NumInputs: 0, NumOutputs: 1})
	r.Register(Signature{Name: "assert", Props: control, Special: Assert, NumInputs: 2, NumOutputs: 0})
	r.Register(Signature{Name: "assert_eq", Props: control, Special: AssertEq, NumInputs: 3, NumOutputs: 0})

	return r
}
