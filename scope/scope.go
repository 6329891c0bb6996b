// Package scope implements the Context Stack: a chain of lexical scopes
// (global, function, local) that the walker consults for variable lookup,
// fresh-name minting, and function-property queries. It is grounded on the
// teacher's walk.symbol_table.go lookup chain, generalized with the counter
// pools and function-property bitset of STC's LocalContext.
package scope

import (
	"fmt"

	"github.com/bnikolic/swift-t/types"
)

// FuncProp is a single function-property flag.
type FuncProp int

// Enumeration of function properties (spec.md §4.3).
const (
	Builtin FuncProp = iota
	WrappedBuiltin
	App
	Composite
	Sync
	Control
	Parallel
	Targetable
	Deprecated
	Checkpointed
)

// FuncPropSet is a bitset-like collection of FuncProp flags.
type FuncPropSet map[FuncProp]struct{}

// NewFuncPropSet builds a FuncPropSet from the given flags.
func NewFuncPropSet(props ...FuncProp) FuncPropSet {
	s := make(FuncPropSet, len(props))
	for _, p := range props {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether the set contains p.
func (s FuncPropSet) Has(p FuncProp) bool {
	_, ok := s[p]
	return ok
}

// FuncContext holds a function's counter pools and property set; it is the
// value returned by Context.FunctionContext().
type FuncContext struct {
	Name     string
	Props    FuncPropSet
	counters map[string]int
}

// NewFuncContext creates a function context with the given name and
// properties.
func NewFuncContext(name string, props FuncPropSet) *FuncContext {
	return &FuncContext{Name: name, Props: props, counters: make(map[string]int)}
}

// NextCounter returns the next value of the named counter pool (e.g.
// "intermediate_var", "alias_var", "value_var", "filename_of"), starting at
// 0 and incrementing on each call. Pools are scoped to the function, so two
// functions can independently mint "tmp.0" without collision.
func (fc *FuncContext) NextCounter(purpose string) int {
	v := fc.counters[purpose]
	fc.counters[purpose] = v + 1
	return v
}

// HasProp reports whether the function has the given property.
func (fc *FuncContext) HasProp(p FuncProp) bool {
	return fc.Props.Has(p)
}

// Context is one link in the scope chain: the global scope, a function's
// top-level scope, or a nested local (block) scope.
type Context struct {
	parent *Context

	symbols map[string]*types.Var

	// isFuncArgScope is true only for the scope directly introduced by a
	// function's parameter list; it stops the "a LocalContext may not
	// define functions" escape hatch from leaking parameter shadowing
	// into nested blocks incorrectly.
	isFuncArgScope bool
	funcContext    *FuncContext
}

// NewGlobalContext creates the root of the scope chain.
func NewGlobalContext() *Context {
	return &Context{symbols: make(map[string]*types.Var)}
}

// NewFunctionScope pushes a new function-level scope below parent, owning
// fc as its function context.
func (c *Context) NewFunctionScope(fc *FuncContext) *Context {
	return &Context{parent: c, symbols: make(map[string]*types.Var), isFuncArgScope: true, funcContext: fc}
}

// NewBlockScope pushes a new nested local scope below c, inheriting its
// enclosing function context.
func (c *Context) NewBlockScope() *Context {
	return &Context{parent: c, symbols: make(map[string]*types.Var), funcContext: c.funcContextOf()}
}

func (c *Context) funcContextOf() *FuncContext {
	for s := c; s != nil; s = s.parent {
		if s.funcContext != nil {
			return s.funcContext
		}
	}
	return nil
}

// FunctionContext yields the enclosing function's counter pool and
// properties. Returns nil at global scope.
func (c *Context) FunctionContext() *FuncContext {
	return c.funcContextOf()
}

// LookupVar chases the scope chain for name, shadowing innermost-first.
func (c *Context) LookupVar(name string) (*types.Var, bool) {
	for s := c; s != nil; s = s.parent {
		if v, ok := s.symbols[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupTypeUnsafe returns the type of name without checking existence;
// callers must already know the name resolves (used in contexts where a
// miss would be an internal invariant violation, not a recoverable error).
func (c *Context) LookupTypeUnsafe(name string) types.DataType {
	v, ok := c.LookupVar(name)
	if !ok {
		panic(fmt.Sprintf("scope: LookupTypeUnsafe: %q not found", name))
	}
	return v.Type
}

// DeclareVariable adds v to the innermost scope. Returns false (without
// mutating the scope) if name is already bound anywhere visible from here,
// matching the teacher's defineLocal/defineGlobal repeat-definition check.
func (c *Context) DeclareVariable(v *types.Var) bool {
	if _, ok := c.LookupVar(v.Name); ok {
		return false
	}
	c.symbols[v.Name] = v
	return true
}

// GetVisibleVariables returns every variable visible from this scope,
// innermost declarations taking precedence over shadowed outer ones.
func (c *Context) GetVisibleVariables() []*types.Var {
	seen := make(map[string]bool)
	var out []*types.Var
	for s := c; s != nil; s = s.parent {
		for name, v := range s.symbols {
			if !seen[name] {
				seen[name] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// PropertyLookup is implemented by the ffi registry and consulted for
// isIntrinsic/hasFunctionProp queries about callees (as opposed to the
// caller's own FuncContext.HasProp, which is about the enclosing function).
type PropertyLookup interface {
	HasFunctionProp(fn string, p FuncProp) bool
	IsIntrinsic(fn string) bool
}

// HasFunctionProp asks reg whether callee fn has property p.
func HasFunctionProp(reg PropertyLookup, fn string, p FuncProp) bool {
	return reg.HasFunctionProp(fn, p)
}

// IsIntrinsic asks reg whether fn is a compiler intrinsic.
func IsIntrinsic(reg PropertyLookup, fn string) bool {
	return reg.IsIntrinsic(fn)
}
