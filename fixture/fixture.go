// Package fixture provides small, named in-memory dataflow programs built
// directly with ast.Tree (this module has no parser -- see ast's package
// doc). It exists so cmd/dataflowc has something concrete to walk, and so
// walk package tests that want a whole-function example rather than a bare
// expression can share one definition instead of duplicating tree
// construction.
package fixture

import (
	"sort"

	"github.com/bnikolic/swift-t/ast"
	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/config"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/ffi"
	"github.com/bnikolic/swift-t/scope"
	"github.com/bnikolic/swift-t/types"
	"github.com/bnikolic/swift-t/walk"
)

// Program is one named fixture: Setup declares its inputs and outputs in a
// fresh function scope, and Walk lowers its body into outs using whatever
// Backend the caller supplies. A Program is single-use -- Setup records the
// variables it declared, and Walk consumes them -- so Lookup returns a
// fresh copy rather than the shared registry entry.
type Program struct {
	Name string
	Doc  string

	declare func(ctx *scope.Context) (ins, outs []*types.Var)
	body    func(ins, outs []*types.Var) ast.Node

	ins, outs []*types.Var
}

// Setup pushes a function scope below global and declares this program's
// inputs and outputs in it, returning the scope and a VarCreator ready for
// Walk.
func (p *Program) Setup(global *scope.Context) (*scope.Context, *scope.VarCreator) {
	fc := scope.NewFuncContext(p.Name, scope.NewFuncPropSet())
	ctx := global.NewFunctionScope(fc)
	p.ins, p.outs = p.declare(ctx)
	return ctx, scope.NewVarCreator(ctx)
}

// Walk builds this program's body and lowers it via a fresh walk.Walker.
// Setup must have run first. reporter may be nil.
func (p *Program) Walk(ctx *scope.Context, vc *scope.VarCreator, be backend.Backend, reg *ffi.Registry, opts *config.Options, reporter *diag.Reporter) error {
	w := walk.NewWalker(ctx, vc, be, reg, opts, reporter)
	return w.EvalToVars(p.body(p.ins, p.outs), p.outs, nil)
}

var registry = map[string]*Program{}

func register(p *Program) { registry[p.Name] = p }

// Lookup returns a fresh, unstarted copy of the named fixture program, if
// one exists.
func Lookup(name string) (*Program, bool) {
	p, ok := registry[name]
	if !ok {
		return nil, false
	}
	copied := *p
	copied.ins, copied.outs = nil, nil
	return &copied, true
}

// Names returns every registered fixture name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func intFuture() types.DataType { return types.PrimFuture{K: types.Int} }

func variable(name string, t types.DataType) *ast.Tree {
	return ast.NewLeaf(ast.Variable, name, t)
}

func intLit(text string) *ast.Tree {
	return ast.NewLeaf(ast.IntLiteral, text, types.PrimFuture{K: types.Int})
}

func init() {
	register(&Program{
		Name: "sum_of_range",
		Doc:  "out = a + (b * 2)",
		declare: func(ctx *scope.Context) (ins, outs []*types.Var) {
			a := types.NewVar("a", intFuture(), types.Stack, types.Inputarg)
			b := types.NewVar("b", intFuture(), types.Stack, types.Inputarg)
			out := types.NewVar("out", intFuture(), types.Stack, types.Outputarg)
			ctx.DeclareVariable(a)
			ctx.DeclareVariable(b)
			ctx.DeclareVariable(out)
			return []*types.Var{a, b}, []*types.Var{out}
		},
		body: func(ins, outs []*types.Var) ast.Node {
			a, b := ins[0], ins[1]
			doubledB := ast.NewBranch(ast.Operator, "*", intFuture(), variable(b.Name, b.Type), intLit("2"))
			return ast.NewBranch(ast.Operator, "+", intFuture(), variable(a.Name, a.Type), doubledB)
		},
	})

	register(&Program{
		Name: "range_call",
		Doc:  "arr = range(lo, hi)",
		declare: func(ctx *scope.Context) (ins, outs []*types.Var) {
			lo := types.NewVar("lo", intFuture(), types.Stack, types.Inputarg)
			hi := types.NewVar("hi", intFuture(), types.Stack, types.Inputarg)
			arr := types.NewVar("arr", types.Array{Key: types.PrimValue{K: types.Int}, Elem: types.PrimFuture{K: types.Int}}, types.Stack, types.Outputarg)
			ctx.DeclareVariable(lo)
			ctx.DeclareVariable(hi)
			ctx.DeclareVariable(arr)
			return []*types.Var{lo, hi}, []*types.Var{arr}
		},
		body: func(ins, outs []*types.Var) ast.Node {
			lo, hi := ins[0], ins[1]
			return ast.NewBranch(ast.CallFunction, "range", outs[0].Type, variable(lo.Name, lo.Type), variable(hi.Name, hi.Type))
		},
	})

	register(&Program{
		Name: "assert_example",
		Doc:  "assert(cond, \"message\") -- no outputs",
		declare: func(ctx *scope.Context) (ins, outs []*types.Var) {
			cond := types.NewVar("cond", types.PrimFuture{K: types.Bool}, types.Stack, types.Inputarg)
			ctx.DeclareVariable(cond)
			return []*types.Var{cond}, nil
		},
		body: func(ins, outs []*types.Var) ast.Node {
			cond := ins[0]
			msg := ast.NewLeaf(ast.StringLiteral, "assertion failed", types.PrimFuture{K: types.String})
			return ast.NewBranch(ast.CallFunction, "assert", types.PrimValue{K: types.Void}, variable(cond.Name, cond.Type), msg)
		},
	})
}
