// Package codegen implements the two-pass code generator: it walks a
// resolved AST and emits textual stack-machine assembly via an
// emit.CodeEmitter, synthesising per-function call frames over a global
// scratch array and minting stable labels for control flow.
//
// Generate performs two passes over the tree (spec §4.4):
//
//  1. A collection pass gathers every function-declaration node, in source
//     order, without emitting anything.
//  2. A globals pass walks the tree generating code for everything except
//     function bodies (function-declaration is a no-op here); if any
//     functions exist, it is preceded by the stack-pointer bootstrap and
//     followed by an unconditional branch over the function bodies, which
//     are then emitted one by one with their own prologue/epilogue.
//
// Two passes exist because the target has no notion of "code after halt is
// unreachable" other than physical ordering: global code must run first,
// and function bodies must sit after the branch so they are reached only
// via callsub.
package codegen

import (
	"fmt"
	"strings"

	"github.com/dr8co/aqua/ast"
	"github.com/dr8co/aqua/emit"
	"github.com/dr8co/aqua/symtab"
)

// ErrorKind enumerates codegen's own error kinds (spec §7), distinct from
// the resolver's.
type ErrorKind int

const (
	// UnknownNodeType would be raised by a stripped-down sibling tool that
	// enforces an exhaustive switch; this generator treats any
	// unrecognised structural node as a no-op, per spec §4.4's visitor
	// table ("block, statement, and any other purely structural node: no
	// hook").
	UnknownNodeType ErrorKind = iota

	// NoAssignmentTarget reports an assignment-statement node carrying
	// neither Symbol nor Symbols after resolution — an internal
	// precondition violation, since the resolver must have rejected any
	// source program that would leave this node un-annotated.
	NoAssignmentTarget

	// UnresolvedSymbol reports an access-variable node reaching codegen
	// without a Symbol annotation, or a function parameter missing from its
	// function's Scope — it means the resolver was never run, or was run
	// against a different tree.
	UnresolvedSymbol
)

// Error is a codegen error: a kind plus the name of the offending node, when
// one applies.
type Error struct {
	Kind ErrorKind
	Name string
}

func (e *Error) Error() string {
	switch e.Kind {
	case NoAssignmentTarget:
		return "assignment-statement has no resolved assignment target"
	case UnresolvedSymbol:
		return fmt.Sprintf("reached codegen with unresolved symbol: %q (run resolver.ResolveSymbols first)", e.Name)
	default:
		return fmt.Sprintf("unknown node type: %q", e.Name)
	}
}

// builtinFunc emits code for a function-call recognised as a builtin. It is
// responsible for compiling its own arguments (controlling evaluation order
// and stack effect) and for leaving the "always returns one value"
// convention satisfied.
type builtinFunc func(g *Generator, call *ast.Node) error

// Generator holds the state threaded through a single Generate call: the
// output sink, the collected functions, the currently-generating function
// (for return-statement's branch target), and the control-id counter.
type Generator struct {
	emitter         *emit.CodeEmitter
	maxScratch      int
	functions       []*ast.Node
	currentFunction *ast.Node
	nextControlID   int
	builtins        map[string]builtinFunc
}

// New creates a Generator that writes to e. maxScratch is the target's
// configured maximum scratch index (spec §6), pushed by the stack-pointer
// bootstrap when the program declares at least one function.
func New(e *emit.CodeEmitter, maxScratch int) *Generator {
	g := &Generator{emitter: e, maxScratch: maxScratch}
	g.builtins = defaultBuiltins()
	return g
}

// Generate runs the two-pass lowering described in the package doc over
// root and writes the result to the Generator's emitter.
func (g *Generator) Generate(root *ast.Node) error {
	g.collectFunctions(root)

	if len(g.functions) > 0 {
		if err := g.emitter.Add(fmt.Sprintf("int %d", g.maxScratch), 1, 0, "stack pointer bootstrap"); err != nil {
			return err
		}
		if err := g.emitter.Add("store 0", 0, 1); err != nil {
			return err
		}
	}

	if err := g.generate(root); err != nil {
		return err
	}

	if len(g.functions) > 0 {
		if err := g.emitter.Add("b program_end", 0, 0); err != nil {
			return err
		}
		for _, fn := range g.functions {
			if err := g.generateFunction(fn); err != nil {
				return err
			}
		}
		g.emitter.Label("program_end")
	}

	return nil
}

// collectFunctions appends every function-declaration node reachable from n,
// in source order, without emitting anything.
func (g *Generator) collectFunctions(n *ast.Node) {
	if n == nil {
		return
	}
	if n.Type == ast.FunctionDeclaration {
		g.functions = append(g.functions, n)
	}
	for _, c := range n.Children {
		g.collectFunctions(c)
	}
	g.collectFunctions(n.Body)
	g.collectFunctions(n.Initializer)
	g.collectFunctions(n.IfBlock)
	g.collectFunctions(n.ElseBlock)
	g.collectFunctions(n.Assignee)
	for _, a := range n.Assignees {
		g.collectFunctions(a)
	}
	for _, a := range n.FunctionArgs {
		g.collectFunctions(a)
	}
}

func (g *Generator) nextID() int {
	g.nextControlID++
	return g.nextControlID
}

// generate dispatches on node type, applying the pre/post hooks spec §4.4
// describes. Structural nodes (block, statement, and any other unhooked
// type) fall through to a generic children walk with no hook at all;
// function-declaration emits nothing here, since its body is generated in
// the function pass.
func (g *Generator) generate(n *ast.Node) error {
	if n == nil {
		return nil
	}

	switch n.Type {
	case ast.Number:
		return g.emitter.Add(fmt.Sprintf("int %d", n.Value), 1, 0)

	case ast.StringLiteral:
		return g.emitter.Add(fmt.Sprintf("byte %q", n.StrValue), 1, 0)

	case ast.Operation:
		return g.generateOperation(n)

	case ast.ExprStatement:
		return g.generateExprStatement(n)

	case ast.ReturnStatement:
		return g.generateReturn(n)

	case ast.DeclareVariable, ast.DeclareConstant:
		return g.generateDeclaration(n)

	case ast.AccessVariable:
		return g.generateAccess(n)

	case ast.AssignmentStatement:
		return g.generateAssignment(n)

	case ast.IfStatement:
		return g.generateIf(n)

	case ast.WhileStatement:
		return g.generateWhile(n)

	case ast.FunctionCall:
		return g.generateCall(n)

	case ast.FunctionDeclaration:
		// Function bodies are emitted in the dedicated second pass; this
		// node is a no-op wherever the generic walk encounters it.
		return nil

	default: // block, statement, and any other purely structural node
		return g.generateChildren(n.Children)
	}
}

func (g *Generator) generateChildren(children []*ast.Node) error {
	for _, c := range children {
		if err := g.generate(c); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) generateOperation(n *ast.Node) error {
	if err := g.generateChildren(n.Children); err != nil {
		return err
	}
	pushed, popped := 1, 2
	if n.NumItemsAdded != nil {
		pushed = *n.NumItemsAdded
	}
	if n.NumItemsRemoved != nil {
		popped = *n.NumItemsRemoved
	}
	text := n.Opcode
	if len(n.Args) > 0 {
		text = text + " " + strings.Join(n.Args, " ")
	}
	return g.emitter.Add(text, pushed, popped)
}

func (g *Generator) generateExprStatement(n *ast.Node) error {
	g.emitter.ResetStack()
	if err := g.generateChildren(n.Children); err != nil {
		return err
	}
	g.emitter.PopAll()
	return nil
}

func (g *Generator) generateReturn(n *ast.Node) error {
	g.emitter.ResetStack()
	if err := g.generateChildren(n.Children); err != nil {
		return err
	}
	if g.currentFunction != nil {
		return g.emitter.Add(fmt.Sprintf("b %s-cleanup", g.currentFunction.Name), 0, 0)
	}
	return g.emitter.Add("return", 0, 0)
}

func (g *Generator) generateDeclaration(n *ast.Node) error {
	g.emitter.ResetStack()
	if n.Initializer == nil {
		return nil
	}
	if err := g.generate(n.Initializer); err != nil {
		return err
	}
	g.emitter.PopAll()
	return nil
}

func (g *Generator) generateAccess(n *ast.Node) error {
	sym := n.Symbol
	if sym == nil {
		return &Error{Kind: UnresolvedSymbol, Name: n.Name}
	}
	if sym.IsGlobal {
		return g.emitter.Add(fmt.Sprintf("load %d", sym.Position), 1, 0)
	}
	if err := g.emitter.Add("load 0", 1, 0); err != nil {
		return err
	}
	if err := g.emitter.Add(fmt.Sprintf("int %d", sym.Position), 1, 0); err != nil {
		return err
	}
	if err := g.emitter.Add("+", 1, 2); err != nil {
		return err
	}
	return g.emitter.Add("loads", 1, 1)
}

func (g *Generator) generateAssignment(n *ast.Node) error {
	if err := g.generateChildren(n.Children); err != nil {
		return err
	}

	if len(n.Symbols) > 0 {
		// Iterate in reverse without mutating n.Symbols (spec §9 flags the
		// source compiler's in-place reversal of the shared AST as
		// destructive; this walks backwards by index instead).
		for i := len(n.Symbols) - 1; i >= 0; i-- {
			if err := g.storeSymbol(n.Symbols[i]); err != nil {
				return err
			}
		}
		return nil
	}

	if n.Symbol == nil {
		return &Error{Kind: NoAssignmentTarget}
	}
	return g.storeSymbol(n.Symbol)
}

// storeSymbol emits the store sequence for sym, leaving the assigned value
// on the compute stack so the assignment can serve as an expression.
func (g *Generator) storeSymbol(sym *symtab.Symbol) error {
	if sym.IsGlobal {
		if err := g.emitter.Add("dup", 1, 0); err != nil {
			return err
		}
		return g.emitter.Add(fmt.Sprintf("store %d", sym.Position), 0, 1)
	}
	if err := g.emitter.Add(fmt.Sprintf("int %d", sym.Position), 1, 0); err != nil {
		return err
	}
	if err := g.emitter.Add("load 0", 1, 0); err != nil {
		return err
	}
	if err := g.emitter.Add("+", 1, 2); err != nil {
		return err
	}
	if err := g.emitter.Add("dig 1", 1, 0); err != nil {
		return err
	}
	return g.emitter.Add("stores", 0, 2)
}

func (g *Generator) generateIf(n *ast.Node) error {
	if err := g.generateChildren(n.Children); err != nil {
		return err
	}
	k := g.nextID()
	n.ControlStatementID = k

	if err := g.emitter.Add(fmt.Sprintf("bz else_%d", k), 0, 1); err != nil {
		return err
	}
	if err := g.generate(n.IfBlock); err != nil {
		return err
	}
	if err := g.emitter.Add(fmt.Sprintf("b end_%d", k), 0, 0); err != nil {
		return err
	}
	g.emitter.Label(fmt.Sprintf("else_%d", k))
	if n.ElseBlock != nil {
		if err := g.generate(n.ElseBlock); err != nil {
			return err
		}
	}
	g.emitter.Label(fmt.Sprintf("end_%d", k))
	return nil
}

func (g *Generator) generateWhile(n *ast.Node) error {
	k := g.nextID()
	n.ControlStatementID = k
	g.emitter.Label(fmt.Sprintf("loop_start_%d", k))

	if err := g.generateChildren(n.Children); err != nil {
		return err
	}
	if err := g.emitter.Add(fmt.Sprintf("bz loop_end_%d", k), 0, 1); err != nil {
		return err
	}
	if err := g.generate(n.Body); err != nil {
		return err
	}
	if err := g.emitter.Add(fmt.Sprintf("b loop_start_%d", k), 0, 0); err != nil {
		return err
	}
	g.emitter.Label(fmt.Sprintf("loop_end_%d", k))
	return nil
}

func (g *Generator) generateCall(n *ast.Node) error {
	if handler, ok := g.builtins[n.Name]; ok {
		return handler(g, n)
	}
	if err := g.generateChildren(n.FunctionArgs); err != nil {
		return err
	}
	return g.emitter.Add(fmt.Sprintf("callsub %s", n.Name), 1, len(n.FunctionArgs))
}

// generateFunction emits f's prologue, recurses into its body, and emits its
// epilogue. The prologue saves the caller's stack pointer, moves the stack
// pointer down by N+1 scratch slots for the new frame (N = number of locals
// including parameters), stores the saved pointer into the new frame's slot
// 0, then stores each parameter — already pushed onto the compute stack by
// the caller, in declaration order — into its frame slot, walking
// parameters in reverse so the last-pushed argument is stored first.
func (g *Generator) generateFunction(f *ast.Node) error {
	prev := g.currentFunction
	g.currentFunction = f
	defer func() { g.currentFunction = prev }()

	g.emitter.Label(f.Name)
	if err := g.emitter.Add("load 0", 1, 0); err != nil {
		return err
	}

	numLocals := 0
	if f.Scope != nil {
		numLocals = f.Scope.GetNumSymbols()
	}

	if err := g.emitter.Add("load 0", 1, 0); err != nil {
		return err
	}
	if err := g.emitter.Add(fmt.Sprintf("int %d", numLocals+1), 1, 0); err != nil {
		return err
	}
	if err := g.emitter.Add("-", 1, 2); err != nil {
		return err
	}
	if err := g.emitter.Add("store 0", 0, 1); err != nil {
		return err
	}

	if err := g.emitter.Add("load 0", 1, 0); err != nil {
		return err
	}
	if err := g.emitter.Add("swap", 0, 0); err != nil {
		return err
	}
	if err := g.emitter.Add("stores", 0, 2); err != nil {
		return err
	}

	for i := len(f.Params) - 1; i >= 0; i-- {
		name := f.Params[i]
		sym, ok := f.Scope.Get(name)
		if !ok {
			return &Error{Kind: UnresolvedSymbol, Name: name}
		}
		if err := g.emitter.Add(fmt.Sprintf("int %d", sym.Position), 1, 0); err != nil {
			return err
		}
		if err := g.emitter.Add("load 0", 1, 0); err != nil {
			return err
		}
		if err := g.emitter.Add("+", 1, 2); err != nil {
			return err
		}
		// The argument value is already on the stack beneath the address we
		// just computed; stores wants it on top, address underneath.
		if err := g.emitter.Add("swap", 0, 0); err != nil {
			return err
		}
		// stores pops both the address and the argument value, but only the
		// address was pushed by tracked Add calls above — the value arrived
		// from the caller, outside this local bookkeeping window. Declaring
		// popped=1 here credits only what this sequence actually tracked, so
		// depth can't underflow for a function reached at baseline depth 0.
		if err := g.emitter.Add("stores", 0, 1, name); err != nil {
			return err
		}
	}

	if err := g.generate(f.Body); err != nil {
		return err
	}

	g.emitter.Label(f.Name + "-cleanup")
	if err := g.emitter.Add("load 0", 1, 0); err != nil {
		return err
	}
	if err := g.emitter.Add("loads", 1, 1); err != nil {
		return err
	}
	if err := g.emitter.Add("store 0", 0, 1); err != nil {
		return err
	}
	return g.emitter.Add("retsub", 0, 0)
}
