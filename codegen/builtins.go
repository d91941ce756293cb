package codegen

import (
	"fmt"
	"strings"

	"github.com/dr8co/aqua/ast"
)

// defaultBuiltins returns the fixed name-keyed table of inline code
// emitters recognised by the generator. Each builtin evaluates its own
// arguments and, except for exit (which halts the program and pushes
// nothing), leaves exactly one value on the compute stack, since every
// function-call is treated as an expression; builtins whose underlying
// opcode is void emit a dummy "int 0" to balance the convention.
func defaultBuiltins() map[string]builtinFunc {
	return map[string]builtinFunc{
		"appGlobalPut": biVoidOp("app_global_put", 2),
		"appGlobalGet": biValueOp("app_global_get", 1),
		"appGlobalDel": biVoidOp("app_global_del", 1),
		"appLocalPut":  biVoidOp("app_local_put", 3),
		"appLocalGet":  biValueOp("app_local_get", 2),
		"appLocalDel":  biVoidOp("app_local_del", 2),
		"btoi":         biValueOp("btoi", 1),
		"itob":         biValueOp("itob", 1),
		"itxn_begin":   biVoidOp("itxn_begin", 0),
		"itxn_submit":  biVoidOp("itxn_submit", 0),
		"exit":         biExit,
		"itxn_field":   biItxnField,
	}
}

// biValueOp compiles all of the call's arguments in order, then emits an
// opcode that already produces exactly one value — no dummy push needed.
func biValueOp(opcode string, arity int) builtinFunc {
	return func(g *Generator, call *ast.Node) error {
		if err := g.generateChildren(call.FunctionArgs); err != nil {
			return err
		}
		return g.emitter.Add(opcode, 1, arity)
	}
}

// biVoidOp compiles all of the call's arguments in order, emits an opcode
// that produces no value, then pushes a dummy "int 0" so the call still
// satisfies the always-returns-one-value calling convention.
func biVoidOp(opcode string, arity int) builtinFunc {
	return func(g *Generator, call *ast.Node) error {
		if err := g.generateChildren(call.FunctionArgs); err != nil {
			return err
		}
		if err := g.emitter.Add(opcode, 0, arity); err != nil {
			return err
		}
		return g.emitter.Add("int 0", 1, 0)
	}
}

// biExit compiles its single argument and emits the program-terminating
// return opcode; since the program halts here, no dummy push follows.
func biExit(g *Generator, call *ast.Node) error {
	if err := g.generateChildren(call.FunctionArgs); err != nil {
		return err
	}
	return g.emitter.Add("return", 0, 1)
}

// biItxnField is special: its first argument is a literal field name that
// must be unquoted from its string representation and concatenated into
// the emitted opcode rather than compiled as a runtime push. Its second
// argument is the field value, compiled and popped normally, pushed before
// the opcode so it is on the stack when itxn_field executes.
func biItxnField(g *Generator, call *ast.Node) error {
	if len(call.FunctionArgs) != 2 {
		return fmt.Errorf("itxn_field expects 2 arguments (field name, value), got %d", len(call.FunctionArgs))
	}
	field := unquoteFieldName(call.FunctionArgs[0])

	if err := g.generate(call.FunctionArgs[1]); err != nil {
		return err
	}
	if err := g.emitter.Add("itxn_field "+field, 0, 1); err != nil {
		return err
	}
	return g.emitter.Add("int 0", 1, 0)
}

func unquoteFieldName(n *ast.Node) string {
	if n == nil {
		return ""
	}
	s := n.StrValue
	if n.Type != ast.StringLiteral {
		s = n.Name
	}
	return strings.Trim(s, `"`)
}
