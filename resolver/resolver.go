// Package resolver implements the symbol-resolution pass: it walks an AST,
// builds nested lexical scopes, binds every name use to its declaration, and
// allocates storage slots by delegating to symtab.SymbolTable.
//
// ResolveSymbols is the single entry point. It recurses with a current
// symbol table in hand, using a children-before-self visitation policy:
// most annotations depend only on the local node, so descending first keeps
// each handler simple. Nodes whose substructure lives in a dedicated field
// (function-declaration.Body, if-statement.IfBlock/ElseBlock, ...) descend
// into that field themselves rather than relying on a generic Children walk.
package resolver

import (
	"fmt"

	"github.com/dr8co/aqua/ast"
	"github.com/dr8co/aqua/symtab"
)

// UndeclaredNameError reports an access-variable (or assignment target) whose
// name has no binding in any enclosing scope.
type UndeclaredNameError struct {
	Name string
}

func (e *UndeclaredNameError) Error() string {
	return fmt.Sprintf("undeclared name: %q", e.Name)
}

// NotAnLvalueError reports an assignment-statement whose assignee is not an
// access-variable node.
type NotAnLvalueError struct {
	Name string
}

func (e *NotAnLvalueError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("not an lvalue: %q", e.Name)
	}
	return "not an lvalue: assignee is not an access-variable"
}

// AssignToConstantError reports an assignment-statement whose target resolves
// to a Constant symbol.
type AssignToConstantError struct {
	Name string
}

func (e *AssignToConstantError) Error() string {
	return fmt.Sprintf("cannot assign to constant: %q", e.Name)
}

// ResolveSymbols annotates root and its descendants in place with Scope,
// Symbol, and Symbols fields, and returns the first error encountered.
// Re-running ResolveSymbols on an already-resolved tree starts again from a
// fresh global table: existing annotations are not consulted, and the
// Scope, Symbol, and Symbols fields are replaced with new records that carry
// the same positions, since slots are assigned in the same declaration order.
func ResolveSymbols(root *ast.Node) error {
	return resolve(root, symtab.New())
}

func resolve(n *ast.Node, table *symtab.SymbolTable) error {
	if n == nil {
		return nil
	}

	switch n.Type {
	case ast.FunctionDeclaration:
		return resolveFunctionDeclaration(n, table)

	case ast.DeclareVariable, ast.DeclareConstant:
		return resolveDeclaration(n, table)

	case ast.AccessVariable:
		return resolveAccess(n, table)

	case ast.AssignmentStatement:
		return resolveAssignment(n, table)

	case ast.IfStatement:
		return resolveIf(n, table)

	case ast.WhileStatement:
		return resolveWhile(n, table)

	case ast.FunctionCall:
		return resolveChildren(n.FunctionArgs, table)

	default:
		return resolveChildren(n.Children, table)
	}
}

func resolveChildren(children []*ast.Node, table *symtab.SymbolTable) error {
	for _, c := range children {
		if err := resolve(c, table); err != nil {
			return err
		}
	}
	return nil
}

// resolveFunctionDeclaration creates the function's scope and, per spec §9's
// resolved Open Question, pre-declares each parameter into it in declaration
// order before descending into the body. A body that redeclares a parameter
// via declare-variable still hits DuplicateDefinition, as it should.
func resolveFunctionDeclaration(n *ast.Node, table *symtab.SymbolTable) error {
	scope := table.NewChild()
	n.Scope = scope

	for _, param := range n.Params {
		if _, err := scope.Define(param, symtab.Variable); err != nil {
			return err
		}
	}

	return resolve(n.Body, scope)
}

func resolveDeclaration(n *ast.Node, table *symtab.SymbolTable) error {
	kind := symtab.Variable
	if n.Type == ast.DeclareConstant {
		kind = symtab.Constant
	}

	sym, err := table.Define(n.Name, kind)
	if err != nil {
		return err
	}
	n.Symbol = sym

	return resolve(n.Initializer, table)
}

func resolveAccess(n *ast.Node, table *symtab.SymbolTable) error {
	sym, ok := table.Get(n.Name)
	if !ok {
		return &UndeclaredNameError{Name: n.Name}
	}
	n.Symbol = sym
	return nil
}

func resolveAssignment(n *ast.Node, table *symtab.SymbolTable) error {
	if err := resolveChildren(n.Children, table); err != nil {
		return err
	}

	if len(n.Assignees) > 0 {
		symbols := make([]*symtab.Symbol, len(n.Assignees))
		for i, assignee := range n.Assignees {
			sym, err := resolveLvalue(assignee, table)
			if err != nil {
				return err
			}
			symbols[i] = sym
		}
		n.Symbols = symbols
		return nil
	}

	sym, err := resolveLvalue(n.Assignee, table)
	if err != nil {
		return err
	}
	n.Symbol = sym
	return nil
}

// resolveLvalue enforces that assignee is an access-variable, that the name
// it names is declared, and that it is not a Constant. It annotates
// assignee.Symbol too, so the multi-target form carries per-target symbols
// on both the assignment node (Symbols) and each assignee node.
func resolveLvalue(assignee *ast.Node, table *symtab.SymbolTable) (*symtab.Symbol, error) {
	if assignee == nil || assignee.Type != ast.AccessVariable {
		name := ""
		if assignee != nil {
			name = assignee.Name
		}
		return nil, &NotAnLvalueError{Name: name}
	}
	sym, ok := table.Get(assignee.Name)
	if !ok {
		return nil, &UndeclaredNameError{Name: assignee.Name}
	}
	if sym.Kind != symtab.Variable {
		return nil, &AssignToConstantError{Name: assignee.Name}
	}
	assignee.Symbol = sym
	return sym, nil
}

func resolveIf(n *ast.Node, table *symtab.SymbolTable) error {
	if err := resolveChildren(n.Children, table); err != nil {
		return err
	}
	// No nested scope is introduced here: spec §4.2 flags this as matching
	// the source compiler's current (possibly buggy) behavior.
	if err := resolve(n.IfBlock, table); err != nil {
		return err
	}
	return resolve(n.ElseBlock, table)
}

func resolveWhile(n *ast.Node, table *symtab.SymbolTable) error {
	if err := resolveChildren(n.Children, table); err != nil {
		return err
	}
	return resolve(n.Body, table)
}
