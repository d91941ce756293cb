// Package ast defines the tagged abstract syntax tree node that is the sole
// input to the resolver and code generator.
//
// A Node is a single Go type carrying a NodeType discriminator plus every
// attribute any variant might need; unused attributes are left at their zero
// value. This mirrors the source compiler's dynamic, open AST record while
// giving the resolver and generator exhaustive, compile-time-checked
// switches over NodeType instead of untyped attribute lookups.
//
// Nodes are owned by their parent; the tree is acyclic and single-rooted.
// The resolver and generator annotate nodes in place (Scope, Symbol, Symbols,
// ControlStatementID) as they walk the tree.
package ast

import "github.com/dr8co/aqua/symtab"

// NodeType discriminates the variant-specific attributes a Node carries.
type NodeType string

// The recognised node variants, named exactly as the external parser's wire
// format names them.
const (
	FunctionDeclaration NodeType = "function-declaration"
	DeclareVariable     NodeType = "declare-variable"
	DeclareConstant     NodeType = "declare-constant"
	AccessVariable      NodeType = "access-variable"
	AssignmentStatement NodeType = "assignment-statement"
	IfStatement         NodeType = "if-statement"
	WhileStatement      NodeType = "while-statement"
	ReturnStatement     NodeType = "return-statement"
	ExprStatement       NodeType = "expr-statement"
	FunctionCall        NodeType = "function-call"
	Operation           NodeType = "operation"
	Number              NodeType = "number"
	StringLiteral       NodeType = "string-literal"
	Block               NodeType = "block"
	Statement           NodeType = "statement"
)

// Node is a single AST node. Only the fields relevant to Type are populated;
// the rest are left zero. See the package doc and spec §3's attribute table
// for which fields each NodeType uses.
type Node struct {
	Type NodeType

	// Children holds the node's generically-visited substructure. Substructure
	// addressed through a dedicated field below (Body, IfBlock, ElseBlock,
	// Initializer, Assignee/Assignees, FunctionArgs) is not repeated in
	// Children — the dedicated field is authoritative. if-statement and
	// while-statement keep their condition in Children, and
	// assignment-statement its assigned value.
	Children []*Node

	// Name is used by function-declaration, declare-variable,
	// declare-constant, access-variable, and function-call.
	Name string

	// Params is the function-declaration's ordered parameter name list.
	Params []string

	// Body is the function-declaration's block, or the while-statement's
	// loop body.
	Body *Node

	// Initializer is declare-variable/declare-constant's optional expression.
	Initializer *Node

	// Assignee is the assignment-statement's single target (an
	// access-variable node). Assignees holds the multi-target form instead.
	Assignee  *Node
	Assignees []*Node

	// IfBlock and ElseBlock belong to if-statement. ElseBlock is nil when
	// there is no else clause.
	IfBlock   *Node
	ElseBlock *Node

	// FunctionArgs is function-call's ordered argument expression list.
	FunctionArgs []*Node

	// Opcode, Args, NumItemsAdded and NumItemsRemoved belong to operation.
	// NumItemsAdded/NumItemsRemoved are nil when the node uses the default
	// 1 pushed / 2 popped stack effect.
	Opcode          string
	Args            []string
	NumItemsAdded   *int
	NumItemsRemoved *int

	// Value holds a number's integer literal. StrValue holds a
	// string-literal's text.
	Value    int64
	StrValue string

	// --- Annotations, populated in place by the resolver and generator ---

	// Scope is attached to function-declaration: the symbol table for its body.
	Scope *symtab.SymbolTable

	// Symbol is attached to declare-variable, declare-constant,
	// access-variable, and single-target assignment-statement nodes.
	Symbol *symtab.Symbol

	// Symbols is attached to multi-target assignment-statement nodes, one
	// entry per Assignees entry in the same order.
	Symbols []*symtab.Symbol

	// ControlStatementID is attached to if-statement and while-statement
	// nodes by the code generator for label generation.
	ControlStatementID int
}

// NumberNode builds a number literal node.
func NumberNode(value int64) *Node {
	return &Node{Type: Number, Value: value}
}

// StringNode builds a string literal node.
func StringNode(value string) *Node {
	return &Node{Type: StringLiteral, StrValue: value}
}
