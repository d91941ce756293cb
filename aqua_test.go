package aqua

import (
	"strings"
	"testing"

	"github.com/dr8co/aqua/ast"
	"github.com/dr8co/aqua/config"
)

func TestCompile_PragmaPrefix(t *testing.T) {
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{
		{Type: ast.ReturnStatement, Children: []*ast.Node{ast.NumberNode(1)}},
	}}

	out, err := Compile(root, config.Default())
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	lines := strings.Split(out, "\r\n")
	if lines[0] != "#pragma version 3" {
		t.Fatalf("expected pragma line, got %q", lines[0])
	}
	if lines[1] != "int 1" || lines[2] != "return" {
		t.Fatalf("unexpected body: %v", lines[1:])
	}
}

func TestCompile_PropagatesResolverErrors(t *testing.T) {
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{
		{Type: ast.ExprStatement, Children: []*ast.Node{
			{Type: ast.AccessVariable, Name: "undeclared"},
		}},
	}}

	_, err := Compile(root, config.Default())
	if err == nil {
		t.Fatal("expected an error for an undeclared name")
	}
}

func TestCompile_FromJSONFixture(t *testing.T) {
	root, err := ast.DecodeJSON([]byte(`{
		"nodeType": "block",
		"children": [
			{
				"nodeType": "declare-variable",
				"name": "counter",
				"initializer": {"nodeType": "number", "value": 0}
			},
			{
				"nodeType": "expr-statement",
				"children": [
					{
						"nodeType": "assignment-statement",
						"assignee": {"nodeType": "access-variable", "name": "counter"},
						"children": [{"nodeType": "number", "value": 1}]
					}
				]
			}
		]
	}`))
	if err != nil {
		t.Fatalf("DecodeJSON returned error: %v", err)
	}

	out, err := Compile(root, config.Default())
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if !strings.Contains(out, "dup") {
		t.Fatalf("expected the assignment to dup the assigned value, got:\n%s", out)
	}
}
