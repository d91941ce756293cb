package codegen

import (
	"strconv"
	"strings"
	"testing"

	"github.com/dr8co/aqua/ast"
	"github.com/dr8co/aqua/emit"
	"github.com/dr8co/aqua/resolver"
)

func num(v int64) *ast.Node { return ast.NumberNode(v) }

func binOp(opcode string, left, right *ast.Node) *ast.Node {
	return &ast.Node{Type: ast.Operation, Opcode: opcode, Children: []*ast.Node{left, right}}
}

func generateLines(t *testing.T, root *ast.Node, maxScratch int) []string {
	t.Helper()
	if err := resolver.ResolveSymbols(root); err != nil {
		t.Fatalf("ResolveSymbols returned error: %v", err)
	}
	e := emit.New()
	g := New(e, maxScratch)
	if err := g.Generate(root); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	out := e.Output()
	if out == "" {
		return nil
	}
	return strings.Split(out, "\r\n")
}

// S1: expression statement `1 + 1 ;`
func TestS1_ExpressionStatement(t *testing.T) {
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{
		{Type: ast.ExprStatement, Children: []*ast.Node{binOp("+", num(1), num(1))}},
	}}
	lines := generateLines(t, root, 256)
	want := []string{"int 1", "int 1", "+"}
	assertLines(t, lines, want)
}

// S2: return statement `return 1 ;`
func TestS2_ReturnStatement(t *testing.T) {
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{
		{Type: ast.ReturnStatement, Children: []*ast.Node{num(1)}},
	}}
	lines := generateLines(t, root, 256)
	assertLines(t, lines, []string{"int 1", "return"})
}

// S3: two statements `1 + 2 ; return 3 ;`
func TestS3_TwoStatements(t *testing.T) {
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{
		{Type: ast.ExprStatement, Children: []*ast.Node{binOp("+", num(1), num(2))}},
		{Type: ast.ReturnStatement, Children: []*ast.Node{num(3)}},
	}}
	lines := generateLines(t, root, 256)
	assertLines(t, lines, []string{"int 1", "int 2", "+", "int 3", "return"})
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d lines %v, got %d lines %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q (full: %v)", i, want[i], got[i], got)
		}
	}
}

func TestBootstrapAndProgramEndOnlyWhenFunctionsExist(t *testing.T) {
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{
		{Type: ast.ExprStatement, Children: []*ast.Node{num(1)}},
	}}
	lines := generateLines(t, root, 256)
	for _, l := range lines {
		if strings.Contains(l, "program_end") {
			t.Fatalf("did not expect program_end when no function is declared, got lines: %v", lines)
		}
	}

	fn := &ast.Node{
		Type: ast.FunctionDeclaration,
		Name: "f",
		Body: &ast.Node{Type: ast.Block, Children: []*ast.Node{
			{Type: ast.ReturnStatement, Children: []*ast.Node{num(1)}},
		}},
	}
	rootWithFn := &ast.Node{Type: ast.Block, Children: []*ast.Node{fn}}
	lines = generateLines(t, rootWithFn, 256)

	if len(lines) == 0 || lines[0] != "int 256 // stack pointer bootstrap" {
		t.Fatalf("expected first line to be the stack-pointer bootstrap, got %v", lines)
	}
	if lines[1] != "store 0" {
		t.Fatalf("expected second line to store the bootstrap value, got %q", lines[1])
	}

	programEndCount := 0
	for _, l := range lines {
		if l == "program_end:" {
			programEndCount++
		}
	}
	if programEndCount != 1 {
		t.Fatalf("expected exactly one program_end label, got %d in %v", programEndCount, lines)
	}
	if lines[len(lines)-1] != "program_end:" {
		t.Fatalf("expected program_end to be the last line, got %v", lines)
	}

	branchFound := false
	for _, l := range lines {
		if l == "b program_end" {
			branchFound = true
			break
		}
	}
	if !branchFound {
		t.Fatalf("expected an unconditional branch to program_end before function bodies, got %v", lines)
	}
}

func TestIfStatementLabels(t *testing.T) {
	ifNode := &ast.Node{
		Type:     ast.IfStatement,
		Children: []*ast.Node{num(1)},
		IfBlock: &ast.Node{Type: ast.Block, Children: []*ast.Node{
			{Type: ast.ExprStatement, Children: []*ast.Node{num(2)}},
		}},
		ElseBlock: &ast.Node{Type: ast.Block, Children: []*ast.Node{
			{Type: ast.ExprStatement, Children: []*ast.Node{num(3)}},
		}},
	}
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{ifNode}}
	lines := generateLines(t, root, 256)
	out := strings.Join(lines, "\n")

	k := ifNode.ControlStatementID
	if k == 0 {
		t.Fatalf("expected a minted control id")
	}
	elseLabel := "else_" + strconv.Itoa(k) + ":"
	endLabel := "end_" + strconv.Itoa(k) + ":"
	bz := "bz else_" + strconv.Itoa(k)
	b := "b end_" + strconv.Itoa(k)

	for _, want := range []string{elseLabel, endLabel, bz, b} {
		if strings.Count(out, want) != 1 {
			t.Fatalf("expected exactly one occurrence of %q, got output:\n%s", want, out)
		}
	}
}

func TestWhileStatementLabels(t *testing.T) {
	whileNode := &ast.Node{
		Type:     ast.WhileStatement,
		Children: []*ast.Node{num(1)},
		Body: &ast.Node{Type: ast.Block, Children: []*ast.Node{
			{Type: ast.ExprStatement, Children: []*ast.Node{num(2)}},
		}},
	}
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{whileNode}}
	lines := generateLines(t, root, 256)
	out := strings.Join(lines, "\n")

	k := whileNode.ControlStatementID
	start := "loop_start_" + strconv.Itoa(k) + ":"
	end := "loop_end_" + strconv.Itoa(k) + ":"
	bz := "bz loop_end_" + strconv.Itoa(k)
	b := "b loop_start_" + strconv.Itoa(k)

	for _, want := range []string{start, end, bz, b} {
		if strings.Count(out, want) != 1 {
			t.Fatalf("expected exactly one occurrence of %q, got output:\n%s", want, out)
		}
	}
}

func TestFunctionPrologueStoresParamsInReverseOrder(t *testing.T) {
	fn := &ast.Node{
		Type:   ast.FunctionDeclaration,
		Name:   "add",
		Params: []string{"a", "b"},
		Body: &ast.Node{Type: ast.Block, Children: []*ast.Node{
			{Type: ast.ReturnStatement, Children: []*ast.Node{num(0)}},
		}},
	}
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{fn}}
	lines := generateLines(t, root, 256)

	bIdx, aIdx := -1, -1
	for i, l := range lines {
		if strings.HasSuffix(l, "// b") {
			bIdx = i
		}
		if strings.HasSuffix(l, "// a") {
			aIdx = i
		}
	}
	if bIdx == -1 || aIdx == -1 {
		t.Fatalf("expected both parameter stores in output, got %v", lines)
	}
	if bIdx >= aIdx {
		t.Fatalf("expected b (last declared) to be stored before a (reverse declaration order), got b at %d, a at %d", bIdx, aIdx)
	}
}

func TestAssignmentLeavesValueOnStack(t *testing.T) {
	decl := &ast.Node{Type: ast.DeclareVariable, Name: "x"}
	assign := &ast.Node{
		Type:     ast.AssignmentStatement,
		Assignee: &ast.Node{Type: ast.AccessVariable, Name: "x"},
		Children: []*ast.Node{num(5)},
	}
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{
		decl,
		{Type: ast.ExprStatement, Children: []*ast.Node{assign}},
	}}
	lines := generateLines(t, root, 256)
	out := strings.Join(lines, "\n")
	if !strings.Contains(out, "dup") || !strings.Contains(out, "store 1") {
		t.Fatalf("expected global assignment to dup then store, got:\n%s", out)
	}
}

func TestBuiltinAppGlobalPutBalancesStack(t *testing.T) {
	call := &ast.Node{
		Type: ast.FunctionCall,
		Name: "appGlobalPut",
		FunctionArgs: []*ast.Node{
			ast.StringNode("counter"),
			num(1),
		},
	}
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{
		{Type: ast.ExprStatement, Children: []*ast.Node{call}},
	}}
	lines := generateLines(t, root, 256)
	out := strings.Join(lines, "\n")
	if !strings.Contains(out, "app_global_put") {
		t.Fatalf("expected app_global_put opcode, got:\n%s", out)
	}
	if !strings.Contains(out, "app_global_put\nint 0") {
		t.Fatalf("expected a dummy int 0 right after app_global_put to balance the stack, got:\n%s", out)
	}
}

func TestBuiltinItxnFieldUnquotesFieldName(t *testing.T) {
	call := &ast.Node{
		Type: ast.FunctionCall,
		Name: "itxn_field",
		FunctionArgs: []*ast.Node{
			ast.StringNode("ConfigAssetName"),
			ast.StringNode("MyToken"),
		},
	}
	root := &ast.Node{Type: ast.Block, Children: []*ast.Node{
		{Type: ast.ExprStatement, Children: []*ast.Node{call}},
	}}
	lines := generateLines(t, root, 256)
	out := strings.Join(lines, "\n")
	if !strings.Contains(out, "itxn_field ConfigAssetName") {
		t.Fatalf("expected unquoted field name concatenated into opcode, got:\n%s", out)
	}
}
