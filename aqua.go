// Package aqua is the surrounding driver spec §2 describes: it resolves
// symbols over an AST, runs the code generator with a fresh emitter, and
// concatenates the emitter's output with the leading version pragma.
//
// aqua itself does no lexing or parsing — the AST it consumes is produced
// by an external parser (out of scope here; see ast.DecodeJSON for a
// stand-in wire format used by tests and cmd/aquac).
package aqua

import (
	"fmt"

	"github.com/dr8co/aqua/ast"
	"github.com/dr8co/aqua/codegen"
	"github.com/dr8co/aqua/config"
	"github.com/dr8co/aqua/emit"
	"github.com/dr8co/aqua/resolver"
)

// Compile resolves symbols over root, generates assembly for it, and
// returns the complete program text: the version pragma line followed by
// the generated body, all lines joined by CRLF (the last line carries no
// trailing CRLF).
//
// Compile mutates root in place (resolver and codegen annotations). A
// single AST must not be compiled twice concurrently. Compiling the same
// root again sequentially re-resolves it from a fresh global table,
// replacing the earlier annotations, and produces the same output.
func Compile(root *ast.Node, target config.Target) (string, error) {
	if err := resolver.ResolveSymbols(root); err != nil {
		return "", fmt.Errorf("resolving symbols: %w", err)
	}

	e := emit.New()
	gen := codegen.New(e, target.MaxScratch)
	if err := gen.Generate(root); err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}

	return fmt.Sprintf("#pragma version %d\r\n%s", target.PragmaVersion, e.Output()), nil
}
