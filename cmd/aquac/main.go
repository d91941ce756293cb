// Command aquac compiles an AST fixture into target assembly.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dr8co/aqua"
	"github.com/dr8co/aqua/ast"
	"github.com/dr8co/aqua/config"
)

const version = "0.1.0"

// printUsage displays custom usage information
func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `aqua compiler v%s

USAGE:
    %s [OPTIONS]

DESCRIPTION:
    aqua resolves symbols over a JSON-encoded AST and lowers it to target
    assembly. Without any flags, it starts an interactive inspector that
    steps through resolution and code generation.

OPTIONS:
    -f, --file <path>       Compile an AST fixture file (JSON)
    -d, --debug             Enable debug mode with more verbose output
    -v, --version           Show version information
    -h, --help              Show this help message

EXAMPLES:
    # Start the interactive inspector
    %s

    # Compile an AST fixture file
    %s -f program.ast.json
    %s --file program.ast.json

`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	fileFlag := flag.String("file", "", "Compile an AST fixture file (JSON)")
	debugFlag := flag.Bool("debug", false, "Enable debug mode with more verbose output")
	versionFlag := flag.Bool("version", false, "Show version information")

	flag.StringVar(fileFlag, "f", "", "Compile an AST fixture file (JSON)")
	flag.BoolVar(debugFlag, "d", false, "Enable debug mode with more verbose output")
	flag.BoolVar(versionFlag, "v", false, "Show version information")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("aqua compiler v%s\n", version)
		return
	}

	if *fileFlag != "" {
		compileFile(*fileFlag, *debugFlag)
		return
	}

	startInspector(*debugFlag)
}

// compileFile reads a JSON AST fixture, compiles it, and prints the result.
func compileFile(filename string, debug bool) {
	cleaned := filepath.Clean(filename)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		fmt.Printf("Error getting absolute path: %s\n", err)
		os.Exit(1)
	}
	if debug {
		fmt.Printf("Compiling file: %s\n", absolute)
	}

	//nolint:gosec // file path comes from a trusted command-line flag, not user input
	content, err := os.ReadFile(absolute)
	if err != nil {
		fmt.Printf("Error reading file: %s\n", err)
		os.Exit(1)
	}

	root, err := ast.DecodeJSON(content)
	if err != nil {
		fmt.Printf("Error decoding AST: %s\n", err)
		os.Exit(1)
	}

	out, err := aqua.Compile(root, config.Default())
	if err != nil {
		fmt.Printf("Compilation error: %s\n", err)
		os.Exit(1)
	}

	fmt.Print(out)
}
