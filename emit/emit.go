// Package emit provides CodeEmitter, the narrow sink the code generator
// writes instruction and label lines to.
//
// CodeEmitter trusts the caller's declared (pushed, popped) counts for each
// instruction; its only semantic responsibility is tracking the logical
// compute-stack depth those counts imply, so that PopAll can drain whatever
// is left over at the end of an expression statement.
package emit

import (
	"fmt"
	"strings"
)

// StackUnderflowError is an internal invariant violation: an instruction
// claimed to pop more values than the logical stack currently holds.
type StackUnderflowError struct {
	Popped, Depth int
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow: instruction pops %d but logical depth is only %d", e.Popped, e.Depth)
}

// CodeEmitter appends instruction and label lines in insertion order and
// tracks the logical compute-stack depth implied by each emitted
// instruction's declared stack effect.
type CodeEmitter struct {
	lines []string
	depth int
}

// New creates an empty CodeEmitter.
func New() *CodeEmitter {
	return &CodeEmitter{}
}

// Add appends one instruction line, optionally followed by a comment, and
// updates the logical depth by pushed - popped. It returns a
// *StackUnderflowError without modifying state if depth would go negative.
func (e *CodeEmitter) Add(text string, pushed, popped int, comment ...string) error {
	if popped > e.depth {
		return &StackUnderflowError{Popped: popped, Depth: e.depth}
	}
	e.lines = append(e.lines, withComment(text, comment))
	e.depth += pushed - popped
	return nil
}

// Label appends a label definition line (name followed by a colon),
// optionally followed by a comment. Labels do not affect logical depth.
func (e *CodeEmitter) Label(name string, comment ...string) {
	e.lines = append(e.lines, withComment(name+":", comment))
}

// Section appends a blank separator line, and a comment line if title is
// given. Purely cosmetic; has no effect on logical depth.
func (e *CodeEmitter) Section(title ...string) {
	e.lines = append(e.lines, "")
	if len(title) > 0 && title[0] != "" {
		e.lines = append(e.lines, "// "+title[0])
	}
}

// ResetStack sets the logical depth to 0. The generator calls this at the
// start of every statement.
func (e *CodeEmitter) ResetStack() {
	e.depth = 0
}

// Depth returns the current logical compute-stack depth.
func (e *CodeEmitter) Depth() int {
	return e.depth
}

// PopAll emits as many single-item pop instructions as needed to drain the
// current logical depth to 0, for expression statements whose value is
// unused.
func (e *CodeEmitter) PopAll() {
	for e.depth > 0 {
		// Add cannot underflow here: depth is checked and decremented by
		// exactly 1 on each iteration.
		_ = e.Add("pop", 0, 1)
	}
}

// Output joins the emitted lines with CRLF, in insertion order.
func (e *CodeEmitter) Output() string {
	return strings.Join(e.lines, "\r\n")
}

func withComment(text string, comment []string) string {
	if len(comment) > 0 && comment[0] != "" {
		return text + " // " + comment[0]
	}
	return text
}
