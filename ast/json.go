package ast

import "encoding/json"

// wireNode is the JSON wire format for a Node, used to decode AST fixtures
// produced by an external parser (out of scope for this package) or written
// by hand for tests.
type wireNode struct {
	Type            string      `json:"nodeType"`
	Children        []*wireNode `json:"children,omitempty"`
	Name            string      `json:"name,omitempty"`
	Params          []string    `json:"params,omitempty"`
	Body            *wireNode   `json:"body,omitempty"`
	Initializer     *wireNode   `json:"initializer,omitempty"`
	Assignee        *wireNode   `json:"assignee,omitempty"`
	Assignees       []*wireNode `json:"assignees,omitempty"`
	IfBlock         *wireNode   `json:"ifBlock,omitempty"`
	ElseBlock       *wireNode   `json:"elseBlock,omitempty"`
	FunctionArgs    []*wireNode `json:"functionArgs,omitempty"`
	Opcode          string      `json:"opcode,omitempty"`
	Args            []string    `json:"args,omitempty"`
	NumItemsAdded   *int        `json:"numItemsAdded,omitempty"`
	NumItemsRemoved *int        `json:"numItemsRemoved,omitempty"`
	Value           int64       `json:"value,omitempty"`
	StrValue        string      `json:"stringValue,omitempty"`
}

// DecodeJSON decodes a single AST rooted at the given JSON document. The
// wire format mirrors spec §3's attribute table one field per JSON key; it
// carries no scope/symbol annotations, since those are computed by the
// resolver, not produced by whatever front end generated the fixture.
func DecodeJSON(data []byte) (*Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return w.toNode(), nil
}

func (w *wireNode) toNode() *Node {
	if w == nil {
		return nil
	}
	n := &Node{
		Type:            NodeType(w.Type),
		Name:            w.Name,
		Params:          w.Params,
		Body:            w.Body.toNode(),
		Initializer:     w.Initializer.toNode(),
		Assignee:        w.Assignee.toNode(),
		IfBlock:         w.IfBlock.toNode(),
		ElseBlock:       w.ElseBlock.toNode(),
		Opcode:          w.Opcode,
		Args:            w.Args,
		NumItemsAdded:   w.NumItemsAdded,
		NumItemsRemoved: w.NumItemsRemoved,
		Value:           w.Value,
		StrValue:        w.StrValue,
	}
	for _, c := range w.Children {
		n.Children = append(n.Children, c.toNode())
	}
	for _, a := range w.Assignees {
		n.Assignees = append(n.Assignees, a.toNode())
	}
	for _, a := range w.FunctionArgs {
		n.FunctionArgs = append(n.FunctionArgs, a.toNode())
	}
	return n
}
