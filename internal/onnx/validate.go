package onnx

import "fmt"

// ValidateChain checks that a graph is a single linear chain: the first
// input of every node is the previous node's output (the graph input for the
// first node), every other input names an initializer, and the last node
// produces the graph output.
func ValidateChain(g *GraphProto) error {
	if g == nil {
		return ErrNoGraph
	}
	if len(g.Nodes) == 0 {
		return ErrEmptyGraph
	}
	if len(g.Inputs) != 1 || len(g.Outputs) != 1 {
		return fmt.Errorf("chain needs exactly one input and one output, got %d and %d", len(g.Inputs), len(g.Outputs))
	}

	prev := g.Inputs[0].Name
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if len(node.Inputs) == 0 || len(node.Outputs) != 1 {
			return &NodeError{Node: node.Name, OpType: node.OpType,
				Err: fmt.Errorf("%w: want at least 1 input and exactly 1 output", ErrBrokenChain)}
		}
		if node.Inputs[0] != prev {
			return &NodeError{Node: node.Name, OpType: node.OpType,
				Err: fmt.Errorf("%w: input %q, previous output %q", ErrBrokenChain, node.Inputs[0], prev)}
		}
		for _, operand := range node.Inputs[1:] {
			if operand == "" {
				continue // omitted optional input
			}
			if _, ok := g.Initializer(operand); !ok {
				return &NodeError{Node: node.Name, OpType: node.OpType,
					Err: fmt.Errorf("%w: %q", ErrUnknownOperand, operand)}
			}
		}
		prev = node.Outputs[0]
	}

	if prev != g.Outputs[0].Name {
		return fmt.Errorf("%w: %q, graph output %q", ErrDanglingOutput, prev, g.Outputs[0].Name)
	}
	return nil
}
