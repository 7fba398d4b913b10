package onnx

import (
	"fmt"
	"slices"

	"github.com/stylegen/stylegen/internal/onnx/operators"
)

// InferShapes propagates static shapes from the graph inputs and
// initializers through every node, recording each intermediate value in
// Graph.ValueInfo. The inferred shape of every graph output must match its
// declaration; symbolic declared dimensions match anything.
func InferShapes(m *ModelProto) error {
	if m.Graph == nil {
		return ErrNoGraph
	}
	g := m.Graph
	registry := operators.NewRegistry()

	shapes := make(map[string][]int64)
	for i := range g.Inputs {
		if shape := g.Inputs[i].Shape(); shape != nil {
			shapes[g.Inputs[i].Name] = shape
		}
	}
	for i := range g.Initializers {
		shapes[g.Initializers[i].Name] = slices.Clone(g.Initializers[i].Dims)
	}

	isOutput := make(map[string]bool, len(g.Outputs))
	for i := range g.Outputs {
		isOutput[g.Outputs[i].Name] = true
	}

	for _, node := range topologicalSort(g.Nodes) {
		in := make([][]int64, len(node.Inputs))
		for i, name := range node.Inputs {
			if name == "" {
				continue
			}
			shape, ok := shapes[name]
			if !ok {
				return &NodeError{Node: node.Name, OpType: node.OpType, Err: fmt.Errorf("no shape for input %q", name)}
			}
			in[i] = shape
		}

		out, err := registry.InferShape(toOperatorNode(&node), in)
		if err != nil {
			return &NodeError{Node: node.Name, OpType: node.OpType, Err: err}
		}
		for i, name := range node.Outputs {
			if i >= len(out) {
				break
			}
			shapes[name] = out[i]
			if !isOutput[name] {
				setValueInfo(g, MakeTensorValueInfo(name, TensorProtoFloat, out[i]))
			}
		}
	}

	for i := range g.Outputs {
		declared := g.Outputs[i].Shape()
		inferred, ok := shapes[g.Outputs[i].Name]
		if !ok {
			return fmt.Errorf("output %q: %w", g.Outputs[i].Name, ErrDanglingOutput)
		}
		if declared != nil && !shapeMatches(declared, inferred) {
			return fmt.Errorf("output %q: %w: declared %v, inferred %v",
				g.Outputs[i].Name, ErrShapeMismatch, declared, inferred)
		}
	}
	return nil
}

func setValueInfo(g *GraphProto, vi ValueInfoProto) {
	for i := range g.ValueInfo {
		if g.ValueInfo[i].Name == vi.Name {
			g.ValueInfo[i] = vi
			return
		}
	}
	g.ValueInfo = append(g.ValueInfo, vi)
}

func shapeMatches(declared, inferred []int64) bool {
	if len(declared) != len(inferred) {
		return false
	}
	for i := range declared {
		if declared[i] >= 0 && declared[i] != inferred[i] {
			return false
		}
	}
	return true
}
