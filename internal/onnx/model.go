package onnx

import (
	"fmt"

	"github.com/stylegen/stylegen/internal/onnx/operators"
)

// Model is a loaded ONNX model evaluated with the float32 reference kernels.
type Model struct {
	proto        *ModelProto
	registry     *operators.Registry
	tensors      map[string]*operators.Tensor // Initializers
	inputNames   []string
	outputNames  []string
	sortedNodes  []NodeProto
	opsetVersion int64
}

// InputNames returns the names of model inputs.
func (m *Model) InputNames() []string {
	return m.inputNames
}

// OutputNames returns the names of model outputs.
func (m *Model) OutputNames() []string {
	return m.outputNames
}

// OpsetVersion returns the default-domain opset version.
func (m *Model) OpsetVersion() int64 {
	return m.opsetVersion
}

// Proto returns the parsed model.
func (m *Model) Proto() *ModelProto {
	return m.proto
}

// Metadata returns model metadata as key-value pairs.
func (m *Model) Metadata() map[string]string {
	meta := make(map[string]string)
	for _, prop := range m.proto.MetadataProps {
		meta[prop.Key] = prop.Value
	}
	meta["producer_name"] = m.proto.ProducerName
	meta["producer_version"] = m.proto.ProducerVersion
	meta["domain"] = m.proto.Domain
	return meta
}

// Forward runs the model on its single input and returns its single output.
func (m *Model) Forward(input *operators.Tensor) (*operators.Tensor, error) {
	if len(m.inputNames) != 1 {
		return nil, fmt.Errorf("model has %d inputs, use ForwardNamed", len(m.inputNames))
	}
	if len(m.outputNames) != 1 {
		return nil, fmt.Errorf("model has %d outputs, use ForwardNamed", len(m.outputNames))
	}

	outputs, err := m.ForwardNamed(map[string]*operators.Tensor{
		m.inputNames[0]: input,
	})
	if err != nil {
		return nil, err
	}
	return outputs[m.outputNames[0]], nil
}

// ForwardNamed runs the model with named inputs and returns named outputs.
func (m *Model) ForwardNamed(inputs map[string]*operators.Tensor) (map[string]*operators.Tensor, error) {
	values := make(map[string]*operators.Tensor, len(m.tensors)+len(inputs))
	for name, t := range m.tensors {
		values[name] = t
	}
	for name, t := range inputs {
		values[name] = t
	}

	for _, name := range m.inputNames {
		if _, ok := values[name]; !ok {
			return nil, fmt.Errorf("missing input: %s", name)
		}
	}

	for i := range m.sortedNodes {
		node := &m.sortedNodes[i]
		nodeInputs := make([]*operators.Tensor, len(node.Inputs))
		for j, name := range node.Inputs {
			if name == "" {
				continue // omitted optional input
			}
			t, ok := values[name]
			if !ok {
				return nil, &NodeError{Node: node.Name, OpType: node.OpType, Err: fmt.Errorf("missing input %s", name)}
			}
			nodeInputs[j] = t
		}

		outputs, err := m.registry.Execute(toOperatorNode(node), nodeInputs)
		if err != nil {
			return nil, &NodeError{Node: node.Name, OpType: node.OpType, Err: err}
		}
		for j, name := range node.Outputs {
			if j < len(outputs) {
				values[name] = outputs[j]
			}
		}
	}

	result := make(map[string]*operators.Tensor, len(m.outputNames))
	for _, name := range m.outputNames {
		t, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("missing output: %s", name)
		}
		result[name] = t
	}
	return result, nil
}

// compile prepares the model for evaluation.
func (m *Model) compile() error {
	graph := m.proto.Graph
	if graph == nil {
		return ErrNoGraph
	}

	m.tensors = make(map[string]*operators.Tensor, len(graph.Initializers))
	for i := range graph.Initializers {
		init := &graph.Initializers[i]
		t, err := tensorFromProto(init)
		if err != nil {
			return fmt.Errorf("failed to load initializer %s: %w", init.Name, err)
		}
		m.tensors[init.Name] = t
	}

	// Graph inputs that are also initializers are constants, not model inputs.
	for i := range graph.Inputs {
		if _, ok := m.tensors[graph.Inputs[i].Name]; !ok {
			m.inputNames = append(m.inputNames, graph.Inputs[i].Name)
		}
	}
	for i := range graph.Outputs {
		m.outputNames = append(m.outputNames, graph.Outputs[i].Name)
	}

	for _, node := range graph.Nodes {
		if _, ok := m.registry.Get(node.OpType); !ok {
			return &NodeError{Node: node.Name, OpType: node.OpType, Err: fmt.Errorf("unsupported operator")}
		}
	}
	m.sortedNodes = topologicalSort(graph.Nodes)
	m.opsetVersion = defaultOpset(m.proto)

	return nil
}

func defaultOpset(m *ModelProto) int64 {
	for _, opset := range m.OpsetImport {
		if opset.Domain == "" || opset.Domain == "ai.onnx" {
			return opset.Version
		}
	}
	return 0
}

// tensorFromProto converts a float32 TensorProto to an evaluator tensor.
func tensorFromProto(proto *TensorProto) (*operators.Tensor, error) {
	data, err := proto.Floats()
	if err != nil {
		return nil, err
	}
	return operators.FromSlice(proto.Dims, data)
}

// toOperatorNode converts NodeProto to operators.Node.
func toOperatorNode(proto *NodeProto) *operators.Node {
	attrs := make([]operators.Attribute, len(proto.Attributes))
	for i := range proto.Attributes {
		attr := &proto.Attributes[i]
		attrs[i] = operators.Attribute{
			Name: attr.Name,
			Type: attr.Type,
			F:    attr.F,
			I:    attr.I,
		}
	}
	return &operators.Node{
		Name:       proto.Name,
		OpType:     proto.OpType,
		Inputs:     proto.Inputs,
		Outputs:    proto.Outputs,
		Attributes: attrs,
	}
}

// topologicalSort orders nodes so producers run before consumers.
func topologicalSort(nodes []NodeProto) []NodeProto {
	outputToNode := make(map[string]int)
	for i := range nodes {
		for _, output := range nodes[i].Outputs {
			outputToNode[output] = i
		}
	}

	visited := make([]bool, len(nodes))
	result := make([]NodeProto, 0, len(nodes))

	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		for _, input := range nodes[i].Inputs {
			if dep, ok := outputToNode[input]; ok {
				visit(dep)
			}
		}
		result = append(result, nodes[i])
	}

	for i := range nodes {
		visit(i)
	}
	return result
}
