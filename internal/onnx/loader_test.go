package onnx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylegen/stylegen/internal/onnx/operators"
)

func TestListSupportedOps(t *testing.T) {
	ops := ListSupportedOps()
	for _, op := range []string{"Add", "Clip", "Div", "Identity", "Mul"} {
		assert.Contains(t, ops, op)
	}
}

func TestTopologicalSort(t *testing.T) {
	// A -> B -> C
	//      B -> D
	nodes := []NodeProto{
		{Name: "C", Inputs: []string{"b_out"}, Outputs: []string{"c_out"}},
		{Name: "A", Inputs: []string{"input"}, Outputs: []string{"a_out"}},
		{Name: "D", Inputs: []string{"b_out"}, Outputs: []string{"d_out"}},
		{Name: "B", Inputs: []string{"a_out"}, Outputs: []string{"b_out"}},
	}

	positions := make(map[string]int)
	for i, node := range topologicalSort(nodes) {
		positions[node.Name] = i
	}

	assert.Less(t, positions["A"], positions["B"])
	assert.Less(t, positions["B"], positions["C"])
	assert.Less(t, positions["B"], positions["D"])
}

func TestLoadAndForward(t *testing.T) {
	data, err := Marshal(buildChainModel(t))
	require.NoError(t, err)

	model, err := LoadFromBytes(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"input"}, model.InputNames(), "initializers are not inputs")
	assert.Equal(t, []string{"output"}, model.OutputNames())
	assert.Equal(t, int64(DefaultOpset), model.OpsetVersion())
	assert.Equal(t, "test", model.Metadata()["style"])
	assert.Equal(t, "stylegen", model.Metadata()["producer_name"])

	// 255 / 255 = 1, scaled by {1, 2, 4} per channel, clipped to 1.
	// 51 / 255 = 0.2, scaled by {1, 2, 4} -> {0.2, 0.4, 0.8}.
	in := operators.NewTensor([]int64{1, 3, 2, 2})
	for i := range in.Data {
		in.Data[i] = 51
	}
	in.Data[0] = 255

	out, err := model.Forward(in)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 2, 2}, out.Shape)
	assert.InDelta(t, 1.0, out.Data[0], 1e-6)
	assert.InDelta(t, 0.2, out.Data[1], 1e-6)
	assert.InDelta(t, 0.4, out.Data[4], 1e-6)
	assert.InDelta(t, 0.8, out.Data[8], 1e-6)
}

func TestForwardMissingInput(t *testing.T) {
	data, err := Marshal(buildChainModel(t))
	require.NoError(t, err)
	model, err := LoadFromBytes(data)
	require.NoError(t, err)

	_, err = model.ForwardNamed(map[string]*operators.Tensor{})
	require.Error(t, err)
}

func TestLoadRejectsUnsupportedOp(t *testing.T) {
	model := buildChainModel(t)
	model.Graph.Nodes[1].OpType = "Conv"

	_, err := LoadFromProto(model, DefaultLoadOptions())
	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "Conv", nodeErr.OpType)
}

func TestLoadCustomOp(t *testing.T) {
	model := buildChainModel(t)
	model.Graph.Nodes[1].OpType = "Scale2"

	opts := LoadOptions{CustomOps: map[string]operators.OpHandler{
		"Scale2": func(_ *operators.Node, inputs []*operators.Tensor) ([]*operators.Tensor, error) {
			return []*operators.Tensor{inputs[0]}, nil
		},
	}}
	_, err := LoadFromProto(model, opts)
	require.NoError(t, err)
}

func TestGetModelInfo(t *testing.T) {
	model := buildChainModel(t)
	data, err := Marshal(model)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "chain.onnx")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	info, err := GetModelInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "chain", info.GraphName)
	assert.Equal(t, 3, info.NodeCount)
	assert.Equal(t, []string{"Clip", "Div", "Mul"}, info.Operators)
	assert.Equal(t, []int64{1, 3, 2, 2}, info.InputShapes["input"])
	assert.Equal(t, []int64{1, 3, 2, 2}, info.OutputShapes["output"])
	assert.Equal(t, int64(DefaultOpset), info.OpsetVersion)
	assert.Equal(t, "test", info.Metadata["style"])
}
