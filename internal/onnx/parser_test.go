package onnx

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

// TestParseSimpleAdd tests parsing a hand-encoded Z = X + Y model.
func TestParseSimpleAdd(t *testing.T) {
	model, err := Parse(buildSimpleAddModel())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if model.IRVersion != 7 {
		t.Errorf("Expected IR version 7, got %d", model.IRVersion)
	}
	if model.Graph == nil {
		t.Fatal("Graph is nil")
	}
	if len(model.Graph.Nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d", len(model.Graph.Nodes))
	}

	node := model.Graph.Nodes[0]
	if node.OpType != "Add" {
		t.Errorf("Expected OpType 'Add', got '%s'", node.OpType)
	}
	if len(node.Inputs) != 2 || node.Inputs[0] != "X" || node.Inputs[1] != "Y" {
		t.Errorf("Expected inputs [X Y], got %v", node.Inputs)
	}
	if len(node.Outputs) != 1 || node.Outputs[0] != "Z" {
		t.Errorf("Expected outputs [Z], got %v", node.Outputs)
	}
}

// TestParseInputOutput tests parsing declared inputs and outputs.
func TestParseInputOutput(t *testing.T) {
	model, err := Parse(buildSimpleAddModel())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(model.Graph.Inputs) != 2 {
		t.Errorf("Expected 2 inputs, got %d", len(model.Graph.Inputs))
	}
	if len(model.Graph.Outputs) != 1 {
		t.Errorf("Expected 1 output, got %d", len(model.Graph.Outputs))
	}

	input := model.Graph.Inputs[0]
	if input.Name != "X" {
		t.Errorf("Expected input name 'X', got '%s'", input.Name)
	}
	if input.Type == nil || input.Type.TensorType == nil {
		t.Fatal("Input type info is nil")
	}
	if input.Type.TensorType.ElemType != TensorProtoFloat {
		t.Errorf("Expected float32 type, got %d", input.Type.TensorType.ElemType)
	}

	shape := input.Shape()
	if len(shape) != 2 || shape[0] != -1 || shape[1] != 4 {
		t.Errorf("Expected shape [-1 4], got %v", shape)
	}
}

// TestParseOpsetVersion tests parsing opset version.
func TestParseOpsetVersion(t *testing.T) {
	model, err := Parse(buildSimpleAddModel())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(model.OpsetImport) != 1 {
		t.Fatalf("Expected 1 opset import, got %d", len(model.OpsetImport))
	}
	if model.OpsetImport[0].Version != 13 {
		t.Errorf("Expected opset 13, got %d", model.OpsetImport[0].Version)
	}
}

// TestParseInitializerUnpackedDims tests dims written one varint per field.
func TestParseInitializerUnpackedDims(t *testing.T) {
	var tensor []byte
	tensor = appendVarint(tensor, 1, 1)
	tensor = appendVarint(tensor, 1, 3)
	tensor = appendVarint(tensor, 2, TensorProtoFloat)
	tensor = appendString(tensor, 8, "W")
	raw := make([]byte, 12)
	binary.LittleEndian.PutUint32(raw[4:], math.Float32bits(2.5))
	tensor = appendMessage(tensor, 9, raw)

	var graph []byte
	graph = appendMessage(graph, 5, tensor)
	model := appendMessage(nil, 7, graph)

	parsed, err := Parse(model)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	init, ok := parsed.Graph.Initializer("W")
	if !ok {
		t.Fatal("initializer W not found")
	}
	if len(init.Dims) != 2 || init.Dims[0] != 1 || init.Dims[1] != 3 {
		t.Errorf("Expected dims [1 3], got %v", init.Dims)
	}
	values, err := init.Floats()
	if err != nil {
		t.Fatalf("Floats failed: %v", err)
	}
	if values[1] != 2.5 {
		t.Errorf("Expected values[1] = 2.5, got %v", values[1])
	}
}

// TestParseAttributes tests float and ints attributes.
func TestParseAttributes(t *testing.T) {
	var floatAttr []byte
	floatAttr = appendString(floatAttr, 1, "min")
	floatAttr = protowire.AppendTag(floatAttr, 2, protowire.Fixed32Type)
	floatAttr = protowire.AppendFixed32(floatAttr, math.Float32bits(0.5))
	floatAttr = appendVarint(floatAttr, 20, AttributeProtoFloat)

	var ints []byte
	ints = protowire.AppendVarint(ints, 3)
	ints = protowire.AppendVarint(ints, 3)
	var intsAttr []byte
	intsAttr = appendString(intsAttr, 1, "kernel_shape")
	intsAttr = appendMessage(intsAttr, 8, ints)
	intsAttr = appendVarint(intsAttr, 20, AttributeProtoInts)

	var node []byte
	node = appendString(node, 4, "Clip")
	node = appendMessage(node, 5, floatAttr)
	node = appendMessage(node, 5, intsAttr)

	model := appendMessage(nil, 7, appendMessage(nil, 1, node))

	parsed, err := Parse(model)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	attrs := parsed.Graph.Nodes[0].Attributes
	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Name != "min" || attrs[0].F != 0.5 || attrs[0].Type != AttributeProtoFloat {
		t.Errorf("Unexpected float attribute: %+v", attrs[0])
	}
	if len(attrs[1].Ints) != 2 || attrs[1].Ints[0] != 3 || attrs[1].Type != AttributeProtoInts {
		t.Errorf("Unexpected ints attribute: %+v", attrs[1])
	}
}

// TestParseSkipsUnknownFields tests forward compatibility.
func TestParseSkipsUnknownFields(t *testing.T) {
	data := buildSimpleAddModel()
	data = appendVarint(data, 99, 12345)
	data = protowire.AppendTag(data, 98, protowire.Fixed64Type)
	data = protowire.AppendFixed64(data, 1)

	model, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if model.Graph == nil || len(model.Graph.Nodes) != 1 {
		t.Error("Known fields lost while skipping unknown ones")
	}
}

// TestParseInvalidData tests error handling.
func TestParseInvalidData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		// graph field claims 16 bytes
		{name: "truncated length", data: []byte{0x3a, 0x10, 0x01}},
		// ir_version never terminates
		{name: "truncated varint", data: []byte{0x08, 0xff}},
		// producer_name, then producer_name again as a varint
		{name: "wrong wire type", data: []byte{0x12, 0x01, 0x61, 0x10, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// TestParseFile tests reading from disk.
func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add.onnx")
	if err := os.WriteFile(path, buildSimpleAddModel(), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	model, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if model.Graph.Name != "add_graph" {
		t.Errorf("Expected graph name 'add_graph', got '%s'", model.Graph.Name)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.onnx")); err == nil {
		t.Error("Expected error for missing file")
	}
}

// buildSimpleAddModel hand-encodes a model computing Z = X + Y.
func buildSimpleAddModel() []byte {
	var opset []byte
	opset = appendVarint(opset, 2, 13)

	var node []byte
	node = appendString(node, 1, "X")
	node = appendString(node, 1, "Y")
	node = appendString(node, 2, "Z")
	node = appendString(node, 3, "add")
	node = appendString(node, 4, "Add")

	var graph []byte
	graph = appendMessage(graph, 1, node)
	graph = appendString(graph, 2, "add_graph")
	graph = appendMessage(graph, 11, buildValueInfo("X", []int64{-1, 4}))
	graph = appendMessage(graph, 11, buildValueInfo("Y", []int64{-1, 4}))
	graph = appendMessage(graph, 12, buildValueInfo("Z", []int64{-1, 4}))

	var model []byte
	model = appendVarint(model, 1, 7)
	model = appendMessage(model, 8, opset)
	model = appendMessage(model, 7, graph)
	return model
}

// buildValueInfo hand-encodes a float ValueInfoProto. Negative dims become
// a symbolic "batch" dimension.
func buildValueInfo(name string, shape []int64) []byte {
	var dims []byte
	for _, d := range shape {
		var dim []byte
		if d >= 0 {
			dim = appendVarint(dim, 1, uint64(d))
		} else {
			dim = appendString(dim, 2, "batch")
		}
		dims = appendMessage(dims, 1, dim)
	}

	var tensorType []byte
	tensorType = appendVarint(tensorType, 1, TensorProtoFloat)
	tensorType = appendMessage(tensorType, 2, dims)

	var vi []byte
	vi = appendString(vi, 1, name)
	vi = appendMessage(vi, 2, appendMessage(nil, 1, tensorType))
	return vi
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
