package onnx

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MakeNode builds a node in the default domain.
func MakeNode(opType string, inputs, outputs []string, name string) NodeProto {
	return NodeProto{
		Name:    name,
		OpType:  opType,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// MakeTensorValueInfo declares a named tensor value with a static shape.
func MakeTensorValueInfo(name string, elemType int32, shape []int64) ValueInfoProto {
	dims := make([]DimensionProto, len(shape))
	for i, d := range shape {
		dims[i] = DimensionProto{DimValue: d}
	}
	return ValueInfoProto{
		Name: name,
		Type: &TypeProto{
			TensorType: &TensorTypeProto{
				ElemType: elemType,
				Shape:    &TensorShapeProto{Dims: dims},
			},
		},
	}
}

// MakeGraph assembles nodes, declared inputs/outputs and constants into a graph.
func MakeGraph(nodes []NodeProto, name string, inputs, outputs []ValueInfoProto, initializers []TensorProto) *GraphProto {
	return &GraphProto{
		Name:         name,
		Nodes:        nodes,
		Inputs:       inputs,
		Outputs:      outputs,
		Initializers: initializers,
	}
}

// MakeModel wraps a graph into a model importing the default opset.
func MakeModel(graph *GraphProto, producer, producerVersion string) *ModelProto {
	return &ModelProto{
		IRVersion:       IRVersion,
		ProducerName:    producer,
		ProducerVersion: producerVersion,
		Graph:           graph,
		OpsetImport: []OperatorSetID{
			{Domain: DefaultDomain, Version: DefaultOpset},
		},
	}
}

// FloatTensor builds a float32 constant with the given dims. Data is stored
// as raw little-endian bytes.
func FloatTensor(name string, dims []int64, values []float32) (TensorProto, error) {
	want := int64(1)
	for _, d := range dims {
		want *= d
	}
	if int64(len(values)) != want {
		return TensorProto{}, fmt.Errorf("tensor %q: %d values for dims %v", name, len(values), dims)
	}

	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	return TensorProto{
		Name:     name,
		DataType: TensorProtoFloat,
		Dims:     dims,
		RawData:  raw,
	}, nil
}

// ScalarTensor builds a 0-d float32 constant.
func ScalarTensor(name string, value float32) TensorProto {
	t, _ := FloatTensor(name, nil, []float32{value})
	return t
}

// Floats returns the float32 contents of a tensor, whichever field holds them.
func (t *TensorProto) Floats() ([]float32, error) {
	if t.DataType != TensorProtoFloat {
		return nil, fmt.Errorf("tensor %q: %w: %d", t.Name, ErrUnsupportedType, t.DataType)
	}
	if len(t.FloatData) > 0 {
		return t.FloatData, nil
	}
	if len(t.RawData)%4 != 0 {
		return nil, fmt.Errorf("tensor %q: raw data length %d not a multiple of 4", t.Name, len(t.RawData))
	}
	out := make([]float32, len(t.RawData)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.RawData[4*i:]))
	}
	return out, nil
}
