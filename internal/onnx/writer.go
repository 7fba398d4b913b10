package onnx

import (
	"encoding/binary"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes a model in the protobuf wire format used by .onnx files.
//
// Fields holding their zero value are omitted, matching what protobuf
// runtimes emit for unset optional fields.
func Marshal(m *ModelProto) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("marshal: nil model")
	}
	if m.Graph == nil {
		return nil, fmt.Errorf("marshal: %w", ErrNoGraph)
	}
	return appendModelProto(nil, m), nil
}

func appendModelProto(b []byte, m *ModelProto) []byte {
	b = appendVarintField(b, 1, uint64(m.IRVersion)) //nolint:gosec // G115: IR versions are small positives.
	b = appendStringField(b, 2, m.ProducerName)
	b = appendStringField(b, 3, m.ProducerVersion)
	b = appendStringField(b, 4, m.Domain)
	b = appendVarintField(b, 5, uint64(m.ModelVersion)) //nolint:gosec // G115: model versions are small positives.
	b = appendStringField(b, 6, m.DocString)
	if m.Graph != nil {
		b = appendMessageField(b, 7, appendGraphProto(nil, m.Graph))
	}
	for i := range m.OpsetImport {
		b = appendMessageField(b, 8, appendOperatorSetID(nil, &m.OpsetImport[i]))
	}
	for i := range m.MetadataProps {
		b = appendMessageField(b, 14, appendStringStringEntry(nil, &m.MetadataProps[i]))
	}
	return b
}

func appendGraphProto(b []byte, g *GraphProto) []byte {
	for i := range g.Nodes {
		b = appendMessageField(b, 1, appendNodeProto(nil, &g.Nodes[i]))
	}
	b = appendStringField(b, 2, g.Name)
	for i := range g.Initializers {
		b = appendMessageField(b, 5, appendTensorProto(nil, &g.Initializers[i]))
	}
	b = appendStringField(b, 10, g.DocString)
	for i := range g.Inputs {
		b = appendMessageField(b, 11, appendValueInfoProto(nil, &g.Inputs[i]))
	}
	for i := range g.Outputs {
		b = appendMessageField(b, 12, appendValueInfoProto(nil, &g.Outputs[i]))
	}
	for i := range g.ValueInfo {
		b = appendMessageField(b, 13, appendValueInfoProto(nil, &g.ValueInfo[i]))
	}
	return b
}

func appendNodeProto(b []byte, n *NodeProto) []byte {
	// Empty strings are meaningful in input lists (omitted optional inputs),
	// so repeated names are always written.
	for _, in := range n.Inputs {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, in)
	}
	for _, out := range n.Outputs {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, out)
	}
	b = appendStringField(b, 3, n.Name)
	b = appendStringField(b, 4, n.OpType)
	for i := range n.Attributes {
		b = appendMessageField(b, 5, appendAttributeProto(nil, &n.Attributes[i]))
	}
	b = appendStringField(b, 6, n.DocString)
	b = appendStringField(b, 7, n.Domain)
	return b
}

func appendTensorProto(b []byte, t *TensorProto) []byte {
	if len(t.Dims) > 0 {
		var packed []byte
		for _, d := range t.Dims {
			packed = protowire.AppendVarint(packed, uint64(d)) //nolint:gosec // G115: dims are non-negative.
		}
		b = appendMessageField(b, 1, packed)
	}
	b = appendVarintField(b, 2, uint64(t.DataType)) //nolint:gosec // G115: data types are small positives.
	if len(t.FloatData) > 0 {
		b = appendMessageField(b, 4, packFloats(t.FloatData))
	}
	if len(t.Int32Data) > 0 {
		var packed []byte
		for _, v := range t.Int32Data {
			packed = protowire.AppendVarint(packed, uint64(int64(v))) //nolint:gosec // G115: int32 sign-extends per protobuf rules.
		}
		b = appendMessageField(b, 5, packed)
	}
	if len(t.Int64Data) > 0 {
		var packed []byte
		for _, v := range t.Int64Data {
			packed = protowire.AppendVarint(packed, uint64(v)) //nolint:gosec // G115: two's complement per protobuf rules.
		}
		b = appendMessageField(b, 7, packed)
	}
	b = appendStringField(b, 8, t.Name)
	if len(t.RawData) > 0 {
		b = appendMessageField(b, 9, t.RawData)
	}
	b = appendStringField(b, 12, t.DocString)
	return b
}

func appendValueInfoProto(b []byte, v *ValueInfoProto) []byte {
	b = appendStringField(b, 1, v.Name)
	if v.Type != nil {
		b = appendMessageField(b, 2, appendTypeProto(nil, v.Type))
	}
	b = appendStringField(b, 3, v.DocString)
	return b
}

func appendTypeProto(b []byte, t *TypeProto) []byte {
	if t.TensorType == nil {
		return b
	}
	var tt []byte
	tt = appendVarintField(tt, 1, uint64(t.TensorType.ElemType)) //nolint:gosec // G115: data types are small positives.
	if t.TensorType.Shape != nil {
		var shape []byte
		for _, d := range t.TensorType.Shape.Dims {
			var dim []byte
			if d.DimParam != "" {
				dim = appendStringField(dim, 2, d.DimParam)
			} else {
				dim = protowire.AppendTag(dim, 1, protowire.VarintType)
				dim = protowire.AppendVarint(dim, uint64(d.DimValue)) //nolint:gosec // G115: dims are non-negative.
			}
			shape = appendMessageField(shape, 1, dim)
		}
		// A scalar still carries an (empty) shape message.
		tt = appendMessageField(tt, 2, shape)
	}
	return appendMessageField(b, 1, tt)
}

func appendAttributeProto(b []byte, a *AttributeProto) []byte {
	b = appendStringField(b, 1, a.Name)
	switch a.Type {
	case AttributeProtoFloat:
		b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(a.F))
	case AttributeProtoInt:
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.I)) //nolint:gosec // G115: two's complement per protobuf rules.
	case AttributeProtoString:
		b = appendMessageField(b, 4, a.S)
	case AttributeProtoTensor:
		if a.T != nil {
			b = appendMessageField(b, 5, appendTensorProto(nil, a.T))
		}
	case AttributeProtoFloats:
		b = appendMessageField(b, 7, packFloats(a.Floats))
	case AttributeProtoInts:
		var packed []byte
		for _, v := range a.Ints {
			packed = protowire.AppendVarint(packed, uint64(v)) //nolint:gosec // G115: two's complement per protobuf rules.
		}
		b = appendMessageField(b, 8, packed)
	case AttributeProtoStrings:
		for _, s := range a.Strings {
			b = protowire.AppendTag(b, 9, protowire.BytesType)
			b = protowire.AppendBytes(b, s)
		}
	}
	b = appendStringField(b, 13, a.DocString)
	b = appendVarintField(b, 20, uint64(a.Type)) //nolint:gosec // G115: attribute types are small positives.
	return b
}

func appendOperatorSetID(b []byte, o *OperatorSetID) []byte {
	b = appendStringField(b, 1, o.Domain)
	return appendVarintField(b, 2, uint64(o.Version)) //nolint:gosec // G115: opset versions are small positives.
}

func appendStringStringEntry(b []byte, e *StringStringEntry) []byte {
	b = appendStringField(b, 1, e.Key)
	return appendStringField(b, 2, e.Value)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func packFloats(values []float32) []byte {
	packed := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(packed[4*i:], math.Float32bits(v))
	}
	return packed
}
