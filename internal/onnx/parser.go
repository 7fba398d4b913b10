package onnx

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: reading a caller-chosen model file is the point.
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes. Unknown fields are skipped.
func Parse(data []byte) (*ModelProto, error) {
	model := &ModelProto{}
	if err := parseModelProto(data, model); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return model, nil
}

// field is one decoded protobuf field. Only the member matching typ is set.
type field struct {
	num     protowire.Number
	typ     protowire.Type
	varint  uint64
	fixed32 uint32
	bytes   []byte
}

// eachField walks the fields of a message in wire order.
func eachField(data []byte, fn func(f *field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(data)
		case protowire.Fixed32Type:
			f.fixed32, n = protowire.ConsumeFixed32(data)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]

		if err := fn(&f); err != nil {
			return err
		}
	}
	return nil
}

func (f *field) expect(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: unexpected wire type %d", f.num, f.typ)
	}
	return nil
}

func (f *field) str() (string, error) {
	if err := f.expect(protowire.BytesType); err != nil {
		return "", err
	}
	return string(f.bytes), nil
}

func (f *field) asInt64() (int64, error) {
	if err := f.expect(protowire.VarintType); err != nil {
		return 0, err
	}
	return int64(f.varint), nil //nolint:gosec // G115: protobuf int64 is two's complement.
}

func (f *field) asInt32() (int32, error) {
	v, err := f.asInt64()
	return int32(v), err //nolint:gosec // G115: protobuf int32 is sign-extended.
}

// varints decodes a repeated integer field in either packed or unpacked form.
func (f *field) varints() ([]int64, error) {
	if f.typ == protowire.VarintType {
		return []int64{int64(f.varint)}, nil //nolint:gosec // G115: two's complement.
	}
	if err := f.expect(protowire.BytesType); err != nil {
		return nil, err
	}
	var out []int64
	data := f.bytes
	for len(data) > 0 {
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, fmt.Errorf("field %d: %w", f.num, protowire.ParseError(n))
		}
		out = append(out, int64(v)) //nolint:gosec // G115: two's complement.
		data = data[n:]
	}
	return out, nil
}

// floats decodes a repeated float field in either packed or unpacked form.
func (f *field) floats() ([]float32, error) {
	if f.typ == protowire.Fixed32Type {
		return []float32{math.Float32frombits(f.fixed32)}, nil
	}
	if err := f.expect(protowire.BytesType); err != nil {
		return nil, err
	}
	if len(f.bytes)%4 != 0 {
		return nil, fmt.Errorf("field %d: packed floats length %d not a multiple of 4", f.num, len(f.bytes))
	}
	out := make([]float32, len(f.bytes)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(f.bytes[4*i:]))
	}
	return out, nil
}

//nolint:gocyclo,cyclop // one case per ModelProto field
func parseModelProto(data []byte, m *ModelProto) error {
	return eachField(data, func(f *field) error {
		var err error
		switch f.num {
		case 1:
			m.IRVersion, err = f.asInt64()
		case 2:
			m.ProducerName, err = f.str()
		case 3:
			m.ProducerVersion, err = f.str()
		case 4:
			m.Domain, err = f.str()
		case 5:
			m.ModelVersion, err = f.asInt64()
		case 6:
			m.DocString, err = f.str()
		case 7:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			m.Graph = &GraphProto{}
			err = parseGraphProto(f.bytes, m.Graph)
		case 8:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			var opset OperatorSetID
			err = parseOperatorSetID(f.bytes, &opset)
			m.OpsetImport = append(m.OpsetImport, opset)
		case 14:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			var entry StringStringEntry
			err = parseStringStringEntry(f.bytes, &entry)
			m.MetadataProps = append(m.MetadataProps, entry)
		}
		return err
	})
}

//nolint:gocyclo,cyclop // one case per GraphProto field
func parseGraphProto(data []byte, g *GraphProto) error {
	return eachField(data, func(f *field) error {
		var err error
		switch f.num {
		case 1:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			var node NodeProto
			err = parseNodeProto(f.bytes, &node)
			g.Nodes = append(g.Nodes, node)
		case 2:
			g.Name, err = f.str()
		case 5:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			var t TensorProto
			err = parseTensorProto(f.bytes, &t)
			g.Initializers = append(g.Initializers, t)
		case 10:
			g.DocString, err = f.str()
		case 11, 12, 13:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			var vi ValueInfoProto
			err = parseValueInfoProto(f.bytes, &vi)
			switch f.num {
			case 11:
				g.Inputs = append(g.Inputs, vi)
			case 12:
				g.Outputs = append(g.Outputs, vi)
			default:
				g.ValueInfo = append(g.ValueInfo, vi)
			}
		}
		return err
	})
}

func parseNodeProto(data []byte, n *NodeProto) error {
	return eachField(data, func(f *field) error {
		var (
			s   string
			err error
		)
		switch f.num {
		case 1:
			s, err = f.str()
			n.Inputs = append(n.Inputs, s)
		case 2:
			s, err = f.str()
			n.Outputs = append(n.Outputs, s)
		case 3:
			n.Name, err = f.str()
		case 4:
			n.OpType, err = f.str()
		case 5:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			var attr AttributeProto
			err = parseAttributeProto(f.bytes, &attr)
			n.Attributes = append(n.Attributes, attr)
		case 6:
			n.DocString, err = f.str()
		case 7:
			n.Domain, err = f.str()
		}
		return err
	})
}

//nolint:gocyclo,cyclop // one case per TensorProto field
func parseTensorProto(data []byte, t *TensorProto) error {
	return eachField(data, func(f *field) error {
		var err error
		switch f.num {
		case 1:
			var dims []int64
			dims, err = f.varints()
			t.Dims = append(t.Dims, dims...)
		case 2:
			t.DataType, err = f.asInt32()
		case 4:
			var vals []float32
			vals, err = f.floats()
			t.FloatData = append(t.FloatData, vals...)
		case 5:
			var vals []int64
			vals, err = f.varints()
			for _, v := range vals {
				t.Int32Data = append(t.Int32Data, int32(v)) //nolint:gosec // G115: int32_data holds int32 values.
			}
		case 7:
			var vals []int64
			vals, err = f.varints()
			t.Int64Data = append(t.Int64Data, vals...)
		case 8:
			t.Name, err = f.str()
		case 9:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			t.RawData = f.bytes
		case 12:
			t.DocString, err = f.str()
		}
		return err
	})
}

func parseValueInfoProto(data []byte, v *ValueInfoProto) error {
	return eachField(data, func(f *field) error {
		var err error
		switch f.num {
		case 1:
			v.Name, err = f.str()
		case 2:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			v.Type = &TypeProto{}
			err = parseTypeProto(f.bytes, v.Type)
		case 3:
			v.DocString, err = f.str()
		}
		return err
	})
}

func parseTypeProto(data []byte, t *TypeProto) error {
	return eachField(data, func(f *field) error {
		if f.num != 1 {
			return nil
		}
		if err := f.expect(protowire.BytesType); err != nil {
			return err
		}
		t.TensorType = &TensorTypeProto{}
		return parseTensorTypeProto(f.bytes, t.TensorType)
	})
}

func parseTensorTypeProto(data []byte, t *TensorTypeProto) error {
	return eachField(data, func(f *field) error {
		var err error
		switch f.num {
		case 1:
			t.ElemType, err = f.asInt32()
		case 2:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			t.Shape = &TensorShapeProto{}
			err = parseTensorShapeProto(f.bytes, t.Shape)
		}
		return err
	})
}

func parseTensorShapeProto(data []byte, s *TensorShapeProto) error {
	return eachField(data, func(f *field) error {
		if f.num != 1 {
			return nil
		}
		if err := f.expect(protowire.BytesType); err != nil {
			return err
		}
		var dim DimensionProto
		err := eachField(f.bytes, func(df *field) error {
			var err error
			switch df.num {
			case 1:
				dim.DimValue, err = df.asInt64()
			case 2:
				dim.DimParam, err = df.str()
			}
			return err
		})
		s.Dims = append(s.Dims, dim)
		return err
	})
}

//nolint:gocyclo,cyclop // one case per AttributeProto field
func parseAttributeProto(data []byte, a *AttributeProto) error {
	return eachField(data, func(f *field) error {
		var err error
		switch f.num {
		case 1:
			a.Name, err = f.str()
		case 2:
			if err = f.expect(protowire.Fixed32Type); err != nil {
				return err
			}
			a.F = math.Float32frombits(f.fixed32)
		case 3:
			a.I, err = f.asInt64()
		case 4:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			a.S = f.bytes
		case 5:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			a.T = &TensorProto{}
			err = parseTensorProto(f.bytes, a.T)
		case 7:
			var vals []float32
			vals, err = f.floats()
			a.Floats = append(a.Floats, vals...)
		case 8:
			var vals []int64
			vals, err = f.varints()
			a.Ints = append(a.Ints, vals...)
		case 9:
			if err = f.expect(protowire.BytesType); err != nil {
				return err
			}
			a.Strings = append(a.Strings, f.bytes)
		case 13:
			a.DocString, err = f.str()
		case 20:
			a.Type, err = f.asInt32()
		}
		return err
	})
}

func parseOperatorSetID(data []byte, o *OperatorSetID) error {
	return eachField(data, func(f *field) error {
		var err error
		switch f.num {
		case 1:
			o.Domain, err = f.str()
		case 2:
			o.Version, err = f.asInt64()
		}
		return err
	})
}

func parseStringStringEntry(data []byte, e *StringStringEntry) error {
	return eachField(data, func(f *field) error {
		var err error
		switch f.num {
		case 1:
			e.Key, err = f.str()
		case 2:
			e.Value, err = f.str()
		}
		return err
	})
}
