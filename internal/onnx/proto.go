package onnx

// ONNX protobuf messages, hand-written. Field numbers follow onnx.proto and
// are shared by the encoder (writer.go) and the decoder (parser.go).

// ModelProto is the top-level container written to a .onnx file.
type ModelProto struct {
	IRVersion       int64               // 1
	ProducerName    string              // 2
	ProducerVersion string              // 3
	Domain          string              // 4
	ModelVersion    int64               // 5
	DocString       string              // 6
	Graph           *GraphProto         // 7
	OpsetImport     []OperatorSetID     // 8
	MetadataProps   []StringStringEntry // 14
}

// GraphProto is a named list of nodes with declared inputs and outputs.
type GraphProto struct {
	Nodes        []NodeProto      // 1
	Name         string           // 2
	Initializers []TensorProto    // 5
	DocString    string           // 10
	Inputs       []ValueInfoProto // 11
	Outputs      []ValueInfoProto // 12
	ValueInfo    []ValueInfoProto // 13, intermediate values filled by InferShapes
}

// NodeProto is a single operator invocation.
type NodeProto struct {
	Inputs     []string         // 1
	Outputs    []string         // 2
	Name       string           // 3
	OpType     string           // 4
	Attributes []AttributeProto // 5
	DocString  string           // 6
	Domain     string           // 7
}

// TensorProto holds constant tensor data (graph initializers).
type TensorProto struct {
	Dims      []int64   // 1
	DataType  int32     // 2
	FloatData []float32 // 4
	Int32Data []int32   // 5
	Int64Data []int64   // 7
	Name      string    // 8
	RawData   []byte    // 9, little-endian
	DocString string    // 12
}

// ValueInfoProto names a value and describes its type.
type ValueInfoProto struct {
	Name      string     // 1
	Type      *TypeProto // 2
	DocString string     // 3
}

// TypeProto only models the tensor_type arm of the oneof.
type TypeProto struct {
	TensorType *TensorTypeProto // 1
}

// TensorTypeProto is an element type plus shape.
type TensorTypeProto struct {
	ElemType int32             // 1
	Shape    *TensorShapeProto // 2
}

// TensorShapeProto is a list of dimensions.
type TensorShapeProto struct {
	Dims []DimensionProto // 1
}

// DimensionProto is either a static size or a symbolic name.
type DimensionProto struct {
	DimValue int64  // 1
	DimParam string // 2
}

// AttributeProto is a named node attribute.
type AttributeProto struct {
	Name      string       // 1
	F         float32      // 2
	I         int64        // 3
	S         []byte       // 4
	T         *TensorProto // 5
	Floats    []float32    // 7
	Ints      []int64      // 8
	Strings   [][]byte     // 9
	DocString string       // 13
	Type      int32        // 20
}

// OperatorSetID pins an operator domain to a version.
type OperatorSetID struct {
	Domain  string // 1
	Version int64  // 2
}

// StringStringEntry is a metadata key/value pair.
type StringStringEntry struct {
	Key   string // 1
	Value string // 2
}

// ONNX data types (TensorProto.DataType).
const (
	TensorProtoUndefined = 0
	TensorProtoFloat     = 1  // float32
	TensorProtoUint8     = 2  // uint8
	TensorProtoInt8      = 3  // int8
	TensorProtoUint16    = 4  // uint16
	TensorProtoInt16     = 5  // int16
	TensorProtoInt32     = 6  // int32
	TensorProtoInt64     = 7  // int64
	TensorProtoString    = 8  // string
	TensorProtoBool      = 9  // bool
	TensorProtoFloat16   = 10 // float16
	TensorProtoDouble    = 11 // float64
)

// ONNX attribute types (AttributeProto.Type).
const (
	AttributeProtoUndefined = 0
	AttributeProtoFloat     = 1 // FLOAT
	AttributeProtoInt       = 2 // INT
	AttributeProtoString    = 3 // STRING
	AttributeProtoTensor    = 4 // TENSOR
	AttributeProtoFloats    = 6 // FLOATS
	AttributeProtoInts      = 7 // INTS
	AttributeProtoStrings   = 8 // STRINGS
)

// Versions stamped on models built by MakeModel.
const (
	IRVersion     = 8
	DefaultOpset  = 13
	DefaultDomain = ""
)

// Shape returns the static dimensions of a tensor-typed value, or nil if the
// value has no tensor type. Symbolic dimensions are reported as -1.
func (v *ValueInfoProto) Shape() []int64 {
	if v.Type == nil || v.Type.TensorType == nil || v.Type.TensorType.Shape == nil {
		return nil
	}
	dims := v.Type.TensorType.Shape.Dims
	shape := make([]int64, len(dims))
	for i, d := range dims {
		if d.DimParam != "" {
			shape[i] = -1
			continue
		}
		shape[i] = d.DimValue
	}
	return shape
}

// Initializer returns the initializer with the given name.
func (g *GraphProto) Initializer(name string) (*TensorProto, bool) {
	for i := range g.Initializers {
		if g.Initializers[i].Name == name {
			return &g.Initializers[i], true
		}
	}
	return nil, false
}
