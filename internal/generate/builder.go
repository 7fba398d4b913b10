package generate

import (
	"fmt"

	"github.com/stylegen/stylegen/internal/onnx"
	"github.com/stylegen/stylegen/internal/style"
)

// Fixed tensor geometry and naming shared by every generated model.
const (
	InputName  = "input"
	OutputName = "output"

	Batch  = 1
	Width  = 256
	Height = 256

	Producer = "stylegen"

	// PixelScale maps [0, 255] pixels to [0, 1] and back.
	PixelScale = 255
)

// Version is stamped into every model as producer_version.
var Version = "dev"

// Metadata keys written into every model.
const (
	MetaStyle     = "style"
	MetaStyleKind = "style_kind"
)

// Names of the fixed chain nodes and values.
const (
	normalizeNode   = "normalize"
	normalizedValue = "normalized"
	normalizeConst  = "normalize_divisor"

	identityNode = "identity"
	styledValue  = "styled"

	clampNode    = "clamp"
	clampedValue = "clamped"
	clampMin     = "clamp_min"
	clampMax     = "clamp_max"

	denormalizeNode  = "denormalize"
	denormalizeConst = "denormalize_scale"
)

// Shape returns the NCHW shape of every model's input and output.
func Shape() []int64 {
	return []int64{Batch, style.Channels, Height, Width}
}

// GraphName returns the graph name for a descriptor.
func GraphName(descriptor string) string {
	return descriptor + "_style_transfer"
}

// BuildModel builds the style-transfer model for descriptor using the
// built-in style table.
func BuildModel(descriptor string) (*onnx.ModelProto, error) {
	return BuildModelWith(style.Table(), descriptor)
}

// BuildModelWith builds the model for descriptor from tbl. The graph is one
// linear chain: normalize, the style's scale and offset (or identity when no
// style matches), clamp to [0, 1], denormalize.
func BuildModelWith(tbl *style.StyleTable, descriptor string) (*onnx.ModelProto, error) {
	kind := tbl.Resolve(descriptor)
	entry, ok := tbl.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	c := chain{prev: InputName}
	c.add("Div", normalizeNode, normalizedValue, onnx.ScalarTensor(normalizeConst, PixelScale))

	if kind == style.Identity {
		c.add("Identity", identityNode, styledValue)
	} else {
		scale, err := stepTensor(entry.Scale)
		if err != nil {
			return nil, err
		}
		scaleOut := entry.Scale.Output
		if scaleOut == "" {
			scaleOut = entry.Scale.Node
		}
		c.add("Mul", entry.Scale.Node, scaleOut, scale)

		offset, err := stepTensor(entry.Offset)
		if err != nil {
			return nil, err
		}
		c.add("Add", entry.Offset.Node, styledValue, offset)
	}

	c.add("Clip", clampNode, clampedValue, onnx.ScalarTensor(clampMin, 0), onnx.ScalarTensor(clampMax, 1))
	c.add("Mul", denormalizeNode, OutputName, onnx.ScalarTensor(denormalizeConst, PixelScale))

	graph := onnx.MakeGraph(c.nodes, GraphName(descriptor),
		[]onnx.ValueInfoProto{onnx.MakeTensorValueInfo(InputName, onnx.TensorProtoFloat, Shape())},
		[]onnx.ValueInfoProto{onnx.MakeTensorValueInfo(OutputName, onnx.TensorProtoFloat, Shape())},
		c.inits)
	graph.DocString = entry.Description

	if err := onnx.ValidateChain(graph); err != nil {
		return nil, fmt.Errorf("invalid graph for %q: %w", descriptor, err)
	}

	model := onnx.MakeModel(graph, Producer, Version)
	model.MetadataProps = []onnx.StringStringEntry{
		{Key: MetaStyle, Value: descriptor},
		{Key: MetaStyleKind, Value: kind.String()},
	}
	if err := onnx.InferShapes(model); err != nil {
		return nil, fmt.Errorf("shape inference for %q: %w", descriptor, err)
	}
	return model, nil
}

// stepTensor turns a table step into its constant operand, named after the node.
func stepTensor(s *style.Step) (onnx.TensorProto, error) {
	return onnx.FloatTensor(s.Node+"_value", s.Operand.Dims(), s.Operand.Values())
}

// chain appends nodes whose data input is the previous node's output.
type chain struct {
	nodes []onnx.NodeProto
	inits []onnx.TensorProto
	prev  string
}

func (c *chain) add(opType, name, output string, operands ...onnx.TensorProto) {
	inputs := make([]string, 0, 1+len(operands))
	inputs = append(inputs, c.prev)
	for _, t := range operands {
		inputs = append(inputs, t.Name)
		c.inits = append(c.inits, t)
	}
	c.nodes = append(c.nodes, onnx.MakeNode(opType, inputs, []string{output}, name))
	c.prev = output
}
