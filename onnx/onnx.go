// Package onnx loads and inspects the ONNX models stylegen produces.
//
// The models are small elementwise chains over a [1, 3, 256, 256] float
// image. This package can parse any ONNX file, but the evaluator only runs
// the operators returned by [ListSupportedOps].
//
// # Example Usage
//
//	model, err := onnx.Load("public/models/picasso_cubist.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	input := onnx.NewTensor([]int64{1, 3, 256, 256})
//	output, err := model.Forward(input)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Supported Operators
//
//   - Arithmetic: Add, Sub, Mul, Div (with multidirectional broadcasting)
//   - Activation: Relu, Clip
//   - Other: Identity
package onnx

import (
	internalonnx "github.com/stylegen/stylegen/internal/onnx"
	"github.com/stylegen/stylegen/internal/onnx/operators"
)

// Tensor is a dense row-major float32 tensor.
type Tensor = operators.Tensor

// NewTensor allocates a zero tensor of the given shape.
func NewTensor(shape []int64) *Tensor {
	return operators.NewTensor(shape)
}

// OpHandler evaluates a node and returns its output tensors.
type OpHandler = operators.OpHandler

// Node is the operator view of a graph node passed to an OpHandler.
type Node = operators.Node

// LoadOptions configures ONNX model loading behavior.
type LoadOptions = internalonnx.LoadOptions

// DefaultLoadOptions returns the default options for loading ONNX models.
func DefaultLoadOptions() LoadOptions {
	return internalonnx.DefaultLoadOptions()
}

// Load loads an ONNX model from a file path.
//
// The function parses the ONNX protobuf format, checks that every operator
// is supported and orders the graph for evaluation.
//
// For custom operators, pass LoadOptions:
//
//	neg := func(_ *onnx.Node, in []*onnx.Tensor) ([]*onnx.Tensor, error) {
//	    out := onnx.NewTensor(in[0].Shape)
//	    for i, v := range in[0].Data {
//	        out.Data[i] = -v
//	    }
//	    return []*onnx.Tensor{out}, nil
//	}
//	opts := onnx.DefaultLoadOptions()
//	opts.CustomOps = map[string]onnx.OpHandler{"Neg": neg}
//	model, err := onnx.Load("model.onnx", opts)
func Load(path string, opts ...LoadOptions) (Model, error) {
	return internalonnx.Load(path, opts...)
}

// LoadFromBytes loads an ONNX model from raw bytes.
//
// Example:
//
//	modelBytes, _ := os.ReadFile("model.onnx")
//	model, err := onnx.LoadFromBytes(modelBytes)
func LoadFromBytes(data []byte, opts ...LoadOptions) (Model, error) {
	return internalonnx.LoadFromBytes(data, opts...)
}

// ModelInfo contains metadata about an ONNX model without preparing it.
//
// Use [GetModelInfo] to quickly inspect a model file.
type ModelInfo = internalonnx.ModelInfo

// GetModelInfo extracts metadata from an ONNX file.
//
// Example:
//
//	info, err := onnx.GetModelInfo("public/models/cyberpunk_neon.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Style: %s\n", info.Metadata["style"])
//	fmt.Printf("Operators: %v\n", info.Operators)
func GetModelInfo(path string) (*ModelInfo, error) {
	return internalonnx.GetModelInfo(path)
}

// ListSupportedOps returns the operators the evaluator can run.
func ListSupportedOps() []string {
	return internalonnx.ListSupportedOps()
}
