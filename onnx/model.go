package onnx

// Model represents a loaded ONNX model ready for evaluation.
//
// This interface hides the internal implementation and allows for
// easy mocking in tests.
type Model interface {
	// Forward runs the model with a single input tensor.
	//
	// Returns an error if the model does not have exactly one input
	// or one output. In such cases, use ForwardNamed instead.
	Forward(input *Tensor) (*Tensor, error)

	// ForwardNamed runs the model with named inputs.
	// Returns a map of output name to tensor.
	ForwardNamed(inputs map[string]*Tensor) (map[string]*Tensor, error)

	// InputNames returns the names of model inputs.
	InputNames() []string

	// OutputNames returns the names of model outputs.
	OutputNames() []string

	// OpsetVersion returns the ONNX opset version used by the model.
	OpsetVersion() int64

	// Metadata returns model metadata as key-value pairs.
	//
	// Common metadata keys:
	//   - "producer_name": tool that wrote the model (stylegen models use "stylegen")
	//   - "producer_version": version of that tool
	//   - "domain": domain of the model (usually "")
	//   - "style", "style_kind": the descriptor and resolved kind of a stylegen model
	Metadata() map[string]string
}
