// Package operators implements the ONNX operators used by generated style
// models as float32 reference kernels.
//
// Kernels follow ONNX multidirectional (numpy-style) broadcasting. Each
// operator registers both an execution handler and a shape function, so the
// same registry drives evaluation and shape inference.
package operators
