// Package onnx reads, writes and evaluates ONNX models.
//
// ONNX (Open Neural Network Exchange) models are protobuf messages. This
// package keeps hand-written Go structs for the messages it needs and
// encodes/decodes them with protowire, so no generated code is required.
//
// Key components:
//   - ModelProto, GraphProto, NodeProto, TensorProto, ValueInfoProto: message structs
//   - Marshal / Parse: wire encoder and decoder
//   - MakeNode, MakeGraph, MakeModel, FloatTensor: construction helpers
//   - ValidateChain: linear-chain check for generated graphs
//   - InferShapes: static shape propagation with broadcasting
//   - Load / Model.Forward: float32 reference evaluation
//
// Example usage:
//
//	in := onnx.MakeTensorValueInfo("input", onnx.TensorProtoFloat, []int64{1, 3, 256, 256})
//	out := onnx.MakeTensorValueInfo("output", onnx.TensorProtoFloat, []int64{1, 3, 256, 256})
//	node := onnx.MakeNode("Relu", []string{"input"}, []string{"output"}, "relu")
//	graph := onnx.MakeGraph([]onnx.NodeProto{node}, "relu", []onnx.ValueInfoProto{in}, []onnx.ValueInfoProto{out}, nil)
//	model := onnx.MakeModel(graph, "stylegen", "dev")
//	if err := onnx.InferShapes(model); err != nil {
//	    log.Fatal(err)
//	}
//	data, err := onnx.Marshal(model)
package onnx
