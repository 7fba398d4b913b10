package onnx

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNoGraph         = errors.New("model has no graph")
	ErrEmptyGraph      = errors.New("graph has no nodes")
	ErrBrokenChain     = errors.New("node input does not follow previous output")
	ErrUnknownOperand  = errors.New("operand is not a graph initializer")
	ErrDanglingOutput  = errors.New("last node output is not the graph output")
	ErrShapeMismatch   = errors.New("inferred shape does not match declared shape")
	ErrUnsupportedType = errors.New("unsupported tensor data type")
)

// NodeError ties a graph error to the node that caused it.
type NodeError struct {
	Node   string // Node name
	OpType string // Operator type
	Err    error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q (%s): %v", e.Node, e.OpType, e.Err)
}

// Unwrap returns the underlying error.
func (e *NodeError) Unwrap() error {
	return e.Err
}
