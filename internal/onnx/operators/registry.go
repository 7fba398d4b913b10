package operators

import (
	"fmt"
	"sort"
)

// OpHandler evaluates a node and returns its output tensors.
type OpHandler func(node *Node, inputs []*Tensor) ([]*Tensor, error)

// ShapeFunc computes a node's output shapes from its input shapes.
// A nil entry in inputs means an omitted optional input.
type ShapeFunc func(node *Node, inputs [][]int64) ([][]int64, error)

type operator struct {
	run   OpHandler
	shape ShapeFunc
}

// Registry maps ONNX operator types to kernels and shape functions.
type Registry struct {
	ops map[string]operator
}

// NewRegistry creates a registry with all supported operators.
func NewRegistry() *Registry {
	r := &Registry{
		ops: make(map[string]operator),
	}

	r.registerMathOps()
	r.registerActivations()
	r.registerUtilityOps()

	return r
}

// Register adds or replaces an operator.
func (r *Registry) Register(opType string, handler OpHandler, shape ShapeFunc) {
	r.ops[opType] = operator{run: handler, shape: shape}
}

// Get returns the handler for an operator type.
func (r *Registry) Get(opType string) (OpHandler, bool) {
	op, ok := r.ops[opType]
	return op.run, ok
}

// Execute runs an operator with the given inputs.
func (r *Registry) Execute(node *Node, inputs []*Tensor) ([]*Tensor, error) {
	op, ok := r.ops[node.OpType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOp, node.OpType)
	}
	return op.run(node, inputs)
}

// InferShape computes output shapes for a node.
func (r *Registry) InferShape(node *Node, inputs [][]int64) ([][]int64, error) {
	op, ok := r.ops[node.OpType]
	if !ok || op.shape == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOp, node.OpType)
	}
	return op.shape(node, inputs)
}

// SupportedOps returns the registered operator types, sorted.
func (r *Registry) SupportedOps() []string {
	ops := make([]string, 0, len(r.ops))
	for op := range r.ops {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
