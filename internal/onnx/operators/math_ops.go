package operators

import (
	"fmt"
	"slices"
)

func (r *Registry) registerMathOps() {
	r.Register("Add", binaryHandler("add", func(x, y float32) float32 { return x + y }), broadcastShape)
	r.Register("Sub", binaryHandler("sub", func(x, y float32) float32 { return x - y }), broadcastShape)
	r.Register("Mul", binaryHandler("mul", func(x, y float32) float32 { return x * y }), broadcastShape)
	r.Register("Div", binaryHandler("div", func(x, y float32) float32 { return x / y }), broadcastShape)
}

func binaryHandler(name string, fn func(x, y float32) float32) OpHandler {
	return func(_ *Node, inputs []*Tensor) ([]*Tensor, error) {
		if len(inputs) != 2 || inputs[0] == nil || inputs[1] == nil {
			return nil, fmt.Errorf("%s: %w: requires 2 inputs, got %d", name, ErrInputCount, len(inputs))
		}
		result, err := binaryOp(inputs[0], inputs[1], fn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return []*Tensor{result}, nil
	}
}

func broadcastShape(node *Node, inputs [][]int64) ([][]int64, error) {
	if len(inputs) != 2 {
		return nil, fmt.Errorf("%s: %w: requires 2 inputs, got %d", node.OpType, ErrInputCount, len(inputs))
	}
	shape, err := BroadcastShape(inputs[0], inputs[1])
	if err != nil {
		return nil, err
	}
	return [][]int64{shape}, nil
}

// sameShape is the shape function of every unary elementwise operator.
func sameShape(node *Node, inputs [][]int64) ([][]int64, error) {
	if len(inputs) < 1 {
		return nil, fmt.Errorf("%s: %w: requires at least 1 input", node.OpType, ErrInputCount)
	}
	return [][]int64{slices.Clone(inputs[0])}, nil
}
