package operators

import (
	"fmt"
	"math"
)

func (r *Registry) registerActivations() {
	r.Register("Relu", handleRelu, sameShape)
	r.Register("Clip", handleClip, sameShape)
}

func handleRelu(_ *Node, inputs []*Tensor) ([]*Tensor, error) {
	if len(inputs) != 1 || inputs[0] == nil {
		return nil, fmt.Errorf("relu: %w: requires 1 input, got %d", ErrInputCount, len(inputs))
	}
	return []*Tensor{unaryOp(inputs[0], func(x float32) float32 { return max(x, 0) })}, nil
}

func handleClip(node *Node, inputs []*Tensor) ([]*Tensor, error) {
	if len(inputs) < 1 || inputs[0] == nil {
		return nil, fmt.Errorf("clip: %w: requires at least 1 input", ErrInputCount)
	}

	// Opset 11+: min and max are optional scalar inputs.
	var minVal, maxVal *float32
	if len(inputs) >= 2 && inputs[1] != nil && len(inputs[1].Data) > 0 {
		minVal = &inputs[1].Data[0]
	}
	if len(inputs) >= 3 && inputs[2] != nil && len(inputs[2].Data) > 0 {
		maxVal = &inputs[2].Data[0]
	}

	// Older opsets carry them as attributes.
	if minVal == nil {
		v := GetAttrFloat(node, "min", -math.MaxFloat32)
		minVal = &v
	}
	if maxVal == nil {
		v := GetAttrFloat(node, "max", math.MaxFloat32)
		maxVal = &v
	}

	lo, hi := *minVal, *maxVal
	return []*Tensor{unaryOp(inputs[0], func(x float32) float32 { return min(max(x, lo), hi) })}, nil
}
